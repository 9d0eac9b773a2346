package http

import (
	"net/http"

	"github.com/mauv0809/court-call/internal/club"
	"github.com/mauv0809/court-call/internal/config"
	"github.com/mauv0809/court-call/internal/event"
	"github.com/mauv0809/court-call/internal/metrics"
	"github.com/mauv0809/court-call/internal/notifier"
	"github.com/mauv0809/court-call/internal/pubsub"
)

func NewServer(store club.ClubStore, events event.EventService, metricsSvc metrics.Metrics, stats metrics.MetricsStore, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Events:         events,
		Metrics:        metricsSvc,
		Stats:          stats,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		PubSub:         pubsub,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("POST /clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("GET /stats", Chain(s.StatsHandler(), paramsMiddleware))

	s.Router.Handle("POST /events", Chain(s.CreateEventHandler(), paramsMiddleware))
	s.Router.Handle("GET /events", Chain(s.ListEventsHandler(), paramsMiddleware))
	s.Router.Handle("GET /events/{id}", Chain(s.GetEventHandler(), paramsMiddleware))
	s.Router.Handle("POST /events/{id}/register", Chain(s.RegisterHandler(), paramsMiddleware))
	s.Router.Handle("POST /events/{id}/close", Chain(s.CloseRegistrationHandler(), paramsMiddleware))
	s.Router.Handle("POST /events/{id}/cancel-registration", Chain(s.CancelRegistrationHandler(), paramsMiddleware))
	s.Router.Handle("POST /events/{id}/approve-cancel", Chain(s.ApproveCancelHandler(), paramsMiddleware))
	s.Router.Handle("POST /events/{id}/start", Chain(s.StartEventHandler(), paramsMiddleware))
	s.Router.Handle("POST /events/{id}/finish", Chain(s.FinishEventHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/score", Chain(s.SubmitScoreHandler(), paramsMiddleware))

	s.Router.Handle("POST /players", Chain(s.AddPlayerHandler(), paramsMiddleware))
	s.Router.Handle("GET /leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("GET /players/{id}/history", Chain(s.PlayerHistoryHandler(), paramsMiddleware))

	// Pub/Sub push endpoints.
	s.Router.Handle("POST /notify-schedule", Chain(s.NotifyScheduleHandler(), paramsMiddleware))
	s.Router.Handle("POST /notify-standings", Chain(s.NotifyStandingsHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
