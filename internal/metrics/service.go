package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		EventsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "americana_events_created_total",
			Help: "The total number of events created.",
		}),
		EventsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "americana_events_started_total",
			Help: "The total number of events that reached IN_PROGRESS.",
		}),
		EventsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "americana_events_finished_total",
			Help: "The total number of events finished with ratings applied.",
		}),
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "americana_registrations_total",
			Help: "The total number of player registrations accepted.",
		}),
		ScoresSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "americana_scores_submitted_total",
			Help: "The total number of match score submissions accepted.",
		}),
		RatingPointsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "americana_rating_points_applied_total",
			Help: "The total absolute rating points moved between players at event finish.",
		}),
		PlanningDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "americana_round_planning_duration_seconds",
			Help:    "The duration of round planning at event start.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "americana_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "americana_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "americana_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.EventsCreated,
		s.EventsStarted,
		s.EventsFinished,
		s.Registrations,
		s.ScoresSubmitted,
		s.RatingPointsApplied,
		s.PlanningDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncEventsCreated() {
	s.EventsCreated.Inc()
}

func (s *Service) IncEventsStarted() {
	s.EventsStarted.Inc()
}

func (s *Service) IncEventsFinished() {
	s.EventsFinished.Inc()
}

func (s *Service) IncRegistrations() {
	s.Registrations.Inc()
}

func (s *Service) IncScoresSubmitted() {
	s.ScoresSubmitted.Inc()
}

func (s *Service) AddRatingPointsApplied(points float64) {
	s.RatingPointsApplied.Add(points)
}

func (s *Service) ObservePlanningDuration(duration float64) {
	s.PlanningDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
