package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/court-call/internal/apperr"
	"github.com/mauv0809/court-call/internal/event"
	"github.com/mauv0809/court-call/internal/pubsub"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

// StatsHandler exposes the persistent business counters.
func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Stats.GetAll()
		if err != nil {
			log.Error("Failed to load stats", "error", err)
			http.Error(w, "Failed to load stats", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) CreateEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := callerID(r)
		if caller == "" {
			http.Error(w, "Missing X-Player-ID header", http.StatusBadRequest)
			return
		}

		var cfg event.EventConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			log.Error("Failed to decode create event request", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		ev, err := s.Events.CreateEvent(cfg, caller)
		if err != nil {
			writeError(w, err)
			return
		}

		s.Metrics.IncEventsCreated()
		s.Stats.Increment("events_created")
		writeJSON(w, http.StatusCreated, ev)
	}
}

func (s *Server) ListEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := s.Events.ListEvents()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func (s *Server) GetEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := s.Events.GetEvent(r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := callerID(r)
		if caller == "" {
			http.Error(w, "Missing X-Player-ID header", http.StatusBadRequest)
			return
		}

		reg, err := s.Events.Register(r.PathValue("id"), caller)
		if err != nil {
			writeError(w, err)
			return
		}

		s.Metrics.IncRegistrations()
		s.Stats.Increment("registrations")
		writeJSON(w, http.StatusOK, reg)
	}
}

func (s *Server) CloseRegistrationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := s.Events.CloseRegistration(r.PathValue("id"), callerID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ev)
	}
}

func (s *Server) CancelRegistrationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := callerID(r)
		if caller == "" {
			http.Error(w, "Missing X-Player-ID header", http.StatusBadRequest)
			return
		}

		outcome, err := s.Events.CancelRegistration(r.PathValue("id"), caller)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"outcome": outcome})
	}
}

func (s *Server) ApproveCancelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PlayerID string `json:"player_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PlayerID == "" {
			http.Error(w, "Invalid JSON, expected {\"player_id\": ...}", http.StatusBadRequest)
			return
		}

		reg, err := s.Events.ApproveCancel(r.PathValue("id"), callerID(r), body.PlayerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reg)
	}
}

func (s *Server) StartEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		planStart := time.Now()
		detail, err := s.Events.StartEvent(r.PathValue("id"), callerID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		s.Metrics.ObservePlanningDuration(time.Since(planStart).Seconds())
		s.Metrics.IncEventsStarted()
		s.Stats.Increment("events_started")

		s.publishEventMessage(pubsub.EventNotifySchedule, detail.Event.ID)

		if err := s.Notifier.SendScheduleNotification(detail, s.playerNames(), isDryRunFromContext(r)); err != nil {
			log.Error("Failed to send schedule notification", "error", err, "eventID", detail.Event.ID)
		}

		writeJSON(w, http.StatusOK, detail)
	}
}

func (s *Server) SubmitScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input event.ScoreInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		match, err := s.Events.SubmitScore(r.PathValue("id"), callerID(r), input)
		if err != nil {
			writeError(w, err)
			return
		}

		s.Metrics.IncScoresSubmitted()
		s.Stats.Increment("scores_submitted")
		writeJSON(w, http.StatusOK, match)
	}
}

func (s *Server) FinishEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := s.Events.FinishEvent(r.PathValue("id"), callerID(r))
		if err != nil {
			writeError(w, err)
			return
		}

		s.Metrics.IncEventsFinished()
		s.Stats.Increment("events_finished")
		points := 0.0
		for _, c := range summary.Changes {
			if c.Delta >= 0 {
				points += float64(c.Delta)
			} else {
				points -= float64(c.Delta)
			}
		}
		s.Metrics.AddRatingPointsApplied(points)

		s.publishEventMessage(pubsub.EventNotifyStandings, summary.Event.ID)

		if err := s.Notifier.SendStandingsNotification(summary, s.playerNames(), isDryRunFromContext(r)); err != nil {
			log.Error("Failed to send standings notification", "error", err, "eventID", summary.Event.ID)
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

func (s *Server) AddPlayerHandler() http.HandlerFunc {
	type request struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode add player request", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.ID == "" {
			http.Error(w, "Missing player id", http.StatusBadRequest)
			return
		}

		s.Store.AddPlayer(req.ID, req.Name)

		player, err := s.Store.GetPlayer(req.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, player)
	}
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := s.Store.Leaderboard()
		if err != nil {
			writeError(w, err)
			return
		}

		if r.URL.Query().Get("notify") == "true" {
			if err := s.Notifier.SendLeaderboard(board, isDryRunFromContext(r)); err != nil {
				log.Error("Failed to send leaderboard", "error", err)
			}
		}

		writeJSON(w, http.StatusOK, board)
	}
}

func (s *Server) PlayerHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.PathValue("id")
		if !s.Store.IsKnownPlayer(playerID) {
			http.Error(w, "Player not found", http.StatusNotFound)
			return
		}

		history, err := s.Store.GetRatingHistory(playerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, history)
	}
}

// NotifyScheduleHandler is the Pub/Sub push endpoint for schedule notifications.
func (s *Server) NotifyScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, ok := s.decodePushMessage(w, r)
		if !ok {
			return
		}

		detail, err := s.Events.GetEvent(msg.EventID)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.Notifier.SendScheduleNotification(detail, s.playerNames(), isDryRunFromContext(r)); err != nil {
			log.Error("Failed to send schedule notification", "error", err, "eventID", msg.EventID)
			http.Error(w, "Failed to send notification", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// NotifyStandingsHandler is the Pub/Sub push endpoint for standings notifications.
func (s *Server) NotifyStandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, ok := s.decodePushMessage(w, r)
		if !ok {
			return
		}

		summary, err := s.Events.GetSummary(msg.EventID)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.Notifier.SendStandingsNotification(summary, s.playerNames(), isDryRunFromContext(r)); err != nil {
			log.Error("Failed to send standings notification", "error", err, "eventID", msg.EventID)
			http.Error(w, "Failed to send notification", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// decodePushMessage unwraps a Pub/Sub push envelope into an EventMessage.
func (s *Server) decodePushMessage(w http.ResponseWriter, r *http.Request) (*pubsub.EventMessage, bool) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("Failed to read request body", "error", err)
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return nil, false
	}
	log.Debug("Received push message", "body", string(bodyBytes))

	var pubsubMsg struct {
		Subscription string `json:"subscription"`
		Message      struct {
			Data string `json:"data"` // base64-encoded message payload
		} `json:"message"`
	}
	if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
		log.Error("Failed to unmarshal wrapper JSON", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return nil, false
	}

	rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
	if err != nil {
		log.Error("Failed to decode base64 data", "error", err)
		http.Error(w, "Invalid base64 data", http.StatusBadRequest)
		return nil, false
	}

	var msg pubsub.EventMessage
	if err := s.PubSub.ProcessMessage(rawData, &msg); err != nil {
		http.Error(w, "Invalid message payload", http.StatusBadRequest)
		return nil, false
	}
	return &msg, true
}

func (s *Server) publishEventMessage(eventType pubsub.EventType, eventID string) {
	if s.PubSub == nil {
		return
	}
	msg := pubsub.EventMessage{Type: eventType, EventID: eventID}
	if err := s.PubSub.SendMessage(string(eventType), msg); err != nil {
		log.Error("Failed to publish event message", "error", err, "type", eventType, "eventID", eventID)
	}
}

// playerNames builds an ID to display name mapping for notifications.
func (s *Server) playerNames() map[string]string {
	players, err := s.Store.GetAllPlayers()
	if err != nil {
		log.Error("Failed to load player names", "error", err)
		return map[string]string{}
	}
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	return names
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// writeError maps service errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}
