package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/court-call/internal/apperr"
	"github.com/mauv0809/court-call/internal/club"
	"github.com/mauv0809/court-call/internal/config"
	"github.com/mauv0809/court-call/internal/event"
	"github.com/mauv0809/court-call/internal/metrics"
	"github.com/mauv0809/court-call/internal/notifier"
	"github.com/mauv0809/court-call/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type testDeps struct {
	store    *club.MockStore
	events   *event.MockService
	metrics  *metrics.Mock
	stats    *metrics.MockStore
	notifier *notifier.Mock
	pubsub   *pubsub.MockPubSubClient
}

func newTestServer() (*Server, *testDeps) {
	deps := &testDeps{
		store:    club.NewMock(),
		events:   event.NewMock(),
		metrics:  metrics.NewMock(),
		stats:    metrics.NewMockStore(),
		notifier: notifier.NewMock(),
		pubsub:   pubsub.NewMock("test-project"),
	}
	srv := NewServer(deps.store, deps.events, deps.metrics, deps.stats, http.NotFoundHandler(), config.Config{}, deps.notifier, deps.pubsub)
	return srv, deps
}

func TestHealthCheckHandler(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestCreateEventHandler(t *testing.T) {
	srv, deps := newTestServer()
	deps.events.CreateEventFunc = func(cfg event.EventConfig, creatorID string) (*event.Event, error) {
		return &event.Event{ID: "ev1", Name: cfg.Name, AuthorID: creatorID, Status: event.StatusOpen}, nil
	}

	body := map[string]any{
		"name":              "Tuesday Americana",
		"courts_count":      2,
		"pairing_mode":      "ROUND_ROBIN",
		"scoring_mode":      "POINTS",
		"points_per_player": 6,
		"auto_rounds":       true,
		"start_time":        time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"end_time":          time.Now().Add(51 * time.Hour).Format(time.RFC3339),
	}
	buf, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(buf))
	req.Header.Set("X-Player-ID", "U1")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Len(t, deps.events.CreateEventCalls, 1)
	assert.Equal(t, "U1", deps.events.CreateEventCalls[0].CreatorID)
	assert.Equal(t, "Tuesday Americana", deps.events.CreateEventCalls[0].Cfg.Name)
	assert.Equal(t, 1, deps.metrics.EventsCreated())
	assert.Equal(t, 1, deps.stats.Counts["events_created"])

	var ev event.Event
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ev))
	assert.Equal(t, "ev1", ev.ID)
}

func TestCreateEventHandler_MissingCaller(t *testing.T) {
	srv, deps := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("{}"))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, deps.events.CreateEventCalls)
}

func TestRegisterHandler_ErrorMapping(t *testing.T) {
	srv, deps := newTestServer()

	cases := []struct {
		err    error
		status int
	}{
		{apperr.Validation("bad input"), http.StatusBadRequest},
		{apperr.Conflict("not open"), http.StatusConflict},
		{apperr.NotFound("no such event"), http.StatusNotFound},
		{apperr.Forbidden("not the author"), http.StatusForbidden},
		{fmt.Errorf("db exploded"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		deps.events.RegisterFunc = func(eventID, playerID string) (*event.Registration, error) {
			return nil, tc.err
		}
		req := httptest.NewRequest(http.MethodPost, "/events/ev1/register", nil)
		req.Header.Set("X-Player-ID", "U1")
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, req)
		assert.Equal(t, tc.status, rr.Code, "error %v", tc.err)
	}

	assert.Equal(t, 0, deps.metrics.Registrations())
}

func TestRegisterHandler_Success(t *testing.T) {
	srv, deps := newTestServer()
	deps.events.RegisterFunc = func(eventID, playerID string) (*event.Registration, error) {
		return &event.Registration{EventID: eventID, PlayerID: playerID, Status: event.RegStatusRegistered}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/events/ev1/register", nil)
	req.Header.Set("X-Player-ID", "U1")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, deps.events.RegisterCalls, 1)
	assert.Equal(t, "ev1", deps.events.RegisterCalls[0].EventID)
	assert.Equal(t, "U1", deps.events.RegisterCalls[0].PlayerID)
	assert.Equal(t, 1, deps.metrics.Registrations())
}

func TestStartEventHandler_NotifiesAndPublishes(t *testing.T) {
	srv, deps := newTestServer()
	detail := &event.EventDetail{Event: event.Event{ID: "ev1", Status: event.StatusInProgress}}
	deps.events.StartEventFunc = func(eventID, callerID string) (*event.EventDetail, error) {
		return detail, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/events/ev1/start", nil)
	req.Header.Set("X-Player-ID", "U1")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, deps.metrics.EventsStarted())
	require.Len(t, deps.notifier.SendScheduleNotificationCalls, 1)
	assert.Equal(t, "ev1", deps.notifier.SendScheduleNotificationCalls[0].Event.ID)
	require.Len(t, deps.pubsub.SendMessageCalls, 1)
	assert.Equal(t, string(pubsub.EventNotifySchedule), deps.pubsub.SendMessageCalls[0].Topic)
}

func TestSubmitScoreHandler(t *testing.T) {
	srv, deps := newTestServer()
	deps.events.SubmitScoreFunc = func(matchID, callerID string, input event.ScoreInput) (*event.Match, error) {
		return &event.Match{ID: matchID, Status: event.MatchFinished}, nil
	}

	body := `{"points_a": 14, "points_b": 10}`
	req := httptest.NewRequest(http.MethodPost, "/matches/m1/score", strings.NewReader(body))
	req.Header.Set("X-Player-ID", "U1")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, deps.events.SubmitScoreCalls, 1)
	call := deps.events.SubmitScoreCalls[0]
	assert.Equal(t, "m1", call.MatchID)
	require.NotNil(t, call.Input.PointsA)
	assert.Equal(t, 14, *call.Input.PointsA)
	assert.Equal(t, 1, deps.metrics.ScoresSubmitted())
}

func TestFinishEventHandler_AppliesMetricsAndNotifies(t *testing.T) {
	srv, deps := newTestServer()
	summary := &event.EventSummary{
		Event: event.Event{ID: "ev1", Status: event.StatusFinished},
		Changes: []event.RatingChange{
			{PlayerID: "U1", Delta: 8},
			{PlayerID: "U2", Delta: -8},
		},
	}
	deps.events.FinishEventFunc = func(eventID, callerID string) (*event.EventSummary, error) {
		return summary, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/events/ev1/finish", nil)
	req.Header.Set("X-Player-ID", "U1")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, deps.metrics.EventsFinished())
	assert.Equal(t, 16.0, deps.metrics.RatingPointsApplied())
	require.Len(t, deps.notifier.SendStandingsNotificationCalls, 1)
	require.Len(t, deps.pubsub.SendMessageCalls, 1)
	assert.Equal(t, string(pubsub.EventNotifyStandings), deps.pubsub.SendMessageCalls[0].Topic)
}

func TestAddPlayerHandler(t *testing.T) {
	srv, deps := newTestServer()
	deps.store.GetPlayerFunc = func(playerID string) (*club.PlayerInfo, error) {
		return &club.PlayerInfo{ID: playerID, Name: "Alice", Rating: 1000, CalibrationEventsRemaining: 5, NTRP: "3.0"}, nil
	}

	buf, _ := json.Marshal(map[string]string{"id": "U9", "name": "Alice"})
	req := httptest.NewRequest(http.MethodPost, "/players", bytes.NewReader(buf))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Len(t, deps.store.AddPlayerCalls, 1)
	assert.Equal(t, "U9", deps.store.AddPlayerCalls[0].PlayerID)
	assert.Equal(t, "Alice", deps.store.AddPlayerCalls[0].Name)

	var player club.PlayerInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &player))
	assert.Equal(t, "U9", player.ID)
	assert.Equal(t, 1000, player.Rating)
}

func TestAddPlayerHandler_MissingID(t *testing.T) {
	srv, deps := newTestServer()

	buf, _ := json.Marshal(map[string]string{"name": "Nameless"})
	req := httptest.NewRequest(http.MethodPost, "/players", bytes.NewReader(buf))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, deps.store.AddPlayerCalls)
}

func TestLeaderboardHandler(t *testing.T) {
	srv, deps := newTestServer()
	deps.store.LeaderboardFunc = func() ([]club.PlayerInfo, error) {
		return []club.PlayerInfo{{ID: "U1", Name: "Alice", Rating: 1200}}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var board []club.PlayerInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	require.Len(t, board, 1)
	assert.Equal(t, "Alice", board[0].Name)
	assert.Empty(t, deps.notifier.SendLeaderboardCalls)

	// With notify=true the board is also pushed to Slack.
	req = httptest.NewRequest(http.MethodGet, "/leaderboard?notify=true", nil)
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, deps.notifier.SendLeaderboardCalls, 1)
}

func TestPlayerHistoryHandler(t *testing.T) {
	srv, deps := newTestServer()
	deps.store.IsKnownPlayerFunc = func(playerID string) bool { return playerID == "U1" }
	deps.store.GetRatingHistoryFunc = func(playerID string) ([]club.RatingHistoryEntry, error) {
		return []club.RatingHistoryEntry{{EventID: "ev1", MatchID: "m1", OldRating: 1000, Delta: 8, NewRating: 1008}}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/players/U1/history", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var history []club.RatingHistoryEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, 1008, history[0].NewRating)

	req = httptest.NewRequest(http.MethodGet, "/players/ghost/history", nil)
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStatsHandler(t *testing.T) {
	srv, deps := newTestServer()
	deps.stats.Increment("events_created")
	deps.stats.Increment("events_created")

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var stats map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats["events_created"])
}

func TestNotifyScheduleHandler_PushEnvelope(t *testing.T) {
	srv, deps := newTestServer()
	deps.events.GetEventFunc = func(eventID string) (*event.EventDetail, error) {
		return &event.EventDetail{Event: event.Event{ID: eventID}}, nil
	}
	deps.pubsub.ProcessMessageFunc = func(data []byte, returnValue any) error {
		return msgpack.Unmarshal(data, returnValue)
	}

	payload, err := msgpack.Marshal(pubsub.EventMessage{Type: pubsub.EventNotifySchedule, EventID: "ev1"})
	require.NoError(t, err)
	envelope := map[string]any{
		"subscription": "sub1",
		"message":      map[string]string{"data": base64.StdEncoding.EncodeToString(payload)},
	}
	buf, _ := json.Marshal(envelope)

	req := httptest.NewRequest(http.MethodPost, "/notify-schedule", bytes.NewReader(buf))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Len(t, deps.notifier.SendScheduleNotificationCalls, 1)
	assert.Equal(t, "ev1", deps.notifier.SendScheduleNotificationCalls[0].Event.ID)
}

func TestNotifyScheduleHandler_BadEnvelope(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/notify-schedule", strings.NewReader("not json"))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
