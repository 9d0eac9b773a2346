package event

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/court-call/internal/apperr"
)

// cancelDeadline is how long before event start a registration can still be
// cancelled unilaterally. Inside the window the author has to approve.
const cancelDeadline = 24 * time.Hour

// New creates a new EventService backed by db.
func New(db *sql.DB) EventService {
	return &store{
		db:  db,
		now: time.Now,
	}
}

// NewWithClock creates an EventService with an injected clock. Useful for
// tests that need to sit on either side of the cancellation deadline.
func NewWithClock(db *sql.DB, now func() time.Time) EventService {
	return &store{
		db:  db,
		now: now,
	}
}

// requireAuthor guards author-only operations.
func requireAuthor(ev *Event, callerID string) error {
	if ev.AuthorID != callerID {
		return apperr.Forbidden("player %s is not the author of event %s", callerID, ev.ID)
	}
	return nil
}

// CreateEvent validates the configuration and creates a new event open for
// registration.
func (s *store) CreateEvent(cfg EventConfig, creatorID string) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !cfg.StartTime.After(now) {
		return nil, apperr.Validation("event start must be in the future")
	}
	if !cfg.EndTime.After(cfg.StartTime) {
		return nil, apperr.Validation("event end must be after its start")
	}
	if cfg.CourtsCount <= 0 {
		return nil, apperr.Validation("courts count must be positive, got %d", cfg.CourtsCount)
	}
	if cfg.PointsPerPlayer <= 0 {
		return nil, apperr.Validation("points per player must be positive, got %d", cfg.PointsPerPlayer)
	}
	if cfg.SetsPerMatch <= 0 {
		return nil, apperr.Validation("sets per match must be positive, got %d", cfg.SetsPerMatch)
	}
	if cfg.GamesPerSet <= 0 {
		return nil, apperr.Validation("games per set must be positive, got %d", cfg.GamesPerSet)
	}
	switch cfg.PairingMode {
	case PairingRoundRobin, PairingBalanced:
	default:
		return nil, apperr.Validation("unknown pairing mode %q", cfg.PairingMode)
	}
	switch cfg.ScoringMode {
	case ScoringSets, ScoringPoints:
	default:
		return nil, apperr.Validation("unknown scoring mode %q", cfg.ScoringMode)
	}
	if !cfg.AutoRounds && cfg.RoundsPlanned <= 0 {
		return nil, apperr.Validation("rounds planned must be positive when auto rounds is off")
	}
	if !s.playerExists(creatorID) {
		return nil, apperr.NotFound("player %s not found", creatorID)
	}

	ev := &Event{
		ID:              uuid.New().String(),
		AuthorID:        creatorID,
		Name:            cfg.Name,
		Status:          StatusOpen,
		CourtsCount:     cfg.CourtsCount,
		PairingMode:     cfg.PairingMode,
		ScoringMode:     cfg.ScoringMode,
		PointsPerPlayer: cfg.PointsPerPlayer,
		SetsPerMatch:    cfg.SetsPerMatch,
		GamesPerSet:     cfg.GamesPerSet,
		AutoRounds:      cfg.AutoRounds,
		RoundsPlanned:   cfg.RoundsPlanned,
		StartTime:       cfg.StartTime,
		EndTime:         cfg.EndTime,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	// In POINTS mode the whole match is a single "set" row carrying the
	// point split.
	if ev.ScoringMode == ScoringPoints {
		ev.SetsPerMatch = 1
	}
	if ev.AutoRounds {
		ev.RoundsPlanned = 0 // recomputed at start time
	}

	_, err := s.db.Exec(`
		INSERT INTO events (
			id, author_id, name, status, courts_count, pairing_mode, scoring_mode,
			points_per_player, sets_per_match, games_per_set, auto_rounds,
			rounds_planned, max_team_diff, start_time, end_time, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?, ?, ?)
	`,
		ev.ID, ev.AuthorID, ev.Name, string(ev.Status), ev.CourtsCount, string(ev.PairingMode),
		string(ev.ScoringMode), ev.PointsPerPlayer, ev.SetsPerMatch, ev.GamesPerSet,
		boolToInt(ev.AutoRounds), ev.RoundsPlanned, ev.StartTime.Unix(), ev.EndTime.Unix(),
		ev.CreatedAt.Unix(), ev.UpdatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	log.Info("Created event", "eventID", ev.ID, "author", creatorID, "courts", ev.CourtsCount, "pairing", ev.PairingMode)
	return ev, nil
}

// Register signs a player up while registration is open. A previously
// cancelled registration is reactivated; an active one is a no-op.
func (s *store) Register(eventID, playerID string) (*Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	if ev.Status != StatusOpen {
		return nil, apperr.Conflict("event %s is not open for registration", eventID)
	}
	if !s.playerExists(playerID) {
		return nil, apperr.NotFound("player %s not found", playerID)
	}

	reg, err := s.getRegistration(eventID, playerID)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}
	now := s.now()

	if reg == nil {
		reg = &Registration{
			EventID:      eventID,
			PlayerID:     playerID,
			Status:       RegStatusRegistered,
			RegisteredAt: now,
		}
		_, err = s.db.Exec(`
			INSERT INTO registrations (event_id, player_id, status, cancel_requested, cancel_approved, cancel_requested_at, registered_at)
			VALUES (?, ?, ?, 0, 0, NULL, ?)
		`, eventID, playerID, string(RegStatusRegistered), now.Unix())
		if err != nil {
			return nil, fmt.Errorf("failed to insert registration: %w", err)
		}
		log.Info("Registered player", "eventID", eventID, "playerID", playerID)
		return reg, nil
	}

	if reg.Status == RegStatusRegistered {
		return reg, nil
	}

	// Reactivate the cancelled row instead of duplicating it.
	_, err = s.db.Exec(`
		UPDATE registrations
		SET status = ?, cancel_requested = 0, cancel_approved = 0, cancel_requested_at = NULL, registered_at = ?
		WHERE event_id = ? AND player_id = ?
	`, string(RegStatusRegistered), now.Unix(), eventID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to reactivate registration: %w", err)
	}
	log.Info("Reactivated registration", "eventID", eventID, "playerID", playerID)
	return s.getRegistration(eventID, playerID)
}

// CloseRegistration freezes the participant list. Author-only; requires
// enough registered players to fill every court.
func (s *store) CloseRegistration(eventID, callerID string) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(ev, callerID); err != nil {
		return nil, err
	}
	if ev.Status == StatusClosed {
		return ev, nil
	}
	if !canTransition(ev.Status, StatusClosed) {
		return nil, apperr.Conflict("event %s cannot close registration from status %s", eventID, ev.Status)
	}

	registered, err := s.registeredCount(eventID)
	if err != nil {
		return nil, err
	}
	if registered < ev.Capacity() {
		return nil, apperr.Conflict("event %s needs %d players to close registration, %d are missing",
			eventID, ev.Capacity(), ev.Capacity()-registered)
	}

	if err := s.setStatus(eventID, ev.Status, StatusClosed); err != nil {
		return nil, err
	}
	ev.Status = StatusClosed
	log.Info("Closed registration", "eventID", eventID, "registered", registered)
	return ev, nil
}

// CancelRegistration cancels the caller's registration. Outside the 24h
// window (or for the author) cancellation is immediate; inside it the row is
// flagged and waits for author approval.
func (s *store) CancelRegistration(eventID, callerID string) (CancelOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.getEvent(eventID)
	if err != nil {
		return "", err
	}
	if ev.Status != StatusOpen && ev.Status != StatusClosed {
		return "", apperr.Conflict("event %s no longer accepts registration changes", eventID)
	}

	reg, err := s.getRegistration(eventID, callerID)
	if err != nil {
		return "", err
	}
	if reg.Status == RegStatusCancelled {
		return CancelNoop, nil
	}

	now := s.now()
	deadline := ev.StartTime.Add(-cancelDeadline)
	if now.Before(deadline) || callerID == ev.AuthorID {
		_, err = s.db.Exec(`
			UPDATE registrations SET status = ?, cancel_requested = 0 WHERE event_id = ? AND player_id = ?
		`, string(RegStatusCancelled), eventID, callerID)
		if err != nil {
			return "", fmt.Errorf("failed to cancel registration: %w", err)
		}
		log.Info("Cancelled registration", "eventID", eventID, "playerID", callerID)
		return CancelImmediate, nil
	}

	_, err = s.db.Exec(`
		UPDATE registrations SET cancel_requested = 1, cancel_requested_at = ? WHERE event_id = ? AND player_id = ?
	`, now.Unix(), eventID, callerID)
	if err != nil {
		return "", fmt.Errorf("failed to request cancellation: %w", err)
	}
	log.Info("Cancellation requested inside deadline, awaiting author approval", "eventID", eventID, "playerID", callerID)
	return CancelPending, nil
}

// ApproveCancel lets the author approve a pending cancellation request.
func (s *store) ApproveCancel(eventID, callerID, playerID string) (*Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(ev, callerID); err != nil {
		return nil, err
	}

	reg, err := s.getRegistration(eventID, playerID)
	if err != nil {
		return nil, err
	}
	if !reg.CancelRequested {
		return nil, apperr.Conflict("player %s has no pending cancellation request for event %s", playerID, eventID)
	}

	_, err = s.db.Exec(`
		UPDATE registrations SET status = ?, cancel_requested = 0, cancel_approved = 1 WHERE event_id = ? AND player_id = ?
	`, string(RegStatusCancelled), eventID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to approve cancellation: %w", err)
	}
	log.Info("Approved cancellation", "eventID", eventID, "playerID", playerID)
	return s.getRegistration(eventID, playerID)
}

// GetEvent returns an event with its registrations and schedule.
func (s *store) GetEvent(eventID string) (*EventDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getEventDetail(eventID)
}

// ListEvents returns all events, newest first.
func (s *store) ListEvents() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(eventColumns + " FROM events ORDER BY start_time DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			log.Error("Failed to scan event row", "error", err)
			continue
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

const eventColumns = `SELECT id, author_id, name, status, courts_count, pairing_mode, scoring_mode,
	points_per_player, sets_per_match, games_per_set, auto_rounds, rounds_planned,
	max_team_diff, start_time, end_time, created_at, updated_at`

func (s *store) getEvent(eventID string) (*Event, error) {
	row := s.db.QueryRow(eventColumns+" FROM events WHERE id = ?", eventID)
	ev, err := scanEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("event %s not found", eventID)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return ev, nil
}

func scanEvent(scanner interface{ Scan(...any) error }) (*Event, error) {
	var ev Event
	var status, pairing, scoring string
	var autoRounds int
	var maxTeamDiff sql.NullInt64
	var start, end, created, updated int64

	err := scanner.Scan(
		&ev.ID, &ev.AuthorID, &ev.Name, &status, &ev.CourtsCount, &pairing, &scoring,
		&ev.PointsPerPlayer, &ev.SetsPerMatch, &ev.GamesPerSet, &autoRounds, &ev.RoundsPlanned,
		&maxTeamDiff, &start, &end, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	ev.Status = Status(status)
	ev.PairingMode = PairingMode(pairing)
	ev.ScoringMode = ScoringMode(scoring)
	ev.AutoRounds = autoRounds != 0
	if maxTeamDiff.Valid {
		diff := int(maxTeamDiff.Int64)
		ev.MaxTeamDiff = &diff
	}
	ev.StartTime = time.Unix(start, 0)
	ev.EndTime = time.Unix(end, 0)
	ev.CreatedAt = time.Unix(created, 0)
	ev.UpdatedAt = time.Unix(updated, 0)
	return &ev, nil
}

func (s *store) getRegistration(eventID, playerID string) (*Registration, error) {
	row := s.db.QueryRow(`
		SELECT event_id, player_id, status, cancel_requested, cancel_approved, cancel_requested_at, registered_at
		FROM registrations WHERE event_id = ? AND player_id = ?
	`, eventID, playerID)

	reg, err := scanRegistration(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("player %s is not registered for event %s", playerID, eventID)
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return reg, nil
}

func scanRegistration(scanner interface{ Scan(...any) error }) (*Registration, error) {
	var reg Registration
	var status string
	var cancelRequested, cancelApproved int
	var cancelRequestedAt sql.NullInt64
	var registeredAt int64

	err := scanner.Scan(&reg.EventID, &reg.PlayerID, &status, &cancelRequested, &cancelApproved, &cancelRequestedAt, &registeredAt)
	if err != nil {
		return nil, err
	}

	reg.Status = RegistrationStatus(status)
	reg.CancelRequested = cancelRequested != 0
	reg.CancelApproved = cancelApproved != 0
	if cancelRequestedAt.Valid {
		t := time.Unix(cancelRequestedAt.Int64, 0)
		reg.CancelRequestedAt = &t
	}
	reg.RegisteredAt = time.Unix(registeredAt, 0)
	return &reg, nil
}

func (s *store) registeredCount(eventID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM registrations WHERE event_id = ? AND status = ?",
		eventID, string(RegStatusRegistered),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return n, nil
}

// setStatus performs a conditional status update so concurrent transitions
// out of the same status cannot both succeed.
func (s *store) setStatus(eventID string, from, to Status) error {
	res, err := s.db.Exec(
		"UPDATE events SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		string(to), s.now().Unix(), eventID, string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return apperr.Conflict("event %s changed status concurrently", eventID)
	}
	return nil
}

func (s *store) playerExists(playerID string) bool {
	var exists bool
	if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists); err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return false
	}
	return exists
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
