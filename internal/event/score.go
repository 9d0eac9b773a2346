package event

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/court-call/internal/apperr"
	"github.com/mauv0809/court-call/internal/rating"
)

// SubmitScore validates and records a match result. Any previously recorded
// sets are replaced wholesale; the match is marked finished. Author-only and
// only while the event is in progress.
func (s *store) SubmitScore(matchID, callerID string, input ScoreInput) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.getMatch(matchID)
	if err != nil {
		return nil, err
	}
	ev, err := s.getEvent(m.EventID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(ev, callerID); err != nil {
		return nil, err
	}
	if ev.Status != StatusInProgress {
		return nil, apperr.Conflict("event %s is not in progress", ev.ID)
	}

	scores, err := validateScore(ev, input)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Full overwrite, not merge.
	if _, err := tx.Exec("DELETE FROM match_set_scores WHERE match_id = ?", matchID); err != nil {
		return nil, fmt.Errorf("failed to clear prior scores: %w", err)
	}
	for _, sc := range scores {
		_, err := tx.Exec(
			"INSERT INTO match_set_scores (match_id, set_number, team_a_games, team_b_games) VALUES (?, ?, ?, ?)",
			matchID, sc.SetNumber, sc.TeamAGames, sc.TeamBGames,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert set score: %w", err)
		}
	}
	if _, err := tx.Exec("UPDATE matches SET status = ? WHERE id = ?", string(MatchFinished), matchID); err != nil {
		return nil, fmt.Errorf("failed to mark match finished: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit score: %w", err)
	}

	log.Info("Recorded score", "matchID", matchID, "eventID", ev.ID, "sets", len(scores))
	return s.getMatch(matchID)
}

// validateScore turns a submission into set rows according to the event's
// scoring mode.
func validateScore(ev *Event, input ScoreInput) ([]SetScore, error) {
	switch ev.ScoringMode {
	case ScoringPoints:
		var a, b int
		switch {
		case input.PointsA != nil && input.PointsB != nil:
			a, b = *input.PointsA, *input.PointsB
		case len(input.Sets) == 1:
			a, b = input.Sets[0].TeamAGames, input.Sets[0].TeamBGames
		default:
			return nil, apperr.Validation("points mode requires a points pair or exactly one set")
		}
		if a < 0 || b < 0 {
			return nil, apperr.Validation("points must not be negative")
		}
		if total := ev.PointsPerPlayer * 4; a+b != total {
			return nil, apperr.Validation("points must sum to %d, got %d", total, a+b)
		}
		return []SetScore{{SetNumber: 1, TeamAGames: a, TeamBGames: b}}, nil

	case ScoringSets:
		if len(input.Sets) == 0 {
			return nil, apperr.Validation("sets mode requires at least one set")
		}
		if len(input.Sets) > ev.SetsPerMatch {
			return nil, apperr.Validation("at most %d sets allowed, got %d", ev.SetsPerMatch, len(input.Sets))
		}
		scores := make([]SetScore, 0, len(input.Sets))
		for i, set := range input.Sets {
			if set.TeamAGames < 0 || set.TeamBGames < 0 {
				return nil, apperr.Validation("set %d has negative games", i+1)
			}
			scores = append(scores, SetScore{SetNumber: i + 1, TeamAGames: set.TeamAGames, TeamBGames: set.TeamBGames})
		}
		return scores, nil

	default:
		return nil, apperr.Validation("unknown scoring mode %q", ev.ScoringMode)
	}
}

// GetSummary returns an event together with its recorded rating changes.
// The change list is empty until the event finishes.
func (s *store) GetSummary(eventID string) (*EventSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	changes, err := s.listRatingChanges(eventID)
	if err != nil {
		return nil, err
	}
	return &EventSummary{Event: *ev, Changes: changes}, nil
}

// FinishEvent rates every match, applies the deltas and the per-event
// calibration decrement to all participants, and closes the event. Requires
// every match to be finished with a recorded score.
func (s *store) FinishEvent(eventID, callerID string) (*EventSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(ev, callerID); err != nil {
		return nil, err
	}
	if ev.Status == StatusFinished {
		changes, err := s.listRatingChanges(eventID)
		if err != nil {
			return nil, err
		}
		return &EventSummary{Event: *ev, Changes: changes}, nil
	}
	if !canTransition(ev.Status, StatusFinished) {
		return nil, apperr.Conflict("event %s cannot finish from status %s", eventID, ev.Status)
	}

	matches, err := s.listMatches(eventID)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, apperr.Conflict("event %s has no matches to rate", eventID)
	}
	remaining := 0
	for _, m := range matches {
		if m.Status != MatchFinished || len(m.Scores) == 0 {
			remaining++
		}
	}
	if remaining > 0 {
		return nil, apperr.Conflict("event %s still has %d unscored matches", eventID, remaining)
	}

	states, err := s.loadPlayerStates(matches)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var changes []RatingChange
	for _, m := range matches {
		totalA, totalB := matchTotals(ev, m)
		scoreA := rating.Outcome(totalA, totalB)

		a1, a2 := states[m.TeamA[0]], states[m.TeamA[1]]
		b1, b2 := states[m.TeamB[0]], states[m.TeamB[1]]
		matchChanges := rating.RateMatch(*a1, *a2, *b1, *b2, scoreA)

		for _, c := range matchChanges {
			changes = append(changes, RatingChange{
				ID:        uuid.New().String(),
				EventID:   eventID,
				MatchID:   m.ID,
				PlayerID:  c.PlayerID,
				OldRating: c.OldRating,
				Delta:     c.Delta,
				NewRating: c.NewRating,
				CreatedAt: now,
			})
			state := states[c.PlayerID]
			state.Rating = c.NewRating
			state.GamesPlayed++
		}
	}

	// Calibration burns down once per event, no matter how many matches a
	// player got through.
	for _, state := range states {
		if state.CalibrationEventsRemaining > 0 {
			state.CalibrationEventsRemaining--
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range changes {
		_, err := tx.Exec(`
			INSERT INTO rating_changes (id, event_id, match_id, player_id, old_rating, delta, new_rating, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, c.EventID, c.MatchID, c.PlayerID, c.OldRating, c.Delta, c.NewRating, c.CreatedAt.Unix())
		if err != nil {
			return nil, fmt.Errorf("failed to insert rating change: %w", err)
		}
	}

	for _, state := range states {
		_, err := tx.Exec(`
			UPDATE players SET rating = ?, games_played = ?, calibration_events_remaining = ?, ntrp = ?
			WHERE id = ?
		`, state.Rating, state.GamesPlayed, state.CalibrationEventsRemaining, rating.NTRP(state.Rating), state.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to update player %s: %w", state.ID, err)
		}
	}

	res, err := tx.Exec(
		"UPDATE events SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		string(StatusFinished), now.Unix(), eventID, string(StatusInProgress),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to transition event: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	} else if n == 0 {
		return nil, apperr.Conflict("event %s was finished concurrently", eventID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rating pass: %w", err)
	}

	ev.Status = StatusFinished
	ev.UpdatedAt = now
	log.Info("Finished event", "eventID", eventID, "matches", len(matches), "ratingChanges", len(changes))
	return &EventSummary{Event: *ev, Changes: changes}, nil
}

// matchTotals derives the comparable totals for the outcome: point totals in
// POINTS mode, sets won per team in SETS mode.
func matchTotals(ev *Event, m Match) (int, int) {
	if ev.ScoringMode == ScoringPoints {
		sc := m.Scores[0]
		return sc.TeamAGames, sc.TeamBGames
	}
	setsA, setsB := 0, 0
	for _, sc := range m.Scores {
		switch {
		case sc.TeamAGames > sc.TeamBGames:
			setsA++
		case sc.TeamBGames > sc.TeamAGames:
			setsB++
		}
	}
	return setsA, setsB
}

// loadPlayerStates fetches the mutable rating state for every participant of
// the given matches.
func (s *store) loadPlayerStates(matches []Match) (map[string]*rating.Player, error) {
	states := make(map[string]*rating.Player)
	for _, m := range matches {
		for _, id := range []string{m.TeamA[0], m.TeamA[1], m.TeamB[0], m.TeamB[1]} {
			states[id] = nil
		}
	}

	for id := range states {
		var p rating.Player
		err := s.db.QueryRow(
			"SELECT id, rating, games_played, calibration_events_remaining FROM players WHERE id = ?", id,
		).Scan(&p.ID, &p.Rating, &p.GamesPlayed, &p.CalibrationEventsRemaining)
		if err != nil {
			return nil, fmt.Errorf("failed to load player %s: %w", id, err)
		}
		states[id] = &p
	}
	return states, nil
}

func (s *store) listRatingChanges(eventID string) ([]RatingChange, error) {
	rows, err := s.db.Query(`
		SELECT id, event_id, match_id, player_id, old_rating, delta, new_rating, created_at
		FROM rating_changes WHERE event_id = ? ORDER BY created_at, match_id, player_id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating changes: %w", err)
	}
	defer rows.Close()

	var changes []RatingChange
	for rows.Next() {
		var c RatingChange
		var created int64
		if err := rows.Scan(&c.ID, &c.EventID, &c.MatchID, &c.PlayerID, &c.OldRating, &c.Delta, &c.NewRating, &created); err != nil {
			return nil, fmt.Errorf("failed to scan rating change row: %w", err)
		}
		c.CreatedAt = time.Unix(created, 0)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
