package event

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/court-call/internal/apperr"
	"github.com/mauv0809/court-call/internal/planner"
)

// StartEvent generates the schedule and moves the event to IN_PROGRESS.
// Author-only. The transition out of REGISTRATION_CLOSED is exactly-once: a
// concurrent start loses on the conditional status update and gets a
// conflict.
func (s *store) StartEvent(eventID, callerID string) (*EventDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(ev, callerID); err != nil {
		return nil, err
	}
	if ev.Status == StatusInProgress {
		return s.getEventDetail(eventID)
	}
	if !canTransition(ev.Status, StatusInProgress) {
		return nil, apperr.Conflict("event %s cannot start from status %s", eventID, ev.Status)
	}

	pool, err := s.registeredPool(eventID)
	if err != nil {
		return nil, err
	}
	if len(pool) < ev.Capacity() {
		return nil, apperr.Conflict("event %s needs %d players to start, has %d", eventID, ev.Capacity(), len(pool))
	}

	roundsPlanned := ev.RoundsPlanned
	if ev.AutoRounds {
		roundsPlanned = planner.DefaultRounds(ev.PairingMode.plannerMode(), ev.Capacity(), pool)
	}

	maxTeamDiff := 0
	var maxTeamDiffCol sql.NullInt64
	if ev.PairingMode == PairingBalanced {
		maxTeamDiff = planner.TeamDiffCap(pool)
		maxTeamDiffCol = sql.NullInt64{Int64: int64(maxTeamDiff), Valid: true}
	}

	rounds, err := planner.PlanRounds(pool, ev.CourtsCount, ev.PairingMode.plannerMode(), maxTeamDiff, roundsPlanned)
	if err != nil {
		return nil, fmt.Errorf("failed to plan rounds: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Defensive cleanup of any stale schedule.
	if _, err := tx.Exec("DELETE FROM match_set_scores WHERE match_id IN (SELECT id FROM matches WHERE event_id = ?)", eventID); err != nil {
		return nil, fmt.Errorf("failed to clear stale scores: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM matches WHERE event_id = ?", eventID); err != nil {
		return nil, fmt.Errorf("failed to clear stale matches: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM rounds WHERE event_id = ?", eventID); err != nil {
		return nil, fmt.Errorf("failed to clear stale rounds: %w", err)
	}

	for _, round := range rounds {
		roundID := uuid.New().String()
		if _, err := tx.Exec("INSERT INTO rounds (id, event_id, number) VALUES (?, ?, ?)", roundID, eventID, round.Number); err != nil {
			return nil, fmt.Errorf("failed to insert round %d: %w", round.Number, err)
		}
		for _, m := range round.Matches {
			_, err := tx.Exec(`
				INSERT INTO matches (id, event_id, round_id, round_number, court_number,
					team_a_player1, team_a_player2, team_b_player1, team_b_player2, status)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, uuid.New().String(), eventID, roundID, round.Number, m.Court,
				m.TeamA[0], m.TeamA[1], m.TeamB[0], m.TeamB[1], string(MatchScheduled))
			if err != nil {
				return nil, fmt.Errorf("failed to insert match: %w", err)
			}
		}
	}

	res, err := tx.Exec(`
		UPDATE events SET status = ?, rounds_planned = ?, max_team_diff = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(StatusInProgress), roundsPlanned, maxTeamDiffCol, s.now().Unix(), eventID, string(StatusClosed))
	if err != nil {
		return nil, fmt.Errorf("failed to transition event: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	} else if n == 0 {
		return nil, apperr.Conflict("event %s was started concurrently", eventID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit schedule: %w", err)
	}

	log.Info("Started event", "eventID", eventID, "rounds", roundsPlanned, "players", len(pool), "maxTeamDiff", maxTeamDiff)
	return s.getEventDetail(eventID)
}

// registeredPool loads the rating pool of actively registered players,
// ordered by player id for deterministic planning.
func (s *store) registeredPool(eventID string) ([]planner.Player, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.rating
		FROM registrations r
		JOIN players p ON p.id = r.player_id
		WHERE r.event_id = ? AND r.status = ?
		ORDER BY p.id
	`, eventID, string(RegStatusRegistered))
	if err != nil {
		return nil, fmt.Errorf("failed to query registered pool: %w", err)
	}
	defer rows.Close()

	var pool []planner.Player
	for rows.Next() {
		var p planner.Player
		if err := rows.Scan(&p.ID, &p.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan pool row: %w", err)
		}
		pool = append(pool, p)
	}
	return pool, rows.Err()
}

func (s *store) getEventDetail(eventID string) (*EventDetail, error) {
	ev, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}

	regs, err := s.listRegistrations(eventID)
	if err != nil {
		return nil, err
	}
	rounds, err := s.listRounds(eventID)
	if err != nil {
		return nil, err
	}

	return &EventDetail{Event: *ev, Registrations: regs, Rounds: rounds}, nil
}

func (s *store) listRegistrations(eventID string) ([]Registration, error) {
	rows, err := s.db.Query(`
		SELECT event_id, player_id, status, cancel_requested, cancel_approved, cancel_requested_at, registered_at
		FROM registrations WHERE event_id = ? ORDER BY registered_at, player_id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	var regs []Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

func (s *store) listRounds(eventID string) ([]Round, error) {
	rows, err := s.db.Query("SELECT id, event_id, number FROM rounds WHERE event_id = ? ORDER BY number", eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	var rounds []Round
	byID := make(map[string]int)
	for rows.Next() {
		var r Round
		if err := rows.Scan(&r.ID, &r.EventID, &r.Number); err != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", err)
		}
		byID[r.ID] = len(rounds)
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	matches, err := s.listMatches(eventID)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if idx, ok := byID[m.RoundID]; ok {
			rounds[idx].Matches = append(rounds[idx].Matches, m)
		}
	}
	return rounds, nil
}

func (s *store) listMatches(eventID string) ([]Match, error) {
	rows, err := s.db.Query(`
		SELECT id, event_id, round_id, round_number, court_number,
			team_a_player1, team_a_player2, team_b_player1, team_b_player2, status
		FROM matches WHERE event_id = ? ORDER BY round_number, court_number
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range matches {
		scores, err := s.listScores(matches[i].ID)
		if err != nil {
			return nil, err
		}
		matches[i].Scores = scores
	}
	return matches, nil
}

func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	var status string
	err := scanner.Scan(
		&m.ID, &m.EventID, &m.RoundID, &m.RoundNumber, &m.CourtNumber,
		&m.TeamA[0], &m.TeamA[1], &m.TeamB[0], &m.TeamB[1], &status,
	)
	if err != nil {
		return nil, err
	}
	m.Status = MatchStatus(status)
	return &m, nil
}

func (s *store) getMatch(matchID string) (*Match, error) {
	row := s.db.QueryRow(`
		SELECT id, event_id, round_id, round_number, court_number,
			team_a_player1, team_a_player2, team_b_player1, team_b_player2, status
		FROM matches WHERE id = ?
	`, matchID)
	m, err := scanMatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("match %s not found", matchID)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	scores, err := s.listScores(m.ID)
	if err != nil {
		return nil, err
	}
	m.Scores = scores
	return m, nil
}

func (s *store) listScores(matchID string) ([]SetScore, error) {
	rows, err := s.db.Query(
		"SELECT set_number, team_a_games, team_b_games FROM match_set_scores WHERE match_id = ? ORDER BY set_number",
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query set scores: %w", err)
	}
	defer rows.Close()

	var scores []SetScore
	for rows.Next() {
		var sc SetScore
		if err := rows.Scan(&sc.SetNumber, &sc.TeamAGames, &sc.TeamBGames); err != nil {
			return nil, fmt.Errorf("failed to scan set score row: %w", err)
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}
