package club

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/court-call/internal/apperr"
	"github.com/mauv0809/court-call/internal/rating"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

// AddPlayer registers a new player with the default rating and calibration
// window. Existing players only get their name refreshed; rating state is
// owned by the event finish flow.
func (s *store) AddPlayer(playerID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return
	}

	if !exists {
		_, err := s.db.Exec(
			"INSERT INTO players (id, name, rating, games_played, calibration_events_remaining, ntrp) VALUES (?, ?, ?, 0, ?, ?)",
			playerID, name, rating.InitialRating, rating.CalibrationEvents, rating.NTRP(rating.InitialRating),
		)
		if err != nil {
			log.Error("Failed to add player", "error", err, "playerID", playerID)
		} else {
			log.Info("Added new player to the store", "playerID", playerID, "name", name)
		}
	} else {
		_, err := s.db.Exec("UPDATE players SET name = ? WHERE id = ?", name, playerID)
		if err != nil {
			log.Error("Failed to update player", "error", err, "playerID", playerID)
		}
	}
}

// UpsertPlayers bulk-inserts players, preserving rating state on conflict.
func (s *store) UpsertPlayers(players []PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO players (id, name, rating, games_played, calibration_events_remaining, ntrp)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range players {
		r := p.Rating
		if r == 0 {
			r = rating.InitialRating
		}
		ntrp := p.NTRP
		if ntrp == "" {
			ntrp = rating.NTRP(r)
		}
		if _, err := stmt.Exec(p.ID, p.Name, r, p.GamesPlayed, p.CalibrationEventsRemaining, ntrp); err != nil {
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func (s *store) GetPlayer(playerID string) (*PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		"SELECT id, name, rating, games_played, calibration_events_remaining, ntrp FROM players WHERE id = ?",
		playerID,
	)
	p, err := scanPlayer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("player %s not found", playerID)
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (s *store) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(playerIDs) == 0 {
		return []PlayerInfo{}, nil
	}

	query := "SELECT id, name, rating, games_played, calibration_events_remaining, ntrp FROM players WHERE id IN (?" +
		strings.Repeat(",?", len(playerIDs)-1) + ")"
	rows, err := s.db.Query(query, toAnySlice(playerIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	return collectPlayers(rows)
}

func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, rating, games_played, calibration_events_remaining, ntrp FROM players ORDER BY name")
	if err != nil {
		log.Error("Failed to query all players", "error", err)
		return nil, err
	}
	defer rows.Close()

	return collectPlayers(rows)
}

// Leaderboard returns all players ordered by rating, best first.
func (s *store) Leaderboard() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, rating, games_played, calibration_events_remaining, ntrp FROM players ORDER BY rating DESC, games_played DESC, name")
	if err != nil {
		log.Error("Failed to query leaderboard", "error", err)
		return nil, err
	}
	defer rows.Close()

	return collectPlayers(rows)
}

func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return false
	}
	return exists
}

// GetRatingHistory reconstructs a player's rating trajectory from the audit
// rows written at event finish, oldest first.
func (s *store) GetRatingHistory(playerID string) ([]RatingHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT event_id, match_id, old_rating, delta, new_rating, created_at
		FROM rating_changes
		WHERE player_id = ?
		ORDER BY created_at ASC, match_id ASC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	var history []RatingHistoryEntry
	for rows.Next() {
		var e RatingHistoryEntry
		if err := rows.Scan(&e.EventID, &e.MatchID, &e.OldRating, &e.Delta, &e.NewRating, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating change row: %w", err)
		}
		history = append(history, e)
	}
	return history, nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"rating_changes", "match_set_scores", "matches", "rounds", "registrations", "events", "players"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func scanPlayer(scanner interface{ Scan(...any) error }) (*PlayerInfo, error) {
	var p PlayerInfo
	var name sql.NullString
	if err := scanner.Scan(&p.ID, &name, &p.Rating, &p.GamesPlayed, &p.CalibrationEventsRemaining, &p.NTRP); err != nil {
		return nil, err
	}
	p.Name = name.String
	return &p, nil
}

func collectPlayers(rows *sql.Rows) ([]PlayerInfo, error) {
	var players []PlayerInfo
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func toAnySlice(s []string) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
