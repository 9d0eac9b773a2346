package club

import (
	"database/sql"
	"sync"
)

// store handles all database operations for the club's player roster.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// PlayerInfo represents a player in the store.
type PlayerInfo struct {
	ID                         string `json:"id"`
	Name                       string `json:"name"`
	Rating                     int    `json:"rating"`
	GamesPlayed                int    `json:"games_played"`
	CalibrationEventsRemaining int    `json:"calibration_events_remaining"`
	NTRP                       string `json:"ntrp"`
}

// RatingHistoryEntry is one audit row of a player's rating trajectory,
// reconstructed from the rating changes written at event finish.
type RatingHistoryEntry struct {
	EventID   string `json:"event_id"`
	MatchID   string `json:"match_id"`
	OldRating int    `json:"old_rating"`
	Delta     int    `json:"delta"`
	NewRating int    `json:"new_rating"`
	CreatedAt int64  `json:"created_at"`
}
