package club_test

import (
	"database/sql"
	"testing"

	"github.com/mauv0809/court-call/internal/club"
	"github.com/mauv0809/court-call/internal/database"
	"github.com/mauv0809/court-call/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (club.ClubStore, *sql.DB, func()) {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	return club.New(db), db, teardown
}

func TestAddPlayer(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("U123", "Alice")

	p, err := store.GetPlayer("U123")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, rating.InitialRating, p.Rating)
	assert.Equal(t, rating.CalibrationEvents, p.CalibrationEventsRemaining)
	assert.Equal(t, 0, p.GamesPlayed)
	assert.Equal(t, "3.0", p.NTRP)
}

func TestAddPlayerPreservesRatingState(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("U123", "Alice")
	_, err := db.Exec("UPDATE players SET rating = 1200, games_played = 9 WHERE id = ?", "U123")
	require.NoError(t, err)

	// Re-adding only refreshes the display name.
	store.AddPlayer("U123", "Alice B.")

	p, err := store.GetPlayer("U123")
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", p.Name)
	assert.Equal(t, 1200, p.Rating)
	assert.Equal(t, 9, p.GamesPlayed)
}

func TestUpsertPlayers(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	err := store.UpsertPlayers([]club.PlayerInfo{
		{ID: "U1", Name: "Alice", Rating: 1180, GamesPlayed: 22},
		{ID: "U2", Name: "Bob"},
	})
	require.NoError(t, err)

	p1, err := store.GetPlayer("U1")
	require.NoError(t, err)
	assert.Equal(t, 1180, p1.Rating)
	assert.Equal(t, "3.5", p1.NTRP)

	// Zero rating falls back to the default.
	p2, err := store.GetPlayer("U2")
	require.NoError(t, err)
	assert.Equal(t, rating.InitialRating, p2.Rating)

	// A second upsert keeps the stored rating and only renames.
	err = store.UpsertPlayers([]club.PlayerInfo{{ID: "U1", Name: "Alice B.", Rating: 1}})
	require.NoError(t, err)
	p1, err = store.GetPlayer("U1")
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", p1.Name)
	assert.Equal(t, 1180, p1.Rating)
}

func TestGetPlayerNotFound(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	_, err := store.GetPlayer("ghost")
	assert.Error(t, err)
}

func TestGetPlayers(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("U1", "Alice")
	store.AddPlayer("U2", "Bob")
	store.AddPlayer("U3", "Carol")

	players, err := store.GetPlayers([]string{"U1", "U3", "ghost"})
	require.NoError(t, err)
	assert.Len(t, players, 2)

	players, err = store.GetPlayers(nil)
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestLeaderboardOrdering(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	err := store.UpsertPlayers([]club.PlayerInfo{
		{ID: "U1", Name: "Alice", Rating: 1100, GamesPlayed: 5},
		{ID: "U2", Name: "Bob", Rating: 1250, GamesPlayed: 2},
		{ID: "U3", Name: "Carol", Rating: 1100, GamesPlayed: 9},
	})
	require.NoError(t, err)

	board, err := store.Leaderboard()
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "U2", board[0].ID)
	// Ties break on games played, more experience first.
	assert.Equal(t, "U3", board[1].ID)
	assert.Equal(t, "U1", board[2].ID)
}

func TestIsKnownPlayer(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("U1", "Alice")
	assert.True(t, store.IsKnownPlayer("U1"))
	assert.False(t, store.IsKnownPlayer("ghost"))
}

func TestGetRatingHistory(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("U1", "Alice")
	_, err := db.Exec(`
		INSERT INTO events (id, author_id, name, status, courts_count, pairing_mode, scoring_mode,
			points_per_player, sets_per_match, games_per_set, auto_rounds, rounds_planned,
			start_time, end_time, created_at, updated_at)
		VALUES ('e1', 'U1', 'Evening', 'FINISHED', 1, 'random', 'points', 24, 0, 0, 0, 1, 0, 0, 0, 0)
	`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO rounds (id, event_id, number) VALUES ('r1', 'e1', 1)`)
	require.NoError(t, err)
	for _, match := range []string{"m1", "m2"} {
		_, err = db.Exec(`
			INSERT INTO matches (id, event_id, round_id, round_number, court_number,
				team_a_player1, team_a_player2, team_b_player1, team_b_player2)
			VALUES (?, 'e1', 'r1', 1, 1, 'U1', 'U1', 'U1', 'U1')
		`, match)
		require.NoError(t, err)
	}
	for i, row := range []struct {
		id, match string
		old, d    int
	}{
		{"rc1", "m1", 1000, 8},
		{"rc2", "m2", 1008, -4},
	} {
		_, err := db.Exec(`
			INSERT INTO rating_changes (id, event_id, match_id, player_id, old_rating, delta, new_rating, created_at)
			VALUES (?, 'e1', ?, 'U1', ?, ?, ?, ?)
		`, row.id, row.match, row.old, row.d, row.old+row.d, 1700000000+i)
		require.NoError(t, err)
	}

	history, err := store.GetRatingHistory("U1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "m1", history[0].MatchID)
	assert.Equal(t, 1008, history[0].NewRating)
	assert.Equal(t, -4, history[1].Delta)
	assert.Equal(t, 1004, history[1].NewRating)

	history, err = store.GetRatingHistory("ghost")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestClear(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	store.AddPlayer("U1", "Alice")
	store.Clear()

	players, err := store.GetAllPlayers()
	require.NoError(t, err)
	assert.Empty(t, players)
}
