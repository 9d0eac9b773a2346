package rating

// Player carries the rating state the engine needs about one participant.
// The engine never mutates it; callers apply the returned changes.
type Player struct {
	ID                         string
	Rating                     int
	GamesPlayed                int
	CalibrationEventsRemaining int
}

// Change is the outcome of rating one player for one match. Delta is the
// applied delta, i.e. after the calibration multiplier.
type Change struct {
	PlayerID  string
	OldRating int
	Delta     int
	NewRating int
	NTRP      string
}

// InitialRating is the rating every new player starts with.
const InitialRating = 1000

// CalibrationEvents is the number of events during which a player's rating
// changes are doubled.
const CalibrationEvents = 5
