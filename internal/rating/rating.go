package rating

import "math"

// KFactor returns the Elo sensitivity for a player with the given number of
// played games. Newer players move faster.
func KFactor(gamesPlayed int) int {
	switch {
	case gamesPlayed < 10:
		return 48
	case gamesPlayed < 30:
		return 32
	default:
		return 20
	}
}

// roundHalf rounds half away from zero. All rounding in the engine goes
// through here so rating changes are exactly reproducible.
func roundHalf(x float64) int {
	if x < 0 {
		return -int(math.Floor(-x + 0.5))
	}
	return int(math.Floor(x + 0.5))
}

// TeamRating is the rounded average of two teammates' ratings.
func TeamRating(r1, r2 int) int {
	return roundHalf(float64(r1+r2) / 2)
}

// Expected is the classic Elo expected score for team A against team B.
func Expected(teamA, teamB int) float64 {
	return 1 / (1 + math.Pow(10, float64(teamB-teamA)/400))
}

// Outcome compares two totals (points, or sets won) and returns team A's
// score: 1 for a win, 0.5 for a draw, 0 for a loss.
func Outcome(totalA, totalB int) float64 {
	switch {
	case totalA > totalB:
		return 1
	case totalA < totalB:
		return 0
	default:
		return 0.5
	}
}

// TeamDelta computes the rating points team A gains (or loses) for the match.
// Team B's delta is the exact negation.
func TeamDelta(k int, score, expected float64) int {
	return roundHalf(float64(k) * (score - expected))
}

// SplitDelta divides a team delta between two teammates without rounding
// loss. When the delta is odd, the extra point goes to whichever teammate has
// played fewer (or equal) games, so newer players calibrate faster.
// d1+d2 == delta holds exactly.
func SplitDelta(delta, games1, games2 int) (d1, d2 int) {
	half := delta / 2
	rem := delta - 2*half
	if games1 <= games2 {
		return half + rem, half
	}
	return half, half + rem
}

// applied doubles a delta for players still inside their calibration window.
func applied(delta, calibrationRemaining int) int {
	if calibrationRemaining > 0 {
		return delta * 2
	}
	return delta
}

// NTRP maps a rating to its display band.
func NTRP(r int) string {
	switch {
	case r < 750:
		return "2.0"
	case r < 900:
		return "2.5"
	case r < 1050:
		return "3.0"
	case r < 1200:
		return "3.5"
	case r < 1350:
		return "4.0"
	case r < 1500:
		return "4.5"
	case r < 1650:
		return "5.0"
	default:
		return "5.5"
	}
}

// RateMatch rates a single finished doubles match. scoreA is team A's outcome
// as produced by Outcome. The returned changes are ordered a1, a2, b1, b2;
// each carries the applied delta and the floored new rating.
func RateMatch(a1, a2, b1, b2 Player, scoreA float64) []Change {
	teamA := TeamRating(a1.Rating, a2.Rating)
	teamB := TeamRating(b1.Rating, b2.Rating)

	k := roundHalf(float64(KFactor(a1.GamesPlayed)+KFactor(a2.GamesPlayed)) / 2)

	deltaA := TeamDelta(k, scoreA, Expected(teamA, teamB))
	deltaB := -deltaA

	dA1, dA2 := SplitDelta(deltaA, a1.GamesPlayed, a2.GamesPlayed)
	dB1, dB2 := SplitDelta(deltaB, b1.GamesPlayed, b2.GamesPlayed)

	return []Change{
		change(a1, dA1),
		change(a2, dA2),
		change(b1, dB1),
		change(b2, dB2),
	}
}

func change(p Player, delta int) Change {
	d := applied(delta, p.CalibrationEventsRemaining)
	newRating := p.Rating + d
	if newRating < 0 {
		newRating = 0
	}
	return Change{
		PlayerID:  p.ID,
		OldRating: p.Rating,
		Delta:     d,
		NewRating: newRating,
		NTRP:      NTRP(newRating),
	}
}
