package planner

// Mode selects the pairing policy for an event.
type Mode string

const (
	// ModeRoundRobin maximizes rotation with no team-balance cap.
	ModeRoundRobin Mode = "ROUND_ROBIN"
	// ModeBalanced caps the rating gap between the two teams of a match.
	ModeBalanced Mode = "BALANCED"
)

// Player is one entry of the rating pool handed to the planner.
type Player struct {
	ID     string
	Rating int
}

// Match is four distinct players split into two teams on a court.
type Match struct {
	Court int
	TeamA [2]string
	TeamB [2]string
}

// Round is one planning pass over the pool.
type Round struct {
	Number  int
	Matches []Match
}

// pairKey identifies an unordered player pair.
type pairKey struct {
	a, b string
}

func keyFor(p1, p2 string) pairKey {
	if p1 < p2 {
		return pairKey{p1, p2}
	}
	return pairKey{p2, p1}
}

// session holds the counters that persist across rounds within a single
// PlanRounds invocation: partner and opponent repeats, rounds played per
// player (bye rotation) and per-player court usage (court spreading).
type session struct {
	partners  map[pairKey]int
	opponents map[pairKey]int
	rounds    map[string]int
	courtUse  map[string]map[int]int
}

func newSession() *session {
	return &session{
		partners:  make(map[pairKey]int),
		opponents: make(map[pairKey]int),
		rounds:    make(map[string]int),
		courtUse:  make(map[string]map[int]int),
	}
}
