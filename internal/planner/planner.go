package planner

import (
	"math"
	"sort"

	"github.com/mauv0809/court-call/internal/apperr"
)

// capacityPerCourt is the number of players a doubles court consumes.
const capacityPerCourt = 4

// disqualifyCost is added when a BALANCED match exceeds its team-diff cap,
// so such a split only wins when nothing legal exists.
const disqualifyCost = 1_000_000

// PlanRounds partitions the pool into the requested number of rounds of
// doubles matches. maxTeamDiff caps the rating gap between the two teams of a
// match in BALANCED mode; a value <= 0 means no cap.
//
// The planner is a bounded greedy heuristic: per round it picks the
// highest-rated unmatched player as an anchor, exhaustively tries every
// 3-player completion and team split, and keeps the cheapest candidate
// (first-found wins ties). Counters for repeated partners, repeated
// opponents, rounds played and court usage persist across rounds of one
// invocation and steer later picks.
func PlanRounds(pool []Player, courts int, mode Mode, maxTeamDiff, rounds int) ([]Round, error) {
	if courts <= 0 {
		return nil, apperr.Validation("courts count must be positive, got %d", courts)
	}
	if rounds <= 0 {
		return nil, apperr.Validation("rounds must be positive, got %d", rounds)
	}
	if len(pool) < capacityPerCourt {
		return nil, apperr.Validation("need at least %d players, got %d", capacityPerCourt, len(pool))
	}

	s := newSession()
	capacity := courts * capacityPerCourt

	out := make([]Round, 0, rounds)
	for n := 1; n <= rounds; n++ {
		selected := s.selectPlayers(pool, capacity)
		built := s.buildMatches(selected, courts, mode, maxTeamDiff)
		matches := s.assignCourts(built, courts)
		s.update(matches)
		out = append(out, Round{Number: n, Matches: matches})
	}
	return out, nil
}

// selectPlayers picks the round's participants. When the pool has more
// players than the courts can hold, those who sat out more rounds go first
// (fair bye rotation), tie-broken by descending rating.
func (s *session) selectPlayers(pool []Player, capacity int) []Player {
	sel := make([]Player, len(pool))
	copy(sel, pool)
	if len(sel) <= capacity {
		return sel
	}
	sort.SliceStable(sel, func(i, j int) bool {
		ri, rj := s.rounds[sel[i].ID], s.rounds[sel[j].ID]
		if ri != rj {
			return ri < rj
		}
		return sel[i].Rating > sel[j].Rating
	})
	return sel[:capacity]
}

// built is a formed match before court assignment.
type built struct {
	teamA [2]Player
	teamB [2]Player
}

func (s *session) buildMatches(selected []Player, courts int, mode Mode, maxTeamDiff int) []built {
	remaining := make([]Player, len(selected))
	copy(remaining, selected)
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Rating > remaining[j].Rating
	})

	var matches []built
	for len(matches) < courts && len(remaining) >= capacityPerCourt {
		anchor := remaining[0]
		rest := remaining[1:]

		bestCost := math.Inf(1)
		var best built
		for i := 0; i < len(rest)-2; i++ {
			for j := i + 1; j < len(rest)-1; j++ {
				for k := j + 1; k < len(rest); k++ {
					for split := 0; split < 3; split++ {
						cand := splitTeams(anchor, rest[i], rest[j], rest[k], split)
						cost := s.matchCost(cand, mode, maxTeamDiff)
						if cost < bestCost {
							bestCost = cost
							best = cand
						}
					}
				}
			}
		}

		matches = append(matches, best)
		remaining = without(remaining, best)
	}
	return matches
}

// splitTeams produces one of the three possible team splits of a quad:
// {(a,b)|(c,d)}, {(a,c)|(b,d)}, {(a,d)|(b,c)}.
func splitTeams(a, b, c, d Player, split int) built {
	switch split {
	case 0:
		return built{teamA: [2]Player{a, b}, teamB: [2]Player{c, d}}
	case 1:
		return built{teamA: [2]Player{a, c}, teamB: [2]Player{b, d}}
	default:
		return built{teamA: [2]Player{a, d}, teamB: [2]Player{b, c}}
	}
}

func without(players []Player, m built) []Player {
	used := map[string]bool{
		m.teamA[0].ID: true, m.teamA[1].ID: true,
		m.teamB[0].ID: true, m.teamB[1].ID: true,
	}
	out := players[:0]
	for _, p := range players {
		if !used[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// matchCost scores a candidate match. Lower is better. Team balance
// dominates, heavy penalties discourage repeated partners and (more mildly)
// repeated opponents, and a small bonus prefers skill-mixed teams.
func (s *session) matchCost(m built, mode Mode, maxTeamDiff int) float64 {
	sumA := m.teamA[0].Rating + m.teamA[1].Rating
	sumB := m.teamB[0].Rating + m.teamB[1].Rating
	balance := abs(sumA - sumB)

	cost := float64(balance)
	if mode == ModeBalanced && maxTeamDiff > 0 && balance > maxTeamDiff {
		cost += disqualifyCost
	}

	partnerRepeats := s.partners[keyFor(m.teamA[0].ID, m.teamA[1].ID)] +
		s.partners[keyFor(m.teamB[0].ID, m.teamB[1].ID)]
	cost += 5000 * float64(partnerRepeats)

	opponentRepeats := 0
	for _, a := range m.teamA {
		for _, b := range m.teamB {
			opponentRepeats += s.opponents[keyFor(a.ID, b.ID)]
		}
	}
	cost += 1000 * float64(opponentRepeats)

	cost -= 0.05 * float64(abs(m.teamA[0].Rating-m.teamA[1].Rating)+
		abs(m.teamB[0].Rating-m.teamB[1].Rating))

	return cost
}

// assignCourts spreads matches over court numbers. Matches whose players have
// hogged single courts the most are placed first, each onto the free court
// its players have used least.
func (s *session) assignCourts(matches []built, courts int) []Match {
	type biased struct {
		m    built
		bias int
	}
	order := make([]biased, len(matches))
	for i, m := range matches {
		bias := 0
		for _, p := range matchPlayers(m) {
			bias += s.maxCourtUse(p.ID)
		}
		order[i] = biased{m: m, bias: bias}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].bias > order[j].bias
	})

	available := make([]int, 0, courts)
	for c := 1; c <= courts; c++ {
		available = append(available, c)
	}

	out := make([]Match, 0, len(matches))
	for _, b := range order {
		bestIdx := 0
		bestUse := math.MaxInt
		for idx, court := range available {
			use := 0
			for _, p := range matchPlayers(b.m) {
				use += s.courtUse[p.ID][court]
			}
			if use < bestUse {
				bestUse = use
				bestIdx = idx
			}
		}
		court := available[bestIdx]
		available = append(available[:bestIdx], available[bestIdx+1:]...)
		out = append(out, Match{
			Court: court,
			TeamA: [2]string{b.m.teamA[0].ID, b.m.teamA[1].ID},
			TeamB: [2]string{b.m.teamB[0].ID, b.m.teamB[1].ID},
		})
	}
	return out
}

func matchPlayers(m built) [4]Player {
	return [4]Player{m.teamA[0], m.teamA[1], m.teamB[0], m.teamB[1]}
}

func (s *session) maxCourtUse(playerID string) int {
	max := 0
	for _, n := range s.courtUse[playerID] {
		if n > max {
			max = n
		}
	}
	return max
}

// update folds a finalized round into the session counters.
func (s *session) update(matches []Match) {
	for _, m := range matches {
		s.partners[keyFor(m.TeamA[0], m.TeamA[1])]++
		s.partners[keyFor(m.TeamB[0], m.TeamB[1])]++
		for _, a := range m.TeamA {
			for _, b := range m.TeamB {
				s.opponents[keyFor(a, b)]++
			}
		}
		for _, id := range []string{m.TeamA[0], m.TeamA[1], m.TeamB[0], m.TeamB[1]} {
			s.rounds[id]++
			if s.courtUse[id] == nil {
				s.courtUse[id] = make(map[int]int)
			}
			s.courtUse[id][m.Court]++
		}
	}
}

// DefaultRounds computes the planned round count when the event runs with
// auto rounds. Round robin plays capacity-1 rounds; balanced events scale
// with the pool's average rating.
func DefaultRounds(mode Mode, capacity int, pool []Player) int {
	if mode == ModeRoundRobin {
		if capacity-1 < 1 {
			return 1
		}
		return capacity - 1
	}

	if len(pool) == 0 {
		return 4
	}
	sum := 0
	for _, p := range pool {
		sum += p.Rating
	}
	avg := sum / len(pool)
	switch {
	case avg < 900:
		return 4
	case avg < 1000:
		return 6
	case avg < 1100:
		return 8
	case avg < 1200:
		return 10
	default:
		return 12
	}
}

// TeamDiffCap derives the BALANCED-mode team rating cap from the spread of
// the selected pool, never tighter than 150 points.
func TeamDiffCap(pool []Player) int {
	if len(pool) == 0 {
		return 150
	}
	min, max := pool[0].Rating, pool[0].Rating
	for _, p := range pool[1:] {
		if p.Rating < min {
			min = p.Rating
		}
		if p.Rating > max {
			max = p.Rating
		}
	}
	diff := (max - min) / 2
	if diff < 150 {
		diff = 150
	}
	return diff
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
