package planner_test

import (
	"fmt"
	"testing"

	"github.com/mauv0809/court-call/internal/apperr"
	"github.com/mauv0809/court-call/internal/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePool(n int) []planner.Player {
	pool := make([]planner.Player, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, planner.Player{
			ID:     fmt.Sprintf("p%02d", i),
			Rating: 900 + i*25,
		})
	}
	return pool
}

func TestPlanRoundsShape(t *testing.T) {
	pool := makePool(8)
	rounds, err := planner.PlanRounds(pool, 2, planner.ModeRoundRobin, 0, 7)
	require.NoError(t, err)
	require.Len(t, rounds, 7)

	for _, round := range rounds {
		assert.LessOrEqual(t, len(round.Matches), 2)

		seen := make(map[string]bool)
		for _, m := range round.Matches {
			ids := []string{m.TeamA[0], m.TeamA[1], m.TeamB[0], m.TeamB[1]}
			unique := make(map[string]bool)
			for _, id := range ids {
				unique[id] = true
				assert.False(t, seen[id], "player %s appears twice in round %d", id, round.Number)
				seen[id] = true
			}
			assert.Len(t, unique, 4, "match players must be pairwise distinct")
			assert.GreaterOrEqual(t, m.Court, 1)
			assert.LessOrEqual(t, m.Court, 2)
		}
	}
}

func TestPlanRoundsValidation(t *testing.T) {
	pool := makePool(8)

	_, err := planner.PlanRounds(pool, 0, planner.ModeRoundRobin, 0, 3)
	assert.True(t, apperr.IsValidation(err))

	_, err = planner.PlanRounds(makePool(3), 1, planner.ModeRoundRobin, 0, 3)
	assert.True(t, apperr.IsValidation(err))

	_, err = planner.PlanRounds(pool, 2, planner.ModeRoundRobin, 0, 0)
	assert.True(t, apperr.IsValidation(err))
}

func TestPlanRoundsStopsEarlyWhenShortOfCapacity(t *testing.T) {
	// 6 players, 2 courts: only one full match can form per round.
	rounds, err := planner.PlanRounds(makePool(6), 2, planner.ModeRoundRobin, 0, 3)
	require.NoError(t, err)
	for _, round := range rounds {
		assert.Len(t, round.Matches, 1)
	}
}

func TestByeRotationSpreadsRoundsPlayed(t *testing.T) {
	// 12 players, 2 courts: 8 play per round, 4 sit out. Over 3 rounds every
	// player should have played at least twice.
	rounds, err := planner.PlanRounds(makePool(12), 2, planner.ModeRoundRobin, 0, 3)
	require.NoError(t, err)

	played := make(map[string]int)
	for _, round := range rounds {
		for _, m := range round.Matches {
			for _, id := range []string{m.TeamA[0], m.TeamA[1], m.TeamB[0], m.TeamB[1]} {
				played[id]++
			}
		}
	}
	require.Len(t, played, 12)
	for id, n := range played {
		assert.GreaterOrEqual(t, n, 2, "player %s was benched too often", id)
	}
}

func TestPartnerRotation(t *testing.T) {
	// With 8 players over 7 rounds, heavy partner penalties should keep any
	// pair from teaming up in every round.
	rounds, err := planner.PlanRounds(makePool(8), 2, planner.ModeRoundRobin, 0, 7)
	require.NoError(t, err)

	partnerCount := make(map[string]int)
	for _, round := range rounds {
		for _, m := range round.Matches {
			for _, team := range [][2]string{m.TeamA, m.TeamB} {
				a, b := team[0], team[1]
				if b < a {
					a, b = b, a
				}
				partnerCount[a+"|"+b]++
			}
		}
	}
	for pair, n := range partnerCount {
		assert.LessOrEqual(t, n, 3, "pair %s partnered too often", pair)
	}
}

func TestBalancedModeRespectsCap(t *testing.T) {
	// Narrow rating band; a generous cap must be satisfiable in every match.
	pool := makePool(8)
	capDiff := planner.TeamDiffCap(pool)
	rounds, err := planner.PlanRounds(pool, 2, planner.ModeBalanced, capDiff, 4)
	require.NoError(t, err)

	ratings := make(map[string]int)
	for _, p := range pool {
		ratings[p.ID] = p.Rating
	}
	for _, round := range rounds {
		for _, m := range round.Matches {
			sumA := ratings[m.TeamA[0]] + ratings[m.TeamA[1]]
			sumB := ratings[m.TeamB[0]] + ratings[m.TeamB[1]]
			diff := sumA - sumB
			if diff < 0 {
				diff = -diff
			}
			assert.LessOrEqual(t, diff, capDiff, "round %d match on court %d is lopsided", round.Number, m.Court)
		}
	}
}

func TestCourtsRotate(t *testing.T) {
	// A fixed group of 4 on 2 courts should not play every round on court 1.
	rounds, err := planner.PlanRounds(makePool(4), 2, planner.ModeRoundRobin, 0, 4)
	require.NoError(t, err)

	courtsSeen := make(map[int]int)
	for _, round := range rounds {
		require.Len(t, round.Matches, 1)
		courtsSeen[round.Matches[0].Court]++
	}
	assert.Len(t, courtsSeen, 2, "matches should spread over both courts")
}

func TestPlanRoundsDeterministic(t *testing.T) {
	a, err := planner.PlanRounds(makePool(12), 3, planner.ModeRoundRobin, 0, 5)
	require.NoError(t, err)
	b, err := planner.PlanRounds(makePool(12), 3, planner.ModeRoundRobin, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDefaultRounds(t *testing.T) {
	assert.Equal(t, 7, planner.DefaultRounds(planner.ModeRoundRobin, 8, makePool(8)))
	assert.Equal(t, 1, planner.DefaultRounds(planner.ModeRoundRobin, 1, makePool(4)))

	low := []planner.Player{{ID: "a", Rating: 800}, {ID: "b", Rating: 850}}
	high := []planner.Player{{ID: "a", Rating: 1300}, {ID: "b", Rating: 1250}}
	assert.Equal(t, 4, planner.DefaultRounds(planner.ModeBalanced, 8, low))
	assert.Equal(t, 12, planner.DefaultRounds(planner.ModeBalanced, 8, high))
}

func TestTeamDiffCap(t *testing.T) {
	narrow := []planner.Player{{ID: "a", Rating: 1000}, {ID: "b", Rating: 1040}}
	assert.Equal(t, 150, planner.TeamDiffCap(narrow))

	wide := []planner.Player{{ID: "a", Rating: 800}, {ID: "b", Rating: 1400}}
	assert.Equal(t, 300, planner.TeamDiffCap(wide))
}
