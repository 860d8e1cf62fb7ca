package matchmaking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

func knockoutResults(n int) []models.YontakuPlayerResult {
	results := make([]models.YontakuPlayerResult, 0, n)
	for rank := 1; rank <= n; rank++ {
		results = append(results, models.YontakuPlayerResult{
			PlayerID: playerFor(rank), Score: 10000 - rank, Tiebreaker: rank, Rank: rank,
		})
	}
	return results
}

func TestPlanQuarterfinal(t *testing.T) {
	in := KnockoutInput{
		RoundID: 5,
		Targets: []models.Match{
			{ID: 51, RoundID: 5, Number: 1, Rule: models.RuleQuarterfinal},
			{ID: 52, RoundID: 5, Number: 2, Rule: models.RuleQuarterfinal},
		},
		Results: knockoutResults(16),
	}
	for m := 0; m < 4; m++ {
		winners := []int{}
		for k := 0; k < 4; k++ {
			winners = append(winners, playerFor(1+m*4+k))
		}
		in.Previous = append(in.Previous, feederFixture(41+m, 8, winners))
	}

	plan, err := PlanQuarterfinal(in)
	require.NoError(t, err)
	require.Len(t, plan.Assignments, 16)

	// Candidates alternate between the two matches in paper-rank order,
	// so each match holds every other rank.
	first := assignedPlayers(t, plan, 51)
	second := assignedPlayers(t, plan, 52)
	for i := 0; i < 8; i++ {
		assert.Equal(t, playerFor(2*i+1), first[i])
		assert.Equal(t, playerFor(2*i+2), second[i])
	}
}

func TestPlanSemifinalShortPool(t *testing.T) {
	in := KnockoutInput{
		RoundID: 6,
		Targets: []models.Match{
			{ID: 61, RoundID: 6, Number: 1, Rule: models.RuleSemifinal},
			{ID: 62, RoundID: 6, Number: 2, Rule: models.RuleSemifinal},
		},
		Results: knockoutResults(8),
		Previous: []MatchState{
			feederFixture(51, 8, []int{playerFor(1), playerFor(3), playerFor(5), playerFor(7)}),
			// Only three winners: one quarterfinal slot never resolved.
			feederFixture(52, 8, []int{playerFor(2), playerFor(4), playerFor(6)}),
		},
	}

	_, err := PlanSemifinal(in)
	var verr ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "expected 8 winners")
}

func TestPlanFinal(t *testing.T) {
	in := KnockoutInput{
		RoundID: 7,
		Targets: []models.Match{{ID: 71, RoundID: 7, Number: 1, Rule: models.RuleFinal}},
		Results: knockoutResults(4),
		Previous: []MatchState{
			feederFixture(61, 4, []int{playerFor(4), playerFor(1)}),
			feederFixture(62, 4, []int{playerFor(3), playerFor(2)}),
		},
	}

	plan, err := PlanFinal(in)
	require.NoError(t, err)
	// A single target seats the whole pool in paper-rank order.
	assert.Equal(t,
		[]int{playerFor(1), playerFor(2), playerFor(3), playerFor(4)},
		assignedPlayers(t, plan, 71))
}

func TestPlanKnockoutUnknownWinner(t *testing.T) {
	in := KnockoutInput{
		RoundID: 7,
		Targets: []models.Match{{ID: 71, RoundID: 7, Number: 1, Rule: models.RuleFinal}},
		Results: knockoutResults(3), // rank for one winner is missing
		Previous: []MatchState{
			feederFixture(61, 4, []int{playerFor(1), playerFor(2)}),
			feederFixture(62, 4, []int{playerFor(3), 7777}),
		},
	}

	_, err := PlanFinal(in)
	assert.ErrorIs(t, err, ErrInvariant)
}
