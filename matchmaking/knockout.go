package matchmaking

import (
	"fmt"
	"sort"

	"github.com/hokuto-abe/quiz-grandprix/models"
	"github.com/hokuto-abe/quiz-grandprix/scoring"
)

// KnockoutInput drives the Quarterfinal, Semifinal and Final planners,
// which all pool the previous round's winners sorted by paper rank.
type KnockoutInput struct {
	RoundID  int
	Targets  []models.Match
	Previous []MatchState
	Results  []models.YontakuPlayerResult
}

// planKnockout distributes the sorted winner pool zip-with-cycle across
// the target matches: candidate i goes to match i mod M, seat i div M,
// so overall rank order is preserved within every match.
func planKnockout(in KnockoutInput, wantTargets int) (*Plan, error) {
	ranks, verr := rankIndex(in.Results)
	if len(in.Targets) != wantTargets {
		verr = append(verr, fmt.Sprintf("expected %d target matches, got %d", wantTargets, len(in.Targets)))
	}
	verr = requireComplete(in.Previous, verr)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	capacity := 0
	for _, m := range in.Targets {
		seats, err := scoring.SeatCount(m.Rule)
		if err != nil {
			return nil, err
		}
		capacity += seats
	}

	var pool []scoring.SeatScore
	for _, st := range in.Previous {
		pool = append(pool, st.Winners()...)
	}
	if len(pool) != capacity {
		verr = append(verr, fmt.Sprintf("expected %d winners from the previous round, got %d", capacity, len(pool)))
		return nil, verr
	}
	for _, w := range pool {
		if _, ok := ranks[w.PlayerID]; !ok {
			return nil, fmt.Errorf("%w: winner %d has no paper result", ErrInvariant, w.PlayerID)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool { return ranks[pool[i].PlayerID] < ranks[pool[j].PlayerID] })

	plan := &Plan{RoundID: in.RoundID}
	for i, w := range pool {
		match := in.Targets[i%len(in.Targets)]
		plan.Assignments = append(plan.Assignments, Assignment{
			MatchID:  match.ID,
			Seat:     i / len(in.Targets),
			PlayerID: w.PlayerID,
		})
	}
	return plan, nil
}

func PlanQuarterfinal(in KnockoutInput) (*Plan, error) { return planKnockout(in, 2) }

func PlanSemifinal(in KnockoutInput) (*Plan, error) { return planKnockout(in, 2) }

func PlanFinal(in KnockoutInput) (*Plan, error) { return planKnockout(in, 1) }
