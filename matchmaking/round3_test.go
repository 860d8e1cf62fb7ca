package matchmaking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokuto-abe/quiz-grandprix/models"
	"github.com/hokuto-abe/quiz-grandprix/scoring"
)

// feederFixture builds a finished match whose winners carry the given
// player ids (ranked in slice order); losers are filler players outside
// the qualified pool.
func feederFixture(matchID, seats int, winners []int) MatchState {
	st := MatchState{Match: models.Match{ID: matchID}}
	for i, id := range winners {
		st.Seats = append(st.Seats, scoring.SeatScore{
			PlayerID: id, Seat: i, Status: models.ScoreWin, Rank: intPtr(i + 1),
		})
	}
	for i := len(winners); i < seats; i++ {
		st.Seats = append(st.Seats, scoring.SeatScore{
			PlayerID: 9000 + matchID*100 + i, Seat: i,
			Status: models.ScoreLose, Rank: intPtr(i + 1),
		})
	}
	return st
}

func round3Input() Round3Input {
	in := Round3Input{RoundID: 4}
	for i := 1; i <= 4; i++ {
		in.Targets = append(in.Targets, models.Match{ID: 40 + i, RoundID: 4, Number: i, Rule: models.RuleRound3})
	}

	// Paper ranks 1..32 cover the whole qualified pool: seeds 1-7,
	// omote winners 8-27, playoff winners 28-32.
	for rank := 1; rank <= 32; rank++ {
		in.Results = append(in.Results, models.YontakuPlayerResult{
			PlayerID: playerFor(rank), Score: 10000 - rank, Tiebreaker: rank, Rank: rank,
		})
	}
	for m := 0; m < 5; m++ {
		winners := []int{}
		for k := 0; k < 4; k++ {
			winners = append(winners, playerFor(8+m*4+k))
		}
		in.Omote = append(in.Omote, feederFixture(11+m, 10, winners))
		in.Playoff = append(in.Playoff, feederFixture(31+m, 10, []int{playerFor(28 + m)}))
	}

	in.Preferences = map[int]models.RoundCoursePreference{}
	for rank := 1; rank <= 32; rank++ {
		in.Preferences[playerFor(rank)] = models.RoundCoursePreference{
			PlayerID: playerFor(rank),
			Choice1:  42, Choice2: 41, Choice3: 44, Choice4: 43,
		}
	}
	return in
}

func TestPlanRound3(t *testing.T) {
	t.Run("identical preferences fill courses in choice order", func(t *testing.T) {
		plan, err := PlanRound3(round3Input())
		require.NoError(t, err)
		require.Len(t, plan.Assignments, 32)

		wantCourse := map[int][]int{42: {}, 41: {}, 44: {}, 43: {}}
		for rank := 1; rank <= 8; rank++ {
			wantCourse[42] = append(wantCourse[42], playerFor(rank))
		}
		for rank := 9; rank <= 16; rank++ {
			wantCourse[41] = append(wantCourse[41], playerFor(rank))
		}
		for rank := 17; rank <= 24; rank++ {
			wantCourse[44] = append(wantCourse[44], playerFor(rank))
		}
		for rank := 25; rank <= 32; rank++ {
			wantCourse[43] = append(wantCourse[43], playerFor(rank))
		}
		for matchID, want := range wantCourse {
			assert.Equal(t, want, assignedPlayers(t, plan, matchID), "course %d", matchID)
		}
	})

	t.Run("varied preferences are honored by paper rank", func(t *testing.T) {
		in := round3Input()
		// The top seed wants course D instead.
		pref := in.Preferences[playerFor(1)]
		pref.Choice1, pref.Choice4 = 43, 42
		in.Preferences[playerFor(1)] = pref

		plan, err := PlanRound3(in)
		require.NoError(t, err)
		assert.Equal(t, playerFor(1), assignedPlayers(t, plan, 43)[0])
		// Rank 9 moves up into course B.
		assert.Contains(t, assignedPlayers(t, plan, 42), playerFor(9))
	})

	t.Run("missing preference is reported", func(t *testing.T) {
		in := round3Input()
		delete(in.Preferences, playerFor(20))

		_, err := PlanRound3(in)
		var verr ValidationErrors
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "no course preference")
	})

	t.Run("duplicate choices are reported", func(t *testing.T) {
		in := round3Input()
		pref := in.Preferences[playerFor(3)]
		pref.Choice2 = pref.Choice1
		in.Preferences[playerFor(3)] = pref

		_, err := PlanRound3(in)
		var verr ValidationErrors
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "twice")
	})

	t.Run("winner without a paper result fails hard", func(t *testing.T) {
		in := round3Input()
		in.Playoff[0].Seats[0].PlayerID = 777
		in.Preferences[777] = models.RoundCoursePreference{
			PlayerID: 777,
			Choice1:  41, Choice2: 42, Choice3: 43, Choice4: 44,
		}

		_, err := PlanRound3(in)
		assert.ErrorIs(t, err, ErrInvariant)
	})

	t.Run("wrong pool size is reported", func(t *testing.T) {
		in := round3Input()
		in.Playoff[4].Seats[0].Status = models.ScoreLose

		_, err := PlanRound3(in)
		var verr ValidationErrors
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "32")
	})
}
