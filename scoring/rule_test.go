package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

func seatingFor(t *testing.T, kind models.RuleKind) []models.Matching {
	t.Helper()
	count, err := SeatCount(kind)
	require.NoError(t, err)
	seating := make([]models.Matching, 0, count)
	for seat := 0; seat < count; seat++ {
		seating = append(seating, models.Matching{
			ID:       int64(seat + 1),
			MatchID:  1,
			PlayerID: seat + 1,
			Seat:     seat,
		})
	}
	return seating
}

func openMatch(t *testing.T, kind models.RuleKind) Snapshot {
	t.Helper()
	snap, err := OpeningSnapshot(kind, seatingFor(t, kind))
	require.NoError(t, err)
	return snap
}

func answer(playerID int, result models.QuestionResult) models.PlayerAnswer {
	return models.PlayerAnswer{PlayerID: playerID, Situation: models.SituationBuzzed, Result: result}
}

func question(answers ...models.PlayerAnswer) models.OperationPayload {
	return models.OperationPayload{Answers: answers}
}

func applyN(t *testing.T, kind models.RuleKind, snap Snapshot, n int, payload models.OperationPayload) Snapshot {
	t.Helper()
	var err error
	for i := 0; i < n; i++ {
		snap, err = Transition(kind, snap, models.OpQuestionClosing, payload)
		require.NoError(t, err)
	}
	return snap
}

func TestOpeningSnapshot(t *testing.T) {
	t.Run("starts every seat playing", func(t *testing.T) {
		snap := openMatch(t, models.RuleRound3)
		require.Len(t, snap, 8)
		for _, seat := range snap {
			assert.Equal(t, models.ScorePlaying, seat.Status)
			assert.Zero(t, seat.Points)
			assert.Nil(t, seat.Rank)
		}
	})

	t.Run("orders by seat regardless of input order", func(t *testing.T) {
		seating := seatingFor(t, models.RuleSemifinal)
		seating[0], seating[3] = seating[3], seating[0]
		snap, err := OpeningSnapshot(models.RuleSemifinal, seating)
		require.NoError(t, err)
		for i, seat := range snap {
			assert.Equal(t, i, seat.Seat)
		}
	})

	t.Run("rejects wrong seat count", func(t *testing.T) {
		_, err := OpeningSnapshot(models.RuleFinal, seatingFor(t, models.RuleRound3))
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("rejects unknown rule", func(t *testing.T) {
		_, err := OpeningSnapshot("freestyle", nil)
		assert.ErrorIs(t, err, ErrUnknownRule)
	})
}

func TestRaceRule(t *testing.T) {
	kind := models.RuleRound3 // 8 seats, 5 points up, 3 misses down

	t.Run("fifth correct answer wins", func(t *testing.T) {
		snap := openMatch(t, kind)
		snap = applyN(t, kind, snap, 5, question(answer(1, models.ResultCorrect)))

		winner := snap[0]
		assert.Equal(t, models.ScoreWin, winner.Status)
		require.NotNil(t, winner.Rank)
		assert.Equal(t, 1, *winner.Rank)
	})

	t.Run("third miss eliminates from the bottom", func(t *testing.T) {
		snap := openMatch(t, kind)
		snap = applyN(t, kind, snap, 3, question(answer(2, models.ResultWrong)))

		loser := snap[1]
		assert.Equal(t, models.ScoreLose, loser.Status)
		require.NotNil(t, loser.Rank)
		assert.Equal(t, 8, *loser.Rank)
	})

	t.Run("simultaneous wins rank in resolution order", func(t *testing.T) {
		snap := openMatch(t, kind)
		snap = applyN(t, kind, snap, 4, question(
			answer(3, models.ResultCorrect),
			answer(5, models.ResultCorrect),
		))
		snap = applyN(t, kind, snap, 1, question(
			answer(5, models.ResultCorrect),
			answer(3, models.ResultCorrect),
		))

		require.NotNil(t, snap[4].Rank)
		require.NotNil(t, snap[2].Rank)
		assert.Equal(t, 1, *snap[4].Rank)
		assert.Equal(t, 2, *snap[2].Rank)
	})

	t.Run("fourth winner closes out the match", func(t *testing.T) {
		snap := openMatch(t, kind)
		for p := 1; p <= 4; p++ {
			snap = applyN(t, kind, snap, 5, question(answer(p, models.ResultCorrect)))
		}

		assert.True(t, MatchEnded(snap))
		for _, seat := range snap {
			require.NotNil(t, seat.Rank, "seat %d unranked", seat.Seat)
		}
		assert.Equal(t, models.ScoreLose, snap[7].Status)

		_, err := Transition(kind, snap, models.OpQuestionClosing, question(answer(5, models.ResultCorrect)))
		assert.ErrorIs(t, err, ErrRuleViolation)
	})

	t.Run("never seats a fifth winner", func(t *testing.T) {
		snap := openMatch(t, kind)
		for p := 1; p <= 3; p++ {
			snap = applyN(t, kind, snap, 5, question(answer(p, models.ResultCorrect)))
		}
		snap = applyN(t, kind, snap, 4, question(
			answer(4, models.ResultCorrect),
			answer(5, models.ResultCorrect),
		))

		// Both players sit at four points; the next question would push
		// both over the line, but the first crossing ends the match.
		snap = applyN(t, kind, snap, 1, question(
			answer(4, models.ResultCorrect),
			answer(5, models.ResultCorrect),
			answer(6, models.ResultWrong),
		))

		winners := 0
		for _, seat := range snap {
			if seat.Status == models.ScoreWin {
				winners++
			}
		}
		assert.Equal(t, 4, winners)
		assert.Equal(t, models.ScoreWin, snap[3].Status)
		assert.Equal(t, 4, *snap[3].Rank)
		assert.Equal(t, models.ScoreLose, snap[4].Status)
		assert.Equal(t, 5, *snap[4].Rank, "four banked points top the tiebreak")
		assert.Zero(t, snap[5].Misses, "answers after the closing win are dropped")
		assert.True(t, MatchEnded(snap))
	})

	t.Run("close out ranks by points then misses then seat", func(t *testing.T) {
		snap := openMatch(t, kind)
		snap = applyN(t, kind, snap, 3, question(answer(6, models.ResultCorrect)))
		snap = applyN(t, kind, snap, 1, question(answer(7, models.ResultCorrect)))

		next, err := Transition(kind, snap, models.OpMatchClosing, models.OperationPayload{})
		require.NoError(t, err)
		assert.True(t, MatchEnded(next))
		// Player 6 (3 points) outranks player 7 (1 point) outranks the rest.
		assert.Equal(t, 1, *next[5].Rank)
		assert.Equal(t, 2, *next[6].Rank)
		assert.Equal(t, 3, *next[0].Rank)
	})

	t.Run("set transition is meaningless", func(t *testing.T) {
		snap := openMatch(t, kind)
		_, err := Transition(kind, snap, models.OpSetTransition, models.OperationPayload{})
		assert.ErrorIs(t, err, ErrRuleViolation)
	})

	t.Run("rejects duplicate players in one question", func(t *testing.T) {
		snap := openMatch(t, kind)
		_, err := Transition(kind, snap, models.OpQuestionClosing, question(
			answer(1, models.ResultCorrect),
			answer(1, models.ResultWrong),
		))
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})
}

func TestUraRule(t *testing.T) {
	kind := models.RuleRound2Ura

	t.Run("misses never eliminate", func(t *testing.T) {
		snap := openMatch(t, kind)
		snap = applyN(t, kind, snap, 7, question(answer(1, models.ResultWrong)))

		assert.Equal(t, models.ScorePlaying, snap[0].Status)
		assert.Equal(t, 7, snap[0].Misses)
	})

	t.Run("closing promotes the top four by tiebreak", func(t *testing.T) {
		snap := openMatch(t, kind)
		for p := 1; p <= 5; p++ {
			snap = applyN(t, kind, snap, p, question(answer(p, models.ResultCorrect)))
		}

		next, err := Transition(kind, snap, models.OpMatchClosing, models.OperationPayload{})
		require.NoError(t, err)
		assert.True(t, MatchEnded(next))

		// Players 5,4,3,2 hold the most points and advance.
		for i, want := range []struct {
			seat int
			rank int
		}{{4, 1}, {3, 2}, {2, 3}, {1, 4}} {
			seat := next[want.seat]
			assert.Equal(t, models.ScoreWin, seat.Status, "case %d", i)
			require.NotNil(t, seat.Rank)
			assert.Equal(t, want.rank, *seat.Rank)
		}
		assert.Equal(t, models.ScoreLose, next[0].Status)
		assert.Equal(t, 5, *next[0].Rank)
	})
}

func TestPlayoffRule(t *testing.T) {
	kind := models.RulePlayoff

	t.Run("correct answer banks a point and waits", func(t *testing.T) {
		snap := openMatch(t, kind)
		snap = applyN(t, kind, snap, 1, question(answer(1, models.ResultCorrect)))

		assert.Equal(t, models.ScoreWaiting, snap[0].Status)
		assert.Equal(t, 1, snap[0].Points)
	})

	t.Run("wave transition revives waiting players", func(t *testing.T) {
		snap := openMatch(t, kind)
		snap = applyN(t, kind, snap, 1, question(answer(1, models.ResultCorrect)))

		next, err := Transition(kind, snap, models.OpSetTransition, models.OperationPayload{})
		require.NoError(t, err)
		assert.Equal(t, models.ScorePlaying, next[0].Status)

		_, err = Transition(kind, next, models.OpSetTransition, models.OperationPayload{})
		assert.ErrorIs(t, err, ErrRuleViolation)
	})

	t.Run("second miss eliminates", func(t *testing.T) {
		snap := openMatch(t, kind)
		snap = applyN(t, kind, snap, 2, question(answer(4, models.ResultWrong)))

		assert.Equal(t, models.ScoreLose, snap[3].Status)
		assert.Equal(t, 10, *snap[3].Rank)
	})

	t.Run("third point takes the single slot and ends the match", func(t *testing.T) {
		snap := openMatch(t, kind)
		for i := 0; i < 3; i++ {
			snap = applyN(t, kind, snap, 1, question(answer(2, models.ResultCorrect)))
			if i < 2 {
				var err error
				snap, err = Transition(kind, snap, models.OpSetTransition, models.OperationPayload{})
				require.NoError(t, err)
			}
		}

		assert.Equal(t, models.ScoreWin, snap[1].Status)
		assert.Equal(t, 1, *snap[1].Rank)
		assert.True(t, MatchEnded(snap))
	})

	t.Run("free edit is denied", func(t *testing.T) {
		editable, err := Editable(kind)
		require.NoError(t, err)
		assert.False(t, editable)
	})
}

func TestSetsRule(t *testing.T) {
	kind := models.RuleSemifinal // 4 seats, 3 points per set, 2 stars up

	t.Run("set points convert to a star", func(t *testing.T) {
		snap := openMatch(t, kind)
		snap = applyN(t, kind, snap, 3, question(answer(1, models.ResultCorrect)))

		assert.Equal(t, models.ScoreSetWin, snap[0].Status)
		assert.Equal(t, 1, snap[0].Stars)
	})

	t.Run("set transition resets points but keeps stars", func(t *testing.T) {
		snap := openMatch(t, kind)
		snap = applyN(t, kind, snap, 2, question(answer(2, models.ResultCorrect)))
		snap = applyN(t, kind, snap, 3, question(answer(1, models.ResultCorrect)))

		next, err := Transition(kind, snap, models.OpSetTransition, models.OperationPayload{})
		require.NoError(t, err)
		assert.Equal(t, models.ScorePlaying, next[0].Status)
		assert.Equal(t, 1, next[0].Stars)
		assert.Zero(t, next[0].Points)
		assert.Zero(t, next[1].Points, "set reset applies to everyone still in")
	})

	t.Run("set transition without a set taken is rejected", func(t *testing.T) {
		snap := openMatch(t, kind)
		_, err := Transition(kind, snap, models.OpSetTransition, models.OperationPayload{})
		assert.ErrorIs(t, err, ErrRuleViolation)
	})

	t.Run("second star wins, second winner ends the match", func(t *testing.T) {
		snap := openMatch(t, kind)
		takeSet := func(player int) {
			snap = applyN(t, kind, snap, 3, question(answer(player, models.ResultCorrect)))
			if !MatchEnded(snap) && snap[player-1].Status == models.ScoreSetWin {
				var err error
				snap, err = Transition(kind, snap, models.OpSetTransition, models.OperationPayload{})
				require.NoError(t, err)
			}
		}

		takeSet(1)
		takeSet(2)
		takeSet(1) // player 1 wins on two stars
		require.Equal(t, models.ScoreWin, snap[0].Status)
		assert.Equal(t, 1, *snap[0].Rank)
		assert.False(t, MatchEnded(snap))

		takeSet(2) // player 2 joins, closing the match
		assert.Equal(t, models.ScoreWin, snap[1].Status)
		assert.Equal(t, 2, *snap[1].Rank)
		assert.True(t, MatchEnded(snap))
	})
}

func TestDisqualification(t *testing.T) {
	kind := models.RuleRound2Omote

	snap := openMatch(t, kind)
	next, err := Transition(kind, snap, models.OpDisqualification, models.OperationPayload{PlayerID: 3})
	require.NoError(t, err)

	assert.Equal(t, models.ScoreDisqualified, next[2].Status)
	require.NotNil(t, next[2].Rank)
	assert.Equal(t, 10, *next[2].Rank)

	_, err = Transition(kind, next, models.OpDisqualification, models.OperationPayload{PlayerID: 3})
	assert.ErrorIs(t, err, ErrRuleViolation)

	_, err = Transition(kind, next, models.OpDisqualification, models.OperationPayload{PlayerID: 99})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestTransitionDoesNotMutatePrevious(t *testing.T) {
	kind := models.RuleRound3
	snap := openMatch(t, kind)

	_, err := Transition(kind, snap, models.OpQuestionClosing, question(answer(1, models.ResultCorrect)))
	require.NoError(t, err)

	assert.Zero(t, snap[0].Points, "previous snapshot must stay untouched")
	assert.Equal(t, models.ScorePlaying, snap[0].Status)
}
