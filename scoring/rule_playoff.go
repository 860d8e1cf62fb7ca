package scoring

import (
	"fmt"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

// playoffRule is the revival round: survival waves. A correct answer
// scores a point and parks the player as waiting until the next wave; a
// second miss eliminates. The first player to winPoints takes the match's
// single advancement slot and everyone else is closed out.
type playoffRule struct {
	seatCount  int
	winPoints  int
	loseMisses int
}

func (r playoffRule) seats() int     { return r.seatCount }
func (r playoffRule) editable() bool { return false }

func (r playoffRule) question(snap Snapshot, answers []models.PlayerAnswer) error {
	for _, a := range answers {
		seat, err := activeSeat(snap, a.PlayerID)
		if err != nil {
			return err
		}
		switch a.Result {
		case models.ResultCorrect:
			seat.Points++
			if seat.Points >= r.winPoints {
				rank := nextWinRank(snap)
				seat.Status = models.ScoreWin
				seat.Rank = &rank
				closeOut(snap, 0)
				return nil
			}
			seat.Status = models.ScoreWaiting
		case models.ResultWrong:
			seat.Misses++
			if seat.Misses >= r.loseMisses {
				rank := nextOutRank(snap)
				seat.Status = models.ScoreLose
				seat.Rank = &rank
			}
		}
	}
	return nil
}

// setTransition starts the next wave: survivors who banked a point return
// to play.
func (r playoffRule) setTransition(snap Snapshot) error {
	moved := false
	for i := range snap {
		if snap[i].Status == models.ScoreWaiting {
			snap[i].Status = models.ScorePlaying
			moved = true
		}
	}
	if !moved {
		return fmt.Errorf("%w: no waiting players to bring back", ErrRuleViolation)
	}
	return nil
}

func (r playoffRule) closeMatch(snap Snapshot) error {
	closeOut(snap, 0)
	return nil
}
