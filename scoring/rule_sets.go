package scoring

import (
	"fmt"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

// setsRule covers the Semifinal and the Final: reaching setPoints takes
// the set (a star); winStars stars win the match. Set winners sit out as
// set_win until the operator transitions to the next set, which resets
// the per-set counters.
type setsRule struct {
	seatCount int
	setPoints int
	winStars  int
	winners   int
}

func (r setsRule) seats() int     { return r.seatCount }
func (r setsRule) editable() bool { return true }

func (r setsRule) question(snap Snapshot, answers []models.PlayerAnswer) error {
	for _, a := range answers {
		seat, err := activeSeat(snap, a.PlayerID)
		if err != nil {
			return err
		}
		switch a.Result {
		case models.ResultCorrect:
			seat.Points++
			if seat.Points >= r.setPoints {
				seat.Stars++
				if seat.Stars >= r.winStars {
					rank := nextWinRank(snap)
					seat.Status = models.ScoreWin
					seat.Rank = &rank
					if countStatus(snap, models.ScoreWin) >= r.winners {
						closeOut(snap, 0)
						return nil
					}
				} else {
					seat.Status = models.ScoreSetWin
				}
			}
		case models.ResultWrong:
			seat.Misses++
		}
	}
	return nil
}

// setTransition resets the per-set counters and returns set winners to
// play. Stars and ranks survive the reset.
func (r setsRule) setTransition(snap Snapshot) error {
	took := false
	for i := range snap {
		if snap[i].Status.Terminal() {
			continue
		}
		if snap[i].Status == models.ScoreSetWin {
			took = true
			snap[i].Status = models.ScorePlaying
		}
		snap[i].Points = 0
		snap[i].Misses = 0
	}
	if !took {
		return fmt.Errorf("%w: no set has been taken yet", ErrRuleViolation)
	}
	return nil
}

func (r setsRule) closeMatch(snap Snapshot) error {
	closeOut(snap, 0)
	return nil
}
