package scoring

import (
	"fmt"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

// uraRule is the lower Round2 bracket: points accumulate with no
// in-question elimination, and the winners are decided only when the
// match closes — the top `winners` seats by tiebreak advance.
type uraRule struct {
	seatCount int
	winners   int
}

func (r uraRule) seats() int     { return r.seatCount }
func (r uraRule) editable() bool { return true }

func (r uraRule) question(snap Snapshot, answers []models.PlayerAnswer) error {
	for _, a := range answers {
		seat, err := activeSeat(snap, a.PlayerID)
		if err != nil {
			return err
		}
		if a.Result == models.ResultCorrect {
			seat.Points++
		} else {
			seat.Misses++
		}
	}
	return nil
}

func (r uraRule) setTransition(Snapshot) error {
	return fmt.Errorf("%w: rule has no set play", ErrRuleViolation)
}

func (r uraRule) closeMatch(snap Snapshot) error {
	closeOut(snap, r.winners)
	return nil
}
