package scoring

import (
	"fmt"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

// raceRule covers Round2 Omote, Round3 and the Quarterfinal: first to
// winPoints wins a seat at the next round, loseMisses strikes eliminate,
// and once `winners` players have won the rest are closed out by tiebreak.
type raceRule struct {
	seatCount  int
	winPoints  int
	loseMisses int
	winners    int
}

func (r raceRule) seats() int     { return r.seatCount }
func (r raceRule) editable() bool { return true }

// question applies answers in payload order, which is the order the
// emcee resolved them in. Simultaneous threshold crossings therefore rank
// in resolution order. The answer that seats the last winner ends the
// match on the spot: later entries of the same payload are never applied,
// everyone still in is closed out by tiebreak.
func (r raceRule) question(snap Snapshot, answers []models.PlayerAnswer) error {
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
				if countStatus(snap, models.ScoreWin) >= r.winners {
					closeOut(snap, 0)
					return nil
				}
			}
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

func (r raceRule) setTransition(Snapshot) error {
	return fmt.Errorf("%w: rule has no set play", ErrRuleViolation)
}

func (r raceRule) closeMatch(snap Snapshot) error {
	closeOut(snap, 0)
	return nil
}
