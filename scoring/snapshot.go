package scoring

import (
	"fmt"
	"sort"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

// SeatScore is one seat's state within a snapshot, joined with its seating
// so rules and matchmaking can reason about players and seat order without
// loading rows separately.
type SeatScore struct {
	MatchingID int64              `json:"matching_id"`
	PlayerID   int                `json:"player_id"`
	Seat       int                `json:"seat"`
	Status     models.ScoreStatus `json:"status"`
	Points     int                `json:"points"`
	Misses     int                `json:"misses"`
	Stars      int                `json:"stars"`
	Rank       *int               `json:"rank,omitempty"`
}

// Snapshot is the full per-seat state derived by one operation, ordered by
// seat.
type Snapshot []SeatScore

func cloneSnapshot(snap Snapshot) Snapshot {
	next := make(Snapshot, len(snap))
	copy(next, snap)
	for i := range next {
		if snap[i].Rank != nil {
			r := *snap[i].Rank
			next[i].Rank = &r
		}
	}
	return next
}

// MatchEnded reports whether every seat has reached a terminal status.
func MatchEnded(snap Snapshot) bool {
	for i := range snap {
		if !snap[i].Status.Terminal() {
			return false
		}
	}
	return len(snap) > 0
}

func seatByPlayer(snap Snapshot, playerID int) *SeatScore {
	for i := range snap {
		if snap[i].PlayerID == playerID {
			return &snap[i]
		}
	}
	return nil
}

func countStatus(snap Snapshot, status models.ScoreStatus) int {
	n := 0
	for i := range snap {
		if snap[i].Status == status {
			n++
		}
	}
	return n
}

// nextWinRank is one past the number of win ranks handed out so far.
func nextWinRank(snap Snapshot) int {
	n := 0
	for i := range snap {
		if snap[i].Status == models.ScoreWin && snap[i].Rank != nil {
			n++
		}
	}
	return n + 1
}

// nextOutRank counts down from the seat count as players are eliminated.
func nextOutRank(snap Snapshot) int {
	n := 0
	for i := range snap {
		if (snap[i].Status == models.ScoreLose || snap[i].Status == models.ScoreDisqualified) && snap[i].Rank != nil {
			n++
		}
	}
	return len(snap) - n
}

// tiebreakLess orders seats by stars desc, points desc, misses asc, then
// seat asc. Seat order is the final tiebreak because lower seats encode
// higher prior rank.
func tiebreakLess(a, b *SeatScore) bool {
	if a.Stars != b.Stars {
		return a.Stars > b.Stars
	}
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.Misses != b.Misses {
		return a.Misses < b.Misses
	}
	return a.Seat < b.Seat
}

// closeOut ranks every seat that has no rank yet. The best `promote` of
// them (by tiebreak) are marked win; the rest lose. Ranks fill the gap
// between the win ranks and elimination ranks already assigned.
func closeOut(snap Snapshot, promote int) {
	var open []*SeatScore
	for i := range snap {
		if snap[i].Rank == nil {
			open = append(open, &snap[i])
		}
	}
	sort.SliceStable(open, func(i, j int) bool { return tiebreakLess(open[i], open[j]) })

	rank := nextWinRank(snap)
	for i, seat := range open {
		r := rank + i
		seat.Rank = &r
		if i < promote {
			seat.Status = models.ScoreWin
		} else {
			seat.Status = models.ScoreLose
		}
	}
}

func disqualify(snap Snapshot, playerID int) error {
	seat := seatByPlayer(snap, playerID)
	if seat == nil {
		return fmt.Errorf("%w: player %d is not seated in this match", ErrInvalidPayload, playerID)
	}
	if seat.Status.Terminal() {
		return fmt.Errorf("%w: player %d is already out of play", ErrRuleViolation, playerID)
	}
	rank := nextOutRank(snap)
	seat.Status = models.ScoreDisqualified
	seat.Rank = &rank
	return nil
}

// activeSeat resolves a question-closing answer to a seat that is allowed
// to answer. Waiting and set_win seats sit out until the next transition.
func activeSeat(snap Snapshot, playerID int) (*SeatScore, error) {
	seat := seatByPlayer(snap, playerID)
	if seat == nil {
		return nil, fmt.Errorf("%w: player %d is not seated in this match", ErrInvalidPayload, playerID)
	}
	if seat.Status != models.ScorePlaying {
		return nil, fmt.Errorf("%w: player %d is not in play", ErrInvalidPayload, playerID)
	}
	return seat, nil
}

func validateAnswers(answers []models.PlayerAnswer) error {
	seen := make(map[int]bool, len(answers))
	for _, a := range answers {
		if seen[a.PlayerID] {
			return fmt.Errorf("%w: duplicate answer for player %d", ErrInvalidPayload, a.PlayerID)
		}
		seen[a.PlayerID] = true
		if a.Result != models.ResultCorrect && a.Result != models.ResultWrong {
			return fmt.Errorf("%w: unknown result %q", ErrInvalidPayload, a.Result)
		}
	}
	return nil
}
