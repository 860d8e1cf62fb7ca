// Package matchmaking computes seat assignments for each round of the
// bracket. Every planner is a pure function over prior-round snapshots
// and static seeding data: it validates completeness, accumulates
// user-correctable problems into ValidationErrors, and reserves hard
// errors for data states that should be impossible.
package matchmaking

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hokuto-abe/quiz-grandprix/models"
	"github.com/hokuto-abe/quiz-grandprix/scoring"
)

// ErrInvariant marks upstream data corruption (a required candidate is
// simply not there). Not retryable and never shown as a form error.
var ErrInvariant = errors.New("matchmaking invariant violated")

// Assignment seats one player.
type Assignment struct {
	MatchID  int `json:"match_id"`
	Seat     int `json:"seat"`
	PlayerID int `json:"player_id"`
}

// Plan is a full round's seating, ready to be persisted wholesale.
type Plan struct {
	RoundID     int          `json:"round_id"`
	Assignments []Assignment `json:"assignments"`
}

// ValidationErrors collects every precondition problem found in one run,
// so operators see the complete list instead of the first hit.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// MatchState is a feeder match with its final snapshot.
type MatchState struct {
	Match models.Match
	Seats scoring.Snapshot
}

// Complete reports whether every seat has been ranked, which is how a
// finished match looks under every rule.
func (m MatchState) Complete() bool {
	if len(m.Seats) == 0 {
		return false
	}
	for _, s := range m.Seats {
		if s.Rank == nil {
			return false
		}
	}
	return true
}

// Winners returns the seats that advanced, ordered by rank.
func (m MatchState) Winners() []scoring.SeatScore {
	var won []scoring.SeatScore
	for _, s := range m.Seats {
		if s.Status == models.ScoreWin {
			won = append(won, s)
		}
	}
	sort.SliceStable(won, func(i, j int) bool {
		return rankOrInf(won[i].Rank) < rankOrInf(won[j].Rank)
	})
	return won
}

// rankOrInf sends nil ranks to the end of any ascending sort.
func rankOrInf(r *int) int {
	if r == nil {
		return int(^uint(0) >> 1)
	}
	return *r
}

// rankIndex maps player id to paper rank, reporting duplicates and gaps:
// paper ranks are dense 1..N by construction and everything downstream
// leans on that.
func rankIndex(results []models.YontakuPlayerResult) (map[int]int, ValidationErrors) {
	var verr ValidationErrors
	byRank := make(map[int]int, len(results))
	byPlayer := make(map[int]int, len(results))
	for _, r := range results {
		if _, dup := byRank[r.Rank]; dup {
			verr = append(verr, fmt.Sprintf("duplicate paper rank %d", r.Rank))
			continue
		}
		byRank[r.Rank] = r.PlayerID
		byPlayer[r.PlayerID] = r.Rank
	}
	for rank := 1; rank <= len(byRank); rank++ {
		if _, ok := byRank[rank]; !ok {
			verr = append(verr, fmt.Sprintf("paper ranks are not dense: rank %d is missing", rank))
		}
	}
	return byPlayer, verr
}

func playerByRank(results []models.YontakuPlayerResult) map[int]int {
	byRank := make(map[int]int, len(results))
	for _, r := range results {
		byRank[r.Rank] = r.PlayerID
	}
	return byRank
}

func requireComplete(states []MatchState, verr ValidationErrors) ValidationErrors {
	for _, st := range states {
		if !st.Complete() {
			verr = append(verr, fmt.Sprintf("match %q is not finished", st.Match.Name))
		}
	}
	return verr
}
