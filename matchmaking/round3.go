package matchmaking

import (
	"fmt"
	"sort"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

const (
	Round3Courses   = 4
	Round3SeatCount = 8
)

// Round3Input pools the seeded players with the Round2 Omote and Playoff
// winners and seats them by course preference.
type Round3Input struct {
	RoundID     int
	Targets     []models.Match
	Results     []models.YontakuPlayerResult
	Omote       []MatchState
	Playoff     []MatchState
	Preferences map[int]models.RoundCoursePreference
}

// PlanRound3 sorts the candidate pool by paper rank and greedily gives
// each player the first of their four course choices that still has room.
// Total course capacity equals the pool size, so a player whose four
// choices are all full means the books no longer balance: that fails
// hard rather than silently dropping the player.
func PlanRound3(in Round3Input) (*Plan, error) {
	ranks, verr := rankIndex(in.Results)
	if len(in.Targets) != Round3Courses {
		verr = append(verr, fmt.Sprintf("expected %d round3 courses, got %d", Round3Courses, len(in.Targets)))
	}
	verr = requireComplete(in.Omote, verr)
	verr = requireComplete(in.Playoff, verr)

	byRank := playerByRank(in.Results)
	var pool []int
	for rank := 1; rank <= NumSeeds; rank++ {
		playerID, ok := byRank[rank]
		if !ok {
			verr = append(verr, fmt.Sprintf("seeded rank %d has no player", rank))
			continue
		}
		pool = append(pool, playerID)
	}
	for _, st := range in.Omote {
		for _, w := range st.Winners() {
			pool = append(pool, w.PlayerID)
		}
	}
	for _, st := range in.Playoff {
		for _, w := range st.Winners() {
			pool = append(pool, w.PlayerID)
		}
	}

	want := Round3Courses * Round3SeatCount
	if len(pool) != want {
		verr = append(verr, fmt.Sprintf("round3 needs exactly %d qualified players, got %d", want, len(pool)))
	}

	validCourse := make(map[int]bool, len(in.Targets))
	for _, m := range in.Targets {
		validCourse[m.ID] = true
	}
	for _, playerID := range pool {
		pref, ok := in.Preferences[playerID]
		if !ok {
			verr = append(verr, fmt.Sprintf("player %d has no course preference", playerID))
			continue
		}
		seen := make(map[int]bool, 4)
		for _, choice := range pref.Choices() {
			if !validCourse[choice] {
				verr = append(verr, fmt.Sprintf("player %d prefers unknown course %d", playerID, choice))
			}
			if seen[choice] {
				verr = append(verr, fmt.Sprintf("player %d lists course %d twice", playerID, choice))
			}
			seen[choice] = true
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	for _, playerID := range pool {
		if _, ok := ranks[playerID]; !ok {
			return nil, fmt.Errorf("%w: qualified player %d has no paper result", ErrInvariant, playerID)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool { return ranks[pool[i]] < ranks[pool[j]] })

	filled := make(map[int]int, len(in.Targets))
	plan := &Plan{RoundID: in.RoundID}
	for _, playerID := range pool {
		pref := in.Preferences[playerID]
		seated := false
		for _, choice := range pref.Choices() {
			if filled[choice] >= Round3SeatCount {
				continue
			}
			plan.Assignments = append(plan.Assignments, Assignment{
				MatchID:  choice,
				Seat:     filled[choice],
				PlayerID: playerID,
			})
			filled[choice]++
			seated = true
			break
		}
		if !seated {
			return nil, fmt.Errorf("%w: all preferred courses of player %d are full", ErrInvariant, playerID)
		}
	}
	return plan, nil
}
