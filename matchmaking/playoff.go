package matchmaking

import (
	"fmt"
	"sort"

	"github.com/hokuto-abe/quiz-grandprix/models"
	"github.com/hokuto-abe/quiz-grandprix/scoring"
)

const (
	PlayoffMatches   = 5
	PlayoffSeatCount = 10

	omoteLosersPerMatch = 6
	uraWinnersPerMatch  = 4
)

type sourceRoom string

const (
	roomOmote sourceRoom = "omote"
	roomUra   sourceRoom = "ura"
)

// seatSource names one candidate: the nth-placed player of a source
// match in a room. match and place are 1-based.
type seatSource struct {
	room  sourceRoom
	match int
	place int
}

// playoffSeatTable fixes, for each playoff match, which candidate fills
// which seat. Seats 0-5 take Omote losers and 6-9 Ura winners; sources
// rotate so every (source match, place) pair is consumed exactly once.
var playoffSeatTable = [PlayoffMatches][PlayoffSeatCount]seatSource{
	{{roomOmote, 1, 1}, {roomOmote, 2, 2}, {roomOmote, 3, 3}, {roomOmote, 4, 4}, {roomOmote, 5, 5}, {roomOmote, 1, 6}, {roomUra, 1, 1}, {roomUra, 2, 2}, {roomUra, 3, 3}, {roomUra, 4, 4}},
	{{roomOmote, 2, 1}, {roomOmote, 3, 2}, {roomOmote, 4, 3}, {roomOmote, 5, 4}, {roomOmote, 1, 5}, {roomOmote, 2, 6}, {roomUra, 2, 1}, {roomUra, 3, 2}, {roomUra, 4, 3}, {roomUra, 5, 4}},
	{{roomOmote, 3, 1}, {roomOmote, 4, 2}, {roomOmote, 5, 3}, {roomOmote, 1, 4}, {roomOmote, 2, 5}, {roomOmote, 3, 6}, {roomUra, 3, 1}, {roomUra, 4, 2}, {roomUra, 5, 3}, {roomUra, 1, 4}},
	{{roomOmote, 4, 1}, {roomOmote, 5, 2}, {roomOmote, 1, 3}, {roomOmote, 2, 4}, {roomOmote, 3, 5}, {roomOmote, 4, 6}, {roomUra, 4, 1}, {roomUra, 5, 2}, {roomUra, 1, 3}, {roomUra, 2, 4}},
	{{roomOmote, 5, 1}, {roomOmote, 1, 2}, {roomOmote, 2, 3}, {roomOmote, 3, 4}, {roomOmote, 4, 5}, {roomOmote, 5, 6}, {roomUra, 5, 1}, {roomUra, 1, 2}, {roomUra, 2, 3}, {roomUra, 3, 4}},
}

// PlayoffInput carries the completed Round2 state. Feeder slices are
// ordered by match number.
type PlayoffInput struct {
	RoundID int
	Targets []models.Match
	Omote   []MatchState
	Ura     []MatchState
}

// OmoteLosers ranks a finished Omote group's eliminated players by points
// desc, misses asc, seat asc. Disqualified players are not revived.
func OmoteLosers(st MatchState) []scoring.SeatScore {
	var out []scoring.SeatScore
	for _, s := range st.Seats {
		if s.Status == models.ScoreLose {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Misses != b.Misses {
			return a.Misses < b.Misses
		}
		return a.Seat < b.Seat
	})
	return out
}

// UraWinners ranks a finished Ura group's winners by their stored rank,
// ascending; a nil rank sorts last.
func UraWinners(st MatchState) []scoring.SeatScore {
	won := st.Winners()
	sort.SliceStable(won, func(i, j int) bool {
		return rankOrInf(won[i].Rank) < rankOrInf(won[j].Rank)
	})
	return won
}

// capPool keeps only the candidates the seat table can actually consume.
func capPool(pool []scoring.SeatScore, max int) []scoring.SeatScore {
	if len(pool) > max {
		return pool[:max]
	}
	return pool
}

// PlanPlayoff pools the Omote losers and Ura winners and seats them
// through the fixed lookup table. A hole in the candidate pool is
// operator data corruption and fails hard.
func PlanPlayoff(in PlayoffInput) (*Plan, error) {
	var verr ValidationErrors
	if len(in.Targets) != PlayoffMatches {
		verr = append(verr, fmt.Sprintf("expected %d playoff matches, got %d", PlayoffMatches, len(in.Targets)))
	}
	if len(in.Omote) != OmoteGroups {
		verr = append(verr, fmt.Sprintf("expected %d finished omote matches, got %d", OmoteGroups, len(in.Omote)))
	}
	if len(in.Ura) != UraGroups {
		verr = append(verr, fmt.Sprintf("expected %d finished ura matches, got %d", UraGroups, len(in.Ura)))
	}
	verr = requireComplete(in.Omote, verr)
	verr = requireComplete(in.Ura, verr)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	losers := make([][]scoring.SeatScore, len(in.Omote))
	for i, st := range in.Omote {
		losers[i] = capPool(OmoteLosers(st), omoteLosersPerMatch)
	}
	winners := make([][]scoring.SeatScore, len(in.Ura))
	for i, st := range in.Ura {
		winners[i] = capPool(UraWinners(st), uraWinnersPerMatch)
	}

	plan := &Plan{RoundID: in.RoundID}
	for t, row := range playoffSeatTable {
		match := in.Targets[t]
		for seat, src := range row {
			var pool []scoring.SeatScore
			switch src.room {
			case roomOmote:
				pool = losers[src.match-1]
			case roomUra:
				pool = winners[src.match-1]
			}
			if src.place > len(pool) {
				return nil, fmt.Errorf("%w: %s match %d has no %d-placed candidate", ErrInvariant, src.room, src.match, src.place)
			}
			plan.Assignments = append(plan.Assignments, Assignment{
				MatchID:  match.ID,
				Seat:     seat,
				PlayerID: pool[src.place-1].PlayerID,
			})
		}
	}
	return plan, nil
}
