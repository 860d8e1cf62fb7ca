package matchmaking

import (
	"fmt"
	"sort"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

// Bracket arithmetic. Paper ranks 1..NumSeeds skip Round2 entirely; the
// Omote groups snake-band the next 50 ranks and the Ura groups the 60
// after that.
const (
	NumSeeds = 7

	OmoteGroups    = 5
	OmoteSeatCount = 10
	UraGroups      = 5
	UraSeatCount   = 12

	omoteFirstRank = NumSeeds + 1                                // 8
	uraFirstRank   = omoteFirstRank + OmoteGroups*OmoteSeatCount // 58
	lastBandedRank = uraFirstRank + UraGroups*UraSeatCount - 1   // 117
)

// Round2Input is everything the Round2 planner reads. Matches are the
// target round's, ordered by match number; Players backs the kana sort of
// the Ura groups.
type Round2Input struct {
	RoundID      int
	OmoteMatches []models.Match
	UraMatches   []models.Match
	Results      []models.YontakuPlayerResult
	Players      map[int]models.Player
}

// snakeBands deals ranks serpentine across groups: row 0 left to right,
// row 1 right to left, and so on, so that every group's rank load is
// balanced. bands[g] lists the ranks of group g in banding order.
func snakeBands(firstRank, groups, rows int) [][]int {
	bands := make([][]int, groups)
	for g := range bands {
		bands[g] = make([]int, 0, rows)
	}
	rank := firstRank
	for row := 0; row < rows; row++ {
		for i := 0; i < groups; i++ {
			g := i
			if row%2 == 1 {
				g = groups - 1 - i
			}
			bands[g] = append(bands[g], rank)
			rank++
		}
	}
	return bands
}

// PlanRound2 partitions the paper-round ranking into the ten Round2
// groups. Omote bands are mandatory: a banded rank with no player is data
// corruption. Ura bands are best effort (trailing ranks may not exist
// when the field is short) and each Ura group is seated in kana order
// rather than rank order.
func PlanRound2(in Round2Input) (*Plan, error) {
	_, verr := rankIndex(in.Results)
	if len(in.OmoteMatches) != OmoteGroups {
		verr = append(verr, fmt.Sprintf("expected %d omote matches, got %d", OmoteGroups, len(in.OmoteMatches)))
	}
	if len(in.UraMatches) != UraGroups {
		verr = append(verr, fmt.Sprintf("expected %d ura matches, got %d", UraGroups, len(in.UraMatches)))
	}
	if len(in.Results) < uraFirstRank-1 {
		verr = append(verr, fmt.Sprintf("need at least %d ranked players to seat the omote groups, got %d", uraFirstRank-1, len(in.Results)))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	byRank := playerByRank(in.Results)
	plan := &Plan{RoundID: in.RoundID}

	for g, band := range snakeBands(omoteFirstRank, OmoteGroups, OmoteSeatCount) {
		match := in.OmoteMatches[g]
		for seat, rank := range band {
			playerID, ok := byRank[rank]
			if !ok {
				return nil, fmt.Errorf("%w: omote band rank %d has no player", ErrInvariant, rank)
			}
			plan.Assignments = append(plan.Assignments, Assignment{MatchID: match.ID, Seat: seat, PlayerID: playerID})
		}
	}

	for g, band := range snakeBands(uraFirstRank, UraGroups, UraSeatCount) {
		match := in.UraMatches[g]
		var group []models.Player
		for _, rank := range band {
			playerID, ok := byRank[rank]
			if !ok {
				continue // short field, ura seats go unfilled
			}
			player, ok := in.Players[playerID]
			if !ok {
				return nil, fmt.Errorf("%w: no player record for id %d (rank %d)", ErrInvariant, playerID, rank)
			}
			group = append(group, player)
		}
		sortByKana(group)
		for seat, player := range group {
			plan.Assignments = append(plan.Assignments, Assignment{MatchID: match.ID, Seat: seat, PlayerID: player.ID})
		}
	}

	return plan, nil
}

// sortByKana orders players by reading, falling back to the written name
// so the order is total even for identical readings.
func sortByKana(players []models.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].NameKana != players[j].NameKana {
			return players[i].NameKana < players[j].NameKana
		}
		return players[i].Name < players[j].Name
	})
}
