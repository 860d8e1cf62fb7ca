package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/hokuto-abe/quiz-grandprix/models"
	"github.com/hokuto-abe/quiz-grandprix/repositories"
	"github.com/hokuto-abe/quiz-grandprix/scoring"
)

// SeatView joins a matching with its player for display.
type SeatView struct {
	Seat     int           `json:"seat"`
	Player   models.Player `json:"player"`
	PlayerID int           `json:"player_id"`
}

// MatchView is everything a spectator page needs for one match.
type MatchView struct {
	Match    models.Match     `json:"match"`
	Seats    []SeatView       `json:"seats"`
	Snapshot scoring.Snapshot `json:"snapshot,omitempty"`
}

type RoundOverview struct {
	Round   models.Round `json:"round"`
	Matches []MatchView  `json:"matches"`
}

type DashboardService interface {
	ListRounds(ctx context.Context) ([]*models.Round, error)
	GetRoundOverview(ctx context.Context, roundID int) (*RoundOverview, error)
	GetMatchView(ctx context.Context, matchID int) (*MatchView, error)
}

type dashboardService struct {
	rounds    repositories.RoundRepository
	matches   repositories.MatchRepository
	matchings repositories.MatchingRepository
	players   repositories.PlayerRepository
	snapshots scoring.Store
}

func NewDashboardService(
	rounds repositories.RoundRepository,
	matches repositories.MatchRepository,
	matchings repositories.MatchingRepository,
	players repositories.PlayerRepository,
	snapshots scoring.Store,
) DashboardService {
	return &dashboardService{
		rounds:    rounds,
		matches:   matches,
		matchings: matchings,
		players:   players,
		snapshots: snapshots,
	}
}

func (s *dashboardService) ListRounds(ctx context.Context) ([]*models.Round, error) {
	return s.rounds.List(ctx, nil)
}

// GetRoundOverview assembles every match view of the round, fetching the
// matches in parallel.
func (s *dashboardService) GetRoundOverview(ctx context.Context, roundID int) (*RoundOverview, error) {
	round, err := s.rounds.GetByID(ctx, nil, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	matches, err := s.matches.ListByRound(ctx, nil, roundID)
	if err != nil {
		return nil, err
	}

	views := make([]MatchView, len(matches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, match := range matches {
		i, match := i, match
		g.Go(func() error {
			view, err := s.buildMatchView(gctx, match)
			if err != nil {
				return err
			}
			views[i] = *view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &RoundOverview{Round: *round, Matches: views}, nil
}

func (s *dashboardService) GetMatchView(ctx context.Context, matchID int) (*MatchView, error) {
	match, err := s.matches.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.buildMatchView(ctx, match)
}

func (s *dashboardService) buildMatchView(ctx context.Context, match *models.Match) (*MatchView, error) {
	seating, err := s.matchings.ListByMatch(ctx, nil, match.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(seating))
	for _, mg := range seating {
		ids = append(ids, mg.PlayerID)
	}
	players, err := s.players.ListByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}

	view := &MatchView{Match: *match}
	for _, mg := range seating {
		view.Seats = append(view.Seats, SeatView{
			Seat:     mg.Seat,
			Player:   players[mg.PlayerID],
			PlayerID: mg.PlayerID,
		})
	}
	if match.LastScoreOperationID != nil {
		snap, err := s.snapshots.Snapshot(ctx, *match.LastScoreOperationID)
		if err != nil {
			return nil, err
		}
		view.Snapshot = snap
	}
	return view, nil
}
