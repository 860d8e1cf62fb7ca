package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hokuto-abe/quiz-grandprix/live"
	"github.com/hokuto-abe/quiz-grandprix/matchmaking"
	"github.com/hokuto-abe/quiz-grandprix/metrics"
	"github.com/hokuto-abe/quiz-grandprix/models"
	"github.com/hokuto-abe/quiz-grandprix/repositories"
	"github.com/hokuto-abe/quiz-grandprix/scoring"
)

// MatchmakingService plans and persists a round's seating. A run replaces
// the round's matchings wholesale and opens every match's operation chain
// in the same transaction, so a half-seated round can never be observed.
type MatchmakingService interface {
	Run(ctx context.Context, roundID int, force bool) (*matchmaking.Plan, error)
}

type matchmakingService struct {
	db          *sql.DB
	rounds      repositories.RoundRepository
	matches     repositories.MatchRepository
	matchings   repositories.MatchingRepository
	ops         repositories.ScoreOperationRepository
	scores      repositories.ScoreRepository
	results     repositories.YontakuResultRepository
	players     repositories.PlayerRepository
	preferences repositories.CoursePreferenceRepository
	snapshots   scoring.Store
	hub         *live.Hub
	logger      *slog.Logger
}

func NewMatchmakingService(
	db *sql.DB,
	rounds repositories.RoundRepository,
	matches repositories.MatchRepository,
	matchings repositories.MatchingRepository,
	ops repositories.ScoreOperationRepository,
	scores repositories.ScoreRepository,
	results repositories.YontakuResultRepository,
	players repositories.PlayerRepository,
	preferences repositories.CoursePreferenceRepository,
	snapshots scoring.Store,
	hub *live.Hub,
	logger *slog.Logger,
) MatchmakingService {
	return &matchmakingService{
		db:          db,
		rounds:      rounds,
		matches:     matches,
		matchings:   matchings,
		ops:         ops,
		scores:      scores,
		results:     results,
		players:     players,
		preferences: preferences,
		snapshots:   snapshots,
		hub:         hub,
		logger:      logger,
	}
}

func (s *matchmakingService) Run(ctx context.Context, roundID int, force bool) (*matchmaking.Plan, error) {
	round, err := s.rounds.GetByID(ctx, nil, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	seated, err := s.matchings.CountByRound(ctx, nil, roundID)
	if err != nil {
		return nil, err
	}
	if seated > 0 && !force {
		s.recordRun(round.Kind, "already_seated")
		return nil, fmt.Errorf("round %d: %w", roundID, ErrRoundAlreadySeated)
	}

	plan, err := s.plan(ctx, round)
	if err != nil {
		s.recordRun(round.Kind, "rejected")
		return nil, err
	}

	if err := s.persist(ctx, round, plan, force); err != nil {
		s.recordRun(round.Kind, "failed")
		return nil, err
	}
	s.recordRun(round.Kind, "ok")
	s.logger.Info("round seated",
		slog.Int("round_id", roundID),
		slog.String("kind", string(round.Kind)),
		slog.Int("assignments", len(plan.Assignments)),
		slog.Bool("force", force))

	s.broadcast(ctx, plan)
	return plan, nil
}

// plan dispatches to the round kind's planner with the feeder state it
// needs.
func (s *matchmakingService) plan(ctx context.Context, round *models.Round) (*matchmaking.Plan, error) {
	results, err := s.results.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	switch round.Kind {
	case models.RoundRound2:
		omote, ura, err := s.round2Targets(ctx, round.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]int, 0, len(results))
		for _, r := range results {
			ids = append(ids, r.PlayerID)
		}
		players, err := s.players.ListByIDs(ctx, nil, ids)
		if err != nil {
			return nil, err
		}
		return matchmaking.PlanRound2(matchmaking.Round2Input{
			RoundID:      round.ID,
			OmoteMatches: omote,
			UraMatches:   ura,
			Results:      results,
			Players:      players,
		})

	case models.RoundPlayoff:
		targets, err := s.targetMatches(ctx, round.ID)
		if err != nil {
			return nil, err
		}
		omote, ura, err := s.round2States(ctx)
		if err != nil {
			return nil, err
		}
		return matchmaking.PlanPlayoff(matchmaking.PlayoffInput{
			RoundID: round.ID,
			Targets: targets,
			Omote:   omote,
			Ura:     ura,
		})

	case models.RoundRound3:
		targets, err := s.targetMatches(ctx, round.ID)
		if err != nil {
			return nil, err
		}
		omote, _, err := s.round2States(ctx)
		if err != nil {
			return nil, err
		}
		playoff, err := s.roundStates(ctx, models.RoundPlayoff)
		if err != nil {
			return nil, err
		}
		prefs, err := s.preferences.List(ctx, nil)
		if err != nil {
			return nil, err
		}
		return matchmaking.PlanRound3(matchmaking.Round3Input{
			RoundID:     round.ID,
			Targets:     targets,
			Results:     results,
			Omote:       omote,
			Playoff:     playoff,
			Preferences: prefs,
		})

	case models.RoundQuarterfinal, models.RoundSemifinal, models.RoundFinal:
		targets, err := s.targetMatches(ctx, round.ID)
		if err != nil {
			return nil, err
		}
		previous, err := s.roundStates(ctx, feederKind(round.Kind))
		if err != nil {
			return nil, err
		}
		in := matchmaking.KnockoutInput{
			RoundID:  round.ID,
			Targets:  targets,
			Previous: previous,
			Results:  results,
		}
		switch round.Kind {
		case models.RoundQuarterfinal:
			return matchmaking.PlanQuarterfinal(in)
		case models.RoundSemifinal:
			return matchmaking.PlanSemifinal(in)
		default:
			return matchmaking.PlanFinal(in)
		}

	default:
		return nil, fmt.Errorf("round kind %s: %w", round.Kind, ErrUnknownRoundKind)
	}
}

func feederKind(kind models.RoundKind) models.RoundKind {
	switch kind {
	case models.RoundQuarterfinal:
		return models.RoundRound3
	case models.RoundSemifinal:
		return models.RoundQuarterfinal
	default:
		return models.RoundSemifinal
	}
}

func (s *matchmakingService) targetMatches(ctx context.Context, roundID int) ([]models.Match, error) {
	matches, err := s.matches.ListByRound(ctx, nil, roundID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, *m)
	}
	return out, nil
}

func (s *matchmakingService) round2Targets(ctx context.Context, roundID int) (omote, ura []models.Match, err error) {
	matches, err := s.targetMatches(ctx, roundID)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range matches {
		switch m.Rule {
		case models.RuleRound2Omote:
			omote = append(omote, m)
		case models.RuleRound2Ura:
			ura = append(ura, m)
		default:
			return nil, nil, fmt.Errorf("match %d has rule %s outside round2", m.ID, m.Rule)
		}
	}
	return omote, ura, nil
}

func (s *matchmakingService) round2States(ctx context.Context) (omote, ura []matchmaking.MatchState, err error) {
	states, err := s.roundStates(ctx, models.RoundRound2)
	if err != nil {
		return nil, nil, err
	}
	for _, st := range states {
		if st.Match.Rule == models.RuleRound2Omote {
			omote = append(omote, st)
		} else {
			ura = append(ura, st)
		}
	}
	return omote, ura, nil
}

// roundStates loads every match of a round with its current snapshot. An
// unopened match surfaces as an incomplete state, which the planners turn
// into a validation error.
func (s *matchmakingService) roundStates(ctx context.Context, kind models.RoundKind) ([]matchmaking.MatchState, error) {
	round, err := s.rounds.GetByKind(ctx, nil, kind)
	if err != nil {
		return nil, err
	}
	matches, err := s.matches.ListByRound(ctx, nil, round.ID)
	if err != nil {
		return nil, err
	}

	states := make([]matchmaking.MatchState, 0, len(matches))
	for _, m := range matches {
		state := matchmaking.MatchState{Match: *m}
		if m.LastScoreOperationID != nil {
			snap, err := s.snapshots.Snapshot(ctx, *m.LastScoreOperationID)
			if err != nil {
				return nil, err
			}
			state.Seats = snap
		}
		states = append(states, state)
	}
	return states, nil
}

// persist writes the plan in one transaction: wipe (when forced), seat,
// then open every match's chain with its initial snapshot.
func (s *matchmakingService) persist(ctx context.Context, round *models.Round, plan *matchmaking.Plan, force bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if force {
		if err := s.matches.ClearLastOperationByRound(ctx, tx, round.ID); err != nil {
			return err
		}
		if err := s.ops.DeleteByRound(ctx, tx, round.ID); err != nil {
			return err
		}
		if err := s.matchings.DeleteByRound(ctx, tx, round.ID); err != nil {
			return err
		}
	}

	seatings := make(map[int][]models.Matching)
	rules := make(map[int]models.RuleKind)
	for _, a := range plan.Assignments {
		matching := &models.Matching{MatchID: a.MatchID, PlayerID: a.PlayerID, Seat: a.Seat}
		if err := s.matchings.Create(ctx, tx, matching); err != nil {
			return err
		}
		seatings[a.MatchID] = append(seatings[a.MatchID], *matching)
	}
	matches, err := s.matches.ListByRound(ctx, tx, round.ID)
	if err != nil {
		return err
	}
	for _, m := range matches {
		rules[m.ID] = m.Rule
	}

	for matchID, seating := range seatings {
		snap, err := scoring.OpeningSnapshot(rules[matchID], seating)
		if err != nil {
			return err
		}
		op := &models.ScoreOperation{MatchID: matchID, Kind: models.OpMatchOpening}
		if err := s.ops.Create(ctx, tx, op); err != nil {
			return err
		}
		rows := make([]*models.Score, 0, len(snap))
		for _, seat := range snap {
			rows = append(rows, &models.Score{
				ScoreOperationID: op.ID,
				MatchingID:       seat.MatchingID,
				Status:           seat.Status,
				Points:           seat.Points,
				Misses:           seat.Misses,
				Stars:            seat.Stars,
				Rank:             seat.Rank,
			})
		}
		if err := s.scores.CreateBatch(ctx, tx, rows); err != nil {
			return err
		}
		if err := s.matches.UpdateLastOperation(ctx, tx, matchID, nil, &op.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *matchmakingService) broadcast(ctx context.Context, plan *matchmaking.Plan) {
	if s.hub == nil {
		return
	}
	byMatch := make(map[int][]matchmaking.Assignment)
	for _, a := range plan.Assignments {
		byMatch[a.MatchID] = append(byMatch[a.MatchID], a)
	}
	for matchID, assignments := range byMatch {
		s.hub.BroadcastToMatch(matchID, live.EventMatchingsUpdated, assignments)
	}
}

func (s *matchmakingService) recordRun(kind models.RoundKind, outcome string) {
	metrics.MatchmakingRuns.WithLabelValues(string(kind), outcome).Inc()
}
