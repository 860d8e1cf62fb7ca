package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hokuto-abe/quiz-grandprix/models"
	"github.com/hokuto-abe/quiz-grandprix/scoring"
)

// LedgerStore backs the score ledger with postgres. Append and MoveHead
// each run in their own short transaction so the operation row, its
// snapshot and the tip move together or not at all.
type LedgerStore struct {
	db        *sql.DB
	matches   MatchRepository
	matchings MatchingRepository
	ops       ScoreOperationRepository
	scores    ScoreRepository
}

func NewLedgerStore(db *sql.DB, matches MatchRepository, matchings MatchingRepository, ops ScoreOperationRepository, scores ScoreRepository) *LedgerStore {
	return &LedgerStore{db: db, matches: matches, matchings: matchings, ops: ops, scores: scores}
}

func (s *LedgerStore) Match(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return nil, fmt.Errorf("match %d: %w", matchID, scoring.ErrMatchNotFound)
		}
		return nil, err
	}
	return match, nil
}

func (s *LedgerStore) Seating(ctx context.Context, matchID int) ([]models.Matching, error) {
	return s.matchings.ListByMatch(ctx, nil, matchID)
}

func (s *LedgerStore) Operation(ctx context.Context, operationID int64) (*models.ScoreOperation, error) {
	return s.ops.GetByID(ctx, nil, operationID)
}

func (s *LedgerStore) Snapshot(ctx context.Context, operationID int64) (scoring.Snapshot, error) {
	op, err := s.ops.GetByID(ctx, nil, operationID)
	if err != nil {
		return nil, err
	}
	seating, err := s.matchings.ListByMatch(ctx, nil, op.MatchID)
	if err != nil {
		return nil, err
	}
	scores, err := s.scores.ListByOperation(ctx, nil, operationID)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("operation %d: %w", operationID, scoring.ErrSnapshotMissing)
	}

	byMatching := make(map[int64]models.Matching, len(seating))
	for _, mg := range seating {
		byMatching[mg.ID] = mg
	}
	snap := make(scoring.Snapshot, 0, len(scores))
	for _, sc := range scores {
		mg, ok := byMatching[sc.MatchingID]
		if !ok {
			return nil, fmt.Errorf("score %d references matching %d outside match %d", sc.ID, sc.MatchingID, op.MatchID)
		}
		snap = append(snap, scoring.SeatScore{
			MatchingID: mg.ID,
			PlayerID:   mg.PlayerID,
			Seat:       mg.Seat,
			Status:     sc.Status,
			Points:     sc.Points,
			Misses:     sc.Misses,
			Stars:      sc.Stars,
			Rank:       sc.Rank,
		})
	}
	return snap, nil
}

func (s *LedgerStore) Append(ctx context.Context, op *models.ScoreOperation, snap scoring.Snapshot, prevHead *int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.ops.Create(ctx, tx, op); err != nil {
			return err
		}
		scores := make([]*models.Score, 0, len(snap))
		for _, seat := range snap {
			scores = append(scores, &models.Score{
				ScoreOperationID: op.ID,
				MatchingID:       seat.MatchingID,
				Status:           seat.Status,
				Points:           seat.Points,
				Misses:           seat.Misses,
				Stars:            seat.Stars,
				Rank:             seat.Rank,
			})
		}
		if err := s.scores.CreateBatch(ctx, tx, scores); err != nil {
			return err
		}
		err := s.matches.UpdateLastOperation(ctx, tx, op.MatchID, prevHead, &op.ID)
		if errors.Is(err, ErrMatchTipConflict) {
			return fmt.Errorf("match %d: %w", op.MatchID, scoring.ErrConflict)
		}
		return err
	})
}

func (s *LedgerStore) MoveHead(ctx context.Context, matchID int, from int64, to *int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		err := s.matches.UpdateLastOperation(ctx, tx, matchID, &from, to)
		if errors.Is(err, ErrMatchTipConflict) {
			return fmt.Errorf("match %d: %w", matchID, scoring.ErrConflict)
		}
		return err
	})
}

func (s *LedgerStore) OverwriteSnapshot(ctx context.Context, operationID int64, snap scoring.Snapshot) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, seat := range snap {
			score := &models.Score{
				ScoreOperationID: operationID,
				MatchingID:       seat.MatchingID,
				Status:           seat.Status,
				Points:           seat.Points,
				Misses:           seat.Misses,
				Stars:            seat.Stars,
				Rank:             seat.Rank,
			}
			if err := s.scores.UpdateByOperationAndMatching(ctx, tx, score); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *LedgerStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
