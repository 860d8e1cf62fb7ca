package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hokuto-abe/quiz-grandprix/metrics"
	"github.com/hokuto-abe/quiz-grandprix/models"
	"github.com/hokuto-abe/quiz-grandprix/scoring"
)

// ScoreService fronts the ledger for the HTTP layer: it translates
// requests into ledger calls and keeps the instrumentation counters.
type ScoreService interface {
	ApplyOperation(ctx context.Context, matchID int, kind models.OperationKind, payload models.OperationPayload) (*models.ScoreOperation, scoring.Snapshot, error)
	Undo(ctx context.Context, matchID int) (*models.ScoreOperation, scoring.Snapshot, error)
	CurrentSnapshot(ctx context.Context, matchID int) (scoring.Snapshot, error)
	FreeEdit(ctx context.Context, matchID int, overrides []scoring.SeatOverride) (scoring.Snapshot, error)
}

type scoreService struct {
	ledger *scoring.Ledger
	logger *slog.Logger
}

func NewScoreService(ledger *scoring.Ledger, logger *slog.Logger) ScoreService {
	return &scoreService{ledger: ledger, logger: logger}
}

func (s *scoreService) ApplyOperation(ctx context.Context, matchID int, kind models.OperationKind, payload models.OperationPayload) (*models.ScoreOperation, scoring.Snapshot, error) {
	op, err := s.ledger.Apply(ctx, matchID, kind, payload)
	if err != nil {
		if errors.Is(err, scoring.ErrConflict) {
			metrics.OperationConflicts.Inc()
		}
		return nil, nil, err
	}
	metrics.OperationsApplied.WithLabelValues(string(kind)).Inc()
	s.logger.Info("score operation applied",
		slog.Int("match_id", matchID),
		slog.String("kind", string(kind)),
		slog.Int64("operation_id", op.ID))

	snap, err := s.ledger.CurrentSnapshot(ctx, matchID)
	if err != nil {
		return op, nil, err
	}
	return op, snap, nil
}

func (s *scoreService) Undo(ctx context.Context, matchID int) (*models.ScoreOperation, scoring.Snapshot, error) {
	tip, err := s.ledger.Undo(ctx, matchID)
	if err != nil {
		if errors.Is(err, scoring.ErrConflict) {
			metrics.OperationConflicts.Inc()
		}
		return nil, nil, err
	}
	metrics.OperationsUndone.Inc()
	s.logger.Info("score operation undone",
		slog.Int("match_id", matchID),
		slog.Int64("new_tip", tip.ID))

	snap, err := s.ledger.CurrentSnapshot(ctx, matchID)
	if err != nil {
		return tip, nil, err
	}
	return tip, snap, nil
}

func (s *scoreService) CurrentSnapshot(ctx context.Context, matchID int) (scoring.Snapshot, error) {
	return s.ledger.CurrentSnapshot(ctx, matchID)
}

func (s *scoreService) FreeEdit(ctx context.Context, matchID int, overrides []scoring.SeatOverride) (scoring.Snapshot, error) {
	if len(overrides) == 0 {
		return nil, ErrValidationFailed
	}
	snap, err := s.ledger.FreeEdit(ctx, matchID, overrides)
	if err != nil {
		return nil, err
	}
	metrics.FreeEdits.Inc()
	s.logger.Warn("snapshot edited in place", slog.Int("match_id", matchID), slog.Int("seats", len(overrides)))
	return snap, nil
}
