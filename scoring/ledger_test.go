package scoring

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

// memStore is an in-memory Store with the same compare-and-swap
// semantics as the postgres one.
type memStore struct {
	match   models.Match
	seating []models.Matching
	ops     map[int64]*models.ScoreOperation
	snaps   map[int64]Snapshot
	nextID  int64
}

func newMemStore(kind models.RuleKind, seats int) *memStore {
	s := &memStore{
		match: models.Match{ID: 1, RoundID: 1, Number: 1, Name: "test", Rule: kind},
		ops:   make(map[int64]*models.ScoreOperation),
		snaps: make(map[int64]Snapshot),
	}
	for seat := 0; seat < seats; seat++ {
		s.seating = append(s.seating, models.Matching{
			ID:       int64(seat + 1),
			MatchID:  1,
			PlayerID: seat + 1,
			Seat:     seat,
		})
	}
	return s
}

func (s *memStore) Match(_ context.Context, matchID int) (*models.Match, error) {
	if matchID != s.match.ID {
		return nil, fmt.Errorf("match %d: %w", matchID, ErrMatchNotFound)
	}
	m := s.match
	if s.match.LastScoreOperationID != nil {
		tip := *s.match.LastScoreOperationID
		m.LastScoreOperationID = &tip
	}
	return &m, nil
}

func (s *memStore) Seating(context.Context, int) ([]models.Matching, error) {
	return s.seating, nil
}

func (s *memStore) Operation(_ context.Context, operationID int64) (*models.ScoreOperation, error) {
	op, ok := s.ops[operationID]
	if !ok {
		return nil, fmt.Errorf("operation %d not found", operationID)
	}
	return op, nil
}

func (s *memStore) Snapshot(_ context.Context, operationID int64) (Snapshot, error) {
	snap, ok := s.snaps[operationID]
	if !ok {
		return nil, fmt.Errorf("operation %d: %w", operationID, ErrSnapshotMissing)
	}
	return cloneSnapshot(snap), nil
}

func (s *memStore) tipEquals(prev *int64) bool {
	tip := s.match.LastScoreOperationID
	if tip == nil || prev == nil {
		return tip == nil && prev == nil
	}
	return *tip == *prev
}

func (s *memStore) Append(_ context.Context, op *models.ScoreOperation, snap Snapshot, prevHead *int64) error {
	if !s.tipEquals(prevHead) {
		return fmt.Errorf("match %d: %w", op.MatchID, ErrConflict)
	}
	s.nextID++
	op.ID = s.nextID
	s.ops[op.ID] = op
	s.snaps[op.ID] = cloneSnapshot(snap)
	id := op.ID
	s.match.LastScoreOperationID = &id
	return nil
}

func (s *memStore) MoveHead(_ context.Context, matchID int, from int64, to *int64) error {
	if !s.tipEquals(&from) {
		return fmt.Errorf("match %d: %w", matchID, ErrConflict)
	}
	s.match.LastScoreOperationID = to
	return nil
}

func (s *memStore) OverwriteSnapshot(_ context.Context, operationID int64, snap Snapshot) error {
	if _, ok := s.snaps[operationID]; !ok {
		return fmt.Errorf("operation %d: %w", operationID, ErrSnapshotMissing)
	}
	s.snaps[operationID] = cloneSnapshot(snap)
	return nil
}

type recordingNotifier struct {
	updates []int
}

func (n *recordingNotifier) ScoreUpdated(matchID int, _ Snapshot) {
	n.updates = append(n.updates, matchID)
}

func newTestLedger(kind models.RuleKind, seats int) (*Ledger, *memStore, *recordingNotifier) {
	store := newMemStore(kind, seats)
	notifier := &recordingNotifier{}
	return NewLedger(store, notifier, nil), store, notifier
}

func TestLedgerOpen(t *testing.T) {
	ctx := context.Background()
	ledger, store, notifier := newTestLedger(models.RuleRound3, 8)

	op, err := ledger.Open(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.OpMatchOpening, op.Kind)
	assert.Nil(t, op.PrecedingOperationID)
	require.NotNil(t, store.match.LastScoreOperationID)
	assert.Equal(t, op.ID, *store.match.LastScoreOperationID)
	assert.Equal(t, []int{1}, notifier.updates)

	_, err = ledger.Open(ctx, 1)
	assert.ErrorIs(t, err, ErrAlreadyOpened)
}

func TestLedgerApply(t *testing.T) {
	ctx := context.Background()
	ledger, _, _ := newTestLedger(models.RuleRound3, 8)

	t.Run("rejects operations before opening", func(t *testing.T) {
		_, err := ledger.Apply(ctx, 1, models.OpQuestionClosing, models.OperationPayload{})
		assert.ErrorIs(t, err, ErrNotOpened)
	})

	t.Run("chains operations and materializes snapshots", func(t *testing.T) {
		opening, err := ledger.Open(ctx, 1)
		require.NoError(t, err)

		op, err := ledger.Apply(ctx, 1, models.OpQuestionClosing, models.OperationPayload{
			Answers: []models.PlayerAnswer{{PlayerID: 1, Situation: models.SituationBuzzed, Result: models.ResultCorrect}},
		})
		require.NoError(t, err)
		require.NotNil(t, op.PrecedingOperationID)
		assert.Equal(t, opening.ID, *op.PrecedingOperationID)

		snap, err := ledger.CurrentSnapshot(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, snap[0].Points)
	})

	t.Run("rule violations leave the chain untouched", func(t *testing.T) {
		before, err := ledger.CurrentSnapshot(ctx, 1)
		require.NoError(t, err)

		_, err = ledger.Apply(ctx, 1, models.OpSetTransition, models.OperationPayload{})
		assert.ErrorIs(t, err, ErrRuleViolation)

		after, err := ledger.CurrentSnapshot(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestLedgerUndo(t *testing.T) {
	ctx := context.Background()
	ledger, store, _ := newTestLedger(models.RuleRound3, 8)

	opening, err := ledger.Open(ctx, 1)
	require.NoError(t, err)

	t.Run("undo at the root is rejected", func(t *testing.T) {
		_, err := ledger.Undo(ctx, 1)
		assert.ErrorIs(t, err, ErrNothingToUndo)
	})

	t.Run("undo is the left inverse of apply", func(t *testing.T) {
		before, err := ledger.CurrentSnapshot(ctx, 1)
		require.NoError(t, err)

		applied, err := ledger.Apply(ctx, 1, models.OpQuestionClosing, models.OperationPayload{
			Answers: []models.PlayerAnswer{{PlayerID: 2, Situation: models.SituationBuzzed, Result: models.ResultWrong}},
		})
		require.NoError(t, err)

		tip, err := ledger.Undo(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, opening.ID, tip.ID)

		after, err := ledger.CurrentSnapshot(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, before, after)

		// The detached operation keeps its rows for audit.
		_, ok := store.ops[applied.ID]
		assert.True(t, ok)
	})
}

func TestLedgerConflict(t *testing.T) {
	ctx := context.Background()
	ledger, store, _ := newTestLedger(models.RuleRound3, 8)

	opening, err := ledger.Open(ctx, 1)
	require.NoError(t, err)
	_, err = ledger.Apply(ctx, 1, models.OpQuestionClosing, models.OperationPayload{
		Answers: []models.PlayerAnswer{{PlayerID: 1, Situation: models.SituationBuzzed, Result: models.ResultCorrect}},
	})
	require.NoError(t, err)

	// A writer holding the opening as its expected tip must lose.
	stale := opening.ID
	err = store.Append(ctx, &models.ScoreOperation{MatchID: 1, Kind: models.OpQuestionClosing}, nil, &stale)
	assert.ErrorIs(t, err, ErrConflict)

	err = store.MoveHead(ctx, 1, stale, nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLedgerFreeEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("patches the current snapshot in place", func(t *testing.T) {
		ledger, store, _ := newTestLedger(models.RuleRound2Ura, 12)
		_, err := ledger.Open(ctx, 1)
		require.NoError(t, err)

		points := 3
		status := models.ScoreLose
		rank := 12
		snap, err := ledger.FreeEdit(ctx, 1, []SeatOverride{
			{PlayerID: 2, Points: &points},
			{PlayerID: 5, Status: &status, Rank: &rank},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, snap[1].Points)
		assert.Equal(t, models.ScoreLose, snap[4].Status)
		assert.Equal(t, 12, *snap[4].Rank)

		// No new operation was appended.
		assert.Len(t, store.ops, 1)

		current, err := ledger.CurrentSnapshot(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, snap, current)
	})

	t.Run("denied for non-editable rules", func(t *testing.T) {
		ledger, _, _ := newTestLedger(models.RulePlayoff, 10)
		_, err := ledger.Open(ctx, 1)
		require.NoError(t, err)

		points := 1
		_, err = ledger.FreeEdit(ctx, 1, []SeatOverride{{PlayerID: 1, Points: &points}})
		assert.ErrorIs(t, err, ErrFreeEditDenied)
	})

	t.Run("unknown player is rejected", func(t *testing.T) {
		ledger, _, _ := newTestLedger(models.RuleRound2Omote, 10)
		_, err := ledger.Open(ctx, 1)
		require.NoError(t, err)

		points := 1
		_, err = ledger.FreeEdit(ctx, 1, []SeatOverride{{PlayerID: 42, Points: &points}})
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})
}
