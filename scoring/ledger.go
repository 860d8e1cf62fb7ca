package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

// Store is the persistence the ledger needs: an append-only operation
// arena per match plus the match's tip pointer. Append and MoveHead must
// be atomic and compare-and-swap on the expected tip, returning
// ErrConflict when a concurrent writer got there first.
type Store interface {
	Match(ctx context.Context, matchID int) (*models.Match, error)
	Seating(ctx context.Context, matchID int) ([]models.Matching, error)
	Operation(ctx context.Context, operationID int64) (*models.ScoreOperation, error)
	Snapshot(ctx context.Context, operationID int64) (Snapshot, error)

	// Append persists the operation with its materialized snapshot and
	// advances the match tip from prevHead to the new operation.
	Append(ctx context.Context, op *models.ScoreOperation, snap Snapshot, prevHead *int64) error
	// MoveHead rewinds the tip from one operation to its predecessor.
	MoveHead(ctx context.Context, matchID int, from int64, to *int64) error
	// OverwriteSnapshot replaces score fields of an existing snapshot in
	// place. Free edit only; everything else is append-only.
	OverwriteSnapshot(ctx context.Context, operationID int64, snap Snapshot) error
}

// Notifier receives fire-and-forget change events after a ledger mutation
// commits. Failures are the notifier's problem, never the ledger's.
type Notifier interface {
	ScoreUpdated(matchID int, snap Snapshot)
}

// SeatOverride is one seat's free-edit patch. Nil fields are left alone.
type SeatOverride struct {
	PlayerID  int                 `json:"player_id"`
	Status    *models.ScoreStatus `json:"status,omitempty"`
	Points    *int                `json:"points,omitempty"`
	Misses    *int                `json:"misses,omitempty"`
	Stars     *int                `json:"stars,omitempty"`
	Rank      *int                `json:"rank,omitempty"`
	ResetRank bool                `json:"reset_rank,omitempty"`
}

// Ledger owns the scoring history of matches: it sequences operations,
// applies the match rule, and keeps the chain invariants (single root,
// no branching, undo by truncation).
type Ledger struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
}

func NewLedger(store Store, notifier Notifier, logger *slog.Logger) *Ledger {
	return &Ledger{store: store, notifier: notifier, logger: logger}
}

// Open creates the root operation of a match's chain and the initial
// snapshot for its seated players.
func (l *Ledger) Open(ctx context.Context, matchID int) (*models.ScoreOperation, error) {
	match, err := l.store.Match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.LastScoreOperationID != nil {
		return nil, fmt.Errorf("match %d: %w", matchID, ErrAlreadyOpened)
	}

	seating, err := l.store.Seating(ctx, matchID)
	if err != nil {
		return nil, err
	}
	snap, err := OpeningSnapshot(match.Rule, seating)
	if err != nil {
		return nil, err
	}

	op := &models.ScoreOperation{
		MatchID: matchID,
		Kind:    models.OpMatchOpening,
	}
	if err := l.store.Append(ctx, op, snap, nil); err != nil {
		return nil, err
	}
	l.notify(matchID, snap)
	return op, nil
}

// Apply validates the payload against the current snapshot, runs the
// match rule's transition and appends the resulting operation. The whole
// operation applies or none of it does.
func (l *Ledger) Apply(ctx context.Context, matchID int, kind models.OperationKind, payload models.OperationPayload) (*models.ScoreOperation, error) {
	if kind == models.OpMatchOpening {
		return l.Open(ctx, matchID)
	}

	match, err := l.store.Match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.LastScoreOperationID == nil {
		return nil, fmt.Errorf("match %d: %w", matchID, ErrNotOpened)
	}
	head := *match.LastScoreOperationID

	prev, err := l.store.Snapshot(ctx, head)
	if err != nil {
		return nil, err
	}
	next, err := Transition(match.Rule, prev, kind, payload)
	if err != nil {
		return nil, err
	}

	op := &models.ScoreOperation{
		MatchID:              matchID,
		PrecedingOperationID: &head,
		Kind:                 kind,
		Payload:              payload,
	}
	if err := l.store.Append(ctx, op, next, &head); err != nil {
		return nil, err
	}
	l.notify(matchID, next)
	return op, nil
}

// Undo rewinds the tip to the preceding operation. The detached operation
// keeps its rows for audit but becomes unreachable; there is no redo.
func (l *Ledger) Undo(ctx context.Context, matchID int) (*models.ScoreOperation, error) {
	match, err := l.store.Match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.LastScoreOperationID == nil {
		return nil, fmt.Errorf("match %d: %w", matchID, ErrNotOpened)
	}

	tip, err := l.store.Operation(ctx, *match.LastScoreOperationID)
	if err != nil {
		return nil, err
	}
	if tip.PrecedingOperationID == nil {
		return nil, fmt.Errorf("match %d: %w", matchID, ErrNothingToUndo)
	}

	if err := l.store.MoveHead(ctx, matchID, tip.ID, tip.PrecedingOperationID); err != nil {
		return nil, err
	}
	prev, err := l.store.Operation(ctx, *tip.PrecedingOperationID)
	if err != nil {
		return nil, err
	}
	snap, err := l.store.Snapshot(ctx, prev.ID)
	if err != nil {
		return nil, err
	}
	l.notify(matchID, snap)
	return prev, nil
}

// CurrentSnapshot returns the tip's materialized snapshot, O(1) in chain
// length.
func (l *Ledger) CurrentSnapshot(ctx context.Context, matchID int) (Snapshot, error) {
	match, err := l.store.Match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.LastScoreOperationID == nil {
		return nil, fmt.Errorf("match %d: %w", matchID, ErrNotOpened)
	}
	return l.store.Snapshot(ctx, *match.LastScoreOperationID)
}

// FreeEdit patches the current snapshot in place. This is the single
// mutation exception, reserved for administrative correction on rules
// that allow it; nothing is appended to the chain.
func (l *Ledger) FreeEdit(ctx context.Context, matchID int, overrides []SeatOverride) (Snapshot, error) {
	match, err := l.store.Match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	editable, err := Editable(match.Rule)
	if err != nil {
		return nil, err
	}
	if !editable {
		return nil, fmt.Errorf("match %d (%s): %w", matchID, match.Rule, ErrFreeEditDenied)
	}
	if match.LastScoreOperationID == nil {
		return nil, fmt.Errorf("match %d: %w", matchID, ErrNotOpened)
	}
	head := *match.LastScoreOperationID

	snap, err := l.store.Snapshot(ctx, head)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		seat := seatByPlayer(snap, o.PlayerID)
		if seat == nil {
			return nil, fmt.Errorf("%w: player %d is not seated in this match", ErrInvalidPayload, o.PlayerID)
		}
		if o.Status != nil {
			seat.Status = *o.Status
		}
		if o.Points != nil {
			seat.Points = *o.Points
		}
		if o.Misses != nil {
			seat.Misses = *o.Misses
		}
		if o.Stars != nil {
			seat.Stars = *o.Stars
		}
		if o.Rank != nil {
			r := *o.Rank
			seat.Rank = &r
		} else if o.ResetRank {
			seat.Rank = nil
		}
	}

	if err := l.store.OverwriteSnapshot(ctx, head, snap); err != nil {
		return nil, err
	}
	l.notify(matchID, snap)
	return snap, nil
}

func (l *Ledger) notify(matchID int, snap Snapshot) {
	if l.notifier == nil {
		return
	}
	l.notifier.ScoreUpdated(matchID, snap)
	if l.logger != nil {
		l.logger.Debug("score update broadcast", slog.Int("match_id", matchID))
	}
}
