package scoring

import "errors"

var (
	// Ledger sequencing errors.
	ErrAlreadyOpened = errors.New("match already has an opening operation")
	ErrNotOpened     = errors.New("match has no opening operation")
	ErrNothingToUndo = errors.New("nothing to undo: already at the opening operation")
	ErrConflict      = errors.New("operation tip changed concurrently, retry against the fresh state")

	// Transition errors.
	ErrInvalidPayload  = errors.New("invalid operation payload")
	ErrRuleViolation   = errors.New("operation violates the match rule")
	ErrUnknownRule     = errors.New("unknown match rule")
	ErrFreeEditDenied  = errors.New("rule does not permit free score edits")
	ErrMatchNotFound   = errors.New("match not found")
	ErrSnapshotMissing = errors.New("score snapshot missing for operation")
)
