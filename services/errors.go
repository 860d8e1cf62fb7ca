package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Authentication
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Matchmaking
	ErrRoundAlreadySeated    = errors.New("round already has seat assignments")
	ErrUnknownRoundKind      = errors.New("no matchmaking for this round kind")
	ErrFeederRoundIncomplete = errors.New("feeder round is not finished")

	// Player results and preferences
	ErrResultsAlreadyLoaded = errors.New("qualifying results already loaded")
	ErrPreferenceLocked     = errors.New("course preferences are locked")
	ErrPreferenceInvalid    = errors.New("course preference must list four distinct courses")
)
