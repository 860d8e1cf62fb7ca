package models

// Matching binds a player to a seat of a match. Immutable once created;
// matchmaking replaces a round's matchings wholesale, never one at a time.
// Seat is zero-based and unique within the match, and lower seats encode
// higher prior rank for tie-breaking.
type Matching struct {
	ID       int64 `json:"id"`
	MatchID  int   `json:"match_id"`
	PlayerID int   `json:"player_id"`
	Seat     int   `json:"seat"`
}
