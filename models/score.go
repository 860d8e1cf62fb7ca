package models

type ScoreStatus string

const (
	ScorePlaying      ScoreStatus = "playing"
	ScoreWin          ScoreStatus = "win"
	ScoreLose         ScoreStatus = "lose"
	ScoreSetWin       ScoreStatus = "set_win"
	ScoreWaiting      ScoreStatus = "waiting"
	ScoreDisqualified ScoreStatus = "disqualified"
)

// Terminal reports whether the status takes the player out of play for the
// rest of the match.
func (s ScoreStatus) Terminal() bool {
	return s == ScoreWin || s == ScoreLose || s == ScoreDisqualified
}

// Score is one seat's state in the snapshot materialized by a score
// operation. Exactly one row exists per (operation, matching) pair.
type Score struct {
	ID               int64       `json:"id"`
	ScoreOperationID int64       `json:"score_operation_id"`
	MatchingID       int64       `json:"matching_id"`
	Status           ScoreStatus `json:"status"`
	Points           int         `json:"points"`
	Misses           int         `json:"misses"`
	Stars            int         `json:"stars"`
	Rank             *int        `json:"rank,omitempty"`
}
