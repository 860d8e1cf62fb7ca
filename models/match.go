package models

import "time"

// RuleKind selects the scoring policy of a match. The set is closed:
// every kind is dispatched by an explicit switch in the scoring package.
type RuleKind string

const (
	RuleRound2Omote  RuleKind = "round2_omote"
	RuleRound2Ura    RuleKind = "round2_ura"
	RulePlayoff      RuleKind = "playoff"
	RuleRound3       RuleKind = "round3"
	RuleQuarterfinal RuleKind = "quarterfinal"
	RuleSemifinal    RuleKind = "semifinal"
	RuleFinal        RuleKind = "final"
)

// Match is one scoring contest within a round. LastScoreOperationID points
// at the tip of the match's operation chain and is the only mutable field;
// it is advanced with a compare-and-swap so concurrent scoring submissions
// against a stale tip are rejected.
type Match struct {
	ID                   int      `json:"id"`
	RoundID              int      `json:"round_id"`
	Number               int      `json:"number"`
	Name                 string   `json:"name"`
	Rule                 RuleKind `json:"rule"`
	LastScoreOperationID *int64   `json:"last_score_operation_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
