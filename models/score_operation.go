package models

import "time"

type OperationKind string

const (
	OpMatchOpening     OperationKind = "match_opening"
	OpQuestionClosing  OperationKind = "question_closing"
	OpSetTransition    OperationKind = "set_transition"
	OpDisqualification OperationKind = "disqualification"
	OpMatchClosing     OperationKind = "match_closing"

	// OpScoreUndo never lands in the chain: the HTTP layer translates it
	// into a tip rollback before the ledger sees it.
	OpScoreUndo OperationKind = "score_undo"
)

type QuestionResult string

const (
	ResultCorrect QuestionResult = "correct"
	ResultWrong   QuestionResult = "wrong"
)

type AnswerSituation string

const (
	SituationBuzzed     AnswerSituation = "buzzed"
	SituationDesignated AnswerSituation = "designated"
)

// PlayerAnswer is one (player, situation, result) triple of a question
// closing.
type PlayerAnswer struct {
	PlayerID  int             `json:"player_id"`
	Situation AnswerSituation `json:"situation"`
	Result    QuestionResult  `json:"result"`
}

// OperationPayload carries the kind-specific data of a score operation.
// Answers is set for question_closing, PlayerID for disqualification; the
// remaining kinds have an empty payload.
type OperationPayload struct {
	Answers  []PlayerAnswer `json:"answers,omitempty"`
	PlayerID int            `json:"player_id,omitempty"`
}

// ScoreOperation is one immutable step of a match's scoring history.
// PrecedingOperationID links operations into a chain whose root is the
// match opening; undo moves the match tip backwards without deleting rows,
// so detached operations stay around for audit.
type ScoreOperation struct {
	ID                   int64            `json:"id"`
	MatchID              int              `json:"match_id"`
	PrecedingOperationID *int64           `json:"preceding_operation_id,omitempty"`
	Kind                 OperationKind    `json:"kind"`
	Payload              OperationPayload `json:"payload"`
	CreatedAt            time.Time        `json:"created_at"`
}
