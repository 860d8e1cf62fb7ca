package models

type RoundKind string

const (
	RoundYontaku      RoundKind = "yontaku"
	RoundRound2       RoundKind = "round2"
	RoundPlayoff      RoundKind = "playoff"
	RoundRound3       RoundKind = "round3"
	RoundQuarterfinal RoundKind = "quarterfinal"
	RoundSemifinal    RoundKind = "semifinal"
	RoundFinal        RoundKind = "final"
)

// Round is one stage of the fixed bracket. Position orders the stages for
// display; the matchmaking dispatch keys off Kind.
type Round struct {
	ID       int       `json:"id"`
	Kind     RoundKind `json:"kind"`
	Name     string    `json:"name"`
	Position int       `json:"position"`
}
