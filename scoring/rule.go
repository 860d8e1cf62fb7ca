package scoring

import (
	"fmt"
	"sort"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

// rule is the per-kind scoring policy. Implementations are pure: they
// mutate only the snapshot copy handed to them.
type rule interface {
	seats() int
	editable() bool
	question(snap Snapshot, answers []models.PlayerAnswer) error
	setTransition(snap Snapshot) error
	closeMatch(snap Snapshot) error
}

// ruleFor dispatches the closed set of rule kinds. Adding a kind means
// adding a case here; there is deliberately no registration mechanism.
func ruleFor(kind models.RuleKind) (rule, error) {
	switch kind {
	case models.RuleRound2Omote:
		return raceRule{seatCount: 10, winPoints: 5, loseMisses: 3, winners: 4}, nil
	case models.RuleRound2Ura:
		return uraRule{seatCount: 12, winners: 4}, nil
	case models.RulePlayoff:
		return playoffRule{seatCount: 10, winPoints: 3, loseMisses: 2}, nil
	case models.RuleRound3:
		return raceRule{seatCount: 8, winPoints: 5, loseMisses: 3, winners: 4}, nil
	case models.RuleQuarterfinal:
		return raceRule{seatCount: 8, winPoints: 7, loseMisses: 3, winners: 4}, nil
	case models.RuleSemifinal:
		return setsRule{seatCount: 4, setPoints: 3, winStars: 2, winners: 2}, nil
	case models.RuleFinal:
		return setsRule{seatCount: 4, setPoints: 7, winStars: 3, winners: 1}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, kind)
	}
}

// SeatCount returns the number of seats the rule fields.
func SeatCount(kind models.RuleKind) (int, error) {
	r, err := ruleFor(kind)
	if err != nil {
		return 0, err
	}
	return r.seats(), nil
}

// Editable reports whether the rule permits free score edits.
func Editable(kind models.RuleKind) (bool, error) {
	r, err := ruleFor(kind)
	if err != nil {
		return false, err
	}
	return r.editable(), nil
}

// OpeningSnapshot builds the initial per-seat state for a freshly seated
// match. Every rule starts its players in play with zeroed counters.
func OpeningSnapshot(kind models.RuleKind, seating []models.Matching) (Snapshot, error) {
	r, err := ruleFor(kind)
	if err != nil {
		return nil, err
	}
	if len(seating) != r.seats() {
		return nil, fmt.Errorf("%w: rule %s fields %d seats, got %d players", ErrInvalidPayload, kind, r.seats(), len(seating))
	}
	ordered := make([]models.Matching, len(seating))
	copy(ordered, seating)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Seat < ordered[j].Seat })

	snap := make(Snapshot, len(ordered))
	for i, m := range ordered {
		snap[i] = SeatScore{
			MatchingID: m.ID,
			PlayerID:   m.PlayerID,
			Seat:       m.Seat,
			Status:     models.ScorePlaying,
		}
	}
	return snap, nil
}

// Transition derives the next snapshot from the previous one and a typed
// event. The previous snapshot is never mutated; each operation owns a
// full materialized copy so reads stay O(1).
func Transition(kind models.RuleKind, prev Snapshot, op models.OperationKind, payload models.OperationPayload) (Snapshot, error) {
	r, err := ruleFor(kind)
	if err != nil {
		return nil, err
	}
	if MatchEnded(prev) {
		return nil, fmt.Errorf("%w: match already decided", ErrRuleViolation)
	}

	snap := cloneSnapshot(prev)
	switch op {
	case models.OpQuestionClosing:
		if err := validateAnswers(payload.Answers); err != nil {
			return nil, err
		}
		err = r.question(snap, payload.Answers)
	case models.OpSetTransition:
		err = r.setTransition(snap)
	case models.OpDisqualification:
		err = disqualify(snap, payload.PlayerID)
	case models.OpMatchClosing:
		err = r.closeMatch(snap)
	default:
		err = fmt.Errorf("%w: unsupported operation kind %q", ErrInvalidPayload, op)
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}
