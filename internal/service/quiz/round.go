package quiz

import "github.com/heartmarshall/notas/internal/domain"

// Outcome is the effect of a pick on a Round.
type Outcome int

const (
	// OutcomeIgnored: the round already recorded a correct pick.
	OutcomeIgnored Outcome = iota
	OutcomeCorrect
	OutcomeWrong
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeWrong:
		return "wrong"
	default:
		return "ignored"
	}
}

// Round is the feedback state machine of one prompt:
// none -> wrong(X) -> wrong(Y) -> correct. Once correct, picks are ignored until Reset.
type Round struct {
	target   domain.ItemID
	feedback domain.Feedback
}

// NewRound starts a round for target with no feedback.
func NewRound(target domain.ItemID) Round {
	return Round{target: target, feedback: domain.NoFeedback()}
}

func (r Round) Target() domain.ItemID { return r.target }

func (r Round) Feedback() domain.Feedback { return r.feedback }

// Pick records the learner choosing id.
func (r *Round) Pick(id domain.ItemID) Outcome {
	if r.feedback.IsCorrect() {
		return OutcomeIgnored
	}
	if id == r.target {
		r.feedback = domain.CorrectFeedback()
		return OutcomeCorrect
	}
	r.feedback = domain.WrongFeedback(id)
	return OutcomeWrong
}

// Reset clears the feedback and retargets the round.
func (r *Round) Reset(target domain.ItemID) {
	r.target = target
	r.feedback = domain.NoFeedback()
}
