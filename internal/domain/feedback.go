package domain

// Feedback is the learn-phase answer state. BadID is set only for FeedbackWrong.
type Feedback struct {
	Kind  FeedbackKind
	BadID ItemID
}

func NoFeedback() Feedback { return Feedback{Kind: FeedbackNone} }

func CorrectFeedback() Feedback { return Feedback{Kind: FeedbackCorrect} }

func WrongFeedback(id ItemID) Feedback { return Feedback{Kind: FeedbackWrong, BadID: id} }

func (f Feedback) IsCorrect() bool { return f.Kind == FeedbackCorrect }

// IsWrongPick reports whether id is the option currently marked wrong.
func (f Feedback) IsWrongPick(id ItemID) bool {
	return f.Kind == FeedbackWrong && f.BadID == id
}
