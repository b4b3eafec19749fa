package exam

import (
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/heartmarshall/notas/internal/domain"
	"github.com/heartmarshall/notas/internal/service/cloze"
)

// Outcome is the effect of a Submit.
type Outcome int

const (
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

// Question is the current exam prompt. Prompt is the cloze sentence when one
// could be built and the translation otherwise.
type Question struct {
	AttemptID uuid.UUID
	Item      domain.Item
	Index     int
	Total     int
	Hint      string
	Cloze     cloze.Result
	Prompt    string
	Revealed  bool
	Succeeded bool
}

// Answer is one entry of the results log.
type Answer struct {
	Item       domain.Item
	UserAnswer string
	Correct    bool
	Accepted   []string
}

// Summary is the results log with its score.
type Summary struct {
	AttemptID     uuid.UUID
	Score         int
	Total         int
	Answers       []Answer
	CanStartAgain bool
}

// Wrong returns the incorrect entries in question order.
func (s Summary) Wrong() []Answer {
	return lo.Filter(s.Answers, func(a Answer, _ int) bool { return !a.Correct })
}

// Snapshot is the engine state as seen by renderers. Question is nil outside testing.
type Snapshot struct {
	Phase    Phase
	Question *Question
	Summary  Summary
}
