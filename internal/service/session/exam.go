package session

import (
	"context"

	"github.com/heartmarshall/notas/internal/service/exam"
)

// StartExam draws an exam from the current mastered set.
func (c *Coordinator) StartExam(ctx context.Context) error {
	err := c.exam.Start(ctx, c.Mastered())
	c.Notify()
	return err
}

// StartExamAgain re-enters testing from results with a fresh draw.
func (c *Coordinator) StartExamAgain(ctx context.Context) error {
	err := c.exam.StartAgain(ctx, c.Mastered())
	c.Notify()
	return err
}

// SubmitExam answers the current exam question and plays the matching cue.
func (c *Coordinator) SubmitExam(ctx context.Context, input string) (exam.Outcome, error) {
	out, err := c.exam.Submit(ctx, input)
	if err != nil {
		return out, err
	}

	switch out {
	case exam.OutcomeCorrect:
		c.apply(ctx, effects{success: true})
	case exam.OutcomeWrong:
		c.apply(ctx, effects{failure: true})
	}
	return out, nil
}

// NextExam leaves a revealed wrong answer.
func (c *Coordinator) NextExam(ctx context.Context) error {
	err := c.exam.Next(ctx)
	c.Notify()
	return err
}

// RestartExam returns the exam to idle.
func (c *Coordinator) RestartExam(ctx context.Context) {
	c.exam.Restart()
	c.Notify()
}
