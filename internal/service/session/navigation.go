package session

import (
	"context"
	"fmt"

	"github.com/heartmarshall/notas/internal/domain"
)

// ChangeMode switches the active tab. Leaving a mode drops its pending learn
// advance; entering or leaving the exam discards the exam attempt. Re-entering
// learn draws fresh options.
func (c *Coordinator) ChangeMode(ctx context.Context, mode domain.Mode) error {
	if !mode.IsValid() {
		return domain.NewValidationError("mode", fmt.Sprintf("unknown mode %q", mode))
	}

	c.mu.Lock()
	if mode == c.mode {
		c.mu.Unlock()
		return nil
	}
	prev := c.mode
	c.mode = mode
	c.cancelAdvanceLocked()

	if prev == domain.ModeExam || mode == domain.ModeExam {
		c.exam.Restart()
	}

	var eff effects
	if mode == domain.ModeLearn && c.opened {
		eff = c.retargetLocked(true)
	}
	c.mu.Unlock()

	c.apply(ctx, eff)
	return nil
}

// OpenDetail shows the detail overlay for id.
func (c *Coordinator) OpenDetail(ctx context.Context, id domain.ItemID) error {
	if _, err := c.items.ByID(id); err != nil {
		return err
	}

	c.mu.Lock()
	c.detail = id
	c.mu.Unlock()

	c.apply(ctx, effects{})
	return nil
}

func (c *Coordinator) CloseDetail(ctx context.Context) {
	c.mu.Lock()
	c.detail = ""
	c.mu.Unlock()

	c.apply(ctx, effects{})
}

// Speak pronounces the headword of id. Failures are logged, not returned.
func (c *Coordinator) Speak(ctx context.Context, id domain.ItemID) error {
	item, err := c.items.ByID(id)
	if err != nil {
		return err
	}
	c.run(ctx, effects{speak: item.Word})
	return nil
}
