package session

import (
	"context"
	"log/slog"
)

// effects are side effects computed under the lock and run after it is released.
type effects struct {
	speak   string
	success bool
	failure bool
}

// apply runs eff and notifies listeners.
func (c *Coordinator) apply(ctx context.Context, eff effects) {
	c.run(ctx, eff)
	c.Notify()
}

// run starts speech and cue playback in the background. Errors are logged.
func (c *Coordinator) run(ctx context.Context, eff effects) {
	if eff.success {
		c.background(ctx, "success cue", c.cues.PlaySuccess)
	}
	if eff.failure {
		c.background(ctx, "error cue", c.cues.PlayError)
	}
	if eff.speak != "" {
		text := eff.speak
		c.background(ctx, "speak", func(ctx context.Context) error {
			return c.speech.Speak(ctx, text)
		})
	}
}

func (c *Coordinator) background(ctx context.Context, what string, fn func(ctx context.Context) error) {
	c.effectWG.Add(1)
	go func() {
		defer c.effectWG.Done()
		if err := fn(ctx); err != nil {
			c.log.WarnContext(ctx, what+" failed", slog.String("error", err.Error()))
		}
	}()
}
