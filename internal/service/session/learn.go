package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/notas/internal/domain"
	"github.com/heartmarshall/notas/internal/service/progress"
	"github.com/heartmarshall/notas/internal/service/quiz"
	"github.com/heartmarshall/notas/pkg/ctxutil"
)

// Open loads the learner's progress and shows the first item of the initial level.
// It returns ctx annotated with the new session id.
func (c *Coordinator) Open(ctx context.Context) context.Context {
	c.mu.Lock()
	c.sessionID = uuid.New()
	ctx = ctxutil.WithSessionID(ctx, c.sessionID)

	c.mastered = c.store.LoadMastered(ctx)
	c.favorites = c.store.LoadFavorites(ctx)
	c.enterLevelLocked(ctx, c.level)
	c.opened = true
	eff := c.retargetLocked(true)

	c.log.InfoContext(ctx, "session opened",
		append(ctxutil.LogAttrs(ctx),
			slog.String("level", c.level.String()),
			slog.Int("mastered", c.mastered.Len()),
			slog.Int("favorites", c.favorites.Len()),
		)...,
	)
	c.mu.Unlock()

	c.apply(ctx, eff)
	return ctx
}

// ChangeLevel saves the outgoing cursor and moves to level, skipping forward
// past mastered items. Selecting the current level does nothing.
func (c *Coordinator) ChangeLevel(ctx context.Context, level domain.Level) error {
	if !level.IsValid() {
		return domain.NewValidationError("level", fmt.Sprintf("unknown level %q", level))
	}

	c.mu.Lock()
	if level == c.level {
		c.mu.Unlock()
		return nil
	}
	c.store.SaveCursor(ctx, c.level, c.stored[c.level])
	c.cancelAdvanceLocked()
	c.enterLevelLocked(ctx, level)
	eff := c.retargetLocked(true)
	c.mu.Unlock()

	c.apply(ctx, eff)
	return nil
}

// PickChoice records the learner choosing id among the current options.
// A correct pick schedules the cursor advance after the configured delay.
func (c *Coordinator) PickChoice(ctx context.Context, id domain.ItemID) quiz.Outcome {
	c.mu.Lock()
	if !c.opened || c.mode != domain.ModeLearn || !c.hasOptionLocked(id) {
		c.mu.Unlock()
		return quiz.OutcomeIgnored
	}

	var eff effects
	out := c.round.Pick(id)
	switch out {
	case quiz.OutcomeCorrect:
		eff.success = true
		c.cancelAdvanceLocked()
		gen := c.gen
		c.timer = c.clock.AfterFunc(c.cfg.AdvanceDelay, func() {
			c.advance(ctx, gen)
		})
	case quiz.OutcomeWrong:
		eff.failure = true
	}
	c.mu.Unlock()

	if out != quiz.OutcomeIgnored {
		c.apply(ctx, eff)
	}
	return out
}

// advance moves the stored cursor past the displayed item and persists it,
// unless the generation changed since the timer was scheduled.
func (c *Coordinator) advance(ctx context.Context, gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil

	display := progress.DisplayIndex(c.levelRows, c.stored[c.level], c.mastered)
	next := progress.Next(display, len(c.levelRows))
	c.stored[c.level] = next
	c.store.SaveCursor(ctx, c.level, next)
	eff := c.retargetLocked(true)
	c.mu.Unlock()

	c.apply(ctx, eff)
}

// enterLevelLocked loads the cursor of level and keeps the resolved display
// index in memory.
func (c *Coordinator) enterLevelLocked(ctx context.Context, level domain.Level) {
	c.level = level
	c.levelRows = c.items.ByLevel(level)
	stored := c.store.LoadCursor(ctx, level)
	c.stored[level] = progress.DisplayIndex(c.levelRows, stored, c.mastered)
}

// currentLocked returns the displayed item of the current level.
func (c *Coordinator) currentLocked() (domain.Item, int, bool) {
	if len(c.levelRows) == 0 {
		return domain.Item{}, 0, false
	}
	display := progress.DisplayIndex(c.levelRows, c.stored[c.level], c.mastered)
	return c.levelRows[display], display, true
}

// retargetLocked regenerates the options when the displayed item changed or
// force is set. Any pending advance is dropped in that case.
func (c *Coordinator) retargetLocked(force bool) effects {
	item, _, ok := c.currentLocked()
	if !ok {
		c.cancelAdvanceLocked()
		c.options = nil
		c.round.Reset("")
		return effects{}
	}
	if !force && item.ID == c.round.Target() {
		return effects{}
	}

	c.cancelAdvanceLocked()
	c.options = c.choices.Choices(item)
	c.round.Reset(item.ID)

	if c.mode == domain.ModeLearn {
		return effects{speak: item.Word}
	}
	return effects{}
}

func (c *Coordinator) cancelAdvanceLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) hasOptionLocked(id domain.ItemID) bool {
	return slices.ContainsFunc(c.options, func(it domain.Item) bool { return it.ID == id })
}
