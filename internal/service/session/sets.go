package session

import (
	"context"

	"github.com/heartmarshall/notas/internal/domain"
)

type mutationKind int

const (
	mutateMastered mutationKind = iota
	mutateFavorites
)

func (k mutationKind) String() string {
	if k == mutateFavorites {
		return "favorites"
	}
	return "mastered"
}

// withMutation applies fn to a copy of the chosen set. When fn reports a
// change, the copy replaces the in-memory set and is written through.
func (c *Coordinator) withMutation(ctx context.Context, kind mutationKind, fn func(set *domain.IDSet) bool) bool {
	var set domain.IDSet
	switch kind {
	case mutateFavorites:
		set = c.favorites.Clone()
	default:
		set = c.mastered.Clone()
	}

	if !fn(&set) {
		return false
	}

	switch kind {
	case mutateFavorites:
		c.favorites = set
		c.store.SaveFavorites(ctx, set)
	default:
		c.mastered = set
		c.store.SaveMastered(ctx, set)
	}
	c.log.DebugContext(ctx, "set mutated",
		"set", kind.String(),
		"size", set.Len(),
	)
	return true
}

// ToggleMastered flips the mastered flag of id and returns the new flag.
// Mastering the displayed item moves the learn phase to the next unmastered one.
func (c *Coordinator) ToggleMastered(ctx context.Context, id domain.ItemID) (bool, error) {
	if _, err := c.items.ByID(id); err != nil {
		return false, err
	}

	c.mu.Lock()
	var present bool
	c.withMutation(ctx, mutateMastered, func(set *domain.IDSet) bool {
		present = set.Toggle(id)
		return true
	})
	eff := c.retargetLocked(false)
	c.mu.Unlock()

	c.apply(ctx, eff)
	return present, nil
}

// ToggleFavorite flips the favorite flag of id and returns the new flag.
func (c *Coordinator) ToggleFavorite(ctx context.Context, id domain.ItemID) (bool, error) {
	if _, err := c.items.ByID(id); err != nil {
		return false, err
	}

	c.mu.Lock()
	var present bool
	c.withMutation(ctx, mutateFavorites, func(set *domain.IDSet) bool {
		present = set.Toggle(id)
		return true
	})
	c.mu.Unlock()

	c.apply(ctx, effects{})
	return present, nil
}

// Unmaster removes id from the mastered set. Dangling ids are removed too.
// Reports whether id was mastered.
func (c *Coordinator) Unmaster(ctx context.Context, id domain.ItemID) bool {
	c.mu.Lock()
	removed := c.withMutation(ctx, mutateMastered, func(set *domain.IDSet) bool {
		return set.Remove(id)
	})
	var eff effects
	if removed {
		eff = c.retargetLocked(false)
	}
	c.mu.Unlock()

	if removed {
		c.apply(ctx, eff)
	}
	return removed
}
