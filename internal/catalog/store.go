// Package catalog holds the read-only vocabulary catalog loaded once at start.
package catalog

import (
	"fmt"
	"math/rand/v2"

	"github.com/samber/lo"

	"github.com/heartmarshall/notas/internal/domain"
)

// Store is an immutable in-memory catalog. All accessors return copies of the
// slices they expose, so callers cannot mutate catalog state.
type Store struct {
	items   []domain.Item
	byID    map[domain.ItemID]int
	byLevel map[domain.Level][]int
}

// New validates items and builds the id and level indexes. Catalog order is kept.
func New(items []domain.Item) (*Store, error) {
	var errs []domain.FieldError
	byID := make(map[domain.ItemID]int, len(items))

	for i, it := range items {
		switch {
		case it.ID == "":
			errs = append(errs, domain.FieldError{Field: fmt.Sprintf("items[%d].id", i), Message: "required"})
		case !it.Level.IsValid():
			errs = append(errs, domain.FieldError{Field: fmt.Sprintf("items[%d].cefr_level", i), Message: fmt.Sprintf("unknown level %q", it.Level)})
		}
		if _, dup := byID[it.ID]; dup && it.ID != "" {
			errs = append(errs, domain.FieldError{Field: fmt.Sprintf("items[%d].id", i), Message: fmt.Sprintf("duplicate id %q", it.ID)})
			continue
		}
		byID[it.ID] = i
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	byLevel := make(map[domain.Level][]int, len(domain.Levels()))
	for i, it := range items {
		byLevel[it.Level] = append(byLevel[it.Level], i)
	}

	return &Store{
		items:   append([]domain.Item(nil), items...),
		byID:    byID,
		byLevel: byLevel,
	}, nil
}

// Len returns the number of items in the catalog.
func (s *Store) Len() int { return len(s.items) }

// All returns the full catalog in catalog order.
func (s *Store) All() []domain.Item {
	return append([]domain.Item(nil), s.items...)
}

// ByID returns the item with the given id, or domain.ErrNotFound.
func (s *Store) ByID(id domain.ItemID) (domain.Item, error) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Item{}, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return s.items[i], nil
}

// ByLevel returns the items at level in catalog order. Unknown or empty levels
// yield an empty slice.
func (s *Store) ByLevel(level domain.Level) []domain.Item {
	return lo.Map(s.byLevel[level], func(i int, _ int) domain.Item {
		return s.items[i]
	})
}

// Resolve returns the items for ids that exist in the catalog, in ids order.
// Dangling ids are skipped.
func (s *Store) Resolve(ids []domain.ItemID) []domain.Item {
	return lo.FilterMap(ids, func(id domain.ItemID, _ int) (domain.Item, bool) {
		i, ok := s.byID[id]
		if !ok {
			return domain.Item{}, false
		}
		return s.items[i], true
	})
}

// Others samples count items whose id differs from excluding, uniformly and
// without replacement, from the whole catalog. Fewer are returned when the
// catalog is too small.
func (s *Store) Others(excluding domain.ItemID, count int, rng *rand.Rand) []domain.Item {
	if count <= 0 {
		return nil
	}
	pool := lo.Filter(lo.Range(len(s.items)), func(i int, _ int) bool {
		return s.items[i].ID != excluding
	})
	if count > len(pool) {
		count = len(pool)
	}

	// Partial Fisher-Yates: the first count positions end up a uniform sample.
	out := make([]domain.Item, 0, count)
	for k := 0; k < count; k++ {
		j := k + rng.IntN(len(pool)-k)
		pool[k], pool[j] = pool[j], pool[k]
		out = append(out, s.items[pool[k]])
	}
	return out
}
