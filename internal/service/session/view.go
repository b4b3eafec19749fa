package session

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/notas/internal/domain"
	"github.com/heartmarshall/notas/internal/service/exam"
	"github.com/heartmarshall/notas/internal/service/progress"
)

// View is a consistent copy of the session state for renderers.
type View struct {
	SessionID uuid.UUID
	Mode      domain.Mode
	Level     domain.Level

	// Learn phase. Item is nil when the level has no items.
	Item            *domain.Item
	DisplayIndex    int
	Total           int
	Progress        float64
	Choices         []domain.Item
	Feedback        domain.Feedback
	CurrentMastered bool
	CurrentFavorite bool

	Detail        *Detail
	Favorites     []domain.Item
	MasteredCount int

	Exam exam.Snapshot
}

// Detail is the item shown in the detail overlay with its flags.
type Detail struct {
	Item     domain.Item
	Mastered bool
	Favorite bool
}

// Snapshot returns the current view.
func (c *Coordinator) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		SessionID:     c.sessionID,
		Mode:          c.mode,
		Level:         c.level,
		Total:         len(c.levelRows),
		Progress:      progress.Fraction(c.levelRows, c.stored[c.level], c.mastered),
		Choices:       append([]domain.Item(nil), c.options...),
		Feedback:      c.round.Feedback(),
		Favorites:     c.items.Resolve(c.favorites.IDs()),
		MasteredCount: len(c.items.Resolve(c.mastered.IDs())),
		Exam:          c.exam.Snapshot(),
	}

	if item, display, ok := c.currentLocked(); ok {
		v.Item = &item
		v.DisplayIndex = display
		v.CurrentMastered = c.mastered.Contains(item.ID)
		v.CurrentFavorite = c.favorites.Contains(item.ID)
	}

	if c.detail != "" {
		if item, err := c.items.ByID(c.detail); err == nil {
			v.Detail = &Detail{
				Item:     item,
				Mastered: c.mastered.Contains(item.ID),
				Favorite: c.favorites.Contains(item.ID),
			}
		}
	}
	return v
}

// Mastered returns a copy of the mastered set.
func (c *Coordinator) Mastered() domain.IDSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mastered.Clone()
}

// Favorites returns a copy of the favorite set.
func (c *Coordinator) Favorites() domain.IDSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.favorites.Clone()
}

// StoredIndex returns the in-memory stored cursor of level.
func (c *Coordinator) StoredIndex(level domain.Level) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stored[level]
}
