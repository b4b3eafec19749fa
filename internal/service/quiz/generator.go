// Package quiz builds multiple-choice prompts for the learn phase and tracks
// the answer state of one prompt.
package quiz

import (
	"math/rand/v2"
	"time"

	"github.com/heartmarshall/notas/internal/domain"
)

type catalogReader interface {
	Others(excluding domain.ItemID, count int, rng *rand.Rand) []domain.Item
}

// Generator draws distractors from the whole catalog, regardless of level.
// It is not safe for concurrent use; the session coordinator serializes calls.
type Generator struct {
	items catalogReader
	count int
	rng   *rand.Rand
}

// NewGenerator creates a generator producing count options per prompt.
// A nil rng is replaced by one seeded from the wall clock.
func NewGenerator(items catalogReader, count int, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = NewRand(uint64(time.Now().UnixNano()))
	}
	return &Generator{items: items, count: count, rng: rng}
}

// NewRand returns a PCG-backed source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Choices returns target plus count-1 distinct distractors in uniformly
// shuffled order. The result is shorter when the catalog has fewer items.
func (g *Generator) Choices(target domain.Item) []domain.Item {
	out := append([]domain.Item{target}, g.items.Others(target.ID, g.count-1, g.rng)...)
	g.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
