// Package progress resolves which item of a level is shown and how far along
// the learner is. Every function is pure.
package progress

import "github.com/heartmarshall/notas/internal/domain"

const (
	minFraction = 2.0
	maxFraction = 96.0
)

// ClampStored returns stored when it lies in [0, n), otherwise 0.
func ClampStored(stored, n int) int {
	if stored < 0 || stored >= n {
		return 0
	}
	return stored
}

// DisplayIndex returns the first index from stored onward whose item is not
// mastered, wrapping once to the start of the level. When every item is
// mastered the (clamped) stored index is returned. An empty level yields 0.
func DisplayIndex(items []domain.Item, stored int, mastered domain.IDSet) int {
	n := len(items)
	if n == 0 {
		return 0
	}
	stored = ClampStored(stored, n)

	for i := stored; i < n; i++ {
		if !mastered.Contains(items[i].ID) {
			return i
		}
	}
	for i := 0; i < stored; i++ {
		if !mastered.Contains(items[i].ID) {
			return i
		}
	}
	return stored
}

// Next is the stored index after a correct answer at display: display+1,
// wrapping to 0 past the last item.
func Next(display, n int) int {
	if n <= 0 {
		return 0
	}
	next := display + 1
	if next >= n {
		return 0
	}
	return next
}

// Fraction is the position marker in percent: max(2, display/n*96).
// An empty level sits at the minimum.
func Fraction(items []domain.Item, stored int, mastered domain.IDSet) float64 {
	n := len(items)
	if n == 0 {
		return minFraction
	}
	display := DisplayIndex(items, stored, mastered)
	return max(minFraction, float64(display)/float64(n)*maxFraction)
}
