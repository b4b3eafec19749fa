package domain

import "slices"

// IDSet is an insertion-ordered set of item ids. The zero value is an empty set.
// Order matters only for serialization: it mirrors the order ids were added.
// Mutations never write into a backing array shared with a copy.
type IDSet struct {
	ids []ItemID
}

// NewIDSet builds a set from ids, dropping duplicates and empty ids.
func NewIDSet(ids ...ItemID) IDSet {
	var s IDSet
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s IDSet) Contains(id ItemID) bool {
	return slices.Contains(s.ids, id)
}

func (s IDSet) Len() int { return len(s.ids) }

// IDs returns a copy of the members in insertion order.
func (s IDSet) IDs() []ItemID {
	return slices.Clone(s.ids)
}

// Add inserts id at the end. Returns false if it was already present.
func (s *IDSet) Add(id ItemID) bool {
	if id == "" || s.Contains(id) {
		return false
	}
	s.ids = append(slices.Clip(s.ids), id)
	return true
}

// Remove deletes id. Returns false if it was absent.
func (s *IDSet) Remove(id ItemID) bool {
	i := slices.Index(s.ids, id)
	if i < 0 {
		return false
	}
	s.ids = slices.Delete(slices.Clone(s.ids), i, i+1)
	return true
}

// Toggle removes id if present, adds it otherwise. Returns the new membership.
func (s *IDSet) Toggle(id ItemID) bool {
	if s.Remove(id) {
		return false
	}
	return s.Add(id)
}

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	return IDSet{ids: slices.Clone(s.ids)}
}

// Equal reports whether both sets hold the same ids in the same order.
func (s IDSet) Equal(other IDSet) bool {
	return slices.Equal(s.ids, other.ids)
}
