// Package memory implements an in-process key-value store. It backs the
// "memory" storage driver and stands in for a database in tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/heartmarshall/notas/internal/domain"
)

// Store is a map guarded by a mutex. Failures can be injected to exercise the
// callers' degrade-silently paths.
type Store struct {
	mu     sync.RWMutex
	data   map[string]string
	getErr error
	setErr error
	writes int
	txMu   sync.Mutex
}

// New creates an empty Store.
func New() *Store {
	return &Store{data: make(map[string]string)}
}

// FailReads makes every Get and List return err. A nil err clears the failure.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

// FailWrites makes every Set return err. A nil err clears the failure.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErr = err
}

// Writes returns the number of successful Set calls.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Get returns the value stored under key, or domain.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return "", fmt.Errorf("kv %s: %w", key, domain.ErrNotFound)
	}
	return v, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	s.writes++
	return nil
}

// List returns every entry whose key starts with prefix.
func (s *Store) List(_ context.Context, prefix string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := make(map[string]string)
	for k, v := range s.data {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}

// RunInTx runs fn and restores the previous contents if it fails or panics.
// Transactions are serialized with each other but not with plain Get/Set.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := maps.Clone(s.data)
	s.mu.RUnlock()

	restore := func() {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
	}

	defer func() {
		if r := recover(); r != nil {
			restore()
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		restore()
		return err
	}
	return nil
}
