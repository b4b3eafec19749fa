// Package persistence maps learner progress onto a string key-value store.
// Reads degrade to defaults and writes never fail the caller: every storage
// problem is logged and swallowed.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/heartmarshall/notas/internal/domain"
)

// Storage keys.
const (
	KeyMastered    = "notas_mastered"
	KeyFavorites   = "notas_favorites"
	KeyIndexPrefix = "notas_index_"
	KeyPrefix      = "notas_"
)

// CursorKey returns the key holding the stored index of level.
func CursorKey(level domain.Level) string {
	return KeyIndexPrefix + level.String()
}

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Service reads and writes the three progress slots.
type Service struct {
	kv  kvStore
	log *slog.Logger
}

// NewService creates a new persistence service.
func NewService(log *slog.Logger, kv kvStore) *Service {
	return &Service{
		kv:  kv,
		log: log.With("service", "persistence"),
	}
}

func (s *Service) LoadMastered(ctx context.Context) domain.IDSet {
	return s.loadSet(ctx, KeyMastered)
}

func (s *Service) LoadFavorites(ctx context.Context) domain.IDSet {
	return s.loadSet(ctx, KeyFavorites)
}

func (s *Service) SaveMastered(ctx context.Context, set domain.IDSet) {
	s.saveSet(ctx, KeyMastered, set)
}

func (s *Service) SaveFavorites(ctx context.Context, set domain.IDSet) {
	s.saveSet(ctx, KeyFavorites, set)
}

// LoadCursor returns the stored index for level, or 0 when it is missing,
// unreadable or negative. Range checks against the level size are left to the
// progress model.
func (s *Service) LoadCursor(ctx context.Context, level domain.Level) int {
	key := CursorKey(level)
	raw, ok := s.get(ctx, key)
	if !ok {
		return 0
	}
	n, ok := ParseCursor(raw)
	if !ok {
		s.log.WarnContext(ctx, "malformed cursor, using 0",
			slog.String("key", key),
			slog.String("value", raw),
		)
		return 0
	}
	return n
}

func (s *Service) SaveCursor(ctx context.Context, level domain.Level, idx int) {
	s.set(ctx, CursorKey(level), strconv.Itoa(idx))
}

// DecodeSet parses a serialized id list. Duplicates and empty ids are dropped.
func DecodeSet(raw string) (domain.IDSet, error) {
	var ids []domain.ItemID
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return domain.IDSet{}, err
	}
	return domain.NewIDSet(ids...), nil
}

// EncodeSet serializes set as an ordered JSON list. An empty set encodes as [].
func EncodeSet(set domain.IDSet) (string, error) {
	ids := set.IDs()
	if ids == nil {
		ids = []domain.ItemID{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseCursor reads a leading decimal integer, ignoring leading whitespace and
// anything after the digits. Negative values are rejected.
func ParseCursor(raw string) (int, bool) {
	raw = strings.TrimLeftFunc(raw, unicode.IsSpace)
	raw = strings.TrimPrefix(raw, "+")
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *Service) loadSet(ctx context.Context, key string) domain.IDSet {
	raw, ok := s.get(ctx, key)
	if !ok {
		return domain.IDSet{}
	}
	set, err := DecodeSet(raw)
	if err != nil {
		s.log.WarnContext(ctx, "malformed id list, using empty set",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return domain.IDSet{}
	}
	return set
}

func (s *Service) saveSet(ctx context.Context, key string, set domain.IDSet) {
	raw, err := EncodeSet(set)
	if err != nil {
		s.log.WarnContext(ctx, "encode id list",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	s.set(ctx, key, raw)
}

func (s *Service) get(ctx context.Context, key string) (string, bool) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "read failed, using default",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return "", false
	}
	return raw, true
}

func (s *Service) set(ctx context.Context, key, value string) {
	if err := s.kv.Set(ctx, key, value); err != nil {
		s.log.WarnContext(ctx, "write failed, change kept in memory only",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
