// Package backup exports and imports every progress entry as one JSON document.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"

	"github.com/heartmarshall/notas/internal/domain"
	"github.com/heartmarshall/notas/internal/service/persistence"
)

// FormatVersion is written into every export and required on import.
const FormatVersion = 1

// Snapshot is the exported document.
type Snapshot struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Entries    map[string]string `json:"entries"`
}

type kvStore interface {
	List(ctx context.Context, prefix string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements progress export and import.
type Service struct {
	kv    kvStore
	clock clockwork.Clock
	log   *slog.Logger
}

func NewService(log *slog.Logger, kv kvStore, clock clockwork.Clock) *Service {
	return &Service{
		kv:    kv,
		clock: clock,
		log:   log.With("service", "backup"),
	}
}

// Export reads every notas_ entry.
func (s *Service) Export(ctx context.Context) (Snapshot, error) {
	entries, err := s.kv.List(ctx, persistence.KeyPrefix)
	if err != nil {
		return Snapshot{}, fmt.Errorf("export: %w", err)
	}

	s.log.InfoContext(ctx, "progress exported", slog.Int("entries", len(entries)))
	return Snapshot{
		Version:    FormatVersion,
		ExportedAt: s.clock.Now().UTC(),
		Entries:    entries,
	}, nil
}

// Import validates snap and writes all of its entries in one transaction.
// Keys absent from snap are left untouched. Returns the number of entries written.
func (s *Service) Import(ctx context.Context, snap Snapshot) (int, error) {
	if err := Validate(snap); err != nil {
		return 0, err
	}

	keys := lo.Keys(snap.Entries)
	slices.Sort(keys)

	err := s.kv.RunInTx(ctx, func(ctx context.Context) error {
		for _, k := range keys {
			if err := s.kv.Set(ctx, k, snap.Entries[k]); err != nil {
				return fmt.Errorf("write %s: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}

	s.log.InfoContext(ctx, "progress imported",
		slog.Int("entries", len(keys)),
		slog.Time("exported_at", snap.ExportedAt),
	)
	return len(keys), nil
}

// Validate checks the version and that every entry is a known slot with a
// well-formed value.
func Validate(snap Snapshot) error {
	var errs []domain.FieldError
	if snap.Version != FormatVersion {
		errs = append(errs, domain.FieldError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (want %d)", snap.Version, FormatVersion),
		})
	}

	for _, key := range lo.Keys(snap.Entries) {
		if msg := checkEntry(key, snap.Entries[key]); msg != "" {
			errs = append(errs, domain.FieldError{Field: "entries." + key, Message: msg})
		}
	}
	if len(errs) > 0 {
		slices.SortFunc(errs, func(a, b domain.FieldError) int { return strings.Compare(a.Field, b.Field) })
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func checkEntry(key, value string) string {
	switch {
	case key == persistence.KeyMastered || key == persistence.KeyFavorites:
		if _, err := persistence.DecodeSet(value); err != nil {
			return "must be a JSON list of ids"
		}
	case strings.HasPrefix(key, persistence.KeyIndexPrefix):
		if !domain.Level(strings.TrimPrefix(key, persistence.KeyIndexPrefix)).IsValid() {
			return "unknown level"
		}
		if _, ok := persistence.ParseCursor(value); !ok {
			return "must be a non-negative integer"
		}
	default:
		return "unknown key"
	}
	return ""
}

// Encode writes snap as indented JSON.
func Encode(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Decode reads a snapshot written by Encode.
func Decode(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode backup: %w", err)
	}
	return snap, nil
}
