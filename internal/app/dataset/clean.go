package dataset

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/heartmarshall/notas/internal/catalog"
	"github.com/heartmarshall/notas/internal/domain"
)

// Report summarizes a cleaning run.
type Report struct {
	Before int
	After  int
}

// Removed is the number of duplicates dropped.
func (r Report) Removed() int { return r.Before - r.After }

var translationSeparators = strings.NewReplacer("/", ";", "；", ";", " ", ";")

// Clean deduplicates items by headword, keeping the lowest-level entry (the first
// one seen on a tie), standardizes translations and sorts by level then id.
// The input slice is not modified.
func Clean(items []domain.Item) ([]domain.Item, Report) {
	byWord := make(map[string]int, len(items))
	var out []domain.Item

	for _, it := range items {
		key := strings.ToLower(strings.TrimSpace(it.Word))
		i, seen := byWord[key]
		if !seen {
			byWord[key] = len(out)
			out = append(out, it)
			continue
		}
		if it.Level.Rank() < out[i].Level.Rank() {
			out[i] = it
		}
	}

	for i := range out {
		out[i].Translation = StandardizeTranslation(out[i].Translation)
	}

	slices.SortStableFunc(out, func(a, b domain.Item) int {
		if c := cmp.Compare(a.Level.Rank(), b.Level.Rank()); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})

	return out, Report{Before: len(items), After: len(out)}
}

// StandardizeTranslation turns "/", full-width "；" and spaces into ";" separators
// and rejoins the non-empty parts with "; ".
func StandardizeTranslation(s string) string {
	parts := lo.FilterMap(strings.Split(translationSeparators.Replace(s), ";"), func(p string, _ int) (string, bool) {
		p = strings.TrimSpace(p)
		return p, p != ""
	})
	return strings.Join(parts, "; ")
}

// compareIDs orders numeric ids numerically and before textual ones.
func compareIDs(a, b domain.ItemID) int {
	na, aok := a.Int()
	nb, bok := b.Int()
	switch {
	case aok && bok:
		return cmp.Compare(na, nb)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}

// CleanFile cleans the JSON dataset at in and writes it to out.
// An empty out rewrites in.
func CleanFile(log *slog.Logger, in, out string) (Report, error) {
	items, err := catalog.ReadFile(in)
	if err != nil {
		return Report{}, err
	}
	cleaned, report := Clean(items)
	if out == "" {
		out = in
	}
	if err := WriteFile(out, cleaned); err != nil {
		return Report{}, err
	}
	log.Info("cleaning complete",
		slog.String("in", in),
		slog.String("out", out),
		slog.Int("before", report.Before),
		slog.Int("after", report.After),
	)
	return report, nil
}

// ImportWorkbook converts an .xlsx sheet into a JSON dataset at out,
// optionally cleaning it on the way.
func ImportWorkbook(log *slog.Logger, xlsx, out string, clean bool) (Report, error) {
	items, err := catalog.ReadWorkbook(xlsx)
	if err != nil {
		return Report{}, err
	}
	report := Report{Before: len(items), After: len(items)}
	if clean {
		items, report = Clean(items)
	}
	if _, err := catalog.New(items); err != nil {
		return Report{}, fmt.Errorf("import %s: %w", xlsx, err)
	}
	if err := WriteFile(out, items); err != nil {
		return Report{}, err
	}
	log.Info("workbook imported",
		slog.String("xlsx", xlsx),
		slog.String("out", out),
		slog.Int("rows", report.Before),
		slog.Int("items", report.After),
	)
	return report, nil
}

// WriteFile writes items to path through a temporary file in the same directory.
func WriteFile(path string, items []domain.Item) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dataset-*.json")
	if err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := catalog.Encode(tmp, items); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}
