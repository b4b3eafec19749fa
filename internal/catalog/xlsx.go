package catalog

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/heartmarshall/notas/internal/domain"
)

// Workbook column names. Example columns repeat with a numeric suffix:
// example_pt, example_cn, example_pt_2, example_cn_2, ...
const (
	colID          = "id"
	colWord        = "word"
	colTranslation = "translation"
	colLevel       = "cefr_level"
	colDefinition  = "priberam_definition"
	colSynonyms    = "synonyms"
	colExamplePT   = "example_pt"
	colExampleCN   = "example_cn"

	maxExamples = 16
)

// ReadWorkbook reads items from the first sheet of an .xlsx file. The first row
// names the columns; rows without a word are skipped.
func ReadWorkbook(path string) ([]domain.Item, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colWord, colTranslation, colLevel} {
		if _, ok := header[required]; !ok {
			return nil, domain.NewValidationError(required, "missing column")
		}
	}

	cell := func(row []string, name string) string {
		i, ok := header[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var items []domain.Item
	for n, row := range rows[1:] {
		word := cell(row, colWord)
		if word == "" {
			continue
		}

		level, err := domain.ParseLevel(cell(row, colLevel))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}

		id := cell(row, colID)
		if id == "" {
			id = fmt.Sprint(n + 1)
		}

		items = append(items, domain.Item{
			ID:          domain.ItemID(id),
			Word:        word,
			Translation: cell(row, colTranslation),
			Level:       level,
			Definition:  cell(row, colDefinition),
			Examples:    workbookExamples(row, cell),
			Synonyms:    splitList(cell(row, colSynonyms)),
		})
	}
	return items, nil
}

func workbookExamples(row []string, cell func([]string, string) string) []domain.Example {
	var out []domain.Example
	for k := 1; k <= maxExamples; k++ {
		pt, cn := colExamplePT, colExampleCN
		if k > 1 {
			pt = fmt.Sprintf("%s_%d", colExamplePT, k)
			cn = fmt.Sprintf("%s_%d", colExampleCN, k)
		}
		p, c := cell(row, pt), cell(row, cn)
		if p == "" && c == "" {
			if k == 1 {
				// Some sheets start at example_pt_2.
				continue
			}
			break
		}
		out = append(out, domain.Example{PT: p, CN: c})
	}
	return out
}

func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' || r == '；' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
