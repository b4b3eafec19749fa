package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/heartmarshall/notas/internal/domain"
)

func TestEmbedded_LoadsEveryLevel(t *testing.T) {
	t.Parallel()

	s, err := Embedded()
	require.NoError(t, err)
	require.NotZero(t, s.Len())

	for _, lvl := range domain.Levels() {
		assert.NotEmpty(t, s.ByLevel(lvl), "level %s has no items", lvl)
	}

	it, err := s.ByID("25")
	require.NoError(t, err)
	assert.Equal(t, "efêmero", it.Word)
	assert.Equal(t, "A beleza é efêmera.", it.FirstExample().PT)
}

func TestDecodeEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	in := `[{"id": 1, "word": "casa", "translation": "房子", "cefr_level": "A1",
		"priberam_definition": "", "examples": [], "synonyms": [], "phonetic": "ˈkazɐ"},
		{"id": "x-2", "word": "lar", "translation": "家", "cefr_level": "A2",
		"priberam_definition": "", "examples": [], "synonyms": []}]`

	items, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, items, 2)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, items))

	out := buf.String()
	assert.Contains(t, out, `"id": 1,`)
	assert.Contains(t, out, `"id": "x-2",`)
	assert.Contains(t, out, "房子")
	assert.NotContains(t, out, "phonetic")
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader(`{"not": "an array"}`))
	assert.Error(t, err)
}

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "words.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadWorkbook(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]any{
		{"id", "Word", "translation", "cefr_level", "priberam_definition", "example_pt", "example_cn", "example_pt_2", "example_cn_2", "synonyms"},
		{"10", "efêmero", "短暂的", "c1", "Que dura pouco.", "A beleza é efêmera.", "美是短暂的。", "Foi um amor efêmero.", "那是短暂的爱。", "passageiro; transitório"},
		{"", "casa", "房子", "A1", "", "", "", "", "", ""},
	})

	items, err := ReadWorkbook(path)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, domain.ItemID("10"), first.ID)
	assert.Equal(t, domain.LevelC1, first.Level)
	require.Len(t, first.Examples, 2)
	assert.Equal(t, "Foi um amor efêmero.", first.Examples[1].PT)
	assert.Equal(t, []string{"passageiro", "transitório"}, first.Synonyms)

	second := items[1]
	assert.Equal(t, domain.ItemID("2"), second.ID, "missing id falls back to the data row number")
	assert.Empty(t, second.Examples)
}

func TestReadWorkbook_MissingColumn(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]any{
		{"id", "word"},
		{"1", "casa"},
	})

	_, err := ReadWorkbook(path)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReadWorkbook_BadLevel(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]any{
		{"word", "translation", "cefr_level"},
		{"casa", "房子", "Z9"},
	})

	_, err := ReadWorkbook(path)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoad_Dispatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "v.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"id": 1, "word": "casa", "translation": "房子", "cefr_level": "A1"}]`), 0o644))

	s, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	_, err = Load(filepath.Join(dir, "v.csv"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	emb, err := Load("")
	require.NoError(t, err)
	assert.Greater(t, emb.Len(), 1)
}
