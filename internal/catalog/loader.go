package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/heartmarshall/notas/internal/domain"
)

//go:embed data/vocabulary.json
var embeddedDataset []byte

// Decode reads a JSON array of items. Unknown fields (such as "phonetic") are ignored.
func Decode(r io.Reader) ([]domain.Item, error) {
	var items []domain.Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return items, nil
}

// Encode writes items as an indented JSON array with non-ASCII text kept as is.
func Encode(w io.Writer, items []domain.Item) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return nil
}

// Embedded returns the dataset bundled with the binary.
func Embedded() (*Store, error) {
	items, err := Decode(bytes.NewReader(embeddedDataset))
	if err != nil {
		return nil, fmt.Errorf("embedded dataset: %w", err)
	}
	return New(items)
}

// ReadFile reads items from a .json or .xlsx file.
func ReadFile(path string) ([]domain.Item, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadWorkbook(path)
	case ".json", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()
		return Decode(f)
	default:
		return nil, domain.NewValidationError("path", fmt.Sprintf("unsupported dataset format %q", filepath.Ext(path)))
	}
}

// Load returns the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Store, error) {
	if path == "" {
		return Embedded()
	}
	items, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(items)
}
