package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ItemID identifies a vocabulary item. Datasets may carry numeric or string ids;
// both decode into the same textual form.
type ItemID string

func (id ItemID) String() string { return string(id) }

// UnmarshalJSON accepts a JSON string or a JSON number.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("item id: empty")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("item id: %w", err)
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = ItemID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ItemID(n.String())
	return nil
}

// MarshalJSON writes integer-looking ids as JSON numbers so a cleaned dataset keeps
// the id type it was read with.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if n, ok := id.Int(); ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

// Int returns the numeric value of an id written in canonical decimal form.
func (id ItemID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != string(id) {
		return 0, false
	}
	return n, true
}

// Example is a Portuguese sentence with its Chinese rendering.
type Example struct {
	PT string `json:"pt"`
	CN string `json:"cn"`
}

// Item is a vocabulary entry of the catalog.
type Item struct {
	ID          ItemID    `json:"id"`
	Word        string    `json:"word"`
	Translation string    `json:"translation"`
	Level       Level     `json:"cefr_level"`
	Definition  string    `json:"priberam_definition"`
	Examples    []Example `json:"examples"`
	Synonyms    []string  `json:"synonyms"`
}

// HasExamples reports whether the item carries at least one example sentence.
func (i Item) HasExamples() bool {
	return len(i.Examples) > 0
}

// FirstExample returns the first example, or a zero Example.
func (i Item) FirstExample() Example {
	if len(i.Examples) == 0 {
		return Example{}
	}
	return i.Examples[0]
}
