package domain

import (
	"errors"
	"testing"
)

func TestLevel_Rank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level Level
		want  int
	}{
		{LevelA1, 1},
		{LevelA2, 2},
		{LevelB1, 3},
		{LevelB2, 4},
		{LevelC1, 5},
		{LevelC2, 6},
		{Level("D1"), 0},
		{Level(""), 0},
	}
	for _, tt := range tests {
		t.Run("level_"+string(tt.level), func(t *testing.T) {
			t.Parallel()
			if got := tt.level.Rank(); got != tt.want {
				t.Errorf("Level(%q).Rank() = %d, want %d", tt.level, got, tt.want)
			}
			if got := tt.level.IsValid(); got != (tt.want > 0) {
				t.Errorf("Level(%q).IsValid() = %v", tt.level, got)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	got, err := ParseLevel(" b2 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != LevelB2 {
		t.Errorf("ParseLevel = %q, want B2", got)
	}

	if _, err := ParseLevel("Z9"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseLevel(Z9) error = %v, want ErrValidation", err)
	}
}

func TestLevels_ReturnsCopy(t *testing.T) {
	t.Parallel()

	ls := Levels()
	ls[0] = LevelC2
	if Levels()[0] != LevelA1 {
		t.Error("Levels() must not expose the package slice")
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"learn", ModeLearn, false},
		{"DUEL", ModeDuel, false},
		{" favorites ", ModeFavorites, false},
		{"exam", ModeExam, false},
		{"arena", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFeedback_Variants(t *testing.T) {
	t.Parallel()

	if NoFeedback().IsCorrect() {
		t.Error("none should not be correct")
	}
	if !CorrectFeedback().IsCorrect() {
		t.Error("correct should be correct")
	}

	// An id equal to the literal "correct" must stay a wrong pick.
	wrong := WrongFeedback("correct")
	if wrong.IsCorrect() {
		t.Error("wrong feedback with id \"correct\" reported as correct")
	}
	if !wrong.IsWrongPick("correct") {
		t.Error("IsWrongPick should match the bad id")
	}
	if wrong.IsWrongPick("other") {
		t.Error("IsWrongPick should not match other ids")
	}
}
