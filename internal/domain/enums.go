package domain

import (
	"fmt"
	"strings"
)

// Level is a CEFR proficiency band.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

var levels = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// Levels returns all levels in ascending order.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

func (l Level) String() string { return string(l) }

func (l Level) IsValid() bool {
	return l.Rank() > 0
}

// Rank returns 1 for A1 through 6 for C2, and 0 for an unknown level.
func (l Level) Rank() int {
	for i, lv := range levels {
		if lv == l {
			return i + 1
		}
	}
	return 0
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.IsValid() {
		return "", NewValidationError("cefr_level", fmt.Sprintf("unknown level %q", s))
	}
	return l, nil
}

// Mode is a top-level screen of the trainer.
type Mode string

const (
	ModeLearn     Mode = "learn"
	ModeDuel      Mode = "duel"
	ModeFavorites Mode = "favorites"
	ModeExam      Mode = "exam"
)

// Modes returns the modes in tab order.
func Modes() []Mode {
	return []Mode{ModeLearn, ModeDuel, ModeFavorites, ModeExam}
}

func (m Mode) String() string { return string(m) }

func (m Mode) IsValid() bool {
	switch m {
	case ModeLearn, ModeDuel, ModeFavorites, ModeExam:
		return true
	}
	return false
}

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", NewValidationError("mode", fmt.Sprintf("unknown mode %q", s))
	}
	return m, nil
}

// FeedbackKind discriminates the learn-phase feedback variant.
type FeedbackKind string

const (
	FeedbackNone    FeedbackKind = "none"
	FeedbackCorrect FeedbackKind = "correct"
	FeedbackWrong   FeedbackKind = "wrong"
)

func (k FeedbackKind) String() string { return string(k) }
