package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Storage.validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Study.validate(); err != nil {
		return fmt.Errorf("study: %w", err)
	}
	if err := c.Speech.validate(); err != nil {
		return fmt.Errorf("speech: %w", err)
	}
	return nil
}

func (s *StorageConfig) validate() error {
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	switch s.Driver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(s.SQLitePath) == "" {
			return fmt.Errorf("sqlite_path is required for driver %q", s.Driver)
		}
	case DriverPostgres:
		if strings.TrimSpace(s.Postgres.DSN) == "" {
			return fmt.Errorf("postgres.dsn is required for driver %q", s.Driver)
		}
		if s.Postgres.MinConns > s.Postgres.MaxConns {
			return fmt.Errorf("postgres.min_conns (%d) exceeds max_conns (%d)", s.Postgres.MinConns, s.Postgres.MaxConns)
		}
	default:
		return fmt.Errorf("unknown driver %q (want memory, sqlite or postgres)", s.Driver)
	}
	return nil
}

func (s *StudyConfig) validate() error {
	if s.AdvanceDelay <= 0 {
		return fmt.Errorf("advance_delay must be > 0 (got %v)", s.AdvanceDelay)
	}
	if s.ExamAdvanceDelay <= 0 {
		return fmt.Errorf("exam_advance_delay must be > 0 (got %v)", s.ExamAdvanceDelay)
	}
	if s.ExamSize < 1 {
		return fmt.Errorf("exam_size must be >= 1 (got %d)", s.ExamSize)
	}
	if s.ChoiceCount < 2 {
		return fmt.Errorf("choice_count must be >= 2 (got %d)", s.ChoiceCount)
	}
	return nil
}

func (s *SpeechConfig) validate() error {
	s.Provider = strings.ToLower(strings.TrimSpace(s.Provider))
	switch s.Provider {
	case SpeechNone:
	case SpeechCommand:
		if len(strings.Fields(s.Command)) == 0 {
			return fmt.Errorf("command is required for provider %q", s.Provider)
		}
	case SpeechGoogle:
		if s.GoogleAPIKey == "" {
			return fmt.Errorf("google_api_key is required for provider %q", s.Provider)
		}
		if len(strings.Fields(s.Player)) == 0 {
			return fmt.Errorf("player is required for provider %q", s.Provider)
		}
	default:
		return fmt.Errorf("unknown provider %q (want none, command or google)", s.Provider)
	}
	if s.Rate <= 0 {
		return fmt.Errorf("rate must be > 0 (got %v)", s.Rate)
	}
	if s.Cues && len(strings.Fields(s.Player)) == 0 {
		return fmt.Errorf("player is required when cues are enabled")
	}
	return nil
}
