package config

import "time"

// Config is the root application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Catalog CatalogConfig `yaml:"catalog"`
	Study   StudyConfig   `yaml:"study"`
	Speech  SpeechConfig  `yaml:"speech"`
	Log     LogConfig     `yaml:"log"`
}

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// StorageConfig selects the key-value backend holding learner progress.
type StorageConfig struct {
	Driver     string         `yaml:"driver"      env:"STORAGE_DRIVER"      env-default:"sqlite"`
	SQLitePath string         `yaml:"sqlite_path" env:"STORAGE_SQLITE_PATH" env-default:"notas.db"`
	Postgres   DatabaseConfig `yaml:"postgres"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"4"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// CatalogConfig points at the vocabulary dataset. An empty path uses the bundled one.
type CatalogConfig struct {
	Path string `yaml:"path" env:"CATALOG_PATH"`
}

// StudyConfig holds learn and exam pacing.
type StudyConfig struct {
	AdvanceDelay     time.Duration `yaml:"advance_delay"      env:"STUDY_ADVANCE_DELAY"      env-default:"1000ms"`
	ExamAdvanceDelay time.Duration `yaml:"exam_advance_delay" env:"STUDY_EXAM_ADVANCE_DELAY" env-default:"700ms"`
	ExamSize         int           `yaml:"exam_size"          env:"STUDY_EXAM_SIZE"          env-default:"10"`
	ChoiceCount      int           `yaml:"choice_count"       env:"STUDY_CHOICE_COUNT"       env-default:"4"`
}

// Speech providers.
const (
	SpeechNone    = "none"
	SpeechCommand = "command"
	SpeechGoogle  = "google"
)

// SpeechConfig configures pronunciation and answer cues.
type SpeechConfig struct {
	Provider     string        `yaml:"provider"       env:"SPEECH_PROVIDER"       env-default:"none"`
	Command      string        `yaml:"command"        env:"SPEECH_COMMAND"        env-default:"espeak-ng -v pt"`
	Player       string        `yaml:"player"         env:"SPEECH_PLAYER"         env-default:"ffplay -nodisp -autoexit -loglevel quiet"`
	GoogleAPIKey string        `yaml:"google_api_key" env:"GOOGLE_TTS_API_KEY"`
	CacheDir     string        `yaml:"cache_dir"      env:"SPEECH_CACHE_DIR"      env-default:".notas-cache"`
	Voice        string        `yaml:"voice"          env:"SPEECH_VOICE"          env-default:"pt-PT"`
	Rate         float64       `yaml:"rate"           env:"SPEECH_RATE"           env-default:"0.9"`
	Timeout      time.Duration `yaml:"timeout"        env:"SPEECH_TIMEOUT"        env-default:"10s"`
	Cues         bool          `yaml:"cues"           env:"SPEECH_CUES"           env-default:"false"`
}

// LogConfig holds logging settings. A non-empty File redirects output away from
// the terminal.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
	File   string `yaml:"file"   env:"LOG_FILE"`
}
