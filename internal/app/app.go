package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/heartmarshall/notas/internal/adapter/postgres"
	"github.com/heartmarshall/notas/internal/adapter/speech"
	"github.com/heartmarshall/notas/internal/catalog"
	"github.com/heartmarshall/notas/internal/config"
	"github.com/heartmarshall/notas/internal/domain"
	"github.com/heartmarshall/notas/internal/service/backup"
	"github.com/heartmarshall/notas/internal/service/exam"
	"github.com/heartmarshall/notas/internal/service/persistence"
	"github.com/heartmarshall/notas/internal/service/quiz"
	"github.com/heartmarshall/notas/internal/service/session"
	"github.com/heartmarshall/notas/internal/transport/tui"
)

// DefaultStudyLogFile receives logs while the TUI owns the terminal.
const DefaultStudyLogFile = "notas.log"

// Setup builds the logger for a command. Interactive commands never log to the
// terminal: an empty log.file falls back to DefaultStudyLogFile.
// The returned func closes the log file, if any.
func Setup(cfg config.LogConfig, interactive bool) (*slog.Logger, func(), error) {
	if cfg.File == "" && interactive {
		cfg.File = DefaultStudyLogFile
	}
	if cfg.File == "" {
		return NewLogger(cfg), func() {}, nil
	}
	f, err := OpenLogFile(cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewLoggerWithWriter(f, cfg), func() { _ = f.Close() }, nil
}

// Study wires storage, catalog, speech and the session coordinator and runs the
// terminal UI until the user quits or ctx is cancelled.
func Study(ctx context.Context, cfg *config.Config, level domain.Level) error {
	logger, closeLog, err := Setup(cfg.Log, true)
	if err != nil {
		return err
	}
	defer closeLog()

	logger.InfoContext(ctx, "starting notas",
		slog.String("version", BuildVersion()),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("speech", cfg.Speech.Provider),
	)

	store, closeStore, err := OpenStorage(ctx, logger, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	items, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	logger.InfoContext(ctx, "catalog loaded", slog.Int("items", items.Len()))

	speaker, err := speech.NewSpeaker(logger, cfg.Speech)
	if err != nil {
		return err
	}
	cues, err := speech.NewCues(logger, cfg.Speech)
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	seed := uint64(time.Now().UnixNano())

	// The engine reports timer-driven changes through the coordinator's listeners.
	var coord *session.Coordinator
	engine := exam.NewEngine(logger, items, clock, quiz.NewRand(seed+1),
		exam.Config{Size: cfg.Study.ExamSize, AdvanceDelay: cfg.Study.ExamAdvanceDelay},
		func() { coord.Notify() },
	)
	coord = session.NewCoordinator(
		logger,
		items,
		persistence.NewService(logger, store),
		quiz.NewGenerator(items, cfg.Study.ChoiceCount, quiz.NewRand(seed)),
		engine,
		speaker,
		cues,
		clock,
		session.Config{AdvanceDelay: cfg.Study.AdvanceDelay, InitialLevel: level},
	)

	ctx = coord.Open(ctx)
	defer coord.Close()

	if err := tui.Run(ctx, logger, coord); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	logger.InfoContext(ctx, "session closed")
	return nil
}

// ExportBackup writes every stored progress key as a JSON snapshot to w.
func ExportBackup(ctx context.Context, cfg *config.Config, w io.Writer) error {
	svc, done, err := backupService(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	snap, err := svc.Export(ctx)
	if err != nil {
		return err
	}
	return backup.Encode(w, snap)
}

// ImportBackup restores a snapshot read from r. It returns the number of keys written.
func ImportBackup(ctx context.Context, cfg *config.Config, r io.Reader) (int, error) {
	snap, err := backup.Decode(r)
	if err != nil {
		return 0, err
	}

	svc, done, err := backupService(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer done()

	return svc.Import(ctx, snap)
}

func backupService(ctx context.Context, cfg *config.Config) (*backup.Service, func(), error) {
	logger, closeLog, err := Setup(cfg.Log, false)
	if err != nil {
		return nil, nil, err
	}
	store, closeStore, err := OpenStorage(ctx, logger, cfg.Storage)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return backup.NewService(logger, store, clockwork.NewRealClock()), func() {
		closeStore()
		closeLog()
	}, nil
}

// Migrate runs goose migrations against the configured postgres database.
func Migrate(ctx context.Context, cfg *config.Config, direction string) error {
	if cfg.Storage.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate: storage driver is %q, migrations apply to %q only",
			cfg.Storage.Driver, config.DriverPostgres)
	}
	logger, closeLog, err := Setup(cfg.Log, false)
	if err != nil {
		return err
	}
	defer closeLog()

	return postgres.Migrate(ctx, cfg.Storage.Postgres.DSN, direction, logger)
}
