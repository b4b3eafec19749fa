// Package tui renders a study session in the terminal with bubbletea.
package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/heartmarshall/notas/internal/domain"
	"github.com/heartmarshall/notas/internal/service/exam"
	"github.com/heartmarshall/notas/internal/service/quiz"
	"github.com/heartmarshall/notas/internal/service/session"
)

type coordinator interface {
	Snapshot() session.View
	Mastered() domain.IDSet
	Subscribe(fn func()) (unsubscribe func())

	ChangeMode(ctx context.Context, mode domain.Mode) error
	ChangeLevel(ctx context.Context, level domain.Level) error
	PickChoice(ctx context.Context, id domain.ItemID) quiz.Outcome
	ToggleMastered(ctx context.Context, id domain.ItemID) (bool, error)
	ToggleFavorite(ctx context.Context, id domain.ItemID) (bool, error)
	Unmaster(ctx context.Context, id domain.ItemID) bool
	OpenDetail(ctx context.Context, id domain.ItemID) error
	CloseDetail(ctx context.Context)
	Speak(ctx context.Context, id domain.ItemID) error

	StartExam(ctx context.Context) error
	StartExamAgain(ctx context.Context) error
	SubmitExam(ctx context.Context, input string) (exam.Outcome, error)
	NextExam(ctx context.Context) error
	RestartExam(ctx context.Context)
}

// changedMsg tells the model to re-read the coordinator state.
type changedMsg struct{}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, log *slog.Logger, coord coordinator) error {
	log = log.With("transport", "tui")

	p := tea.NewProgram(newModel(ctx, log, coord), tea.WithAltScreen(), tea.WithContext(ctx))

	// Listeners may fire from inside Update, so Send must not block the caller.
	unsubscribe := coord.Subscribe(func() {
		go p.Send(changedMsg{})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
