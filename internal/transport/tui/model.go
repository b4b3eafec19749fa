package tui

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/heartmarshall/notas/internal/domain"
	"github.com/heartmarshall/notas/internal/service/exam"
	"github.com/heartmarshall/notas/internal/service/session"
)

type model struct {
	ctx   context.Context
	log   *slog.Logger
	coord coordinator

	view     session.View
	mastered domain.IDSet
	input    textinput.Model
	cursor   int
	status   string
	width    int
}

func newModel(ctx context.Context, log *slog.Logger, coord coordinator) model {
	ti := textinput.New()
	ti.Placeholder = "escreva a palavra e prima Enter"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Prompt = "> "

	m := model{ctx: ctx, log: log, coord: coord, input: ti}
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) refresh() {
	prevAttempt := m.view.Exam.Summary.AttemptID
	prevQuestion := questionIndex(m.view.Exam)

	m.view = m.coord.Snapshot()
	m.mastered = m.coord.Mastered()

	if m.view.Exam.Summary.AttemptID != prevAttempt || questionIndex(m.view.Exam) != prevQuestion {
		m.input.Reset()
	}
	if m.typing() {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.cursor = clampCursor(m.cursor, m.listLen())
}

func questionIndex(s exam.Snapshot) int {
	if s.Question == nil {
		return -1
	}
	return s.Question.Index
}

// typing reports whether keystrokes belong to the exam answer field.
func (m model) typing() bool {
	q := m.view.Exam.Question
	return m.view.Mode == domain.ModeExam &&
		m.view.Exam.Phase == exam.PhaseTesting &&
		q != nil && !q.Revealed && !q.Succeeded
}

// listLen is the length of the list the cursor moves in.
func (m model) listLen() int {
	switch {
	case m.view.Mode == domain.ModeFavorites:
		return len(m.view.Favorites)
	case m.view.Mode == domain.ModeExam && m.view.Exam.Phase == exam.PhaseResults:
		return len(m.view.Exam.Summary.Wrong())
	}
	return 0
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	return min(cursor, n-1)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.refresh()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	if m.typing() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	if m.view.Detail != nil {
		m.detailKey(msg)
		m.refresh()
		return m, nil
	}

	if m.typing() {
		switch msg.Type {
		case tea.KeyEnter:
			m.submit()
		case tea.KeyEsc:
			m.coord.RestartExam(m.ctx)
		case tea.KeyTab, tea.KeyShiftTab:
			m.cycleMode(msg.Type == tea.KeyTab)
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		m.refresh()
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.cycleMode(true)
	case "shift+tab":
		m.cycleMode(false)
	default:
		switch m.view.Mode {
		case domain.ModeLearn:
			m.learnKey(msg)
		case domain.ModeFavorites:
			m.favoritesKey(msg)
		case domain.ModeExam:
			m.examKey(msg)
		}
	}
	m.refresh()
	return m, nil
}

func (m *model) cycleMode(forward bool) {
	modes := domain.Modes()
	i := slices.Index(modes, m.view.Mode)
	if forward {
		i = (i + 1) % len(modes)
	} else {
		i = (i - 1 + len(modes)) % len(modes)
	}
	m.report(m.coord.ChangeMode(m.ctx, modes[i]))
	m.cursor = 0
}

func (m *model) learnKey(msg tea.KeyMsg) {
	switch key := msg.String(); key {
	case "left", "h":
		m.shiftLevel(-1)
	case "right", "l":
		m.shiftLevel(1)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n := int(key[0] - '1')
		if n < len(m.view.Choices) {
			m.coord.PickChoice(m.ctx, m.view.Choices[n].ID)
		}
	case "m":
		if m.view.Item != nil {
			_, err := m.coord.ToggleMastered(m.ctx, m.view.Item.ID)
			m.report(err)
		}
	case "f":
		if m.view.Item != nil {
			_, err := m.coord.ToggleFavorite(m.ctx, m.view.Item.ID)
			m.report(err)
		}
	case "s":
		if m.view.Item != nil {
			m.report(m.coord.Speak(m.ctx, m.view.Item.ID))
		}
	case "enter", "d":
		if m.view.Item != nil {
			m.report(m.coord.OpenDetail(m.ctx, m.view.Item.ID))
		}
	}
}

func (m *model) shiftLevel(delta int) {
	levels := domain.Levels()
	i := slices.Index(levels, m.view.Level) + delta
	if i < 0 || i >= len(levels) {
		return
	}
	m.report(m.coord.ChangeLevel(m.ctx, levels[i]))
}

func (m *model) favoritesKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	}
	m.cursor = clampCursor(m.cursor, len(m.view.Favorites))
	if len(m.view.Favorites) == 0 {
		return
	}
	selected := m.view.Favorites[m.cursor]

	switch msg.String() {
	case "enter", "d":
		m.report(m.coord.OpenDetail(m.ctx, selected.ID))
	case "f", "x":
		_, err := m.coord.ToggleFavorite(m.ctx, selected.ID)
		m.report(err)
	case "s":
		m.report(m.coord.Speak(m.ctx, selected.ID))
	}
}

func (m *model) detailKey(msg tea.KeyMsg) {
	id := m.view.Detail.Item.ID
	switch msg.String() {
	case "esc", "enter", "q", "d":
		m.coord.CloseDetail(m.ctx)
	case "m":
		_, err := m.coord.ToggleMastered(m.ctx, id)
		m.report(err)
	case "f":
		_, err := m.coord.ToggleFavorite(m.ctx, id)
		m.report(err)
	case "s":
		m.report(m.coord.Speak(m.ctx, id))
	}
}

func (m *model) examKey(msg tea.KeyMsg) {
	switch m.view.Exam.Phase {
	case exam.PhaseIdle:
		if msg.String() == "enter" || msg.String() == "s" {
			m.report(m.coord.StartExam(m.ctx))
		}

	case exam.PhaseTesting:
		q := m.view.Exam.Question
		switch msg.String() {
		case "enter", "n":
			if q != nil && q.Revealed {
				m.report(m.coord.NextExam(m.ctx))
			}
		case "esc":
			m.coord.RestartExam(m.ctx)
		}

	case exam.PhaseResults:
		wrong := m.view.Exam.Summary.Wrong()
		switch msg.String() {
		case "up", "k":
			m.cursor = clampCursor(m.cursor-1, len(wrong))
		case "down", "j":
			m.cursor = clampCursor(m.cursor+1, len(wrong))
		case "u":
			if len(wrong) > 0 {
				m.coord.Unmaster(m.ctx, wrong[m.cursor].Item.ID)
			}
		case "a":
			if m.view.Exam.Summary.CanStartAgain {
				m.report(m.coord.StartExamAgain(m.ctx))
			}
		case "r", "enter", "esc":
			m.coord.RestartExam(m.ctx)
		}
	}
}

func (m *model) submit() {
	out, err := m.coord.SubmitExam(m.ctx, m.input.Value())
	if err != nil {
		m.report(err)
		return
	}
	if out == exam.OutcomeIgnored {
		return
	}
	m.log.DebugContext(m.ctx, "exam answer", slog.String("outcome", out.String()))
}

// report shows err on the status line. Expected user-facing errors are not logged.
func (m *model) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEmptyPool):
		m.status = "Ainda não há palavras dominadas. 还没有掌握的单词。"
	default:
		m.status = err.Error()
		m.log.WarnContext(m.ctx, "action failed", slog.String("error", err.Error()))
	}
}
