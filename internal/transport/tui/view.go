package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/heartmarshall/notas/internal/domain"
	"github.com/heartmarshall/notas/internal/service/cloze"
	"github.com/heartmarshall/notas/internal/service/exam"
)

const trackWidth = 40

var (
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	styleTab       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("8"))
	styleTabActive = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true)
	styleWord      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	styleCorrect   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleWrong     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleSubtle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleCursor    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	styleBlank     = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("11"))
	styleStatus    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleBox       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	styleBarDone   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleBarTodo   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var tabLabels = map[domain.Mode]string{
	domain.ModeLearn:     "学习 Aprender",
	domain.ModeDuel:      "对战 Duelo",
	domain.ModeFavorites: "收藏 Favoritos",
	domain.ModeExam:      "测试 Exame",
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")

	if m.view.Detail != nil {
		b.WriteString(m.viewDetail())
	} else {
		switch m.view.Mode {
		case domain.ModeLearn:
			b.WriteString(m.viewLearn())
		case domain.ModeDuel:
			b.WriteString(styleSubtle.Render("Duelo: em breve. 即将推出。"))
			b.WriteString("\n")
		case domain.ModeFavorites:
			b.WriteString(m.viewFavorites())
		case domain.ModeExam:
			b.WriteString(m.viewExam())
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styleStatus.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleSubtle.Render(m.help()))
	return b.String()
}

func (m model) viewTabs() string {
	tabs := make([]string, 0, len(domain.Modes())+1)
	tabs = append(tabs, styleTitle.Render("notas"))
	for _, mode := range domain.Modes() {
		style := styleTab
		if mode == m.view.Mode {
			style = styleTabActive
		}
		tabs = append(tabs, style.Render(tabLabels[mode]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m model) viewLevels() string {
	parts := make([]string, 0, len(domain.Levels()))
	for _, lvl := range domain.Levels() {
		if lvl == m.view.Level {
			parts = append(parts, styleTabActive.Render(lvl.String()))
		} else {
			parts = append(parts, styleTab.Render(lvl.String()))
		}
	}
	return strings.Join(parts, "")
}

// renderTrack draws the progress track with a marker at percent (0..100).
func renderTrack(percent float64, width int) string {
	pos := int(percent / 100 * float64(width))
	pos = max(0, min(pos, width-1))
	return styleBarDone.Render(strings.Repeat("━", pos)) + "⛵" + styleBarTodo.Render(strings.Repeat("─", width-pos-1))
}

func (m model) viewLearn() string {
	var b strings.Builder
	b.WriteString(m.viewLevels())
	b.WriteString("\n\n")

	item := m.view.Item
	if item == nil {
		b.WriteString(styleSubtle.Render("Este nível não tem palavras. 该级别没有单词。"))
		b.WriteString("\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%s %s\n\n", renderTrack(m.view.Progress, trackWidth),
		styleSubtle.Render(fmt.Sprintf("%d/%d · dominadas %d", m.view.DisplayIndex+1, m.view.Total, m.view.MasteredCount)))

	word := styleWord.Render(item.Word)
	if m.view.CurrentFavorite {
		word += " ★"
	}
	if m.view.CurrentMastered {
		word += " " + styleCorrect.Render("✓")
	}
	b.WriteString(styleBox.Render(word))
	b.WriteString("\n\n")

	for i, choice := range m.view.Choices {
		line := fmt.Sprintf("%d. %s", i+1, choice.Translation)
		switch {
		case m.view.Feedback.IsCorrect() && choice.ID == item.ID:
			line = styleCorrect.Render(line + "  ✓")
		case m.view.Feedback.IsWrongPick(choice.ID):
			line = styleWrong.Render(line + "  ✗")
		}
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) viewDetail() string {
	d := m.view.Detail
	var b strings.Builder

	title := styleWord.Render(d.Item.Word) + "  " + d.Item.Translation + "  " + styleSubtle.Render(d.Item.Level.String())
	b.WriteString(title)
	b.WriteString("\n")

	flags := []string{}
	if d.Mastered {
		flags = append(flags, styleCorrect.Render("dominada 已掌握"))
	}
	if d.Favorite {
		flags = append(flags, "★ favorita")
	}
	if len(flags) > 0 {
		b.WriteString(strings.Join(flags, "  "))
		b.WriteString("\n")
	}

	if d.Item.Definition != "" {
		b.WriteString("\n")
		b.WriteString(wrap(d.Item.Definition, m.width))
		b.WriteString("\n")
	}
	if len(d.Item.Examples) > 0 {
		b.WriteString("\n")
		for _, ex := range d.Item.Examples {
			fmt.Fprintf(&b, "• %s\n  %s\n", ex.PT, styleSubtle.Render(ex.CN))
		}
	}
	if len(d.Item.Synonyms) > 0 {
		fmt.Fprintf(&b, "\nSinónimos: %s\n", strings.Join(d.Item.Synonyms, ", "))
	}
	return styleBox.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func wrap(s string, width int) string {
	if width <= 8 {
		return s
	}
	return lipgloss.NewStyle().Width(width - 6).Render(s)
}

func (m model) viewFavorites() string {
	if len(m.view.Favorites) == 0 {
		return styleSubtle.Render("Ainda sem favoritas. 还没有收藏。") + "\n"
	}
	var b strings.Builder
	for i, it := range m.view.Favorites {
		cursor := "  "
		if i == m.cursor {
			cursor = styleCursor.Render("> ")
		}
		fmt.Fprintf(&b, "%s%s  %s  %s\n", cursor, styleWord.Render(it.Word), it.Translation, styleSubtle.Render(it.Level.String()))
	}
	return b.String()
}

func (m model) viewExam() string {
	snap := m.view.Exam
	switch snap.Phase {
	case exam.PhaseTesting:
		if snap.Question != nil {
			return m.viewQuestion(*snap.Question)
		}
	case exam.PhaseResults:
		return m.viewResults(snap.Summary)
	}
	return fmt.Sprintf("Teste com as palavras dominadas (%d disponíveis).\n%s\n",
		m.view.MasteredCount, styleSubtle.Render("Enter para começar. 按 Enter 开始。"))
}

func (m model) viewQuestion(q exam.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", styleSubtle.Render(fmt.Sprintf("Pergunta %d/%d", q.Index+1, q.Total)))

	if q.Cloze.HasCloze() {
		b.WriteString(strings.Join(q.Cloze.Parts(), styleBlank.Render(cloze.Blank)))
		b.WriteString("\n")
		if q.Hint != "" {
			b.WriteString(styleSubtle.Render(q.Hint))
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", styleSubtle.Render(q.Item.Translation))
	} else {
		fmt.Fprintf(&b, "%s\n", styleWord.Render(q.Prompt))
	}
	b.WriteString("\n")

	switch {
	case q.Succeeded:
		b.WriteString(styleCorrect.Render("✓ " + m.input.Value()))
	case q.Revealed:
		b.WriteString(styleWrong.Render("✗ " + m.input.Value()))
		b.WriteString("\n")
		fmt.Fprintf(&b, "Resposta: %s", styleCorrect.Render(strings.Join(q.Cloze.Answers, " / ")))
	default:
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m model) viewResults(s exam.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resultado: %s\n\n", styleWord.Render(fmt.Sprintf("%d/%d", s.Score, s.Total)))

	for _, a := range s.Answers {
		mark := styleCorrect.Render("✓")
		if !a.Correct {
			mark = styleWrong.Render("✗")
		}
		fmt.Fprintf(&b, "%s ", mark)
	}
	b.WriteString("\n")

	wrong := s.Wrong()
	if len(wrong) == 0 {
		b.WriteString("\n")
		b.WriteString(styleCorrect.Render("Perfeito! 全部正确！"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("\n")
	for i, a := range wrong {
		cursor := "  "
		if i == m.cursor {
			cursor = styleCursor.Render("> ")
		}
		state := ""
		if !m.mastered.Contains(a.Item.ID) {
			state = styleSubtle.Render("  (removida das dominadas)")
		}
		answer := a.UserAnswer
		if answer == "" {
			answer = "-"
		}
		fmt.Fprintf(&b, "%s%s  %s → %s%s\n", cursor, styleWord.Render(a.Item.Word),
			styleWrong.Render(answer), styleCorrect.Render(strings.Join(a.Accepted, " / ")), state)
	}
	return b.String()
}

func (m model) help() string {
	if m.view.Detail != nil {
		return "m dominar · f favorita · s ouvir · esc fechar"
	}
	switch m.view.Mode {
	case domain.ModeLearn:
		return "1-4 escolher · ←/→ nível · m dominar · f favorita · s ouvir · enter detalhes · tab modo · q sair"
	case domain.ModeFavorites:
		return "↑/↓ mover · enter detalhes · f remover · s ouvir · tab modo · q sair"
	case domain.ModeExam:
		switch m.view.Exam.Phase {
		case exam.PhaseTesting:
			return "enter responder/seguinte · esc recomeçar · tab modo · ctrl+c sair"
		case exam.PhaseResults:
			return "↑/↓ mover · u remover das dominadas · a repetir · r recomeçar · q sair"
		}
	}
	return "tab modo · q sair"
}
