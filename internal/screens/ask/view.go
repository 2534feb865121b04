package ask

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/bytebuddy/internal/ui/components"
	"github.com/abhisek/bytebuddy/internal/ui/layout"
	"github.com/abhisek/bytebuddy/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	mainWidth, sideWidth := layout.SplitWidth(width, s.snap.HistoryPanelOpen)

	main := lipgloss.NewStyle().
		Width(mainWidth).
		Padding(0, 2).
		Render(s.renderMain(mainWidth - 4))
	if sideWidth == 0 {
		return main
	}

	side := theme.Sidebar.
		Width(sideWidth).
		Height(height).
		Render(s.renderSidebar(sideWidth-3, height))
	return lipgloss.JoinHorizontal(lipgloss.Top, main, side)
}

func (s *Screen) renderMain(width int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.Title.Render("Ask Byte Buddy"))
	b.WriteString("\n")

	s.input.SetWidth(max(width-14, 10))
	inputBox := theme.Card
	if s.focus == focusInput {
		inputBox = theme.FocusedCard
	}
	askLabel := "Ask"
	if s.answering() {
		askLabel = "Thinking..."
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		inputBox.Width(width-14).Render(s.input.View()),
		" ",
		components.NewButton(askLabel, s.focus == focusInput && !s.input.Blank(), s.input.Blank()).View(),
	))
	b.WriteString("\n\n")

	if s.notice != "" {
		b.WriteString(theme.Hint.Render(s.notice))
		b.WriteString("\n\n")
	}

	switch {
	case s.answering():
		b.WriteString(theme.Busy.Render(spinnerFrames[s.frame] + " Thinking..."))
		b.WriteString("\n")
		if s.snap.Question != "" {
			b.WriteString(theme.Subtitle.Render("Q: " + s.snap.Question))
			b.WriteString("\n")
		}
		return b.String()
	case s.snap.Answer == "":
		b.WriteString(theme.Hint.Render("Ask a question to get started."))
		return b.String()
	}

	b.WriteString(s.renderAnswer(width))
	b.WriteString("\n")
	b.WriteString(s.renderActions())
	b.WriteString("\n")

	if s.quizzing() {
		b.WriteString("\n")
		b.WriteString(theme.Busy.Render(spinnerFrames[s.frame] + " Generating Quiz..."))
		b.WriteString("\n")
	} else if s.snap.QuizVisible {
		b.WriteString("\n")
		b.WriteString(s.renderQuiz(width))
	}

	return b.String()
}

func (s *Screen) renderAnswer(width int) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Q: " + s.snap.Question))
	b.WriteString("\n")
	b.WriteString(theme.Body.Width(width).Render(s.snap.Answer))
	b.WriteString("\n")

	if len(s.snap.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Render("Sources:"))
		b.WriteString("\n")
		for _, src := range s.snap.Sources {
			b.WriteString("  • " + theme.Source.Render(src))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (s *Screen) renderActions() string {
	acts := s.actions()
	parts := make([]string, 0, len(acts))
	for i, a := range acts {
		label := a
		if a == actionQuiz && s.quizzing() {
			label = "Generating Quiz..."
		}
		parts = append(parts, components.NewButton(label, s.focus == focusActions && i == s.action, false).View())
	}
	return strings.Join(parts, " ")
}

func (s *Screen) renderQuiz(width int) string {
	var b strings.Builder

	checked := 0
	for _, it := range s.snap.Quiz {
		if it.Checked {
			checked++
		}
	}
	b.WriteString(components.NewProgressBar(
		fmt.Sprintf("Quiz · question %d of %d", s.item+1, len(s.snap.Quiz)),
		checked, len(s.snap.Quiz), min(width, 60),
	).View())
	b.WriteString("\n")

	it := s.snap.Quiz[s.item]
	card := components.QuizCard{
		Number:    s.item + 1,
		Question:  it.Question,
		Options:   it.Options,
		AnswerKey: it.AnswerKey,
		Selection: it.Selection,
		Selected:  it.Selected,
		Checked:   it.Checked,
		Correct:   it.Correct,
		Cursor:    s.cursor,
		Focused:   s.focus == focusQuiz,
	}
	b.WriteString(card.View(min(width, 72)))
	b.WriteString("\n")

	if s.snap.ShowScore {
		b.WriteString(theme.Title.Render(fmt.Sprintf("You scored %d out of %d", s.snap.Score, len(s.snap.Quiz))))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Screen) renderSidebar(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("History"))
	b.WriteString("\n")
	b.WriteString(s.sidebar.View())
	b.WriteString("\n")

	if len(s.snap.History) == 0 {
		b.WriteString(theme.Hint.Render("Nothing saved yet."))
		return b.String()
	}

	// Newest first, as many as fit.
	room := height - lipgloss.Height(b.String()) - 1
	line := lipgloss.NewStyle().Foreground(theme.Text).Width(width).MaxHeight(2)
	for i := len(s.snap.History) - 1; i >= 0 && room >= 3; i-- {
		entry := line.Render(s.snap.History[i].Question)
		b.WriteString(entry)
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width, 1))))
		b.WriteString("\n")
		room -= lipgloss.Height(entry) + 1
	}
	return b.String()
}
