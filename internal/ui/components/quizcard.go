package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/bytebuddy/internal/ui/theme"
)

// QuizCard renders one quiz item: its options, the check action and,
// once checked, the verdict.
type QuizCard struct {
	Number    int
	Question  string
	Options   []string
	AnswerKey string
	Selection string
	Selected  bool
	Checked   bool
	Correct   bool

	// Cursor is the highlighted option when the card is focused.
	Cursor  int
	Focused bool
}

// Feedback returns the verdict line for a checked card, or "".
func (c QuizCard) Feedback() string {
	if !c.Checked {
		return ""
	}
	if c.Correct {
		return "Correct!"
	}
	return "Incorrect. Correct answer: " + c.AnswerKey
}

// View renders the card at the given width.
func (c QuizCard) View(width int) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Width(max(width-4, 10)).
		Render(fmt.Sprintf("%d. %s", c.Number, c.Question)))
	b.WriteString("\n")

	for i, opt := range c.Options {
		marker := "( )"
		if c.Selected && opt == c.Selection {
			marker = "(•)"
		}
		prefix := "  "
		if c.Focused && i == c.Cursor && !c.Checked {
			prefix = "▸ "
		}
		line := prefix + marker + " " + opt

		style := theme.Unselected
		switch {
		case c.Checked && c.Selected && opt == c.Selection && c.Correct:
			style = theme.Correct
		case c.Checked && c.Selected && opt == c.Selection:
			style = theme.Incorrect
		case c.Checked:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case c.Focused && i == c.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if c.Checked {
		style := theme.Incorrect
		if c.Correct {
			style = theme.Correct
		}
		b.WriteString(style.Render(c.Feedback()))
	} else {
		b.WriteString(NewButton("Check My Answer", c.Focused && c.Selected, !c.Selected).View())
	}

	card := theme.Card
	if c.Focused {
		card = theme.FocusedCard
	}
	return card.Width(width).Render(b.String())
}
