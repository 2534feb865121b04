// Package history is the full-screen history browser.
package history

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	hist "github.com/abhisek/bytebuddy/internal/history"
	"github.com/abhisek/bytebuddy/internal/router"
	"github.com/abhisek/bytebuddy/internal/screen"
	"github.com/abhisek/bytebuddy/internal/ui/layout"
	"github.com/abhisek/bytebuddy/internal/ui/theme"
)

// Source is what the browser reads entries from.
type Source interface {
	History() []hist.QA
}

// HistoryScreen lists past questions and answers, newest first.
type HistoryScreen struct {
	source  Source
	entries []hist.QA
	vp      viewport.Model
	width   int
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(source Source) *HistoryScreen {
	s := &HistoryScreen{
		source: source,
		vp:     viewport.New(),
	}
	s.entries = source.History()
	return s
}

func (s *HistoryScreen) Init() tea.Cmd {
	return nil
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "PgUp/PgDn", Description: "Page"},
		{Key: "g/G", Description: "Top/Bottom"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		// Background work may have changed the log.
		s.reload()
		return s, nil
	}

	switch kmsg.String() {
	case "esc", "q":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "g", "home":
		s.vp.GotoTop()
		return s, nil
	case "G", "end":
		s.vp.GotoBottom()
		return s, nil
	}

	var cmd tea.Cmd
	s.vp, cmd = s.vp.Update(msg)
	return s, cmd
}

func (s *HistoryScreen) reload() {
	entries := s.source.History()
	if len(entries) == len(s.entries) {
		return
	}
	s.entries = entries
	if s.width > 0 {
		s.vp.SetContent(s.render(s.width))
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if width != s.width {
		s.width = width
		s.vp.SetWidth(width)
		s.vp.SetContent(s.render(width))
	}
	s.vp.SetHeight(height)

	if len(s.entries) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No history yet. Ask something!")
	}
	return s.vp.View()
}

func (s *HistoryScreen) render(width int) string {
	inner := max(width-6, 10)
	var b strings.Builder
	b.WriteString("\n")
	for i := len(s.entries) - 1; i >= 0; i-- {
		qa := s.entries[i]
		b.WriteString(theme.Selected.Render(fmt.Sprintf("  #%d", i+1)))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Text).Bold(true).Width(inner).PaddingLeft(2).
			Render("Q: " + qa.Question))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.TextDim).Width(inner).PaddingLeft(2).
			Render("A: " + qa.Answer))
		b.WriteString("\n\n")
	}
	return b.String()
}
