// Package app is the root Bubble Tea model for the Byte Buddy TUI.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bytebuddy/internal/router"
	"github.com/abhisek/bytebuddy/internal/screen"
	"github.com/abhisek/bytebuddy/internal/screens/ask"
	"github.com/abhisek/bytebuddy/internal/session"
	"github.com/abhisek/bytebuddy/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	session *session.Session
	router  *router.Router
	width   int
	height  int
}

// New creates an AppModel with the ask screen at the bottom of the stack.
func New(ctx context.Context, s *session.Session) AppModel {
	return AppModel{
		session: s,
		router:  router.New(ask.New(ctx, s)),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current terminal size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	snap := m.session.Snapshot()
	header := layout.RenderHeader(title, layout.Status{
		MemoryEnabled: snap.MemoryEnabled,
		HistoryCount:  len(snap.History),
	}, m.width)

	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		if hints := p.KeyHints(); len(hints) > 0 {
			return hints
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

// Run starts the TUI over s. Diagnostics go to logFile, or nowhere when it
// is empty, so they never draw over the interface.
func Run(ctx context.Context, s *session.Session, logFile string) error {
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "bytebuddy ")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}

	p := tea.NewProgram(New(ctx, s), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
