// Package ask is the main Byte Buddy screen: question input, answer,
// quiz and the history sidebar.
package ask

import (
	"context"
	"errors"
	"log"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/bytebuddy/internal/router"
	"github.com/abhisek/bytebuddy/internal/screen"
	"github.com/abhisek/bytebuddy/internal/screens/history"
	"github.com/abhisek/bytebuddy/internal/session"
	"github.com/abhisek/bytebuddy/internal/ui/components"
	"github.com/abhisek/bytebuddy/internal/ui/layout"
)

type focus int

const (
	focusInput focus = iota
	focusActions
	focusQuiz
	focusSidebar
)

const (
	actionQuiz   = "Quiz Me"
	actionRetake = "Retake Quiz"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Screen implements screen.Screen over a session.Session.
type Screen struct {
	ctx     context.Context
	session *session.Session
	snap    session.Snapshot

	input   components.TextInput
	sidebar components.Menu
	focus   focus

	action int // index into actions()
	item   int // quiz item on display
	cursor int // highlighted option of that item

	// Calls dispatched but not yet returned. The session only flips its
	// busy flags once the call starts, so these cover the gap.
	askPending  int
	quizPending int

	spin     time.Duration // frame interval; zero disables the animation
	spinning bool
	frame    int
	notice   string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the ask screen. Backend calls made on the user's behalf
// run under ctx.
func New(ctx context.Context, s *session.Session) *Screen {
	scr := &Screen{
		ctx:     ctx,
		session: s,
		input:   components.NewTextInput("Ask me anything about your notes...", 500),
		spin:    120 * time.Millisecond,
	}
	scr.refresh()
	return scr
}

func (s *Screen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *Screen) Title() string {
	return "Ask"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Tab", Description: "Next"}}
	switch s.focus {
	case focusInput:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Ask"})
	case focusActions:
		hints = append(hints,
			layout.KeyHint{Key: "←→", Description: "Choose"},
			layout.KeyHint{Key: "Enter", Description: "Run"})
	case focusQuiz:
		hints = append(hints,
			layout.KeyHint{Key: "↑↓", Description: "Option"},
			layout.KeyHint{Key: "Enter", Description: "Select"},
			layout.KeyHint{Key: "c", Description: "Check"},
			layout.KeyHint{Key: "←→", Description: "Question"})
	case focusSidebar:
		hints = append(hints,
			layout.KeyHint{Key: "↑↓", Description: "Navigate"},
			layout.KeyHint{Key: "Enter", Description: "Select"})
	}
	return append(hints,
		layout.KeyHint{Key: "Ctrl+B", Description: "History"},
		layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case askDoneMsg:
		s.askPending--
		s.report("ask", msg.Err)
	case quizDoneMsg:
		s.quizPending--
		s.report("quiz", msg.Err)
	case resetDoneMsg:
		if msg.Err != nil {
			s.notice = "History cleared, but it could not be removed from storage."
		}
	case spinnerTickMsg:
		cmd = s.handleTick()
	case tea.KeyPressMsg:
		cmd = s.handleKey(msg)
	default:
		if s.focus == focusInput {
			s.input, cmd = s.input.Update(msg)
		}
	}

	s.refresh()
	return s, cmd
}

// report logs a failed call. The session has already committed the
// degraded state, so nothing else needs to happen here.
func (s *Screen) report(op string, err error) {
	if err == nil || errors.Is(err, session.ErrSuperseded) {
		return
	}
	log.Printf("ask screen: %s: %v", op, err)
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()

	switch key {
	case "ctrl+b":
		if !s.session.ToggleHistoryPanel() && s.focus == focusSidebar {
			s.setFocus(focusInput)
		}
		return nil
	case "tab":
		return s.cycleFocus(1)
	case "shift+tab":
		return s.cycleFocus(-1)
	}

	switch s.focus {
	case focusInput:
		if key == "enter" {
			return s.ask()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd

	case focusActions:
		return s.handleActionKey(key)

	case focusQuiz:
		return s.handleQuizKey(key)

	case focusSidebar:
		if key == "esc" {
			return s.setFocus(focusInput)
		}
		var cmd tea.Cmd
		s.sidebar, cmd = s.sidebar.Update(msg)
		return cmd
	}
	return nil
}

func (s *Screen) handleActionKey(key string) tea.Cmd {
	acts := s.actions()
	switch key {
	case "left", "h":
		if s.action > 0 {
			s.action--
		}
	case "right", "l":
		if s.action < len(acts)-1 {
			s.action++
		}
	case "enter":
		if s.action >= len(acts) {
			return nil
		}
		switch acts[s.action] {
		case actionQuiz:
			return s.generateQuiz(false)
		case actionRetake:
			return s.generateQuiz(true)
		}
	case "esc":
		return s.setFocus(focusInput)
	}
	return nil
}

func (s *Screen) handleQuizKey(key string) tea.Cmd {
	if !s.snap.QuizVisible {
		return nil
	}
	item := s.snap.Quiz[s.item]

	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(item.Options)-1 {
			s.cursor++
		}
	case "left", "h":
		if s.item > 0 {
			s.item--
			s.cursor = s.cursorFor(s.item)
		}
	case "right", "l":
		if s.item < len(s.snap.Quiz)-1 {
			s.item++
			s.cursor = s.cursorFor(s.item)
		}
	case "enter", "space":
		s.selectOption(s.cursor)
	case "1", "2", "3", "4":
		idx := int(key[0] - '1')
		if idx < len(item.Options) {
			s.cursor = idx
			s.selectOption(idx)
		}
	case "c":
		if err := s.session.CheckAnswer(s.item); err != nil {
			s.notice = "Pick an option first."
		} else {
			s.notice = ""
		}
	case "r":
		if s.snap.ShowScore {
			return s.generateQuiz(true)
		}
	case "esc":
		return s.setFocus(focusInput)
	}
	return nil
}

func (s *Screen) selectOption(idx int) {
	item := s.snap.Quiz[s.item]
	if item.Checked || idx < 0 || idx >= len(item.Options) {
		return
	}
	if err := s.session.SelectOption(s.item, item.Options[idx]); err != nil {
		log.Printf("ask screen: select: %v", err)
	}
}

// cursorFor places the cursor on the item's current selection.
func (s *Screen) cursorFor(i int) int {
	it := s.snap.Quiz[i]
	for j, opt := range it.Options {
		if it.Selected && opt == it.Selection {
			return j
		}
	}
	return 0
}

func (s *Screen) ask() tea.Cmd {
	if s.input.Blank() {
		return nil
	}
	q := s.input.Value()
	s.input.SetValue("")
	s.notice = ""
	s.item, s.cursor, s.action = 0, 0, 0
	s.askPending++

	ctx, sess := s.ctx, s.session
	return tea.Batch(
		func() tea.Msg { return askDoneMsg{Err: sess.AskQuestion(ctx, q)} },
		s.startSpinner(),
	)
}

func (s *Screen) generateQuiz(retake bool) tea.Cmd {
	s.notice = ""
	s.item, s.cursor = 0, 0
	s.quizPending++

	ctx, sess := s.ctx, s.session
	run := sess.GenerateQuiz
	if retake {
		run = sess.RetakeQuiz
	}
	return tea.Batch(
		func() tea.Msg { return quizDoneMsg{Err: run(ctx)} },
		s.startSpinner(),
	)
}

func (s *Screen) resetMemory() tea.Cmd {
	s.notice = ""
	ctx, sess := s.ctx, s.session
	return func() tea.Msg { return resetDoneMsg{Err: sess.ResetMemory(ctx)} }
}

func (s *Screen) busy() bool {
	return s.answering() || s.quizzing()
}

func (s *Screen) answering() bool {
	return s.snap.Answering || s.askPending > 0
}

func (s *Screen) quizzing() bool {
	return s.snap.Quizzing || s.quizPending > 0
}

func (s *Screen) startSpinner() tea.Cmd {
	if s.spinning || s.spin <= 0 {
		return nil
	}
	s.spinning = true
	return s.spinnerTick()
}

func (s *Screen) handleTick() tea.Cmd {
	s.frame = (s.frame + 1) % len(spinnerFrames)
	s.snap = s.session.Snapshot()
	if !s.busy() {
		s.spinning = false
		return nil
	}
	return s.spinnerTick()
}

func (s *Screen) spinnerTick() tea.Cmd {
	return tea.Tick(s.spin, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// actions lists the buttons under the answer.
func (s *Screen) actions() []string {
	if s.snap.Answer == "" {
		return nil
	}
	acts := []string{actionQuiz}
	if s.snap.ShowScore {
		acts = append(acts, actionRetake)
	}
	return acts
}

func (s *Screen) available(f focus) bool {
	switch f {
	case focusInput:
		return true
	case focusActions:
		return len(s.actions()) > 0
	case focusQuiz:
		return s.snap.QuizVisible
	case focusSidebar:
		return s.snap.HistoryPanelOpen
	}
	return false
}

func (s *Screen) cycleFocus(dir int) tea.Cmd {
	next := s.focus
	for range 4 {
		next = focus((int(next) + dir + 4) % 4)
		if s.available(next) {
			break
		}
	}
	return s.setFocus(next)
}

func (s *Screen) setFocus(f focus) tea.Cmd {
	s.focus = f
	s.sidebar.Focused = f == focusSidebar
	if f == focusInput {
		return s.input.Focus()
	}
	s.input.Blur()
	return nil
}

// refresh re-reads the session and repairs view state that the new
// snapshot may have invalidated.
func (s *Screen) refresh() {
	s.snap = s.session.Snapshot()

	if n := len(s.snap.Quiz); s.item >= n {
		s.item, s.cursor = 0, 0
	}
	if acts := s.actions(); s.action >= len(acts) {
		s.action = max(len(acts)-1, 0)
	}
	if !s.available(s.focus) {
		s.setFocus(focusInput)
	}

	memLabel := "Memory: off"
	if s.snap.MemoryEnabled {
		memLabel = "Memory: on"
	}
	s.sidebar.SetItems([]components.MenuItem{
		{Label: memLabel, Action: func() tea.Cmd {
			s.session.ToggleMemory()
			return nil
		}},
		{Label: "Browse history", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(s.session)}
			}
		}},
		{Label: "Reset memory", Action: s.resetMemory},
	})
}
