// Package session is the Byte Buddy state machine: the current question
// and answer, the quiz derived from it, and the persisted history. All
// presentation layers drive a single Session.
package session

import (
	"errors"
	"sync"

	"github.com/abhisek/bytebuddy/internal/backend"
	"github.com/abhisek/bytebuddy/internal/history"
	"github.com/abhisek/bytebuddy/internal/quiz"
)

// FallbackAnswer replaces the answer whenever a query fails.
const FallbackAnswer = "Oops! Something went wrong."

var (
	// ErrNoQuiz is returned by quiz actions when no quiz is shown.
	ErrNoQuiz = errors.New("no quiz available")

	// ErrSuperseded is returned when a backend result arrived after a
	// newer request or a reset and was discarded.
	ErrSuperseded = errors.New("result superseded by a newer request")
)

// Session owns all mutable state. Methods are safe for concurrent use;
// backend calls run without the lock held.
type Session struct {
	mu sync.Mutex

	backend backend.Backend
	history *history.Log

	question string
	answer   string
	sources  []string

	quiz       *quiz.State
	quizSource string

	memoryEnabled bool
	answering     bool
	quizzing      bool
	historyPanel  bool

	// Tokens identify the latest request per category. A completion
	// carrying an older token is dropped.
	answerToken uint64
	quizToken   uint64
}

// New returns an idle session over hist that answers through b. The
// history panel starts open.
func New(b backend.Backend, hist *history.Log, memoryEnabled bool) *Session {
	return &Session{
		backend:       b,
		history:       hist,
		sources:       []string{},
		quiz:          quiz.Empty(),
		memoryEnabled: memoryEnabled,
		historyPanel:  true,
	}
}

// ToggleMemory flips whether answered questions are recorded and returns
// the new value.
func (s *Session) ToggleMemory() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memoryEnabled = !s.memoryEnabled
	return s.memoryEnabled
}

// SetMemoryEnabled sets whether answered questions are recorded.
func (s *Session) SetMemoryEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memoryEnabled = enabled
}

// ToggleHistoryPanel flips the history panel flag and returns the new value.
func (s *Session) ToggleHistoryPanel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyPanel = !s.historyPanel
	return s.historyPanel
}

// resetQuizLocked discards the current quiz. Caller holds mu.
func (s *Session) resetQuizLocked() {
	s.quiz = quiz.Empty()
	s.quizSource = ""
}

// History returns a copy of the recorded QA pairs, oldest first.
func (s *Session) History() []history.QA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}
