package session

import (
	"context"
	"log"
)

// ResetMemory clears history in memory and in storage, along with the
// current question, answer, sources and quiz. In-flight requests are
// invalidated. The in-memory reset stands even if storage removal fails;
// that error is returned.
func (s *Session) ResetMemory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.answerToken++
	s.quizToken++
	s.answering = false
	s.quizzing = false

	s.question = ""
	s.answer = ""
	s.sources = []string{}
	s.resetQuizLocked()

	if err := s.history.Clear(ctx); err != nil {
		log.Printf("session: %v", err)
		return err
	}
	return nil
}
