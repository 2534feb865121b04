package session

import (
	"context"
	"log"
	"strings"

	"github.com/abhisek/bytebuddy/internal/quiz"
)

// GenerateQuiz builds a quiz from the current answer. It does nothing
// when there is no answer. Any failure leaves an empty quiz.
func (s *Session) GenerateQuiz(ctx context.Context) error {
	s.mu.Lock()
	text := s.answer
	s.mu.Unlock()
	return s.generate(ctx, text)
}

// RetakeQuiz regenerates the quiz from the text the current one was
// built from, falling back to the current answer. Prior selections and
// checks are always discarded.
func (s *Session) RetakeQuiz(ctx context.Context) error {
	s.mu.Lock()
	text := s.quizSource
	if strings.TrimSpace(text) == "" {
		text = s.answer
	}
	if strings.TrimSpace(text) == "" {
		s.quizToken++
		s.quizzing = false
		s.resetQuizLocked()
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.generate(ctx, text)
}

func (s *Session) generate(ctx context.Context, sourceText string) error {
	if strings.TrimSpace(sourceText) == "" {
		return nil
	}

	token := s.beginQuiz(sourceText)
	items, err := s.backend.GenerateQuiz(ctx, sourceText)
	return s.finishQuiz(token, sourceText, items, err)
}

func (s *Session) beginQuiz(sourceText string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quizToken++
	s.quizzing = true
	s.resetQuizLocked()
	s.quizSource = sourceText
	return s.quizToken
}

func (s *Session) finishQuiz(token uint64, sourceText string, items []quiz.Item, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.quizToken {
		return ErrSuperseded
	}
	s.quizzing = false

	if err != nil {
		log.Printf("session: quiz generation failed: %v", err)
		s.quiz = quiz.Empty()
		return err
	}
	s.quiz = quiz.New(items)
	s.quizSource = sourceText
	return nil
}

// SelectOption records option as the choice for quiz item i.
func (s *Session) SelectOption(i int, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.quiz.Presentable() {
		return ErrNoQuiz
	}
	return s.quiz.Select(i, option)
}

// CheckAnswer grades quiz item i against its selection.
func (s *Session) CheckAnswer(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.quiz.Presentable() {
		return ErrNoQuiz
	}
	return s.quiz.Check(i)
}
