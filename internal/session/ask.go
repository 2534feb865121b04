package session

import (
	"context"
	"log"
	"strings"

	"github.com/abhisek/bytebuddy/internal/backend"
	"github.com/abhisek/bytebuddy/internal/history"
)

// AskQuestion sends question to the backend and commits the answer.
//
// A blank question does nothing. Otherwise the quiz and the previous
// answer are cleared before the backend is called. On failure the
// fallback answer is committed and the backend error is returned. When
// memory was enabled at the time of the call, a successful answer is
// appended to history.
func (s *Session) AskQuestion(ctx context.Context, question string) error {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil
	}

	token, remember := s.beginAsk(q)
	res, err := s.backend.Answer(ctx, q)
	return s.finishAsk(ctx, token, remember, q, res, err)
}

func (s *Session) beginAsk(q string) (token uint64, remember bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.answerToken++
	// A new question makes any pending quiz irrelevant.
	s.quizToken++
	s.quizzing = false
	s.resetQuizLocked()

	s.question = q
	s.answer = ""
	s.sources = []string{}
	s.answering = true
	return s.answerToken, s.memoryEnabled
}

func (s *Session) finishAsk(ctx context.Context, token uint64, remember bool, q string, res *backend.AnswerResult, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.answerToken {
		return ErrSuperseded
	}
	defer func() { s.answering = false }()

	if err != nil || res == nil {
		if err != nil {
			log.Printf("session: query failed: %v", err)
		}
		s.answer = FallbackAnswer
		s.sources = []string{}
		return err
	}

	s.answer = res.Answer
	s.sources = append([]string{}, res.Sources...)

	if remember {
		if err := s.history.Append(ctx, history.QA{Question: q, Answer: res.Answer}); err != nil {
			log.Printf("session: %v", err)
		}
	}
	return nil
}
