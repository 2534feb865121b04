// Package backend talks to the knowledge service that answers questions
// and turns answers into quizzes.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/bytebuddy/internal/quiz"
)

// DefaultBaseURL is the knowledge service address used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// AnswerResult is a successful answer with its citations.
type AnswerResult struct {
	Answer  string
	Sources []string
}

// Backend produces answers and quizzes.
type Backend interface {
	// Answer returns the answer to question. Any error means the session
	// falls back to its canned failure answer.
	Answer(ctx context.Context, question string) (*AnswerResult, error)

	// GenerateQuiz builds quiz items from sourceText. A nil slice with a
	// nil error is a valid, empty quiz.
	GenerateQuiz(ctx context.Context, sourceText string) ([]quiz.Item, error)
}

// parseSources keeps the string elements of a sources field. Anything
// that is not a list yields an empty list.
func parseSources(raw json.RawMessage) []string {
	var elems []any
	if err := json.Unmarshal(raw, &elems); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// answerField extracts the required string "answer".
func answerField(fields map[string]json.RawMessage) (string, error) {
	raw, ok := fields["answer"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", errors.New(`missing "answer"`)
	}
	var answer string
	if err := json.Unmarshal(raw, &answer); err != nil {
		return "", fmt.Errorf(`"answer" is not a string: %w`, err)
	}
	return answer, nil
}
