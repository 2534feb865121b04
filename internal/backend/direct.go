package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/abhisek/bytebuddy/internal/llm"
	"github.com/abhisek/bytebuddy/internal/quiz"
)

const answerSystemPrompt = `You are Byte Buddy, a friendly study assistant for computer science and software topics.
Answer the user's question clearly and concisely, in a few short paragraphs at most.
List the references you relied on in "sources" (titles or URLs). Use an empty list if there are none.`

const quizPromptTemplate = `Based on the explanation below, generate 3 multiple-choice questions.

Explanation:
%s

Each question must have:
- A clear question
- 4 answer options, prefixed "A. ", "B. ", "C. " and "D. "
- The letter of the correct option in "answer"`

// AnswerSchema is the structured output requested for answers.
var AnswerSchema = &llm.Schema{
	Name:        "bytebuddy-answer",
	Description: "An answer to a study question with its sources",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{"type": "string"},
			"sources": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []any{"answer", "sources"},
		"additionalProperties": false,
	},
}

// QuizSchema is the structured output requested for quizzes.
var QuizSchema = &llm.Schema{
	Name:        "bytebuddy-quiz",
	Description: "Multiple-choice questions about an explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"quiz": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"answer": map[string]any{"type": "string", "enum": []any{"A", "B", "C", "D"}},
					},
					"required":             []any{"question", "options", "answer"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"quiz"},
		"additionalProperties": false,
	},
}

// Direct implements Backend by calling an LLM provider in-process instead
// of going through the knowledge service.
type Direct struct {
	provider  llm.Provider
	sessionID string
}

// NewDirect returns a Direct backend. sessionID labels recorded LLM events.
func NewDirect(p llm.Provider, sessionID string) *Direct {
	return &Direct{provider: p, sessionID: sessionID}
}

// Answer asks the provider for a structured answer.
func (d *Direct) Answer(ctx context.Context, question string) (*AnswerResult, error) {
	const op = "query"

	resp, err := d.provider.Generate(llm.WithSessionID(ctx, d.sessionID), llm.Request{
		Purpose:     llm.PurposeAnswer,
		System:      answerSystemPrompt,
		Prompt:      question,
		Schema:      AnswerSchema,
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, providerError(op, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(resp.Content, &fields); err != nil {
		return nil, &ErrMalformedResponse{Op: op, Body: resp.Content, Err: err}
	}
	answer, err := answerField(fields)
	if err != nil {
		return nil, &ErrMalformedResponse{Op: op, Body: resp.Content, Err: err}
	}

	return &AnswerResult{
		Answer:  answer,
		Sources: parseSources(fields["sources"]),
	}, nil
}

// GenerateQuiz asks the provider for three questions about sourceText.
func (d *Direct) GenerateQuiz(ctx context.Context, sourceText string) ([]quiz.Item, error) {
	const op = "quiz"

	resp, err := d.provider.Generate(llm.WithSessionID(ctx, d.sessionID), llm.Request{
		Purpose:     llm.PurposeQuiz,
		Prompt:      fmt.Sprintf(quizPromptTemplate, sourceText),
		Schema:      QuizSchema,
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, providerError(op, err)
	}

	var payload struct {
		Quiz json.RawMessage `json:"quiz"`
	}
	if err := json.Unmarshal(resp.Content, &payload); err != nil {
		return nil, &ErrMalformedResponse{Op: op, Body: resp.Content, Err: err}
	}
	items, err := quiz.Decode(payload.Quiz)
	if err != nil {
		return nil, &ErrMalformedResponse{Op: op, Body: resp.Content, Err: err}
	}
	return items, nil
}

// providerError maps a provider failure onto the errors the HTTP client
// returns, so callers handle both backends alike.
func providerError(op string, err error) error {
	var pe *llm.Error
	if !errors.As(err, &pe) {
		return &ErrTransport{Op: op, Err: err}
	}

	switch pe.Kind {
	case llm.KindRateLimited:
		return &ErrRateLimit{
			RetryAfter: pe.RetryAfter,
			Err:        &ErrStatus{Op: op, Code: http.StatusTooManyRequests, Message: pe.Error()},
		}
	case llm.KindInvalidOutput, llm.KindTruncated:
		return &ErrMalformedResponse{Op: op, Body: pe.Output, Err: pe}
	}
	if pe.Status != 0 {
		return &ErrStatus{Op: op, Code: pe.Status, Message: pe.Error()}
	}
	return &ErrTransport{Op: op, Err: pe}
}
