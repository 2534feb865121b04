// Package llm talks to hosted language models on behalf of the direct
// backend. Every call is a single structured completion: one prompt in,
// one JSON document matching a schema out.
package llm

import (
	"context"
	"encoding/json"
)

// Provider produces one structured completion per call.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the resolved model the provider sends requests to.
	ModelID() string
}

// Purposes label requests in the event log and usage reports.
const (
	PurposeAnswer = "answer"
	PurposeQuiz   = "quiz"
)

// Request is a single-turn completion request.
type Request struct {
	// Purpose is PurposeAnswer or PurposeQuiz.
	Purpose string

	System string
	Prompt string

	// Schema, when set, constrains the output. Providers reject output
	// that does not validate with a KindInvalidOutput error.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Schema is a named JSON Schema for structured output.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a successful completion.
type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that served the request, as reported by the
	// provider. It may carry a date suffix the configured alias lacks.
	Model string

	// Truncated is set when generation stopped at MaxTokens.
	Truncated bool
}

// Usage is the token accounting for one completion.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
