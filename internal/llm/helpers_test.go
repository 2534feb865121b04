package llm

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
)

const answerJSON = `{"answer":"Go is a statically typed, compiled language.","sources":["https://go.dev"]}`

var answerSchema = &Schema{
	Name: "answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer":  map[string]any{"type": "string"},
			"sources": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []any{"answer", "sources"},
		"additionalProperties": false,
	},
}

func answerRequest() Request {
	return Request{
		Purpose:   PurposeAnswer,
		System:    "You are Byte Buddy, a concise study assistant.",
		Prompt:    "What is Go?",
		Schema:    answerSchema,
		MaxTokens: 256,
	}
}

// countingHandler serves fixed JSON with a status and counts hits.
func countingHandler(hits *atomic.Int32, status int, header http.Header, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if pe.Kind != kind {
		t.Fatalf("kind = %s, want %s (%v)", pe.Kind, kind, err)
	}
	return pe
}
