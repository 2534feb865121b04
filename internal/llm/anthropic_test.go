package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{
		APIKey:  "test-key",
		Model:   "claude-haiku",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func anthropicMessage(text, stopReason string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stopReason,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func anthropicErrorBody(kind, message string) map[string]any {
	return map[string]any{
		"type":  "error",
		"error": map[string]any{"type": kind, "message": message},
	}
}

func TestAnthropicProvider_Answer(t *testing.T) {
	var got struct {
		Model  string `json:"model"`
		System []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
		OutputConfig struct {
			Format struct {
				Type string `json:"type"`
			} `json:"format"`
		} `json:"output_config"`
	}
	handler := func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(answerJSON, "end_turn"))
	}

	p := newTestAnthropicProvider(t, handler)
	resp, err := p.Generate(context.Background(), answerRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Model != "claude-haiku-4-5-20251001" {
		t.Fatalf("model = %q, want the resolved alias", got.Model)
	}
	if len(got.System) != 1 || got.System[0].Text != answerRequest().System {
		t.Fatalf("system = %+v", got.System)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content[0].Text != "What is Go?" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if got.OutputConfig.Format.Type != "json_schema" {
		t.Fatalf("output format = %q, want json_schema", got.OutputConfig.Format.Type)
	}

	if string(resp.Content) != answerJSON {
		t.Fatalf("content = %s", resp.Content)
	}
	if resp.Usage != (Usage{InputTokens: 50, OutputTokens: 30}) {
		t.Fatalf("usage = %+v", resp.Usage)
	}
	if resp.Model != "claude-haiku-4-5-20251001" || resp.Truncated {
		t.Fatalf("model = %q truncated = %v", resp.Model, resp.Truncated)
	}
}

func TestAnthropicProvider_FencedJSON(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage("```json\n"+answerJSON+"\n```", "end_turn"))
	}

	resp, err := newTestAnthropicProvider(t, handler).Generate(context.Background(), answerRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != answerJSON {
		t.Fatalf("content = %s", resp.Content)
	}
}

func TestAnthropicProvider_RateLimitIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	header := http.Header{"Retry-After": []string{"7"}}
	p := newTestAnthropicProvider(t, countingHandler(&hits, http.StatusTooManyRequests, header,
		anthropicErrorBody("rate_limit_error", "Rate limit exceeded")))

	_, err := p.Generate(context.Background(), answerRequest())
	pe := requireKind(t, err, KindRateLimited)
	if pe.Status != http.StatusTooManyRequests {
		t.Fatalf("status = %d", pe.Status)
	}
	if pe.RetryAfter != 7*time.Second {
		t.Fatalf("retry after = %s, want 7s", pe.RetryAfter)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("server saw %d requests, want 1", n)
	}
}

func TestAnthropicProvider_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusUnauthorized, KindRejected},
		{http.StatusNotFound, KindRejected},
		{http.StatusInternalServerError, KindUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var hits atomic.Int32
			p := newTestAnthropicProvider(t, countingHandler(&hits, tt.status, nil,
				anthropicErrorBody("api_error", "nope")))

			_, err := p.Generate(context.Background(), answerRequest())
			pe := requireKind(t, err, tt.kind)
			if pe.Status != tt.status || pe.Provider != "anthropic" {
				t.Fatalf("error = %+v", pe)
			}
			if n := hits.Load(); n != 1 {
				t.Fatalf("server saw %d requests, want 1", n)
			}
		})
	}
}

func TestAnthropicProvider_TruncatedOutput(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"answer":"Go is a stat`, "max_tokens"))
	}

	_, err := newTestAnthropicProvider(t, handler).Generate(context.Background(), answerRequest())
	pe := requireKind(t, err, KindTruncated)
	if string(pe.Output) != `{"answer":"Go is a stat` {
		t.Fatalf("output = %s", pe.Output)
	}
}

func TestAnthropicProvider_WrongShape(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"reply":"Go is a language."}`, "end_turn"))
	}

	_, err := newTestAnthropicProvider(t, handler).Generate(context.Background(), answerRequest())
	requireKind(t, err, KindInvalidOutput)
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(AnthropicConfig{Model: "claude-haiku"}); err == nil {
		t.Fatal("expected error without an API key")
	}
}
