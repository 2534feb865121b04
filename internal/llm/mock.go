package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockResponse is one scripted reply.
type MockResponse struct {
	Content   json.RawMessage
	Usage     Usage
	Truncated bool
	Err       error
}

// MockProvider replays scripted replies in order and records requests.
// Content goes through the same schema check as a real provider, so a
// scripted reply of the wrong shape fails with KindInvalidOutput.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if err := ctx.Err(); err != nil {
		return nil, &Error{Provider: "mock", Kind: KindUnavailable, Err: err}
	}
	if len(m.responses) == 0 {
		return nil, &Error{Provider: "mock", Kind: KindUnavailable, Err: errors.New("no scripted response left")}
	}

	next := m.responses[0]
	m.responses = m.responses[1:]
	if next.Err != nil {
		return nil, next.Err
	}

	content := next.Content
	if req.Schema != nil {
		var err error
		if content, err = structured("mock", req, string(next.Content), next.Truncated); err != nil {
			return nil, err
		}
	}
	return &Response{
		Content:   content,
		Usage:     next.Usage,
		Model:     "mock",
		Truncated: next.Truncated,
	}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
