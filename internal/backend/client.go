package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/bytebuddy/internal/quiz"
)

// RequestIDHeader carries a per-request identifier for server-side logs.
const RequestIDHeader = "X-Request-Id"

const maxBodyBytes = 4 << 20

// Client is the HTTP implementation of Backend.
type Client struct {
	baseURL string
	client  *http.Client
	newID   func() string
}

// NewClient returns a Client for the service at baseURL. A zero timeout
// leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		newID:   uuid.NewString,
	}
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type queryRequest struct {
	Question string `json:"question"`
}

type quizRequest struct {
	Answer string `json:"answer"`
}

// Answer posts question to /query.
func (c *Client) Answer(ctx context.Context, question string) (*AnswerResult, error) {
	const op = "query"

	body, err := c.post(ctx, op, "/query", queryRequest{Question: question})
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &ErrMalformedResponse{Op: op, Body: body, Err: err}
	}

	answer, err := answerField(fields)
	if err != nil {
		return nil, &ErrMalformedResponse{Op: op, Body: body, Err: err}
	}

	return &AnswerResult{
		Answer:  answer,
		Sources: parseSources(fields["sources"]),
	}, nil
}

// GenerateQuiz posts sourceText to /quiz and decodes the quiz field.
func (c *Client) GenerateQuiz(ctx context.Context, sourceText string) ([]quiz.Item, error) {
	const op = "quiz"

	body, err := c.post(ctx, op, "/quiz", quizRequest{Answer: sourceText})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Quiz json.RawMessage `json:"quiz"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ErrMalformedResponse{Op: op, Body: body, Err: err}
	}

	items, err := quiz.Decode(resp.Quiz)
	if err != nil {
		return nil, &ErrMalformedResponse{Op: op, Body: body, Err: err}
	}
	return items, nil
}

// Ping calls the health endpoint and returns its message.
func (c *Client) Ping(ctx context.Context) (string, error) {
	body, err := c.do(ctx, "ping", http.MethodGet, "/", nil)
	if err != nil {
		return "", err
	}
	return messageField(body), nil
}

// Reset asks the service to forget its conversation memory.
func (c *Client) Reset(ctx context.Context) (string, error) {
	body, err := c.do(ctx, "reset", http.MethodPost, "/reset", nil)
	if err != nil {
		return "", err
	}
	return messageField(body), nil
}

func (c *Client) post(ctx context.Context, op, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", op, err)
	}
	return c.do(ctx, op, http.MethodPost, path, data)
}

func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, c.newID())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &ErrTransport{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &ErrTransport{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &ErrStatus{Op: op, Code: resp.StatusCode, Message: errorField(body)}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &ErrRateLimit{
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Err:        statusErr,
			}
		}
		return nil, statusErr
	}

	return body, nil
}

func errorField(body []byte) string {
	var e struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Detail
}

func messageField(body []byte) string {
	var m struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &m)
	return m.Message
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
