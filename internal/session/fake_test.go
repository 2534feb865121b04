package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/abhisek/bytebuddy/internal/backend"
	"github.com/abhisek/bytebuddy/internal/history"
	"github.com/abhisek/bytebuddy/internal/kv"
	"github.com/abhisek/bytebuddy/internal/quiz"
)

// reply is one scripted backend outcome. When release is non-nil the
// call blocks until it is closed; started is closed when the call begins.
type reply struct {
	answer  *backend.AnswerResult
	items   []quiz.Item
	err     error
	started chan struct{}
	release chan struct{}
}

func gated(r reply) reply {
	r.started = make(chan struct{})
	r.release = make(chan struct{})
	return r
}

type fakeBackend struct {
	mu          sync.Mutex
	answers     []reply
	quizzes     []reply
	answerCalls []string
	quizCalls   []string
}

func (f *fakeBackend) Answer(ctx context.Context, question string) (*backend.AnswerResult, error) {
	f.mu.Lock()
	f.answerCalls = append(f.answerCalls, question)
	if len(f.answers) == 0 {
		f.mu.Unlock()
		return nil, errors.New("no scripted answer")
	}
	r := f.answers[0]
	f.answers = f.answers[1:]
	f.mu.Unlock()

	wait(r)
	return r.answer, r.err
}

func (f *fakeBackend) GenerateQuiz(ctx context.Context, text string) ([]quiz.Item, error) {
	f.mu.Lock()
	f.quizCalls = append(f.quizCalls, text)
	if len(f.quizzes) == 0 {
		f.mu.Unlock()
		return nil, errors.New("no scripted quiz")
	}
	r := f.quizzes[0]
	f.quizzes = f.quizzes[1:]
	f.mu.Unlock()

	wait(r)
	return r.items, r.err
}

func wait(r reply) {
	if r.started != nil {
		close(r.started)
	}
	if r.release != nil {
		<-r.release
	}
}

func (f *fakeBackend) calls() (answers, quizzes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.answerCalls), len(f.quizCalls)
}

// flakyStorage wraps kv.Memory and fails on demand.
type flakyStorage struct {
	*kv.Memory
	failSet    bool
	failRemove bool
}

func (s *flakyStorage) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return errors.New("disk full")
	}
	return s.Memory.Set(ctx, key, value)
}

func (s *flakyStorage) Remove(ctx context.Context, key string) error {
	if s.failRemove {
		return errors.New("permission denied")
	}
	return s.Memory.Remove(ctx, key)
}

func ok(answer string, sources ...string) reply {
	if sources == nil {
		sources = []string{}
	}
	return reply{answer: &backend.AnswerResult{Answer: answer, Sources: sources}}
}

func quizReply(items ...quiz.Item) reply {
	return reply{items: items}
}

func sampleItems() []quiz.Item {
	return []quiz.Item{
		{Question: "What keyword starts a goroutine?", Options: []string{"A. go", "B. async", "C. spawn", "D. thread"}, AnswerKey: "A"},
		{Question: "Which type passes values between goroutines?", Options: []string{"A. map", "B. slice", "C. chan", "D. struct"}, AnswerKey: "C"},
		{Question: "What does sync.Mutex provide?", Options: []string{"A. hashing", "B. mutual exclusion", "C. IO", "D. GC"}, AnswerKey: "B"},
	}
}

type harness struct {
	backend *fakeBackend
	storage *flakyStorage
	session *Session
}

func newHarness(t *testing.T, memoryEnabled bool) *harness {
	t.Helper()
	storage := &flakyStorage{Memory: kv.NewMemory()}
	fb := &fakeBackend{}
	return &harness{
		backend: fb,
		storage: storage,
		session: New(fb, history.Load(context.Background(), storage), memoryEnabled),
	}
}

// reload simulates a restart over the same storage.
func (h *harness) reload() *Session {
	return New(h.backend, history.Load(context.Background(), h.storage), true)
}

func (h *harness) withAnswer(r reply) *harness {
	h.backend.mu.Lock()
	h.backend.answers = append(h.backend.answers, r)
	h.backend.mu.Unlock()
	return h
}

func (h *harness) withQuiz(r reply) *harness {
	h.backend.mu.Lock()
	h.backend.quizzes = append(h.backend.quizzes, r)
	h.backend.mu.Unlock()
	return h
}
