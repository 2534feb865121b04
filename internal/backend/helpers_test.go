package backend

import (
	"context"

	"github.com/abhisek/bytebuddy/internal/store"
)

type eventRecorder struct {
	purposes []string
	sessions []string
}

func (r *eventRecorder) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.purposes = append(r.purposes, data.Purpose)
	r.sessions = append(r.sessions, data.SessionID)
	return nil
}

func (r *eventRecorder) QueryLLMEvents(context.Context, store.QueryOpts) ([]store.LLMEventRecord, error) {
	return nil, nil
}

func (r *eventRecorder) GetLLMEvent(context.Context, int64) (*store.LLMEventRecord, error) {
	return nil, nil
}
