package llm

import "context"

type sessionKey struct{}

// WithSessionID attaches the session identifier recorded on LLM events.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionIDFrom extracts the session identifier, or "" if none is set.
func SessionIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(sessionKey{}).(string)
	return v
}
