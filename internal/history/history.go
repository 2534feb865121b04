package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// StorageKey is the single key under which the whole log is persisted.
const StorageKey = "byteBuddyHistory"

// QA is one resolved question/answer pair.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Storage is the durable key-value slot the log is written through to.
// Get reports ok=false when the key is absent.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Log is the ordered record of past QA pairs, oldest first.
// Every mutation persists the whole log. Log is not safe for concurrent
// use; the owning session serializes access.
type Log struct {
	storage Storage
	key     string
	entries []QA
}

// Load reads the log from storage. A missing key, a read error, or a
// malformed payload all yield an empty log; the failure is logged.
func Load(ctx context.Context, storage Storage) *Log {
	l := &Log{storage: storage, key: StorageKey}

	raw, ok, err := storage.Get(ctx, l.key)
	if err != nil {
		log.Printf("history: load %q: %v", l.key, err)
		return l
	}
	if !ok || raw == "" {
		return l
	}

	entries, err := decode(raw)
	if err != nil {
		log.Printf("history: discarding malformed history: %v", err)
		return l
	}
	l.entries = entries
	return l
}

// Append adds qa to the end of the log and writes the log through.
// The in-memory append stands even when the write fails.
func (l *Log) Append(ctx context.Context, qa QA) error {
	l.entries = append(l.entries, qa)
	return l.persist(ctx)
}

// Clear empties the log and removes it from storage.
// The in-memory clear stands even when removal fails.
func (l *Log) Clear(ctx context.Context) error {
	l.entries = nil
	if err := l.storage.Remove(ctx, l.key); err != nil {
		return fmt.Errorf("remove history: %w", err)
	}
	return nil
}

// Entries returns a copy of the log.
func (l *Log) Entries() []QA {
	out := make([]QA, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

func (l *Log) persist(ctx context.Context) error {
	entries := l.entries
	if entries == nil {
		entries = []QA{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := l.storage.Set(ctx, l.key, string(b)); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// decode parses the persisted JSON array. A null payload is an empty log.
func decode(raw string) ([]QA, error) {
	var entries []QA
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
