package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidPayload indicates the quiz payload could not be turned into
// items. Callers degrade to an empty quiz.
type ErrInvalidPayload struct {
	Raw json.RawMessage
	Err error
}

func (e *ErrInvalidPayload) Error() string {
	return fmt.Sprintf("invalid quiz payload: %v", e.Err)
}

func (e *ErrInvalidPayload) Unwrap() error { return e.Err }

// ItemsSchema is the JSON Schema for a list of quiz items.
var ItemsSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{"type": "string"},
			"options": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"answer": map[string]any{"type": "string"},
		},
		"required": []any{"question", "options", "answer"},
	},
}

const itemsSchemaURL = "schema://quiz-items.json"

var compiledItems = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(itemsSchemaURL, ItemsSchema); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(itemsSchemaURL)
})

// Decode normalizes the backend's quiz field. The field is either a JSON
// array of items or a JSON string whose content is such an array.
// An absent or null field yields no items and no error.
func Decode(raw json.RawMessage) ([]Item, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, &ErrInvalidPayload{Raw: raw, Err: fmt.Errorf("decode string: %w", err)}
		}
		trimmed = bytes.TrimSpace([]byte(inner))
	}

	var parsed any
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return nil, &ErrInvalidPayload{Raw: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	schema, err := compiledItems()
	if err != nil {
		return nil, &ErrInvalidPayload{Raw: raw, Err: fmt.Errorf("compile schema: %w", err)}
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, &ErrInvalidPayload{Raw: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var items []Item
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &ErrInvalidPayload{Raw: raw, Err: err}
	}
	return items, nil
}
