package llm

import (
	"encoding/json"
	"testing"
)

func TestStructured(t *testing.T) {
	req := answerRequest()

	tests := []struct {
		name string
		text string
	}{
		{"bare", answerJSON},
		{"padded", "\n  " + answerJSON + "\n"},
		{"fenced", "```json\n" + answerJSON + "\n```"},
		{"prose", "Here is the answer:\n" + answerJSON + "\nHope that helps."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := structured("test", req, tt.text, false)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != answerJSON {
				t.Fatalf("content = %s", got)
			}
		})
	}
}

func TestStructured_Rejects(t *testing.T) {
	req := answerRequest()

	tests := []struct {
		name      string
		text      string
		truncated bool
		kind      Kind
	}{
		{"not json", "I don't know.", false, KindInvalidOutput},
		{"missing field", `{"answer":"x"}`, false, KindInvalidOutput},
		{"extra field", `{"answer":"x","sources":[],"confidence":1}`, false, KindInvalidOutput},
		{"wrong type", `{"answer":"x","sources":"go.dev"}`, false, KindInvalidOutput},
		{"cut off", `{"answer":"x","sour`, true, KindTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := structured("test", req, tt.text, tt.truncated)
			pe := requireKind(t, err, tt.kind)
			if string(pe.Output) != tt.text {
				t.Fatalf("output = %q, want the raw text", pe.Output)
			}
		})
	}
}

func TestStructured_TruncatedButValid(t *testing.T) {
	got, err := structured("test", answerRequest(), answerJSON, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != answerJSON {
		t.Fatalf("content = %s", got)
	}
}

func TestStructured_NoSchemaReturnsText(t *testing.T) {
	got, err := structured("test", Request{}, "plain words", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var s string
	if err := json.Unmarshal(got, &s); err != nil || s != "plain words" {
		t.Fatalf("content = %s (%v)", got, err)
	}
}

func TestSchema_CompiledOncePerSchema(t *testing.T) {
	s := &Schema{Name: "once", Definition: map[string]any{"type": "object"}}

	first, err := s.compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("expected the cached compiled schema")
	}

	// Same name, different definition: keyed by schema, not name.
	other := &Schema{Name: "once", Definition: map[string]any{"type": "array"}}
	if err := other.check(json.RawMessage(`[]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSchema_BadDefinition(t *testing.T) {
	s := &Schema{Name: "bad", Definition: map[string]any{"type": 12}}
	if err := s.check(json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected a compile error")
	}
}
