package quiz

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validArray = `[
  {"question": "Q1?", "options": ["A. one", "B. two", "C. three", "D. four"], "answer": "A"},
  {"question": "Q2?", "options": ["A. x", "B. y", "C. z", "D. w"], "answer": "D"}
]`

func TestDecode_Array(t *testing.T) {
	items, err := Decode(json.RawMessage(validArray))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Q1?", items[0].Question)
	assert.Equal(t, "D", items[1].AnswerKey)
	assert.Len(t, items[1].Options, 4)
}

func TestDecode_StringWrappedArray(t *testing.T) {
	wrapped, err := json.Marshal(validArray)
	require.NoError(t, err)

	items, err := Decode(wrapped)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].AnswerKey)
}

func TestDecode_AbsentOrNull(t *testing.T) {
	for _, raw := range []string{"", "null", "  "} {
		items, err := Decode(json.RawMessage(raw))
		assert.NoError(t, err, "raw %q", raw)
		assert.Empty(t, items, "raw %q", raw)
	}
}

func TestDecode_EmptyArray(t *testing.T) {
	items, err := Decode(json.RawMessage(`[]`))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"object instead of array", `{"question": "Q"}`},
		{"number", `42`},
		{"string not JSON", `"here is your quiz"`},
		{"string wrapping object", `"{\"a\":1}"`},
		{"missing answer", `[{"question": "Q", "options": ["A"]}]`},
		{"options not strings", `[{"question": "Q", "options": [1, 2], "answer": "A"}]`},
		{"truncated", `[{"question": "Q"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Decode(json.RawMessage(tt.raw))
			require.Error(t, err)
			assert.Nil(t, items)

			var invErr *ErrInvalidPayload
			assert.True(t, errors.As(err, &invErr), "expected ErrInvalidPayload, got %T", err)
		})
	}
}
