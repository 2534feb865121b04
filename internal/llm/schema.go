package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas caches compiled schemas per *Schema.
var compiledSchemas sync.Map // map[*Schema]*jsonschema.Schema

// structured turns a provider's text output into the response content.
// With a schema the text must hold a JSON document that validates; models
// that ignore the response format and wrap JSON in a code fence or a
// sentence of prose are tolerated. Without a schema the text is returned
// as a JSON string.
func structured(provider string, req Request, text string, truncated bool) (json.RawMessage, error) {
	if req.Schema == nil {
		raw, err := json.Marshal(text)
		if err != nil {
			return nil, &Error{Provider: provider, Kind: KindInvalidOutput, Err: err}
		}
		return raw, nil
	}

	raw := extractJSON(text)
	if err := req.Schema.check(raw); err != nil {
		kind := KindInvalidOutput
		if truncated {
			kind = KindTruncated
		}
		return nil, &Error{Provider: provider, Kind: kind, Output: json.RawMessage(text), Err: err}
	}
	return raw, nil
}

// extractJSON returns the outermost JSON object in text.
func extractJSON(text string) json.RawMessage {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return json.RawMessage(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return json.RawMessage(s)
	}
	return json.RawMessage(s[start : end+1])
}

// check validates raw against the schema.
func (s *Schema) check(raw json.RawMessage) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("not JSON: %w", err)
	}

	compiled, err := s.compile()
	if err != nil {
		return err
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("schema %s: %w", s.Name, err)
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	if cached, ok := compiledSchemas.Load(s); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants the generic decoded form, not Go map literals
	// with typed slices.
	def, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}

	c := jsonschema.NewCompiler()
	url := "mem://" + s.Name + ".json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}

	actual, _ := compiledSchemas.LoadOrStore(s, compiled)
	return actual.(*jsonschema.Schema), nil
}
