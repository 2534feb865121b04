package llm

import (
	"regexp"
	"strings"
)

// modelAliases maps the short names accepted in config to provider model
// IDs. Unknown names pass through, so full IDs work too.
var modelAliases = map[string]map[string]string{
	"anthropic": {
		"claude-haiku":  "claude-haiku-4-5-20251001",
		"claude-sonnet": "claude-sonnet-4-5-20250929",
	},
	"openai": {
		"gpt-mini": "gpt-4o-mini",
		"gpt":      "gpt-4o",
	},
	"gemini": {
		"gemini-flash": "gemini-2.5-flash",
		"gemini-pro":   "gemini-2.5-pro",
	},
}

func resolveModel(provider, name string) string {
	if id, ok := modelAliases[provider][name]; ok {
		return id
	}
	return name
}

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost prices one model's token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// modelCosts covers the models the aliases resolve to, keyed by
// normalized ID.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4-5": {3, 15},
	"gpt-4o-mini":       {0.15, 0.6},
	"gpt-4o":            {2.5, 10},
	"gemini-2.5-flash":  {0.3, 2.5},
	"gemini-2.5-pro":    {1.25, 10},
	"mock":              {0, 0},
}

// dateSuffix matches release dates providers append to model IDs:
// claude-haiku-4-5-20251001, gpt-4o-mini-2024-07-18.
var dateSuffix = regexp.MustCompile(`-(\d{8}|\d{4}-\d{2}-\d{2})$`)

// LookupCost prices a model as recorded in the event log, or returns nil
// when the model is not in the table. Aliases, OpenRouter "vendor/" and
// ":variant" decorations, and release dates are ignored.
func LookupCost(model string) *ModelCost {
	if c, ok := modelCosts[normalizeModel(model)]; ok {
		return &c
	}
	return nil
}

func normalizeModel(model string) string {
	id := model
	for provider := range modelAliases {
		if resolved := resolveModel(provider, id); resolved != id {
			id = resolved
			break
		}
	}
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	if i := strings.Index(id, ":"); i >= 0 {
		id = id[:i]
	}
	return dateSuffix.ReplaceAllString(id, "")
}
