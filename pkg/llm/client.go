// Package llm consumes language models as a capability set {complete,
// stream} behind HTTP-backed providers. The core never depends on a
// specific provider, and everything a model returns is treated as
// untrusted until validated.
package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Response is one completion. JSON is non-nil only when the call requested
// JSON mode and the model's output parsed as a JSON object.
type Response struct {
	Text  string         `json:"text"`
	JSON  map[string]any `json:"json,omitempty"`
	Model string         `json:"model,omitempty"`
}

// Client is the capability set the core consumes.
type Client interface {
	// Complete returns a single completion. With jsonMode the provider is
	// asked for strict JSON and the response JSON field is populated on a
	// successful parse.
	Complete(ctx context.Context, system, user string, jsonMode bool) (*Response, error)
	// Stream returns completion chunks; the channel closes when the model
	// finishes or the context is done.
	Stream(ctx context.Context, system, user string) (<-chan string, error)
}

// parseJSONObject extracts a JSON object from model output, tolerating
// surrounding prose and markdown fences. Returns nil when nothing parses.
func parseJSONObject(text string) map[string]any {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	candidates := []string{text}
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			candidates = append(candidates, text[start:end+1])
		}
	}
	for _, c := range candidates {
		var m map[string]any
		if err := json.Unmarshal([]byte(c), &m); err == nil {
			return m
		}
	}
	return nil
}
