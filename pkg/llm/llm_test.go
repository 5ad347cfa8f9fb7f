package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietdesk/companion/pkg/config"
	"github.com/quietdesk/companion/pkg/contracts"
)

func TestParseJSONObject(t *testing.T) {
	assert.Nil(t, parseJSONObject(""))
	assert.Nil(t, parseJSONObject("no json here"))

	m := parseJSONObject(`{"a": 1}`)
	require.NotNil(t, m)
	assert.Equal(t, 1.0, m["a"])

	m = parseJSONObject("Here you go:\n```json\n{\"intents\": []}\n```\nDone.")
	require.NotNil(t, m)
	assert.Contains(t, m, "intents")
}

func TestParseIntentBatch(t *testing.T) {
	doc := map[string]any{
		"intents": []any{
			map[string]any{
				"domain":  "messages",
				"type":    "draft_reply",
				"payload": map[string]any{"thread_id": "t1"},
				"value":   0.7,
				"urgency": 0.9,
			},
			map[string]any{
				"domain": "calendar",
				"type":   "agenda_draft",
			},
		},
	}
	intents, err := ParseIntentBatch(doc, "has_inbox_data")
	require.NoError(t, err)
	require.Len(t, intents, 2)

	assert.Equal(t, contracts.DomainMessages, intents[0].Domain)
	assert.Equal(t, 0.7, intents[0].Value)
	assert.Equal(t, []string{"has_inbox_data"}, intents[0].Preconditions)
	assert.NotEmpty(t, intents[0].ID)
	assert.NotEqual(t, intents[0].ID, intents[1].ID)

	// Defaults applied for omitted priorities.
	assert.Equal(t, 0.5, intents[1].Value)
	assert.Equal(t, 60, intents[1].EffortS)
}

func TestParseIntentBatchRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{"nil", nil},
		{"missing intents", map[string]any{"items": []any{}}},
		{"unknown domain", map[string]any{"intents": []any{map[string]any{"domain": "stocks", "type": "buy"}}}},
		{"value out of range", map[string]any{"intents": []any{map[string]any{"domain": "messages", "type": "draft_reply", "value": 1.5}}}},
		{"effort out of range", map[string]any{"intents": []any{map[string]any{"domain": "coding", "type": "run_tests", "effort_s": 4000.0}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseIntentBatch(tc.doc, "")
			assert.Error(t, err)
		})
	}
}

func TestOllamaComplete(t *testing.T) {
	var gotReq ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(ollamaChunk{Response: `{"intents": []}`, Done: true})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "llama3.1")
	resp, err := c.Complete(context.Background(), "sys", "user", true)
	require.NoError(t, err)

	assert.Equal(t, "json", gotReq.Format)
	assert.False(t, gotReq.Stream)
	assert.Contains(t, gotReq.Prompt, "sys")
	assert.Contains(t, gotReq.Prompt, "user")
	assert.Equal(t, `{"intents": []}`, resp.Text)
	require.NotNil(t, resp.JSON)
}

func TestOllamaStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enc := json.NewEncoder(w)
		enc.Encode(ollamaChunk{Response: "Hello "})
		enc.Encode(ollamaChunk{Response: "world"})
		enc.Encode(ollamaChunk{Done: true})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "llama3.1")
	ch, err := c.Stream(context.Background(), "sys", "user")
	require.NoError(t, err)

	var out string
	for chunk := range ch {
		out += chunk
	}
	assert.Equal(t, "Hello world", out)
}

func TestOllamaErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "missing").Complete(context.Background(), "s", "u", false)
	assert.Error(t, err)
}

func TestBuildProviderSelection(t *testing.T) {
	assert.Nil(t, Build(&config.Config{}))
	assert.Nil(t, Build(&config.Config{LLMProvider: "openai"}))
	assert.Nil(t, Build(&config.Config{LLMProvider: "anthropic"}))
	assert.NotNil(t, Build(&config.Config{LLMProvider: "ollama", OllamaBaseURL: "http://localhost:11434", OllamaModel: "m"}))
	assert.NotNil(t, Build(&config.Config{LLMProvider: "openai", OpenAIAPIKey: "k", OpenAIBaseURL: "http://x", OpenAIModel: "m"}))
	assert.NotNil(t, Build(&config.Config{LLMProvider: "anthropic", AnthropicAPIKey: "k", AnthropicBaseURL: "http://x", AnthropicModel: "m"}))
}

func TestLimitedPassThrough(t *testing.T) {
	assert.Nil(t, Limited(nil, 60))

	c := NewOllamaClient("http://localhost:11434", "m")
	assert.Equal(t, Client(c), Limited(c, 0))
	assert.NotEqual(t, Client(c), Limited(c, 60))
}
