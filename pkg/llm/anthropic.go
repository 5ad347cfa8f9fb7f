package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const anthropicVersion = "2023-06-01"

// AnthropicClient talks to the Anthropic messages API.
type AnthropicClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// NewAnthropicClient returns a client for the given key, base URL and model.
func NewAnthropicClient(apiKey, baseURL, model string) *AnthropicClient {
	return &AnthropicClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: streamTimeout},
	}
}

type anthropicRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []oaiMessage `json:"messages"`
	Stream    bool         `json:"stream,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

func (c *AnthropicClient) post(ctx context.Context, body anthropicRequest) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("anthropic: create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("anthropic: status %d", resp.StatusCode)
	}
	return resp, nil
}

// Complete implements Client.
func (c *AnthropicClient) Complete(ctx context.Context, system, user string, jsonMode bool) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, completeTimeout)
	defer cancel()

	resp, err := c.post(ctx, anthropicRequest{
		Model:     c.model,
		MaxTokens: 2048,
		System:    system,
		Messages:  []oaiMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("anthropic: decode response: %w", err)
	}
	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	r := &Response{Text: text, Model: c.model}
	if jsonMode {
		r.JSON = parseJSONObject(text)
	}
	return r, nil
}

// Stream implements Client via server-sent events.
func (c *AnthropicClient) Stream(ctx context.Context, system, user string) (<-chan string, error) {
	ctx, cancel := context.WithTimeout(ctx, streamTimeout)

	resp, err := c.post(ctx, anthropicRequest{
		Model:     c.model,
		MaxTokens: 2048,
		System:    system,
		Messages:  []oaiMessage{{Role: "user", Content: user}},
		Stream:    true,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	ch := make(chan string)
	go func() {
		defer cancel()
		defer close(ch)
		defer resp.Body.Close()
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			var event anthropicStreamEvent
			if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &event); err != nil {
				continue
			}
			if event.Type == "message_stop" {
				return
			}
			if event.Delta.Text == "" {
				continue
			}
			select {
			case ch <- event.Delta.Text:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
