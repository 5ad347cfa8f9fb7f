package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	completeTimeout = 60 * time.Second
	streamTimeout   = 120 * time.Second
)

// OllamaClient talks to a local Ollama server's generate endpoint.
type OllamaClient struct {
	baseURL string
	model   string
	http    *http.Client
}

// NewOllamaClient returns a client for the given base URL and model.
func NewOllamaClient(baseURL, model string) *OllamaClient {
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: streamTimeout},
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type ollamaChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func ollamaPrompt(system, user string) string {
	return fmt.Sprintf("<<SYS>>\n%s\n<</SYS>>\n\n%s", system, user)
}

func (c *OllamaClient) post(ctx context.Context, body any) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ollama: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("ollama: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("ollama: status %d", resp.StatusCode)
	}
	return resp, nil
}

// Complete implements Client.
func (c *OllamaClient) Complete(ctx context.Context, system, user string, jsonMode bool) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, completeTimeout)
	defer cancel()

	reqBody := ollamaRequest{Model: c.model, Prompt: ollamaPrompt(system, user), Stream: false}
	if jsonMode {
		reqBody.Format = "json"
	}
	resp, err := c.post(ctx, reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out ollamaChunk
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}
	text := strings.TrimSpace(out.Response)
	r := &Response{Text: text, Model: c.model}
	if jsonMode {
		r.JSON = parseJSONObject(text)
	}
	return r, nil
}

// Stream implements Client via Ollama's NDJSON streaming mode.
func (c *OllamaClient) Stream(ctx context.Context, system, user string) (<-chan string, error) {
	ctx, cancel := context.WithTimeout(ctx, streamTimeout)

	resp, err := c.post(ctx, ollamaRequest{Model: c.model, Prompt: ollamaPrompt(system, user), Stream: true})
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
			var chunk ollamaChunk
			if err := json.Unmarshal(scanner.Bytes(), &chunk); err != nil {
				continue
			}
			if chunk.Response != "" {
				select {
				case ch <- chunk.Response:
				case <-ctx.Done():
					return
				}
			}
			if chunk.Done {
				return
			}
		}
	}()
	return ch, nil
}
