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

// OpenAIClient talks to the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// NewOpenAIClient returns a client for the given key, base URL and model.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: streamTimeout},
	}
}

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiResponseFormat struct {
	Type string `json:"type"`
}

type oaiRequest struct {
	Model          string             `json:"model"`
	Messages       []oaiMessage       `json:"messages"`
	Stream         bool               `json:"stream,omitempty"`
	ResponseFormat *oaiResponseFormat `json:"response_format,omitempty"`
}

type oaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (c *OpenAIClient) post(ctx context.Context, body oaiRequest) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("openai: status %d", resp.StatusCode)
	}
	return resp, nil
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string, jsonMode bool) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, completeTimeout)
	defer cancel()

	reqBody := oaiRequest{
		Model: c.model,
		Messages: []oaiMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	if jsonMode {
		reqBody.ResponseFormat = &oaiResponseFormat{Type: "json_object"}
	}
	resp, err := c.post(ctx, reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out oaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty choices")
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	r := &Response{Text: text, Model: c.model}
	if jsonMode {
		r.JSON = parseJSONObject(text)
	}
	return r, nil
}

// Stream implements Client via server-sent events.
func (c *OpenAIClient) Stream(ctx context.Context, system, user string) (<-chan string, error) {
	ctx, cancel := context.WithTimeout(ctx, streamTimeout)

	reqBody := oaiRequest{
		Model: c.model,
		Messages: []oaiMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: true,
	}
	resp, err := c.post(ctx, reqBody)
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
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}
			var event oaiResponse
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				continue
			}
			if len(event.Choices) == 0 || event.Choices[0].Delta.Content == "" {
				continue
			}
			select {
			case ch <- event.Choices[0].Delta.Content:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
