// Package forum is a thin HTTP client for the forum API: bearer-key
// authenticated JSON over REST. It backs both the orchestrator's feed
// reader and the executor's post/reply writers.
package forum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quietdesk/companion/pkg/schedulers"
)

const requestTimeout = 30 * time.Second

// Credentials identify the agent to the forum.
type Credentials struct {
	APIKey    string
	AgentName string
}

// LoadCredentials reads a credentials JSON file. Both snake_case and
// camelCase keys are accepted; a leading ~ expands to the home directory.
func LoadCredentials(path string) (Credentials, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return Credentials{}, fmt.Errorf("forum credentials: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("forum credentials: %w", err)
	}
	var doc struct {
		APIKey    string `json:"api_key"`
		APIKeyAlt string `json:"apiKey"`
		Agent     string `json:"agent_name"`
		AgentAlt  string `json:"agentName"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Credentials{}, fmt.Errorf("forum credentials: %w", err)
	}
	creds := Credentials{APIKey: doc.APIKey, AgentName: doc.Agent}
	if creds.APIKey == "" {
		creds.APIKey = doc.APIKeyAlt
	}
	if creds.AgentName == "" {
		creds.AgentName = doc.AgentAlt
	}
	if creds.AgentName == "" {
		creds.AgentName = "companion"
	}
	if creds.APIKey == "" {
		return Credentials{}, fmt.Errorf("forum credentials: missing api_key in %s", path)
	}
	return creds, nil
}

// Client talks to one forum instance.
type Client struct {
	baseURL string
	creds   Credentials
	http    *http.Client
}

// NewClient returns a client for baseURL with credentials from credsPath.
func NewClient(baseURL, credsPath string) (*Client, error) {
	creds, err := LoadCredentials(credsPath)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http:    &http.Client{Timeout: requestTimeout},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.creds.APIKey)
	req.Header.Set("User-Agent", c.creds.AgentName)
	req.Header.Set("X-Agent-Name", c.creds.AgentName)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("forum %s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("forum %s %s: %w", method, path, err)
		}
	}
	return nil
}

// ListPosts fetches the feed.
func (c *Client) ListPosts(ctx context.Context, sort string, limit int) ([]schedulers.Post, error) {
	path := "/posts?" + url.Values{"sort": {sort}, "limit": {fmt.Sprint(limit)}}.Encode()
	var envelope struct {
		Posts []schedulers.Post `json:"posts"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Posts, nil
}

// CreatePost publishes a new post.
func (c *Client) CreatePost(ctx context.Context, title, content string) error {
	return c.do(ctx, http.MethodPost, "/posts", map[string]string{"title": title, "content": content}, nil)
}

// ReplyPost publishes a comment under an existing post.
func (c *Client) ReplyPost(ctx context.Context, postID, content string) error {
	return c.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/comments", map[string]string{"content": content}, nil)
}

// FeedReader adapts the client to the orchestrator's reader interface.
type FeedReader struct {
	Client *Client
	Sort   string
	Limit  int
}

// ReadFeed fetches the current feed as scheduler input.
func (r *FeedReader) ReadFeed(ctx context.Context) (schedulers.FeedState, error) {
	posts, err := r.Client.ListPosts(ctx, r.Sort, r.Limit)
	if err != nil {
		return schedulers.FeedState{}, err
	}
	return schedulers.FeedState{Posts: posts}, nil
}
