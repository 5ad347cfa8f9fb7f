package forum

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietdesk/companion/pkg/contracts"
)

func writeCreds(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadCredentials(t *testing.T) {
	creds, err := LoadCredentials(writeCreds(t, `{"api_key": "k1", "agent_name": "crabby"}`))
	require.NoError(t, err)
	assert.Equal(t, "k1", creds.APIKey)
	assert.Equal(t, "crabby", creds.AgentName)

	// camelCase keys and default agent name.
	creds, err = LoadCredentials(writeCreds(t, `{"apiKey": "k2"}`))
	require.NoError(t, err)
	assert.Equal(t, "k2", creds.APIKey)
	assert.Equal(t, "companion", creds.AgentName)

	_, err = LoadCredentials(writeCreds(t, `{"agent_name": "nobody"}`))
	assert.Error(t, err)

	_, err = LoadCredentials(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, writeCreds(t, `{"api_key": "k1", "agent_name": "crabby"}`))
	require.NoError(t, err)
	return c
}

func TestListPosts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "hot", r.URL.Query().Get("sort"))
		assert.Equal(t, "Bearer k1", r.Header.Get("Authorization"))
		assert.Equal(t, "crabby", r.Header.Get("X-Agent-Name"))
		json.NewEncoder(w).Encode(map[string]any{"posts": []map[string]any{
			{"id": "p1", "title": "Molting", "content": "tips"},
		}})
	})

	posts, err := c.ListPosts(context.Background(), "hot", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "p1", posts[0].ID)
}

func TestReplyPost(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/p1/comments", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, c.ReplyPost(context.Background(), "p1", "nice shell"))
	assert.Equal(t, "nice shell", got["content"])
}

func TestErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})
	err := c.CreatePost(context.Background(), "t", "c")
	assert.ErrorContains(t, err, "403")
}

func TestPublishReplyReadsDraft(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	})

	body := filepath.Join(t.TempDir(), "reply.md")
	require.NoError(t, os.WriteFile(body, []byte("drafted reply\n"), 0o644))
	spec := contracts.ReplyPostSpec{QID: "molt_reply_p1", PostID: "p1", BodyMDPath: body}
	require.NoError(t, c.PublishReply(context.Background(), spec))
	assert.Equal(t, "drafted reply\n", got["content"])

	spec.BodyMDPath = filepath.Join(t.TempDir(), "missing.md")
	assert.Error(t, c.PublishReply(context.Background(), spec))
}

func TestFeedReader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"posts": []map[string]any{{"id": "p1"}}})
	})
	r := &FeedReader{Client: c, Sort: "hot", Limit: 5}
	state, err := r.ReadFeed(context.Background())
	require.NoError(t, err)
	require.Len(t, state.Posts, 1)
}
