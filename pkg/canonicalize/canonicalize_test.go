package canonicalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalKeyOrder(t *testing.T) {
	out, err := Canonical(map[string]any{"b": 1, "a": 2, "c": nil})
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1,"c":null}`, string(out))
}

func TestCanonicalMinimalNumbers(t *testing.T) {
	out, err := Canonical(map[string]any{"n": 1.0, "m": 0.5})
	require.NoError(t, err)
	assert.Equal(t, `{"m":0.5,"n":1}`, string(out))
}

func TestHashStableAcrossStructAndMap(t *testing.T) {
	type doc struct {
		QID   string `json:"qid"`
		Title string `json:"title"`
	}
	h1, err := Hash(doc{QID: "q1", Title: "standup"})
	require.NoError(t, err)
	h2, err := Hash(map[string]any{"title": "standup", "qid": "q1"})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestHashDistinguishesNullFromAbsent(t *testing.T) {
	withNull, err := Hash(map[string]any{"qid": "q1", "reply_to_message_id": nil})
	require.NoError(t, err)
	without, err := Hash(map[string]any{"qid": "q1"})
	require.NoError(t, err)
	assert.NotEqual(t, withNull, without)
}

func TestHashBytesHex(t *testing.T) {
	h := HashBytes([]byte("{}"))
	assert.Len(t, h, 64)
	assert.Regexp(t, "^[0-9a-f]+$", h)
}
