package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionTokenType(t *testing.T) {
	assert.Equal(t, "send_email", ActionSendEmail.TokenType())
	assert.Equal(t, "create_event", ActionCreateEvent.TokenType())
	assert.Equal(t, "forum_post", ActionCreatePost.TokenType())
	assert.Equal(t, "forum_reply", ActionReplyPost.TokenType())
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusError.Terminal())
}

func TestDomainValid(t *testing.T) {
	for _, d := range []Domain{DomainMessages, DomainCalendar, DomainCoding, DomainForum} {
		assert.True(t, d.Valid())
	}
	assert.False(t, Domain("finance").Valid())
	assert.False(t, Domain("").Valid())
}

func TestQueueItemJSONShape(t *testing.T) {
	item := QueueItem{
		QID:    "send_t1",
		Action: ActionSendEmail,
		Spec:   map[string]any{"qid": "send_t1"},
		Status: StatusPending,
	}
	raw, err := json.Marshal(item)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	// Nullable fields serialize as explicit null while unset.
	for _, key := range []string{"approval_token", "approved_by", "approved_at", "reason"} {
		v, ok := m[key]
		require.True(t, ok, key)
		assert.Nil(t, v, key)
	}
	assert.Equal(t, "pending", m["status"])
}

func TestClearApproval(t *testing.T) {
	token, by, at := "tok", "auto", "2026-03-01T12:00:00Z"
	item := QueueItem{ApprovalToken: &token, ApprovedBy: &by, ApprovedAt: &at}
	item.ClearApproval()
	assert.Nil(t, item.ApprovalToken)
	assert.Nil(t, item.ApprovedBy)
	assert.Nil(t, item.ApprovedAt)
}

func TestSendEmailSpecNullFieldsInHash(t *testing.T) {
	base := SendEmailSpec{QID: "q", ThreadID: "t", To: "a@b.c", Subject: "s", BodyMDPath: "p"}
	h1, err := base.Hash()
	require.NoError(t, err)

	mid := "m1"
	withReply := base
	withReply.ReplyToMessageID = &mid
	h2, err := withReply.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestCreateEventSpecNilAttendeesNormalized(t *testing.T) {
	withNil := CreateEventSpec{QID: "q", CalendarID: "primary", Title: "t"}
	withEmpty := CreateEventSpec{QID: "q", CalendarID: "primary", Title: "t", Attendees: []string{}}

	h1, err := withNil.Hash()
	require.NoError(t, err)
	h2, err := withEmpty.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	m, err := withNil.Map()
	require.NoError(t, err)
	attendees, ok := m["attendees"].([]any)
	require.True(t, ok)
	assert.Empty(t, attendees)
}

func TestSpecMapRoundTrip(t *testing.T) {
	spec := ReplyPostSpec{QID: "molt_reply_p1", PostID: "p1", BodyMDPath: "/tmp/r.md"}
	m, err := spec.Map()
	require.NoError(t, err)
	back, err := ReplyPostSpecFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, spec, back)
}

func TestSpecFromMapRequiresQID(t *testing.T) {
	_, err := SendEmailSpecFromMap(map[string]any{"to": "a@b.c"})
	assert.Error(t, err)
	_, err = SendEmailSpecFromMap(nil)
	assert.Error(t, err)
}
