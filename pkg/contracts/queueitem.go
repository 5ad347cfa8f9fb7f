package contracts

// Action tags the external side effect a queue item will perform.
type Action string

const (
	ActionSendEmail   Action = "send_email"
	ActionCreateEvent Action = "create_event"
	ActionCreatePost  Action = "create_post"
	ActionReplyPost   Action = "reply_post"
)

// TokenType returns the approval token type that authorizes this action.
// A token whose type does not match the item's action is rejected by the
// executor regardless of its signature.
func (a Action) TokenType() string {
	switch a {
	case ActionSendEmail:
		return "send_email"
	case ActionCreateEvent:
		return "create_event"
	case ActionCreatePost:
		return "forum_post"
	case ActionReplyPost:
		return "forum_reply"
	}
	return ""
}

// Status is the lifecycle state of a queue item. done, rejected and error
// are terminal; a terminal qid is recorded in the executor's dedupe store
// and never resurrected.
type Status string

const (
	StatusPending  Status = "pending"
	StatusDone     Status = "done"
	StatusRejected Status = "rejected"
	StatusError    Status = "error"
)

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusRejected || s == StatusError
}

// QueueItem is one row of a per-domain queue file. The embedded spec is a
// generic map on disk; controllers and the executor convert it to the typed
// spec for the item's action at their boundaries.
type QueueItem struct {
	QID           string         `json:"qid"`
	Action        Action         `json:"action"`
	Spec          map[string]any `json:"spec"`
	SpecHash      string         `json:"spec_hash"`
	ApprovalToken *string        `json:"approval_token"`
	ApprovedBy    *string        `json:"approved_by"`
	ApprovedAt    *string        `json:"approved_at"`
	Status        Status         `json:"status"`
	Reason        *string        `json:"reason"`
}

// ClearApproval resets the token fields after a spec edit. Status stays
// pending; the spec hash must be recomputed by the caller.
func (q *QueueItem) ClearApproval() {
	q.ApprovalToken = nil
	q.ApprovedBy = nil
	q.ApprovedAt = nil
}
