package contracts

import (
	"encoding/json"
	"fmt"

	"github.com/quietdesk/companion/pkg/canonicalize"
)

// SendEmailSpec describes one outbound mail. ReplyToMessageID serializes as
// JSON null when absent; the null participates in the spec fingerprint.
type SendEmailSpec struct {
	QID              string  `json:"qid"`
	ThreadID         string  `json:"thread_id"`
	To               string  `json:"to"`
	Subject          string  `json:"subject"`
	BodyMDPath       string  `json:"body_md_path"`
	ReplyToMessageID *string `json:"reply_to_message_id"`
}

// CreateEventSpec describes one calendar insertion.
type CreateEventSpec struct {
	QID               string   `json:"qid"`
	CalendarID        string   `json:"calendar_id"`
	Title             string   `json:"title"`
	StartISO          string   `json:"start_iso"`
	EndISO            string   `json:"end_iso"`
	DescriptionMDPath string   `json:"description_md_path"`
	Attendees         []string `json:"attendees"`
}

// CreatePostSpec describes one new forum post.
type CreatePostSpec struct {
	QID        string `json:"qid"`
	Title      string `json:"title"`
	BodyMDPath string `json:"body_md_path"`
}

// ReplyPostSpec describes one forum reply.
type ReplyPostSpec struct {
	QID        string `json:"qid"`
	PostID     string `json:"post_id"`
	BodyMDPath string `json:"body_md_path"`
}

// Hash returns the canonical SHA-256 fingerprint of the spec.
func (s SendEmailSpec) Hash() (string, error) {
	return canonicalize.Hash(s)
}

// Hash returns the canonical SHA-256 fingerprint of the spec. A nil
// attendee list fingerprints identically to an empty one.
func (s CreateEventSpec) Hash() (string, error) {
	if s.Attendees == nil {
		s.Attendees = []string{}
	}
	return canonicalize.Hash(s)
}

// Hash returns the canonical SHA-256 fingerprint of the spec.
func (s CreatePostSpec) Hash() (string, error) {
	return canonicalize.Hash(s)
}

// Hash returns the canonical SHA-256 fingerprint of the spec.
func (s ReplyPostSpec) Hash() (string, error) {
	return canonicalize.Hash(s)
}

// specToMap converts a typed spec into the generic map stored inside a
// queue item, via a JSON round trip so tags stay authoritative.
func specToMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("spec map: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("spec map: %w", err)
	}
	return m, nil
}

// Map returns the generic map form of the spec for queue persistence.
func (s SendEmailSpec) Map() (map[string]any, error) { return specToMap(s) }

// Map returns the generic map form of the spec for queue persistence.
func (s CreateEventSpec) Map() (map[string]any, error) {
	if s.Attendees == nil {
		s.Attendees = []string{}
	}
	return specToMap(s)
}

// Map returns the generic map form of the spec for queue persistence.
func (s CreatePostSpec) Map() (map[string]any, error) { return specToMap(s) }

// Map returns the generic map form of the spec for queue persistence.
func (s ReplyPostSpec) Map() (map[string]any, error) { return specToMap(s) }

// specFromMap decodes a generic spec map into out and checks the qid is set.
// A missing qid means the item cannot be bound to a token and is dropped by
// the auto-approve engine.
func specFromMap(m map[string]any, out any) error {
	if m == nil {
		return fmt.Errorf("spec: empty")
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("spec: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("spec: %w", err)
	}
	return nil
}

// SendEmailSpecFromMap reconstructs the typed spec from a queue item's map.
func SendEmailSpecFromMap(m map[string]any) (SendEmailSpec, error) {
	var s SendEmailSpec
	if err := specFromMap(m, &s); err != nil {
		return SendEmailSpec{}, err
	}
	if s.QID == "" {
		return SendEmailSpec{}, fmt.Errorf("spec: missing qid")
	}
	return s, nil
}

// CreateEventSpecFromMap reconstructs the typed spec from a queue item's map.
func CreateEventSpecFromMap(m map[string]any) (CreateEventSpec, error) {
	var s CreateEventSpec
	if err := specFromMap(m, &s); err != nil {
		return CreateEventSpec{}, err
	}
	if s.QID == "" {
		return CreateEventSpec{}, fmt.Errorf("spec: missing qid")
	}
	if s.Attendees == nil {
		s.Attendees = []string{}
	}
	return s, nil
}

// CreatePostSpecFromMap reconstructs the typed spec from a queue item's map.
func CreatePostSpecFromMap(m map[string]any) (CreatePostSpec, error) {
	var s CreatePostSpec
	if err := specFromMap(m, &s); err != nil {
		return CreatePostSpec{}, err
	}
	if s.QID == "" {
		return CreatePostSpec{}, fmt.Errorf("spec: missing qid")
	}
	return s, nil
}

// ReplyPostSpecFromMap reconstructs the typed spec from a queue item's map.
func ReplyPostSpecFromMap(m map[string]any) (ReplyPostSpec, error) {
	var s ReplyPostSpec
	if err := specFromMap(m, &s); err != nil {
		return ReplyPostSpec{}, err
	}
	if s.QID == "" {
		return ReplyPostSpec{}, fmt.Errorf("spec: missing qid")
	}
	return s, nil
}
