// Package gate admits or rejects proposed intents against a closed
// allow-list and basic range validation. The gate is stateless: the same
// intent always yields the same decision.
package gate

import (
	"github.com/quietdesk/companion/pkg/contracts"
)

// Rejection reason codes.
const (
	ReasonOK             = "ok"
	ReasonNotAllowlisted = "type_not_allowlisted"
	ReasonUnknownDomain  = "unknown_domain"
	ReasonBadPriority    = "bad_priority"
	ReasonBadEffort      = "bad_effort"
)

// Policy is the set of intent types the gate admits.
type Policy struct {
	AllowTypes map[string]struct{}
}

// DefaultPolicy returns the closed allow-list of intent types.
func DefaultPolicy() Policy {
	allowed := []string{
		// message drafts + enqueue
		"draft_reply",
		"triage_summary",
		"ask_clarifying_question",
		"enqueue_send_draft",
		// calendar drafts + enqueue
		"agenda_draft",
		"conflict_report",
		"propose_slots",
		"enqueue_event_draft",
		// coding drafts
		"run_tests",
		"draft_patch",
		// forum drafts + enqueue
		"draft_forum_reply",
		"draft_forum_post",
	}
	types := make(map[string]struct{}, len(allowed))
	for _, t := range allowed {
		types[t] = struct{}{}
	}
	return Policy{AllowTypes: types}
}

// Gate validates intent shape. Schedulers are not trusted to respect the
// allow-list; everything they propose passes through here.
type Gate struct {
	policy Policy
}

// New returns a gate with the default allow-list.
func New() *Gate {
	return &Gate{policy: DefaultPolicy()}
}

// NewWithPolicy returns a gate using a custom allow-list.
func NewWithPolicy(p Policy) *Gate {
	return &Gate{policy: p}
}

// Decide validates a single intent and returns an admission decision with
// a one-word reason code. It consults no state.
func (g *Gate) Decide(intent contracts.Intent) contracts.Decision {
	if _, ok := g.policy.AllowTypes[intent.Type]; !ok {
		return contracts.Decision{Intent: intent, Accepted: false, Reason: ReasonNotAllowlisted}
	}
	if !intent.Domain.Valid() {
		return contracts.Decision{Intent: intent, Accepted: false, Reason: ReasonUnknownDomain}
	}
	if intent.Value < 0 || intent.Value > 1 || intent.Urgency < 0 || intent.Urgency > 1 {
		return contracts.Decision{Intent: intent, Accepted: false, Reason: ReasonBadPriority}
	}
	if intent.EffortS < 0 || intent.EffortS > 3600 {
		return contracts.Decision{Intent: intent, Accepted: false, Reason: ReasonBadEffort}
	}
	return contracts.Decision{Intent: intent, Accepted: true, Reason: ReasonOK}
}
