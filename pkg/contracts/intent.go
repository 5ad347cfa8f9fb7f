// Package contracts defines the shared data model of the companion core:
// intents proposed by schedulers, decisions produced by the gate, queue
// items persisted by controllers, and the typed write specs the executor
// re-performs against external services.
package contracts

// Domain tags the surface an intent acts on. The set is closed.
type Domain string

const (
	DomainMessages Domain = "messages"
	DomainCalendar Domain = "calendar"
	DomainCoding   Domain = "coding"
	DomainForum    Domain = "forum"
)

// Valid reports whether d is one of the known domains.
func (d Domain) Valid() bool {
	switch d {
	case DomainMessages, DomainCalendar, DomainCoding, DomainForum:
		return true
	}
	return false
}

// Risk describes the blast radius of an intent.
type Risk struct {
	ExternalEffect bool     `json:"external_effect"`
	Irreversible   bool     `json:"irreversible"`
	Sensitive      bool     `json:"sensitive"`
	RequiresToken  []string `json:"requires_token,omitempty"`
}

// Intent is an immutable typed proposal to do something in a domain.
// Payload is untrusted: it originates from external state or from an LLM
// and must be sanitized before persistence.
type Intent struct {
	ID            string         `json:"id"`
	Domain        Domain         `json:"domain"`
	Type          string         `json:"type"`
	Payload       map[string]any `json:"payload,omitempty"`
	Value         float64        `json:"value"`
	Urgency       float64        `json:"urgency"`
	EffortS       int            `json:"effort_s"`
	Risk          Risk           `json:"risk"`
	Preconditions []string       `json:"preconditions,omitempty"`
}

// PayloadString returns the payload field named key as a string, or "" when
// absent or not a string.
func (i Intent) PayloadString(key string) string {
	if i.Payload == nil {
		return ""
	}
	s, _ := i.Payload[key].(string)
	return s
}

// Decision is the gate's verdict on a single intent.
type Decision struct {
	Intent   Intent `json:"intent"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason"`
}

// ExecStatus classifies a controller run.
type ExecStatus string

const (
	ExecOK      ExecStatus = "ok"
	ExecFail    ExecStatus = "fail"
	ExecSkipped ExecStatus = "skipped"
)

// ExecutionResult reports what a controller did with an accepted intent.
type ExecutionResult struct {
	Status    ExecStatus `json:"status"`
	Artifacts []string   `json:"artifacts,omitempty"`
	Note      string     `json:"note,omitempty"`
}
