package schedulers

import (
	"github.com/google/uuid"

	"github.com/quietdesk/companion/pkg/contracts"
)

// CodingScheduler proposes a test run per configured repository.
type CodingScheduler struct {
	state RepoState
}

// NewCodingScheduler returns a scheduler over the given repo state.
func NewCodingScheduler(state RepoState) *CodingScheduler {
	return &CodingScheduler{state: state}
}

// Propose returns candidate intents for this tick, at most ten.
func (s *CodingScheduler) Propose() []contracts.Intent {
	repos := s.state.Repos
	if len(repos) > maxIntentsPerTick {
		repos = repos[:maxIntentsPerTick]
	}
	intents := make([]contracts.Intent, 0, len(repos))
	for _, repo := range repos {
		intents = append(intents, contracts.Intent{
			ID:     uuid.NewString(),
			Domain: contracts.DomainCoding,
			Type:   "run_tests",
			Payload: map[string]any{
				"repo":  repo,
				"suite": "go test ./...",
			},
			Value:         0.6,
			Urgency:       0.4,
			EffortS:       600,
			Preconditions: []string{"repo_available"},
		})
	}
	return intents
}
