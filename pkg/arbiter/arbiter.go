// Package arbiter picks the single intent the orchestrator acts on this
// tick, scoring urgency and value against effort.
package arbiter

import (
	"github.com/quietdesk/companion/pkg/contracts"
)

// Score returns (0.6*urgency + 0.4*value) / max(1, effort_s).
func Score(intent contracts.Intent) float64 {
	denom := intent.EffortS
	if denom < 1 {
		denom = 1
	}
	return (intent.Urgency*0.6 + intent.Value*0.4) / float64(denom)
}

// Choose returns the highest-scoring intent. Ties keep the earliest entry
// in the input list, so the result is deterministic for a given input.
// The second return is false for an empty list.
func Choose(intents []contracts.Intent) (contracts.Intent, bool) {
	if len(intents) == 0 {
		return contracts.Intent{}, false
	}
	best := intents[0]
	bestScore := Score(best)
	for _, it := range intents[1:] {
		if s := Score(it); s > bestScore {
			best = it
			bestScore = s
		}
	}
	return best, true
}
