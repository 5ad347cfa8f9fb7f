package arbiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietdesk/companion/pkg/contracts"
)

func TestScore(t *testing.T) {
	assert.InDelta(t, (0.8*0.6+0.5*0.4)/60.0, Score(contracts.Intent{Urgency: 0.8, Value: 0.5, EffortS: 60}), 1e-12)
	// Effort below one second clamps to one.
	assert.InDelta(t, 0.6*0.6+0.4*0.4, Score(contracts.Intent{Urgency: 0.6, Value: 0.4, EffortS: 0}), 1e-12)
	assert.InDelta(t, 0.6*0.6+0.4*0.4, Score(contracts.Intent{Urgency: 0.6, Value: 0.4, EffortS: -3}), 1e-12)
}

func TestChooseEmpty(t *testing.T) {
	_, ok := Choose(nil)
	assert.False(t, ok)
}

func TestChoosePicksHighestScore(t *testing.T) {
	low := contracts.Intent{ID: "low", Urgency: 0.4, Value: 0.4, EffortS: 600}
	high := contracts.Intent{ID: "high", Urgency: 0.8, Value: 0.7, EffortS: 60}
	mid := contracts.Intent{ID: "mid", Urgency: 0.6, Value: 0.4, EffortS: 120}

	winner, ok := Choose([]contracts.Intent{low, high, mid})
	require.True(t, ok)
	assert.Equal(t, "high", winner.ID)
}

func TestChooseBalancedBeatsUrgentAndThorough(t *testing.T) {
	a := contracts.Intent{ID: "a", Urgency: 0.8, Value: 0.2, EffortS: 60}
	b := contracts.Intent{ID: "b", Urgency: 0.5, Value: 0.9, EffortS: 60}
	c := contracts.Intent{ID: "c", Urgency: 1.0, Value: 1.0, EffortS: 3600}

	winner, ok := Choose([]contracts.Intent{a, b, c})
	require.True(t, ok)
	assert.Equal(t, "b", winner.ID)
}

func TestChooseTieKeepsFirst(t *testing.T) {
	a := contracts.Intent{ID: "a", Urgency: 0.5, Value: 0.5, EffortS: 60}
	b := contracts.Intent{ID: "b", Urgency: 0.5, Value: 0.5, EffortS: 60}

	winner, ok := Choose([]contracts.Intent{a, b})
	require.True(t, ok)
	assert.Equal(t, "a", winner.ID)

	winner, ok = Choose([]contracts.Intent{b, a})
	require.True(t, ok)
	assert.Equal(t, "b", winner.ID)
}
