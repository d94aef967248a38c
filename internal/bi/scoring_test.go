package bi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreLeads(t *testing.T) {
	tests := []struct {
		name     string
		input    LeadFeatures
		score    float64
		priority string
	}{
		{name: "high", input: LeadFeatures{Budget: 90, Engagement: 80, Location: 70}, score: 81, priority: PriorityHigh},
		{name: "medium boundary", input: LeadFeatures{Budget: 60, Engagement: 60, Location: 60}, score: 60, priority: PriorityMedium},
		{name: "low", input: LeadFeatures{Budget: 50, Engagement: 60, Location: 60}, score: 56, priority: PriorityLow},
		{name: "rounds into high", input: LeadFeatures{Budget: 100, Engagement: 66.6, Location: 66.6}, score: 80, priority: PriorityHigh},
		{name: "clamped", input: LeadFeatures{Budget: 150, Engagement: -10, Location: 50}, score: 55, priority: PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ScoreLeads([]LeadFeatures{tt.input})
			require.Len(t, out, 1)
			assert.InDelta(t, tt.score, out[0].Score, 1e-9)
			assert.Equal(t, tt.priority, out[0].Priority)
		})
	}
}

func TestScoreLeadsKeepsIdentity(t *testing.T) {
	out := ScoreLeads([]LeadFeatures{
		{ID: "a", Name: "Ana", Budget: 120},
		{ID: "b", Name: "Bruno"},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "Ana", out[0].Name)
	assert.Equal(t, 100.0, out[0].Budget)
	assert.Equal(t, "b", out[1].ID)
	assert.Equal(t, PriorityLow, out[1].Priority)
}

func TestScoreLeadsEmpty(t *testing.T) {
	out := ScoreLeads(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
