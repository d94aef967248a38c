package bi

import "math"

const (
	budgetWeight     = 0.4
	engagementWeight = 0.3
	locationWeight   = 0.3

	highPriorityScore   = 80
	mediumPriorityScore = 60
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// LeadFeatures are 0-100 sub-scores supplied by the caller.
type LeadFeatures struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name,omitempty"`
	Budget     float64 `json:"budget"`
	Engagement float64 `json:"engagement"`
	Location   float64 `json:"location"`
}

type ScoredLead struct {
	LeadFeatures
	Score    float64 `json:"score"`
	Priority string  `json:"priority"`
}

// ScoreLeads weights budget 40%, engagement 30% and location 30%. The priority tier is
// taken from the rounded score so the two never disagree.
func ScoreLeads(leads []LeadFeatures) []ScoredLead {
	out := make([]ScoredLead, 0, len(leads))
	for _, l := range leads {
		l.Budget = clampScore(l.Budget)
		l.Engagement = clampScore(l.Engagement)
		l.Location = clampScore(l.Location)

		score := budgetWeight*l.Budget + engagementWeight*l.Engagement + locationWeight*l.Location
		score = math.Round(score*10) / 10

		out = append(out, ScoredLead{LeadFeatures: l, Score: score, Priority: priority(score)})
	}
	return out
}

func priority(score float64) string {
	switch {
	case score >= highPriorityScore:
		return PriorityHigh
	case score >= mediumPriorityScore:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
