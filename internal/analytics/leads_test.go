package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokerage/server/internal/models"
)

func scoredLead(score float64, status models.LeadStatus) models.Lead {
	return models.Lead{MLScore: &score, Status: status}
}

func TestAnalyzeLeadsBoundaries(t *testing.T) {
	tests := []struct {
		score  float64
		bucket string
	}{
		{score: 0, bucket: "0-20"},
		{score: 20, bucket: "0-20"},
		{score: 21, bucket: "21-40"},
		{score: 40, bucket: "21-40"},
		{score: 41, bucket: "41-60"},
		{score: 20.5, bucket: "21-40"},
		{score: 80, bucket: "61-80"},
		{score: 100, bucket: "81-100"},
	}

	for _, tt := range tests {
		t.Run(tt.bucket, func(t *testing.T) {
			analysis := AnalyzeLeads([]models.Lead{scoredLead(tt.score, models.LeadNew)})
			require.NotNil(t, analysis)
			for _, b := range analysis.Distribution {
				if b.Range == tt.bucket {
					assert.Equal(t, 1, b.Count, "score %v", tt.score)
				} else {
					assert.Equal(t, 0, b.Count, "score %v unexpectedly in %s", tt.score, b.Range)
				}
			}
		})
	}
}

func TestAnalyzeLeadsExpectedConversion(t *testing.T) {
	leads := []models.Lead{
		scoredLead(90, models.LeadNew),
		scoredLead(70, models.LeadNew),
		scoredLead(69, models.LeadNew),
		scoredLead(40, models.LeadNew),
		scoredLead(39, models.LeadNew),
		{Status: models.LeadNew},
	}

	analysis := AnalyzeLeads(leads)
	require.NotNil(t, analysis)

	assert.Equal(t, 6, analysis.TotalLeads)
	assert.Equal(t, 5, analysis.ScoredLeads)
	assert.Equal(t, 2, analysis.HighQuality)
	assert.Equal(t, 2, analysis.MediumQuality)
	assert.InDelta(t, (0.35*2+0.15*2)/5*100, analysis.ExpectedConversion, 1e-9)
	assert.InDelta(t, (90+70+69+40+39)/5.0, analysis.AverageScore, 1e-9)

	var pct float64
	for _, b := range analysis.Distribution {
		pct += b.Percentage
	}
	assert.InDelta(t, 100, pct, 1e-9, "percentages are relative to scored leads only")
}

func TestAnalyzeLeadsNoScores(t *testing.T) {
	assert.Nil(t, AnalyzeLeads(nil))
	assert.Nil(t, AnalyzeLeads([]models.Lead{{Status: models.LeadNew}}))
}

func TestConversionProbability(t *testing.T) {
	leads := []models.Lead{
		{Status: models.LeadConverted},
		{Status: models.LeadQualified},
		{Status: models.LeadClosed},
		{Status: models.LeadNew},
		{Status: models.LeadLost},
		{Status: models.LeadContacted},
		{Status: models.LeadNew},
		{Status: models.LeadNew},
		{Status: models.LeadNew},
		{Status: models.LeadNew},
	}

	c := ConversionProbability(leads)
	assert.Equal(t, 10, c.TotalLeads)
	assert.Equal(t, 3, c.ConvertedLeads)
	assert.InDelta(t, 30, c.ConversionRate, 1e-9)
	assert.InDelta(t, 0.15*0.3/0.5*100, c.Probability, 1e-9)
}

func TestConversionProbabilityCapped(t *testing.T) {
	c := ConversionProbability([]models.Lead{{Status: models.LeadConverted}})
	assert.InDelta(t, 100, c.ConversionRate, 1e-9)
	assert.LessOrEqual(t, c.Probability, 100.0)
	assert.InDelta(t, 30, c.Probability, 1e-9)
}

func TestConversionProbabilityEmpty(t *testing.T) {
	c := ConversionProbability(nil)
	assert.Equal(t, 0, c.TotalLeads)
	assert.Equal(t, 0.0, c.ConversionRate)
	assert.Equal(t, 0.0, c.Probability)
}
