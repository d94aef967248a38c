package analytics

import (
	"fmt"
	"math"

	"brokerage/server/internal/models"
)

// Two-tier conversion weights applied to scored leads. These are business rules kept as-is.
const (
	highQualityScore    = 70
	mediumQualityScore  = 40
	highQualityWeight   = 0.35
	mediumQualityWeight = 0.15
)

// Fixed-prior posterior used for the pipeline probability figure. It is a heuristic scaling
// of the observed conversion rate, not a calibrated probability.
const (
	conversionPrior    = 0.15
	conversionEvidence = 0.5
)

type scoreRange struct {
	min, max int
}

var scoreRanges = []scoreRange{{0, 20}, {21, 40}, {41, 60}, {61, 80}, {81, 100}}

var convertedStatuses = map[models.LeadStatus]bool{
	models.LeadConverted: true,
	models.LeadQualified: true,
	models.LeadClosed:    true,
}

// AnalyzeLeads buckets leads that carry an ML score and derives the expected conversion.
// Percentages are relative to scored leads only. It returns nil when no lead is scored.
func AnalyzeLeads(leads []models.Lead) *models.LeadAnalysis {
	buckets := make([]models.ScoreBucket, len(scoreRanges))
	for i, r := range scoreRanges {
		buckets[i] = models.ScoreBucket{Range: fmt.Sprintf("%d-%d", r.min, r.max), Min: r.min, Max: r.max}
	}

	var scored, high, medium int
	var sum, weighted float64
	for _, l := range leads {
		if l.MLScore == nil {
			continue
		}
		score := *l.MLScore
		scored++
		sum += score
		buckets[bucketIndex(score)].Count++

		switch {
		case score >= highQualityScore:
			high++
			weighted += highQualityWeight
		case score >= mediumQualityScore:
			medium++
			weighted += mediumQualityWeight
		}
	}
	if scored == 0 {
		return nil
	}

	for i := range buckets {
		buckets[i].Percentage = float64(buckets[i].Count) / float64(scored) * 100
	}
	return &models.LeadAnalysis{
		TotalLeads:         len(leads),
		ScoredLeads:        scored,
		AverageScore:       sum / float64(scored),
		Distribution:       buckets,
		HighQuality:        high,
		MediumQuality:      medium,
		ExpectedConversion: weighted / float64(scored) * 100,
	}
}

// bucketIndex picks the first range whose upper bound covers the score, so a fractional
// score between adjacent integer bounds (20.5) goes to the higher range.
func bucketIndex(score float64) int {
	for i, r := range scoreRanges {
		if score <= float64(r.max) {
			return i
		}
	}
	return len(scoreRanges) - 1
}

// ConversionProbability reports the share of leads in converted/qualified/closed status and the
// fixed-prior posterior prior*rate/evidence, capped at 100%. Both figures are percentages.
func ConversionProbability(leads []models.Lead) models.Conversion {
	c := models.Conversion{
		TotalLeads: len(leads),
		Prior:      conversionPrior,
		Evidence:   conversionEvidence,
	}
	if len(leads) == 0 {
		return c
	}
	for _, l := range leads {
		if convertedStatuses[l.Status] {
			c.ConvertedLeads++
		}
	}
	rate := float64(c.ConvertedLeads) / float64(len(leads))
	posterior := math.Min(conversionPrior*rate/conversionEvidence, 1)

	c.ConversionRate = rate * 100
	c.Probability = posterior * 100
	return c
}
