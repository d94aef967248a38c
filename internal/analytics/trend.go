package analytics

import (
	"math"

	"brokerage/server/internal/models"
)

const (
	strongFit   = 0.7
	moderateFit = 0.3
)

// EstimateTrend fits an ordinary least-squares line using each value's index as the time
// variable. Fewer than two points yield nil.
func EstimateTrend(values []float64) *models.Trend {
	n := len(values)
	if n < 2 {
		return nil
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	nf := float64(n)

	var slope float64
	if denom := nf*sumXX - sumX*sumX; denom != 0 {
		slope = (nf*sumXY - sumX*sumY) / denom
	}
	intercept := (sumY - slope*sumX) / nf

	meanY := sumY / nf
	var ssTot, ssRes float64
	for i, y := range values {
		predicted := slope*float64(i) + intercept
		ssRes += (y - predicted) * (y - predicted)
		ssTot += (y - meanY) * (y - meanY)
	}
	var rSquared float64
	if ssTot != 0 {
		rSquared = 1 - ssRes/ssTot
	}

	t := &models.Trend{
		Slope:      slope,
		Intercept:  intercept,
		RSquared:   rSquared,
		Trend:      trendLabel(slope),
		Strength:   strengthLabel(rSquared),
		Projection: slope*nf + intercept,
		Points:     n,
	}
	if first := values[0]; first != 0 {
		change := (values[n-1] - first) / first * 100
		if !math.IsNaN(change) && !math.IsInf(change, 0) {
			t.PercentChange = &change
		}
	}
	return t
}

func trendLabel(slope float64) string {
	switch {
	case slope > 0:
		return models.TrendUp
	case slope < 0:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}

func strengthLabel(rSquared float64) string {
	r := math.Abs(rSquared)
	switch {
	case r > strongFit:
		return models.StrengthStrong
	case r > moderateFit:
		return models.StrengthModerate
	default:
		return models.StrengthWeak
	}
}
