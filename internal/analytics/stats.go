package analytics

import (
	"math"
	"sort"

	"brokerage/server/internal/models"
)

const z95 = 1.96

// Describe computes descriptive statistics over the positive values of the input.
// It returns nil when no positive value remains.
//
// Median and quartiles use nearest rank on the ascending sort without interpolation:
// median is sorted[n/2] (even n is not averaged), Q1 is sorted[floor(n*0.25)] and
// Q3 is sorted[floor(n*0.75)]. Variance is the population variance.
func Describe(values []float64) *models.Statistics {
	sorted := positive(values)
	n := len(sorted)
	if n == 0 {
		return nil
	}
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	var squared float64
	for _, v := range sorted {
		d := v - mean
		squared += d * d
	}
	variance := squared / float64(n)
	stdDev := math.Sqrt(variance)

	q1 := sorted[int(math.Floor(float64(n)*0.25))]
	q3 := sorted[int(math.Floor(float64(n)*0.75))]
	margin := z95 * stdDev / math.Sqrt(float64(n))

	return &models.Statistics{
		Mean:                 mean,
		Median:               sorted[n/2],
		StdDev:               stdDev,
		Variance:             variance,
		CoefficientVariation: stdDev / mean * 100,
		Quartile1:            q1,
		Quartile3:            q3,
		IQR:                  q3 - q1,
		Min:                  sorted[0],
		Max:                  sorted[n-1],
		Count:                n,
		ConfidenceInterval: models.ConfidenceInterval{
			Lower: math.Round(mean - margin),
			Upper: math.Round(mean + margin),
		},
	}
}

func positive(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v > 0 && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
