package analytics

import (
	"fmt"
	"math"
	"strconv"

	"brokerage/server/internal/models"
)

// PriceBand is a closed price range; a nil Max means unbounded.
type PriceBand struct {
	Label string
	Min   float64
	Max   *float64
}

// DefaultBandEdges are the historical upper bounds of the first three bands.
var DefaultBandEdges = []float64{500000, 1000000, 2000000}

// DefaultPriceBands returns 0–500k, 500,001–1M, 1,000,001–2M and 2,000,001+.
func DefaultPriceBands() []PriceBand {
	bands, _ := BandsFromEdges(DefaultBandEdges)
	return bands
}

// BandsFromEdges builds contiguous bands whose upper bounds are the given edges, followed by
// an unbounded band. Each band after the first starts one unit above the previous edge.
func BandsFromEdges(edges []float64) ([]PriceBand, error) {
	if len(edges) == 0 {
		return nil, fmt.Errorf("at least one band edge is required")
	}
	bands := make([]PriceBand, 0, len(edges)+1)
	lower, prev := 0.0, 0.0
	for i, edge := range edges {
		if edge <= 0 || (i > 0 && edge <= edges[i-1]) {
			return nil, fmt.Errorf("band edges must be positive and strictly ascending: %v", edges)
		}
		upper := edge
		bands = append(bands, PriceBand{
			Label: fmt.Sprintf("%s-%s", shortAmount(prev), shortAmount(upper)),
			Min:   lower,
			Max:   &upper,
		})
		lower, prev = edge+1, edge
	}
	last := edges[len(edges)-1]
	bands = append(bands, PriceBand{
		Label: shortAmount(last) + "+",
		Min:   last + 1,
	})
	return bands, nil
}

// SegmentPrices assigns every positive price to the first band whose upper bound covers it,
// so prices falling between integer edges land in the higher band. Empty bands are dropped.
func SegmentPrices(prices []float64, bands []PriceBand) []models.PriceSegment {
	if len(bands) == 0 {
		bands = DefaultPriceBands()
	}
	segments := make([]models.PriceSegment, len(bands))
	for i, b := range bands {
		segments[i] = models.PriceSegment{Label: b.Label, Min: b.Min, Max: b.Max}
	}

	total := 0
	for _, p := range prices {
		if p <= 0 || math.IsInf(p, 0) || math.IsNaN(p) {
			continue
		}
		idx := len(bands) - 1
		for i, b := range bands {
			if b.Max == nil || p <= *b.Max {
				idx = i
				break
			}
		}
		segments[idx].Count++
		segments[idx].Total += p
		total++
	}

	out := make([]models.PriceSegment, 0, len(segments))
	for _, s := range segments {
		if s.Count == 0 {
			continue
		}
		s.Average = s.Total / float64(s.Count)
		s.Percentage = float64(s.Count) / float64(total) * 100
		out = append(out, s)
	}
	return out
}

func shortAmount(v float64) string {
	switch {
	case v >= 1_000_000 && math.Mod(v, 1_000_000) == 0:
		return strconv.FormatFloat(v/1_000_000, 'f', -1, 64) + "M"
	case v >= 1_000 && math.Mod(v, 1_000) == 0:
		return strconv.FormatFloat(v/1_000, 'f', -1, 64) + "k"
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}
