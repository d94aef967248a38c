package geometry

import (
	"math"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"

	"brokerage/server/config"
	"brokerage/server/internal/models"
)

// MaxMarketDistanceKm bounds how far a property may lie from a market centre and still
// be counted in that market.
const MaxMarketDistanceKm = 60

type marketPoints struct {
	market config.Market
	points []orb.Point
	prices []float64
}

// Coverage assigns every geolocated property to its nearest market and returns one
// feature per market that has properties: a convex hull polygon when at least three
// distinct points are known, otherwise the market centre.
func Coverage(properties []models.Property, markets []config.Market, now time.Time) *geojson.FeatureCollection {
	groups := make([]*marketPoints, len(markets))
	for i, m := range markets {
		groups[i] = &marketPoints{market: m}
	}

	unassigned := 0
	for _, p := range properties {
		if p.Latitude == nil || p.Longitude == nil {
			continue
		}
		point := orb.Point{*p.Longitude, *p.Latitude}
		group := nearest(groups, point)
		if group == nil {
			unassigned++
			continue
		}
		group.points = append(group.points, point)
		if p.Price > 0 {
			group.prices = append(group.prices, p.Price)
		}
	}

	fc := geojson.NewFeatureCollection()
	for _, g := range groups {
		if len(g.points) == 0 {
			continue
		}

		var feature *geojson.Feature
		if hull := ConvexHull(g.points); hull != nil {
			feature = geojson.NewFeature(orb.Polygon{hull})
			feature.Properties = geojson.Properties{"geometry_type": "hull"}
		} else {
			feature = geojson.NewFeature(g.market.Center)
			feature.Properties = geojson.Properties{"geometry_type": "center"}
		}
		feature.Properties["market"] = g.market.Name
		feature.Properties["label"] = g.market.Label
		feature.Properties["point_count"] = len(g.points)
		feature.Properties["average_price"] = average(g.prices)
		fc.Append(feature)
	}

	fc.ExtraMembers = geojson.Properties{
		"metadata": map[string]interface{}{
			"generated":  now.Format(time.RFC3339),
			"markets":    len(fc.Features),
			"unassigned": unassigned,
		},
	}
	return fc
}

func nearest(groups []*marketPoints, point orb.Point) *marketPoints {
	var best *marketPoints
	bestKm := math.Inf(1)
	for _, g := range groups {
		km := geo.DistanceHaversine(g.market.Center, point) / 1000
		if km < bestKm {
			best, bestKm = g, km
		}
	}
	if bestKm > MaxMarketDistanceKm {
		return nil
	}
	return best
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return math.Round(sum / float64(len(values)))
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// ConvexHull returns the closed, counter-clockwise hull of points, or nil when fewer
// than three non-collinear points are given. The input is not modified.
func ConvexHull(points []orb.Point) orb.Ring {
	sorted := make([]orb.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})

	// Drop duplicates
	unique := sorted[:0]
	for i, p := range sorted {
		if i == 0 || p != sorted[i-1] {
			unique = append(unique, p)
		}
	}
	if len(unique) < 3 {
		return nil
	}

	// Monotone chain: lower hull, then upper hull
	hull := make([]orb.Point, 0, 2*len(unique))
	for _, p := range unique {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(unique) - 2; i >= 0; i-- {
		p := unique[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// The last point repeats the first, closing the ring
	if len(hull) < 4 {
		return nil
	}
	return orb.Ring(hull)
}
