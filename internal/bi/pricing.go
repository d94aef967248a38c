package bi

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const (
	basePrice        = 50000
	pricePerArea     = 3500
	pricePerBedroom  = 25000
	pricePerBathroom = 15000
	pricePerLocation = 2000

	defaultLocationScore = 50
	scoreLossPerKm       = 5

	minConfidence   = 85
	confidenceRange = 12
)

var locationScores = map[string]float64{
	"premium":    90,
	"central":    80,
	"good":       70,
	"standard":   50,
	"peripheral": 30,
}

type PriceRequest struct {
	Area      float64  `json:"area"`
	Bedrooms  int      `json:"bedrooms"`
	Bathrooms int      `json:"bathrooms"`
	Location  string   `json:"location"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Market    string   `json:"market"`
}

type PriceEstimate struct {
	EstimatedPrice float64  `json:"estimatedPrice"`
	Confidence     float64  `json:"confidence"`
	LocationScore  float64  `json:"locationScore"`
	Market         string   `json:"market,omitempty"`
	DistanceKm     *float64 `json:"distanceKm,omitempty"`
}

// Pricer produces heuristic price estimates. It is safe for concurrent use.
type Pricer struct {
	markets       map[string]orb.Point
	defaultMarket string

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewPricer takes market centres keyed by name. A nil rnd seeds from the clock.
func NewPricer(markets map[string]orb.Point, defaultMarket string, rnd *rand.Rand) *Pricer {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Pricer{markets: markets, defaultMarket: defaultMarket, rnd: rnd}
}

func (p *Pricer) Predict(req PriceRequest) (PriceEstimate, error) {
	if req.Area < 0 || req.Bedrooms < 0 || req.Bathrooms < 0 {
		return PriceEstimate{}, fmt.Errorf("%w: area, bedrooms and bathrooms must not be negative", ErrInvalidInput)
	}
	if math.IsNaN(req.Area) || math.IsInf(req.Area, 0) {
		return PriceEstimate{}, fmt.Errorf("%w: area must be a finite number", ErrInvalidInput)
	}

	var est PriceEstimate
	score, err := p.locationScore(req, &est)
	if err != nil {
		return PriceEstimate{}, err
	}

	est.LocationScore = score
	est.EstimatedPrice = math.Round(basePrice +
		req.Area*pricePerArea +
		float64(req.Bedrooms)*pricePerBedroom +
		float64(req.Bathrooms)*pricePerBathroom +
		score*pricePerLocation)
	est.Confidence = p.confidence()
	return est, nil
}

func (p *Pricer) locationScore(req PriceRequest, est *PriceEstimate) (float64, error) {
	if req.Latitude == nil && req.Longitude == nil {
		if score, ok := locationScores[strings.ToLower(strings.TrimSpace(req.Location))]; ok {
			return score, nil
		}
		return defaultLocationScore, nil
	}
	if req.Latitude == nil || req.Longitude == nil {
		return 0, fmt.Errorf("%w: latitude and longitude must be given together", ErrInvalidInput)
	}

	lat, lng := *req.Latitude, *req.Longitude
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}

	name := req.Market
	if name == "" {
		name = p.defaultMarket
	}
	center, ok := p.markets[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown market %q", ErrInvalidInput, name)
	}

	km := geo.DistanceHaversine(orb.Point{lng, lat}, center) / 1000
	km = math.Round(km*100) / 100
	est.Market = name
	est.DistanceKm = &km

	return math.Max(0, math.Min(100, 100-scoreLossPerKm*km)), nil
}

// confidence is drawn uniformly from [85, 97) and truncated to one decimal.
func (p *Pricer) confidence() float64 {
	p.mu.Lock()
	r := p.rnd.Float64()
	p.mu.Unlock()
	return math.Floor((minConfidence+r*confidenceRange)*10) / 10
}
