package bi

import (
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMarkets = map[string]orb.Point{
	"sao-paulo":      {-46.6333, -23.5505},
	"rio-de-janeiro": {-43.1729, -22.9068},
}

func floatRef(v float64) *float64 {
	return &v
}

func TestPredictByLocationLabel(t *testing.T) {
	p := NewPricer(testMarkets, "sao-paulo", rand.New(rand.NewSource(1)))

	tests := []struct {
		location string
		score    float64
		price    float64
	}{
		{location: "premium", score: 90, price: 685000},
		{location: " Central ", score: 80, price: 665000},
		{location: "peripheral", score: 30, price: 565000},
		{location: "", score: 50, price: 605000},
		{location: "beachfront", score: 50, price: 605000},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			est, err := p.Predict(PriceRequest{Area: 100, Bedrooms: 3, Bathrooms: 2, Location: tt.location})
			require.NoError(t, err)
			assert.Equal(t, tt.score, est.LocationScore)
			assert.Equal(t, tt.price, est.EstimatedPrice)
			assert.Nil(t, est.DistanceKm)
		})
	}
}

func TestPredictByCoordinates(t *testing.T) {
	p := NewPricer(testMarkets, "sao-paulo", nil)

	est, err := p.Predict(PriceRequest{Area: 50, Latitude: floatRef(-23.5505), Longitude: floatRef(-46.6333)})
	require.NoError(t, err)
	assert.Equal(t, 100.0, est.LocationScore)
	assert.Equal(t, "sao-paulo", est.Market)
	require.NotNil(t, est.DistanceKm)
	assert.Equal(t, 0.0, *est.DistanceKm)

	// 0.05 degrees of latitude is roughly 5.57 km.
	est, err = p.Predict(PriceRequest{Latitude: floatRef(-23.6005), Longitude: floatRef(-46.6333)})
	require.NoError(t, err)
	assert.InDelta(t, 5.57, *est.DistanceKm, 0.02)
	assert.InDelta(t, 72.15, est.LocationScore, 0.1)

	est, err = p.Predict(PriceRequest{Latitude: floatRef(-22.9068), Longitude: floatRef(-43.1729), Market: "sao-paulo"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, est.LocationScore, "another city is out of range")

	est, err = p.Predict(PriceRequest{Latitude: floatRef(-22.9068), Longitude: floatRef(-43.1729), Market: "rio-de-janeiro"})
	require.NoError(t, err)
	assert.Equal(t, 100.0, est.LocationScore)
}

func TestPredictRejectsInvalidInput(t *testing.T) {
	p := NewPricer(testMarkets, "sao-paulo", nil)

	tests := []struct {
		name string
		req  PriceRequest
	}{
		{name: "negative area", req: PriceRequest{Area: -1}},
		{name: "negative bedrooms", req: PriceRequest{Bedrooms: -2}},
		{name: "negative bathrooms", req: PriceRequest{Bathrooms: -1}},
		{name: "latitude only", req: PriceRequest{Latitude: floatRef(-23.5)}},
		{name: "out of range", req: PriceRequest{Latitude: floatRef(-123.5), Longitude: floatRef(10)}},
		{name: "unknown market", req: PriceRequest{Latitude: floatRef(0), Longitude: floatRef(0), Market: "atlantis"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Predict(tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestPredictConfidenceRange(t *testing.T) {
	p := NewPricer(testMarkets, "sao-paulo", rand.New(rand.NewSource(7)))
	reference := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		est, err := p.Predict(PriceRequest{Area: 80})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, est.Confidence, 85.0)
		assert.Less(t, est.Confidence, 97.0)

		expected := float64(int((85+reference.Float64()*12)*10)) / 10
		assert.InDelta(t, expected, est.Confidence, 1e-9)
	}
}
