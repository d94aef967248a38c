package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokerage/server/internal/models"
)

func TestAggregateEndToEnd(t *testing.T) {
	owner := true
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	properties := NormalizeProperties([]models.PropertyRecord{
		{ID: "1", Price: strPtr("500000"), Status: strPtr("available"), CreatedAt: date("2024-01-05")},
		{ID: "2", Price: strPtr("1000000"), Status: strPtr("sold"), CreatedAt: date("2024-01-01"), UpdatedAt: date("2024-01-31")},
	})
	clients := NormalizeClients([]models.ClientRecord{
		{ID: "c1", Status: strPtr("active"), IsOwner: &owner},
		{ID: "c2", Status: strPtr("inactive")},
	})
	leads := NormalizeLeads([]models.LeadRecord{
		{ID: "l1", MLScore: strPtr("85"), Status: strPtr("qualified")},
		{ID: "l2", MLScore: strPtr("abc"), Status: strPtr("new")},
	})

	snap := Aggregate(properties, clients, leads, Options{Now: now})

	assert.Equal(t, now, snap.GeneratedAt)
	assert.Equal(t, 2, snap.Summary.TotalProperties)
	assert.Equal(t, map[string]int{"available": 1, "sold": 1}, snap.Summary.ByStatus)
	assert.Equal(t, 1, snap.Summary.ActiveClients)
	assert.Equal(t, 1, snap.Summary.Owners)
	assert.Equal(t, 1, snap.Summary.TotalSales)
	assert.Equal(t, 1000000.0, snap.Summary.TotalRevenue)
	assert.Equal(t, 50000.0, snap.Summary.TotalCommission)

	assert.InDelta(t, 50.0, snap.BusinessMetrics.InventoryTurnover, 1e-9)
	assert.InDelta(t, 30.0, snap.BusinessMetrics.AverageDaysOnMarket, 1e-9)

	require.NotNil(t, snap.PriceStatistics)
	assert.Equal(t, 2, snap.PriceStatistics.Count)

	require.NotNil(t, snap.PriceTrend)
	assert.Equal(t, models.TrendDown, snap.PriceTrend.Trend, "ordered by creation: 1M then 500k")
	assert.Nil(t, snap.SalesTrend)

	require.Len(t, snap.RecentSales, 1)
	assert.Equal(t, 50000.0, snap.RecentSales[0].Commission)

	require.NotNil(t, snap.LeadAnalysis)
	assert.Equal(t, 1, snap.LeadAnalysis.ScoredLeads)
	assert.Equal(t, 1, snap.Conversion.ConvertedLeads)
	assert.Len(t, snap.PriceSegments, 2)
}

func TestAggregateEmptyInput(t *testing.T) {
	assert.NotPanics(t, func() {
		snap := Aggregate(nil, nil, nil, Options{})
		assert.Nil(t, snap.PriceStatistics)
		assert.Nil(t, snap.PriceTrend)
		assert.Nil(t, snap.LeadAnalysis)
		assert.Empty(t, snap.PriceSegments)
		assert.Empty(t, snap.RecentSales)
		assert.False(t, snap.GeneratedAt.IsZero())
	})
}
