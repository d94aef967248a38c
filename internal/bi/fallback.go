package bi

import (
	"time"

	"brokerage/server/internal/models"
)

func floatPtr(v float64) *float64 {
	return &v
}

// FallbackSnapshot is the static dashboard served when live data is unavailable. Every call
// returns a fresh value so callers may modify it.
func FallbackSnapshot(now time.Time) models.DashboardSnapshot {
	return models.DashboardSnapshot{
		Summary: models.Summary{
			TotalProperties: 150,
			ByStatus: map[string]int{
				string(models.StatusAvailable): 98,
				string(models.StatusSold):      35,
				string(models.StatusReserved):  12,
				string(models.StatusRented):    5,
			},
			TotalClients:    240,
			ActiveClients:   180,
			Owners:          60,
			TotalLeads:      320,
			TotalSales:      35,
			TotalRevenue:    29750000,
			TotalCommission: 1487500,
			AveragePrice:    850000,
		},
		PriceStatistics: &models.Statistics{
			Mean:                 850000,
			Median:               720000,
			StdDev:               410000,
			Variance:             168100000000,
			CoefficientVariation: 48.24,
			Quartile1:            480000,
			Quartile3:            1150000,
			IQR:                  670000,
			Min:                  180000,
			Max:                  3200000,
			Count:                150,
			ConfidenceInterval:   models.ConfidenceInterval{Lower: 784386, Upper: 915614},
		},
		PriceTrend: &models.Trend{
			Slope:         1200,
			Intercept:     760000,
			RSquared:      0.42,
			Trend:         models.TrendUp,
			Strength:      models.StrengthModerate,
			Projection:    940000,
			PercentChange: floatPtr(18.5),
			Points:        150,
		},
		SalesTrend: &models.Trend{
			Slope:         3500,
			Intercept:     790000,
			RSquared:      0.18,
			Trend:         models.TrendUp,
			Strength:      models.StrengthWeak,
			Projection:    912500,
			PercentChange: floatPtr(9.2),
			Points:        35,
		},
		PriceSegments: []models.PriceSegment{
			{Label: "0-500k", Min: 0, Max: floatPtr(500000), Count: 42, Total: 15960000, Average: 380000, Percentage: 28},
			{Label: "500k-1M", Min: 500001, Max: floatPtr(1000000), Count: 63, Total: 46620000, Average: 740000, Percentage: 42},
			{Label: "1M-2M", Min: 1000001, Max: floatPtr(2000000), Count: 36, Total: 48600000, Average: 1350000, Percentage: 24},
			{Label: "2M+", Min: 2000001, Count: 9, Total: 21600000, Average: 2400000, Percentage: 6},
		},
		LeadAnalysis: &models.LeadAnalysis{
			TotalLeads:   320,
			ScoredLeads:  280,
			AverageScore: 58.4,
			Distribution: []models.ScoreBucket{
				{Range: "0-20", Min: 0, Max: 20, Count: 28, Percentage: 10},
				{Range: "21-40", Min: 21, Max: 40, Count: 56, Percentage: 20},
				{Range: "41-60", Min: 41, Max: 60, Count: 70, Percentage: 25},
				{Range: "61-80", Min: 61, Max: 80, Count: 84, Percentage: 30},
				{Range: "81-100", Min: 81, Max: 100, Count: 42, Percentage: 15},
			},
			HighQuality:        98,
			MediumQuality:      84,
			ExpectedConversion: 16.75,
		},
		Conversion: models.Conversion{
			TotalLeads:     320,
			ConvertedLeads: 48,
			ConversionRate: 15,
			Probability:    4.5,
			Prior:          0.15,
			Evidence:       0.5,
		},
		BusinessMetrics: models.BusinessMetrics{
			InventoryTurnover:   23.33,
			AverageDaysOnMarket: 45,
			SalesVelocity:       0.39,
			MarketEfficiency:    96.5,
		},
		RecentSales: []models.Sale{},
		GeneratedAt: now,
	}
}
