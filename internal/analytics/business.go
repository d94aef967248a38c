package analytics

import (
	"time"

	"brokerage/server/internal/models"
)

const day = 24 * time.Hour

// ComputeBusinessMetrics derives turnover, days-on-market, velocity and efficiency from
// the properties and the sales derived from them.
func ComputeBusinessMetrics(properties []models.Property, sales []models.Sale) models.BusinessMetrics {
	var m models.BusinessMetrics
	if len(properties) == 0 {
		return m
	}

	sold := 0
	var listed float64
	var domTotal float64
	domCount := 0
	for _, p := range properties {
		listed += p.Price
		if !p.IsSold() {
			continue
		}
		sold++
		if p.CreatedAt != nil && p.UpdatedAt != nil {
			domTotal += float64(p.UpdatedAt.Sub(*p.CreatedAt)) / float64(day)
			domCount++
		}
	}

	m.InventoryTurnover = float64(sold) / float64(len(properties)) * 100
	if domCount > 0 {
		m.AverageDaysOnMarket = domTotal / float64(domCount)
	}
	m.SalesVelocity = SalesVelocity(sales)

	var realized float64
	for _, s := range sales {
		realized += s.FinalPrice
	}
	if listed > 0 {
		m.MarketEfficiency = realized / listed * 100
	}
	return m
}

// SalesVelocity is sales per day between the first and last dated sale. Fewer than two
// dated sales, or all on the same instant, yield 0.
func SalesVelocity(sales []models.Sale) float64 {
	sorted := SortSalesByDate(sales)
	if len(sorted) < 2 {
		return 0
	}
	span := sorted[len(sorted)-1].SaleDate.Sub(*sorted[0].SaleDate)
	days := float64(span) / float64(day)
	if days <= 0 {
		return 0
	}
	return float64(len(sorted)) / days
}
