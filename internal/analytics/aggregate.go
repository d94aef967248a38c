package analytics

import (
	"sort"
	"time"

	"brokerage/server/internal/models"
)

const defaultRecentSales = 10

// Options tune Aggregate. The zero value uses the historical price bands.
type Options struct {
	Bands       []PriceBand
	RecentSales int
	Now         time.Time
}

// Aggregate computes the dashboard snapshot from normalized records. It never mutates its input.
func Aggregate(properties []models.Property, clients []models.Client, leads []models.Lead, opts Options) models.DashboardSnapshot {
	if opts.RecentSales <= 0 {
		opts.RecentSales = defaultRecentSales
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	sales := DeriveSales(properties)
	prices := make([]float64, 0, len(properties))
	for _, p := range properties {
		prices = append(prices, p.Price)
	}

	salePrices := make([]float64, 0, len(sales))
	for _, s := range SortSalesByDate(sales) {
		salePrices = append(salePrices, s.FinalPrice)
	}

	return models.DashboardSnapshot{
		Summary:         summarize(properties, clients, leads, sales),
		PriceStatistics: Describe(prices),
		PriceTrend:      EstimateTrend(pricesByCreation(properties)),
		SalesTrend:      EstimateTrend(salePrices),
		PriceSegments:   SegmentPrices(prices, opts.Bands),
		LeadAnalysis:    AnalyzeLeads(leads),
		Conversion:      ConversionProbability(leads),
		BusinessMetrics: ComputeBusinessMetrics(properties, sales),
		RecentSales:     RecentSales(sales, opts.RecentSales),
		GeneratedAt:     opts.Now,
	}
}

func summarize(properties []models.Property, clients []models.Client, leads []models.Lead, sales []models.Sale) models.Summary {
	s := models.Summary{
		TotalProperties: len(properties),
		ByStatus:        make(map[string]int),
		TotalClients:    len(clients),
		TotalLeads:      len(leads),
		TotalSales:      len(sales),
	}
	priced := make([]float64, 0, len(properties))
	for _, p := range properties {
		s.ByStatus[string(p.Status)]++
		if p.Price > 0 {
			priced = append(priced, p.Price)
		}
	}
	s.AveragePrice = Mean(priced)

	for _, c := range clients {
		if c.IsActive() {
			s.ActiveClients++
		}
		if c.IsOwner {
			s.Owners++
		}
	}
	for _, sale := range sales {
		s.TotalRevenue += sale.FinalPrice
		s.TotalCommission += sale.Commission
	}
	return s
}

// pricesByCreation orders positive prices by creation time; undated properties keep their
// relative order after the dated ones.
func pricesByCreation(properties []models.Property) []float64 {
	ordered := make([]models.Property, 0, len(properties))
	for _, p := range properties {
		if p.Price > 0 {
			ordered = append(ordered, p)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].CreatedAt, ordered[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	out := make([]float64, len(ordered))
	for i, p := range ordered {
		out[i] = p.Price
	}
	return out
}
