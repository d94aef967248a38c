package analytics

import (
	"sort"

	"brokerage/server/internal/models"
)

// CommissionRate is the brokerage fee applied to every derived sale.
const CommissionRate = 0.05

// DeriveSales builds the sales view over properties: one sale per property whose status is
// sold, priced at the list price and dated by its last update (or creation when never updated).
func DeriveSales(properties []models.Property) []models.Sale {
	sales := make([]models.Sale, 0)
	for _, p := range properties {
		if !p.IsSold() {
			continue
		}
		date := p.UpdatedAt
		if date == nil {
			date = p.CreatedAt
		}
		sales = append(sales, models.Sale{
			PropertyID: p.ID,
			Title:      p.Title,
			FinalPrice: p.Price,
			SaleDate:   date,
			Commission: p.Price * CommissionRate,
		})
	}
	return sales
}

// SortSalesByDate returns dated sales in ascending date order. Undated sales are dropped.
func SortSalesByDate(sales []models.Sale) []models.Sale {
	dated := make([]models.Sale, 0, len(sales))
	for _, s := range sales {
		if s.SaleDate != nil {
			dated = append(dated, s)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].SaleDate.Before(*dated[j].SaleDate)
	})
	return dated
}

// RecentSales returns up to limit sales, newest first.
func RecentSales(sales []models.Sale, limit int) []models.Sale {
	sorted := SortSalesByDate(sales)
	out := make([]models.Sale, 0, limit)
	for i := len(sorted) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, sorted[i])
	}
	return out
}
