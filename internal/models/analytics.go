package models

import "time"

// Sale is derived from a sold property; it is never stored.
type Sale struct {
	PropertyID string     `json:"propertyId"`
	Title      string     `json:"title"`
	FinalPrice float64    `json:"finalPrice"`
	SaleDate   *time.Time `json:"saleDate"`
	Commission float64    `json:"commission"`
}

type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

type Statistics struct {
	Mean                 float64            `json:"mean"`
	Median               float64            `json:"median"`
	StdDev               float64            `json:"stdDev"`
	Variance             float64            `json:"variance"`
	CoefficientVariation float64            `json:"coefficientVariation"`
	Quartile1            float64            `json:"quartile1"`
	Quartile3            float64            `json:"quartile3"`
	IQR                  float64            `json:"iqr"`
	Min                  float64            `json:"min"`
	Max                  float64            `json:"max"`
	Count                int                `json:"count"`
	ConfidenceInterval   ConfidenceInterval `json:"confidenceInterval"`
}

const (
	TrendUp     = "alta"
	TrendDown   = "baixa"
	TrendStable = "estável"

	StrengthStrong   = "forte"
	StrengthModerate = "moderada"
	StrengthWeak     = "fraca"
)

// Trend is an OLS fit over index positions. PercentChange is nil when the first value is zero.
type Trend struct {
	Slope         float64  `json:"slope"`
	Intercept     float64  `json:"intercept"`
	RSquared      float64  `json:"rSquared"`
	Trend         string   `json:"trend"`
	Strength      string   `json:"strength"`
	Projection    float64  `json:"projection"`
	PercentChange *float64 `json:"percentChange"`
	Points        int      `json:"points"`
}

type PriceSegment struct {
	Label      string   `json:"label"`
	Min        float64  `json:"min"`
	Max        *float64 `json:"max"`
	Count      int      `json:"count"`
	Total      float64  `json:"total"`
	Average    float64  `json:"average"`
	Percentage float64  `json:"percentage"`
}

type ScoreBucket struct {
	Range      string  `json:"range"`
	Min        int     `json:"min"`
	Max        int     `json:"max"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type LeadAnalysis struct {
	TotalLeads         int           `json:"totalLeads"`
	ScoredLeads        int           `json:"scoredLeads"`
	AverageScore       float64       `json:"averageScore"`
	Distribution       []ScoreBucket `json:"distribution"`
	HighQuality        int           `json:"highQuality"`
	MediumQuality      int           `json:"mediumQuality"`
	ExpectedConversion float64       `json:"expectedConversion"`
}

type Conversion struct {
	TotalLeads     int     `json:"totalLeads"`
	ConvertedLeads int     `json:"convertedLeads"`
	ConversionRate float64 `json:"conversionRate"`
	Probability    float64 `json:"probability"`
	Prior          float64 `json:"prior"`
	Evidence       float64 `json:"evidence"`
}

type BusinessMetrics struct {
	InventoryTurnover   float64 `json:"inventoryTurnover"`
	AverageDaysOnMarket float64 `json:"averageDaysOnMarket"`
	SalesVelocity       float64 `json:"salesVelocity"`
	MarketEfficiency    float64 `json:"marketEfficiency"`
}

type Summary struct {
	TotalProperties int            `json:"totalProperties"`
	ByStatus        map[string]int `json:"byStatus"`
	TotalClients    int            `json:"totalClients"`
	ActiveClients   int            `json:"activeClients"`
	Owners          int            `json:"owners"`
	TotalLeads      int            `json:"totalLeads"`
	TotalSales      int            `json:"totalSales"`
	TotalRevenue    float64        `json:"totalRevenue"`
	TotalCommission float64        `json:"totalCommission"`
	AveragePrice    float64        `json:"averagePrice"`
}

// DashboardSnapshot is the aggregate handed to the presentation layer. Nil pointers mean
// "not enough data" rather than an error.
type DashboardSnapshot struct {
	Summary         Summary         `json:"summary"`
	PriceStatistics *Statistics     `json:"priceStatistics"`
	PriceTrend      *Trend          `json:"priceTrend"`
	SalesTrend      *Trend          `json:"salesTrend"`
	PriceSegments   []PriceSegment  `json:"priceSegments"`
	LeadAnalysis    *LeadAnalysis   `json:"leadAnalysis"`
	Conversion      Conversion      `json:"conversion"`
	BusinessMetrics BusinessMetrics `json:"businessMetrics"`
	RecentSales     []Sale          `json:"recentSales"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}
