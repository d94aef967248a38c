package config

import "github.com/paulmach/orb"

// Market represents a metropolitan market served by the brokerage
type Market struct {
	Name   string    `json:"name"`
	Label  string    `json:"label"`
	Center orb.Point `json:"center"`
}

// SupportedMarkets lists the markets location scoring knows about. Centres are lon/lat.
var SupportedMarkets = []Market{
	{Name: "sao-paulo", Label: "São Paulo", Center: orb.Point{-46.6333, -23.5505}},
	{Name: "rio-de-janeiro", Label: "Rio de Janeiro", Center: orb.Point{-43.1729, -22.9068}},
	{Name: "belo-horizonte", Label: "Belo Horizonte", Center: orb.Point{-43.9378, -19.9208}},
	{Name: "curitiba", Label: "Curitiba", Center: orb.Point{-49.2733, -25.4284}},
	{Name: "porto-alegre", Label: "Porto Alegre", Center: orb.Point{-51.2177, -30.0346}},
}

// GetMarketNames returns a list of supported market names
func GetMarketNames() []string {
	names := make([]string, len(SupportedMarkets))
	for i, m := range SupportedMarkets {
		names[i] = m.Name
	}
	return names
}

// GetMarketByName returns a market configuration by name
func GetMarketByName(name string) *Market {
	for _, m := range SupportedMarkets {
		if m.Name == name {
			market := m
			return &market
		}
	}
	return nil
}

// MarketCenters maps each supported market name to its centre point
func MarketCenters() map[string]orb.Point {
	centers := make(map[string]orb.Point, len(SupportedMarkets))
	for _, m := range SupportedMarkets {
		centers[m.Name] = m.Center
	}
	return centers
}
