package insights

import (
	"fmt"

	"brokerage/server/internal/models"
)

const (
	lowTurnover       = 20
	slowDaysOnMarket  = 90
	lowEfficiency     = 90
	highDispersion    = 50
	weakConversion    = 10
	dominantSegment   = 40
	strongLeadAverage = 70
)

// Rules derives insights from fixed thresholds over the snapshot.
func Rules(snap models.DashboardSnapshot) []string {
	out := make([]string, 0, maxInsights)
	add := func(format string, args ...interface{}) {
		if len(out) < maxInsights {
			out = append(out, fmt.Sprintf(format, args...))
		}
	}

	if snap.Summary.TotalProperties == 0 {
		add("Nenhum imóvel cadastrado; cadastre o estoque para gerar indicadores.")
		return out
	}

	if tr := snap.PriceTrend; tr != nil {
		switch tr.Trend {
		case models.TrendUp:
			add("Preços em alta (tendência %s), projeção de R$ %.0f para o próximo imóvel.", tr.Strength, tr.Projection)
		case models.TrendDown:
			add("Preços em baixa (tendência %s); revise a precificação dos novos anúncios.", tr.Strength)
		default:
			add("Preços estáveis no período analisado.")
		}
	}

	bm := snap.BusinessMetrics
	if bm.InventoryTurnover < lowTurnover {
		add("Giro de estoque baixo (%.1f%%); priorize ações para imóveis parados.", bm.InventoryTurnover)
	} else {
		add("Giro de estoque saudável (%.1f%%).", bm.InventoryTurnover)
	}
	if bm.AverageDaysOnMarket > slowDaysOnMarket {
		add("Imóveis vendidos ficaram em média %.0f dias no mercado, acima de %d dias.", bm.AverageDaysOnMarket, slowDaysOnMarket)
	}
	if bm.MarketEfficiency > 0 && bm.MarketEfficiency < lowEfficiency {
		add("Eficiência de mercado de %.1f%%: a maior parte do valor anunciado ainda não foi realizada.", bm.MarketEfficiency)
	}

	if st := snap.PriceStatistics; st != nil && st.CoefficientVariation > highDispersion {
		add("Preços muito dispersos (CV %.1f%%); considere segmentar campanhas por faixa.", st.CoefficientVariation)
	}
	for _, seg := range snap.PriceSegments {
		if seg.Percentage >= dominantSegment {
			add("A faixa %s concentra %.1f%% do estoque.", seg.Label, seg.Percentage)
		}
	}

	if la := snap.LeadAnalysis; la != nil {
		if la.AverageScore >= strongLeadAverage {
			add("Leads com score médio alto (%.1f); acelere o contato com os %d leads de alta qualidade.", la.AverageScore, la.HighQuality)
		} else {
			add("Score médio de leads em %.1f; %d leads de alta qualidade merecem prioridade.", la.AverageScore, la.HighQuality)
		}
	}
	if snap.Summary.TotalLeads > 0 && snap.Conversion.ConversionRate < weakConversion {
		add("Taxa de conversão de %.1f%% abaixo de %d%%; revise o funil de atendimento.", snap.Conversion.ConversionRate, weakConversion)
	}
	return out
}
