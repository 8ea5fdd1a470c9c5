package trading

import "github.com/insightdelivered/depot-statement-analyzer/internal/models"

// EnrichWithSecurities overlays current depot holdings onto a P&L summary.
// Open positions matched by ISIN get their current market value, price and
// quantity plus unrealized P&L; unmatched or closed positions keep realized
// figures only. The input summary is not modified.
func EnrichWithSecurities(data *models.TradingSummary, securities []models.Security) *models.TradingSummary {
	if data == nil || len(securities) == 0 {
		return data
	}

	byISIN := make(map[string]models.Security, len(securities))
	for _, sec := range securities {
		if sec.ISIN != "" {
			byISIN[sec.ISIN] = sec
		}
	}

	out := *data
	out.PnLSummary = make([]models.Position, len(data.PnLSummary))
	out.TotalCurrentValue = 0
	out.TotalUnrealizedPnL = 0

	for i, pos := range data.PnLSummary {
		sec, found := byISIN[pos.ISIN]
		if found && pos.IsOpen {
			pos.HasCurrentData = true
			pos.CurrentValue = sec.MarketValueEUR
			pos.CurrentPrice = sec.PricePerUnit
			pos.CurrentQuantity = sec.Quantity
			pos.PriceDate = sec.PriceDate
			pos.UnrealizedPnL = pos.CurrentValue - pos.CostBasis
			if pos.CostBasis > 0 {
				pos.UnrealizedPnLPct = pos.UnrealizedPnL / pos.CostBasis * 100
			}
			pos.TotalPnL = pos.RealizedGainLoss + pos.UnrealizedPnL
		} else {
			pos.HasCurrentData = false
			pos.UnrealizedPnL = 0
			pos.TotalPnL = pos.RealizedGainLoss
		}

		if pos.HasCurrentData {
			out.TotalCurrentValue += pos.CurrentValue
		} else {
			out.TotalCurrentValue += pos.CostBasis
		}
		out.TotalUnrealizedPnL += pos.UnrealizedPnL
		out.PnLSummary[i] = pos
	}

	out.HasSecuritiesData = true
	out.TotalPnL = out.TotalRealized + out.TotalUnrealizedPnL
	out.SecuritiesDate = securities[0].PriceDate
	return &out
}
