package trading

import (
	"math"
	"regexp"
	"sort"
	"time"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
	"github.com/insightdelivered/depot-statement-analyzer/internal/parser"
)

// tradeType is the cash transaction type marking a securities trade.
const tradeType = "Handel"

// tradePattern matches trade execution descriptions such as
//
//	"Ausführung Handel Direktkauf Kauf DE0001234567 EXAMPLE AG 987654"
//
// capturing the direction, the 12-character ISIN, the instrument name and
// the trailing numeric trade id.
var tradePattern = regexp.MustCompile(
	`Ausführung Handel Direkt(kauf|verkauf)\s+(Kauf|Verkauf)\s+([A-Z0-9]{12})\s+(.+?)\s+(\d+)$`,
)

// ParseTransactions derives trade records from cash transactions. Rows whose
// type is not the trade marker, whose description does not match the
// execution pattern, or whose amount is zero or unreadable are skipped
// silently; most cash rows are not trades and that is expected, not an
// error. The result is sorted by trade date ascending.
func ParseTransactions(cash []models.CashTransaction) []models.TradingTransaction {
	var trades []models.TradingTransaction

	for _, tx := range cash {
		if tx.Type != tradeType {
			continue
		}
		m := tradePattern.FindStringSubmatch(tx.Description)
		if m == nil {
			continue
		}

		action := m[2]
		isBuy := action == "Kauf"

		// Buys spend money, sells receive it.
		var amount float64
		if isBuy {
			amount = parser.ParseCurrency(tx.Outgoing)
		} else {
			amount = parser.ParseCurrency(tx.Incoming)
		}
		if amount <= 0 {
			continue
		}

		trades = append(trades, models.TradingTransaction{
			Date:      tx.Date,
			ISIN:      m[3],
			StockName: m[4],
			Action:    action,
			IsBuy:     isBuy,
			Amount:    amount,
			TradeID:   m[5],
			Balance:   tx.Balance,
		})
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return tradeDate(trades[i].Date).Before(tradeDate(trades[j].Date))
	})
	return trades
}

// tradeDate resolves a statement date for ordering. Unparseable dates sort
// first rather than aborting the run.
func tradeDate(s string) time.Time {
	t, ok := parser.ParseLocalizedDate(s)
	if !ok {
		return time.Time{}
	}
	return t
}

// CalculatePnL aggregates an ordered trade sequence into per-instrument
// positions with realized P&L and cost basis, plus run-wide totals. The
// summary is recomputed from scratch on every call and sorted by absolute
// net cash flow descending (biggest investments first).
func CalculatePnL(trades []models.TradingTransaction) *models.TradingSummary {
	type bucket struct {
		pos   models.Position
		dates []string
	}
	buckets := make(map[string]*bucket)
	var order []string

	for _, tx := range trades {
		b, seen := buckets[tx.ISIN]
		if !seen {
			b = &bucket{pos: models.Position{ISIN: tx.ISIN, StockName: tx.StockName}}
			buckets[tx.ISIN] = b
			order = append(order, tx.ISIN)
		}
		b.dates = append(b.dates, tx.Date)
		b.pos.TotalTransactions++
		if tx.IsBuy {
			b.pos.NumBuys++
			b.pos.TotalBought += tx.Amount
		} else {
			b.pos.NumSells++
			b.pos.TotalSold += tx.Amount
		}
	}

	summary := &models.TradingSummary{
		PnLSummary:  []models.Position{},
		TotalTrades: len(trades),
	}
	for _, tx := range trades {
		summary.TotalVolume += tx.Amount
	}

	for _, isin := range order {
		b := buckets[isin]
		pos := b.pos
		pos.NetCashFlow = pos.TotalSold - pos.TotalBought
		pos.FirstTrade = b.dates[0]
		pos.LastTrade = b.dates[len(b.dates)-1]
		pos.IsOpen = pos.TotalSold < pos.TotalBought

		switch {
		case pos.TotalBought > 0 && pos.TotalSold == 0:
			// Pure buy-and-hold: everything is still invested.
			pos.Status = models.StatusOpen
			pos.CostBasis = pos.TotalBought
			pos.RealizedGainLoss = 0
		case pos.TotalBought == 0 && pos.TotalSold > 0:
			// Sold without a recorded purchase (holdings predate the
			// statement); the full proceeds count as realized.
			pos.Status = models.StatusUnknownBuy
			pos.CostBasis = 0
			pos.RealizedGainLoss = pos.TotalSold
		case pos.TotalBought > pos.TotalSold:
			pos.Status = models.StatusPartiallySold
			pos.CostBasis = pos.TotalBought - pos.TotalSold
			pos.RealizedGainLoss = 0
		case pos.TotalSold > pos.TotalBought:
			pos.Status = models.StatusClosed
			pos.CostBasis = 0
			pos.RealizedGainLoss = pos.TotalSold - pos.TotalBought
		default:
			pos.Status = models.StatusBalanced
			pos.CostBasis = 0
			pos.RealizedGainLoss = 0
		}

		pos.TotalPnL = pos.RealizedGainLoss
		summary.PnLSummary = append(summary.PnLSummary, pos)
	}

	sort.SliceStable(summary.PnLSummary, func(i, j int) bool {
		return math.Abs(summary.PnLSummary[i].NetCashFlow) > math.Abs(summary.PnLSummary[j].NetCashFlow)
	})

	for _, pos := range summary.PnLSummary {
		summary.TotalInvested += pos.CostBasis
		summary.TotalRealized += pos.RealizedGainLoss
		summary.TotalNetCashFlow += pos.NetCashFlow
		if pos.IsOpen {
			summary.OpenPositions++
		} else {
			summary.ClosedPositions++
		}
	}
	summary.TotalPnL = summary.TotalRealized

	return summary
}
