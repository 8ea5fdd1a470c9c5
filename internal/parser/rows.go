package parser

import (
	"sort"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
)

// headerGap is the vertical clearance below the header row; content must sit
// strictly below headerY minus this gap.
const headerGap = 5

// rowGapFactor scales the average fragment height into the vertical-gap
// threshold that separates one table row from the next.
const rowGapFactor = 1.5

// contentBelowHeader filters to non-blank fragments strictly below the
// header row.
func contentBelowHeader(items []models.TextFragment, headerY float64) []models.TextFragment {
	out := make([]models.TextFragment, 0, len(items))
	for _, it := range items {
		if it.Y < headerY-headerGap && collapseWhitespace(it.Text) != "" {
			out = append(out, it)
		}
	}
	return out
}

// clusterRows groups fragments into visual rows. Fragments are walked in
// reading order (top to bottom, left to right) and a new row starts whenever
// the vertical gap to the previous fragment exceeds 1.5x the average
// fragment height. The threshold is dynamic because statements mix font
// sizes between sections.
func clusterRows(items []models.TextFragment) [][]models.TextFragment {
	if len(items) == 0 {
		return nil
	}

	sorted := make([]models.TextFragment, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var total float64
	for _, it := range sorted {
		total += it.Height
	}
	avgHeight := total / float64(len(sorted))
	if avgHeight == 0 {
		avgHeight = 10
	}
	gapThreshold := avgHeight * rowGapFactor

	var rows [][]models.TextFragment
	current := []models.TextFragment{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Y-sorted[i].Y > gapThreshold {
			rows = append(rows, current)
			current = nil
		}
		current = append(current, sorted[i])
	}
	rows = append(rows, current)
	return rows
}

// extractCashRows turns one page's cash-section fragments into transactions.
//
// Text columns are assigned by boundary test left to right. The trailing
// money columns get a two-pass treatment: everything right of the
// description boundary is collected, sorted by x, and the rightmost fragment
// is taken as the balance regardless of its measured x: the money columns
// are right-aligned in the source documents, so their left edges drift
// across the nominal boundaries, but the rightmost value is structurally
// always the last column. The remaining fragments are then redistributed
// into incoming/outgoing by boundary test.
func extractCashRows(items []models.TextFragment, bounds models.CashColumns) []models.CashTransaction {
	content := contentBelowHeader(items, bounds.HeaderY)
	if len(content) == 0 {
		return nil
	}

	var txs []models.CashTransaction
	for _, row := range clusterRows(content) {
		var date, typ, desc, incoming, outgoing, balance string
		var money []models.TextFragment

		for _, it := range row {
			switch {
			case it.X < bounds.Date.End:
				date += " " + it.Text
			case it.X < bounds.Type.End:
				typ += " " + it.Text
			case it.X < bounds.Description.End:
				desc += " " + it.Text
			default:
				money = append(money, it)
			}
		}

		sort.SliceStable(money, func(i, j int) bool { return money[i].X < money[j].X })
		if len(money) > 0 {
			balance = money[len(money)-1].Text
			money = money[:len(money)-1]
		}
		for _, it := range money {
			if it.X < bounds.Incoming.End {
				incoming += " " + it.Text
			} else if it.X < bounds.Outgoing.End {
				outgoing += " " + it.Text
			}
		}

		tx := models.CashTransaction{
			Date:        collapseWhitespace(date),
			Type:        collapseWhitespace(typ),
			Description: collapseWhitespace(desc),
			Incoming:    collapseWhitespace(incoming),
			Outgoing:    collapseWhitespace(outgoing),
			Balance:     collapseWhitespace(balance),
		}
		if tx != (models.CashTransaction{}) {
			txs = append(txs, tx)
		}
	}
	return txs
}

// extractInterestRows is the interest-table counterpart of extractCashRows,
// with the amount column taking the rightmost-fragment role.
func extractInterestRows(items []models.TextFragment, bounds models.InterestColumns) []models.InterestTransaction {
	content := contentBelowHeader(items, bounds.HeaderY)
	if len(content) == 0 {
		return nil
	}

	var txs []models.InterestTransaction
	for _, row := range clusterRows(content) {
		var date, paymentType, fund, quantity, price, amount string
		var trailing []models.TextFragment

		for _, it := range row {
			switch {
			case it.X < bounds.Date.End:
				date += " " + it.Text
			case it.X < bounds.PaymentType.End:
				paymentType += " " + it.Text
			case it.X < bounds.Fund.End:
				fund += " " + it.Text
			default:
				trailing = append(trailing, it)
			}
		}

		sort.SliceStable(trailing, func(i, j int) bool { return trailing[i].X < trailing[j].X })
		if len(trailing) > 0 {
			amount = trailing[len(trailing)-1].Text
			trailing = trailing[:len(trailing)-1]
		}
		for _, it := range trailing {
			if it.X < bounds.Quantity.End {
				quantity += " " + it.Text
			} else if it.X < bounds.PricePerUnit.End {
				price += " " + it.Text
			}
		}

		tx := models.InterestTransaction{
			Date:         collapseWhitespace(date),
			PaymentType:  collapseWhitespace(paymentType),
			Fund:         collapseWhitespace(fund),
			Quantity:     collapseWhitespace(quantity),
			PricePerUnit: collapseWhitespace(price),
			Amount:       collapseWhitespace(amount),
		}
		if tx != (models.InterestTransaction{}) {
			txs = append(txs, tx)
		}
	}
	return txs
}
