package parser

import (
	"math"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
)

// sanityTolerance absorbs rounding noise in printed balances.
const sanityTolerance = 0.02

// ApplySanityChecks verifies balance continuity across consecutive cash
// rows: previous balance + incoming - outgoing must equal the current
// balance within tolerance. The first row has no predecessor and always
// passes. Rows whose own or preceding balance cell is unreadable pass too;
// no check is performed rather than flagging garbage as a mismatch.
//
// Returns the annotated rows and the number of failed checks.
func ApplySanityChecks(txs []models.CashTransaction) ([]models.CashTransaction, int) {
	out := make([]models.CashTransaction, len(txs))
	copy(out, txs)

	failed := 0
	for i := range out {
		out[i].SanityOK = true
		if i == 0 {
			continue
		}

		prevBalance, prevOK := ParseCurrencyStrict(out[i-1].Balance)
		balance, curOK := ParseCurrencyStrict(out[i].Balance)
		if !prevOK || !curOK {
			continue
		}

		expected := prevBalance + ParseCurrency(out[i].Incoming) - ParseCurrency(out[i].Outgoing)
		if math.Abs(expected-balance) > sanityTolerance {
			out[i].SanityOK = false
			failed++
		}
	}
	return out, failed
}
