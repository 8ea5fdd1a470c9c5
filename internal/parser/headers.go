package parser

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
)

// Header rows appear in three language variants (German, Italian, English)
// depending on the statement locale. Candidate fragments are filtered first
// (upper-case, more than two characters, containing a known keyword) and each
// logical column slot is then resolved by exact label match.

var cashHeaderKeywords = []string{
	"DATUM", "TYP", "BESCHREIBUNG", "ZAHLUNGSEINGANG", "ZAHLUNGSAUSGANG", "SALDO",
	// Italian
	"DATA", "TIPO", "DESCRIZIONE", "IN ENTRATA", "IN USCITA",
	// English
	"DATE", "TYPE", "DESCRIPTION", "MONEY", "IN", "OUT", "BALANCE",
}

var interestHeaderKeywords = []string{
	"DATUM", "ZAHLUNGSART", "GELDMARKTFONDS", "STÜCK", "KURS PRO STÜCK", "BETRAG",
}

// cashHeaders holds the resolved header fragments for the cash table.
// payments is set instead of incoming/outgoing when the statement prints a
// single merged incoming/outgoing column.
type cashHeaders struct {
	date        *models.TextFragment
	typ         *models.TextFragment
	description *models.TextFragment
	payments    *models.TextFragment
	incoming    *models.TextFragment
	outgoing    *models.TextFragment
	balance     *models.TextFragment
}

// interestHeaders holds the resolved header fragments for the interest table.
// All six slots are required.
type interestHeaders struct {
	date         *models.TextFragment
	paymentType  *models.TextFragment
	fund         *models.TextFragment
	quantity     *models.TextFragment
	pricePerUnit *models.TextFragment
	amount       *models.TextFragment
}

func headerCandidates(items []models.TextFragment, keywords []string) []models.TextFragment {
	var out []models.TextFragment
	for _, it := range items {
		t := strings.TrimSpace(it.Text)
		if utf8.RuneCountInString(t) <= 2 {
			continue
		}
		if t != strings.ToUpper(t) {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(t, kw) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

func matchExact(candidates []models.TextFragment, labels ...string) *models.TextFragment {
	for i := range candidates {
		t := strings.TrimSpace(candidates[i].Text)
		for _, label := range labels {
			if t == label {
				return &candidates[i]
			}
		}
	}
	return nil
}

// findCompositeHeader handles headers split across two fragments, such as
// "MONEY" + "IN" laid out as adjacent text runs. The two fragments must sit
// on the same line (within 2 points vertically) and within 100 x-units of
// each other; the result is a synthetic fragment spanning both.
func findCompositeHeader(candidates []models.TextFragment, first, second string) *models.TextFragment {
	if single := matchExact(candidates, first+" "+second, first+second); single != nil {
		return single
	}
	for i := range candidates {
		f := &candidates[i]
		if strings.TrimSpace(f.Text) != first {
			continue
		}
		for j := range candidates {
			n := &candidates[j]
			if strings.TrimSpace(n.Text) != second {
				continue
			}
			if math.Abs(n.Y-f.Y) < 2 && n.X > f.X && n.X < f.X+100 {
				return &models.TextFragment{
					Text:   first + " " + second,
					X:      f.X,
					Y:      f.Y,
					Width:  n.X + n.Width - f.X,
					Height: math.Max(f.Height, n.Height),
				}
			}
		}
	}
	return nil
}

// findCashHeaders locates the cash table header row among the given
// fragments. Returns nil when any required slot is missing, meaning "no
// header on this page"; the caller keeps whatever boundaries it already has.
func findCashHeaders(items []models.TextFragment) *cashHeaders {
	candidates := headerCandidates(items, cashHeaderKeywords)
	if len(candidates) == 0 {
		return nil
	}

	h := &cashHeaders{
		date:        matchExact(candidates, "DATUM", "DATA", "DATE"),
		typ:         matchExact(candidates, "TYP", "TIPO", "TYPE"),
		description: matchExact(candidates, "BESCHREIBUNG", "DESCRIZIONE", "DESCRIPTION"),
		balance:     matchExact(candidates, "SALDO", "BALANCE"),
	}

	// A single header covering both payment directions gets split at its
	// midpoint later.
	for i := range candidates {
		t := strings.TrimSpace(candidates[i].Text)
		if (strings.Contains(t, "ZAHLUNGSEINGANG") && strings.Contains(t, "ZAHLUNGSAUSGANG")) ||
			(strings.Contains(t, "IN ENTRATA") && strings.Contains(t, "IN USCITA")) ||
			(strings.Contains(t, "MONEY IN") && strings.Contains(t, "MONEY OUT")) {
			h.payments = &candidates[i]
			break
		}
	}

	if h.payments == nil {
		h.incoming = matchExact(candidates, "ZAHLUNGSEINGANG", "IN ENTRATA")
		if h.incoming == nil {
			h.incoming = findCompositeHeader(candidates, "MONEY", "IN")
		}
		h.outgoing = matchExact(candidates, "ZAHLUNGSAUSGANG", "IN USCITA")
		if h.outgoing == nil {
			h.outgoing = findCompositeHeader(candidates, "MONEY", "OUT")
		}
	}

	if h.date == nil || h.typ == nil || h.description == nil || h.balance == nil {
		return nil
	}
	if h.payments == nil && (h.incoming == nil || h.outgoing == nil) {
		return nil
	}
	return h
}

const columnMargin = 5

// cashColumnBounds converts located cash headers into column x-ranges.
// Each column ends 5 points before the next header; the balance column is
// unbounded to the right. A merged payments header is split at its midpoint.
func cashColumnBounds(h *cashHeaders) models.CashColumns {
	var incomingEnd, outgoingStart, paymentsStart float64
	if h.payments != nil {
		mid := h.payments.X + h.payments.Width/2
		incomingEnd = mid
		outgoingStart = mid
		paymentsStart = h.payments.X - columnMargin
	} else {
		incomingEnd = h.outgoing.X - columnMargin
		outgoingStart = h.outgoing.X - columnMargin
		paymentsStart = h.incoming.X - columnMargin
	}

	return models.CashColumns{
		Date:        models.Span{Start: 0, End: h.typ.X - columnMargin},
		Type:        models.Span{Start: h.typ.X - columnMargin, End: h.description.X - columnMargin},
		Description: models.Span{Start: h.description.X - columnMargin, End: paymentsStart},
		Incoming:    models.Span{Start: paymentsStart, End: incomingEnd},
		Outgoing:    models.Span{Start: outgoingStart, End: h.balance.X - columnMargin},
		Balance:     models.Span{Start: h.balance.X - columnMargin, End: math.Inf(1)},
		HeaderY:     h.date.Y,
	}
}

// findInterestHeaders locates the money-market-fund table header row.
// All six labels are German-only on these statements and all are required.
func findInterestHeaders(items []models.TextFragment) *interestHeaders {
	candidates := headerCandidates(items, interestHeaderKeywords)
	if len(candidates) == 0 {
		return nil
	}

	h := &interestHeaders{
		date:         matchExact(candidates, "DATUM"),
		paymentType:  matchExact(candidates, "ZAHLUNGSART"),
		fund:         matchExact(candidates, "GELDMARKTFONDS"),
		quantity:     matchExact(candidates, "STÜCK"),
		pricePerUnit: matchExact(candidates, "KURS PRO STÜCK"),
		amount:       matchExact(candidates, "BETRAG"),
	}

	if h.date == nil || h.paymentType == nil || h.fund == nil ||
		h.quantity == nil || h.pricePerUnit == nil || h.amount == nil {
		return nil
	}
	return h
}

func interestColumnBounds(h *interestHeaders) models.InterestColumns {
	return models.InterestColumns{
		Date:         models.Span{Start: 0, End: h.paymentType.X - columnMargin},
		PaymentType:  models.Span{Start: h.paymentType.X - columnMargin, End: h.fund.X - columnMargin},
		Fund:         models.Span{Start: h.fund.X - columnMargin, End: h.quantity.X - columnMargin},
		Quantity:     models.Span{Start: h.quantity.X - columnMargin, End: h.pricePerUnit.X - columnMargin},
		PricePerUnit: models.Span{Start: h.pricePerUnit.X - columnMargin, End: h.amount.X - columnMargin},
		Amount:       models.Span{Start: h.amount.X - columnMargin, End: math.Inf(1)},
		HeaderY:      h.date.Y,
	}
}
