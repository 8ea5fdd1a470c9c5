// Package stats derives aggregate views from parsed cash transactions for
// summaries and export. It works on the raw string-valued rows; anything
// unparsable simply contributes zero.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
	"github.com/insightdelivered/depot-statement-analyzer/internal/parser"
)

// DayEntry aggregates all transactions of one calendar day.
type DayEntry struct {
	Date     time.Time `json:"date"`
	Incoming float64   `json:"incoming"`
	Outgoing float64   `json:"outgoing"`
	Net      float64   `json:"net"`
	Balance  float64   `json:"balance"` // closing balance of the day
}

// TypeTotal sums money movement per transaction type.
type TypeTotal struct {
	Type     string  `json:"type"`
	Incoming float64 `json:"incoming"`
	Outgoing float64 `json:"outgoing"`
}

// TypeCount counts transactions per type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// MerchantTotal sums outgoing money per description.
type MerchantTotal struct {
	Description string  `json:"description"`
	Outgoing    float64 `json:"outgoing"`
}

// Summary is the aggregate view over one statement's cash transactions.
type Summary struct {
	TotalIncoming float64 `json:"totalIncoming"`
	TotalOutgoing float64 `json:"totalOutgoing"`
	NetChange     float64 `json:"netChange"`
	// AvgSpend is the mean outgoing amount over transactions that spent
	// anything.
	AvgSpend float64 `json:"avgSpend"`

	Daily        []DayEntry      `json:"daily"`
	Types        []TypeTotal     `json:"types"`
	TypeCounts   []TypeCount     `json:"typeCounts"`
	TopMerchants []MerchantTotal `json:"topMerchants"`
	// WeekdaySpend holds outgoing totals indexed by time.Weekday
	// (0 = Sunday).
	WeekdaySpend [7]float64 `json:"weekdaySpend"`
}

const topMerchantLimit = 7

// Analyze computes the summary. Transactions without a parseable date are
// excluded from the date-based series but still counted in the type
// frequency table, mirroring how the raw tables are displayed.
func Analyze(cash []models.CashTransaction) *Summary {
	s := &Summary{}
	if len(cash) == 0 {
		return s
	}

	type numericTx struct {
		date                    time.Time
		incoming, outgoing, net float64
		balance                 float64
		typ, description        string
	}

	var txs []numericTx
	typeCounts := make(map[string]int)
	for _, tx := range cash {
		typ := tx.Type
		if typ == "" {
			typ = "Andere"
		}
		typeCounts[typ]++

		date, ok := parser.ParseLocalizedDate(tx.Date)
		if !ok {
			continue
		}
		incoming := parser.ParseCurrency(tx.Incoming)
		outgoing := parser.ParseCurrency(tx.Outgoing)
		txs = append(txs, numericTx{
			date:        date,
			incoming:    incoming,
			outgoing:    outgoing,
			net:         incoming - outgoing,
			balance:     parser.ParseCurrency(tx.Balance),
			typ:         typ,
			description: tx.Description,
		})
	}

	spendCount := 0
	for _, tx := range txs {
		s.TotalIncoming += tx.incoming
		s.TotalOutgoing += tx.outgoing
		if tx.outgoing > 0 {
			spendCount++
			s.WeekdaySpend[tx.date.Weekday()] += tx.outgoing
		}
	}
	s.NetChange = s.TotalIncoming - s.TotalOutgoing
	if spendCount > 0 {
		s.AvgSpend = s.TotalOutgoing / float64(spendCount)
	}

	// Per-day series, in chronological order. The balance of the last
	// transaction seen for a day is its closing balance.
	daily := make(map[string]*DayEntry)
	var dayKeys []string
	for _, tx := range txs {
		key := tx.date.Format("2006-01-02")
		entry, seen := daily[key]
		if !seen {
			entry = &DayEntry{Date: tx.date}
			daily[key] = entry
			dayKeys = append(dayKeys, key)
		}
		entry.Incoming += tx.incoming
		entry.Outgoing += tx.outgoing
		entry.Net += tx.net
		entry.Balance = tx.balance
	}
	sort.Strings(dayKeys)
	for _, key := range dayKeys {
		s.Daily = append(s.Daily, *daily[key])
	}

	typeTotals := make(map[string]*TypeTotal)
	for _, tx := range txs {
		tt, seen := typeTotals[tx.typ]
		if !seen {
			tt = &TypeTotal{Type: tx.typ}
			typeTotals[tx.typ] = tt
		}
		tt.Incoming += tx.incoming
		tt.Outgoing += tx.outgoing
	}
	for _, tt := range typeTotals {
		s.Types = append(s.Types, *tt)
	}
	sort.SliceStable(s.Types, func(i, j int) bool { return s.Types[i].Outgoing > s.Types[j].Outgoing })

	for typ, count := range typeCounts {
		s.TypeCounts = append(s.TypeCounts, TypeCount{Type: typ, Count: count})
	}
	sort.SliceStable(s.TypeCounts, func(i, j int) bool {
		if s.TypeCounts[i].Count != s.TypeCounts[j].Count {
			return s.TypeCounts[i].Count > s.TypeCounts[j].Count
		}
		return s.TypeCounts[i].Type < s.TypeCounts[j].Type
	})

	merchants := make(map[string]float64)
	for _, tx := range txs {
		if tx.outgoing <= 0 {
			continue
		}
		label := tx.description
		if label == "" {
			label = "Unbekannt"
		}
		merchants[label] += tx.outgoing
	}
	for label, total := range merchants {
		s.TopMerchants = append(s.TopMerchants, MerchantTotal{Description: label, Outgoing: total})
	}
	sort.SliceStable(s.TopMerchants, func(i, j int) bool {
		if s.TopMerchants[i].Outgoing != s.TopMerchants[j].Outgoing {
			return s.TopMerchants[i].Outgoing > s.TopMerchants[j].Outgoing
		}
		return s.TopMerchants[i].Description < s.TopMerchants[j].Description
	})
	if len(s.TopMerchants) > topMerchantLimit {
		s.TopMerchants = s.TopMerchants[:topMerchantLimit]
	}

	roundSummary(s)
	return s
}

func roundSummary(s *Summary) {
	round := func(v float64) float64 { return math.Round(v*100) / 100 }
	s.TotalIncoming = round(s.TotalIncoming)
	s.TotalOutgoing = round(s.TotalOutgoing)
	s.NetChange = round(s.NetChange)
	s.AvgSpend = round(s.AvgSpend)
	for i := range s.Daily {
		s.Daily[i].Incoming = round(s.Daily[i].Incoming)
		s.Daily[i].Outgoing = round(s.Daily[i].Outgoing)
		s.Daily[i].Net = round(s.Daily[i].Net)
	}
	for i := range s.WeekdaySpend {
		s.WeekdaySpend[i] = round(s.WeekdaySpend[i])
	}
}
