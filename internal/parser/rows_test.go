package parser

import (
	"testing"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
)

func testCashBounds(t *testing.T) models.CashColumns {
	t.Helper()
	h := findCashHeaders(germanCashHeaderRow())
	if h == nil {
		t.Fatal("test header row did not resolve")
	}
	return cashColumnBounds(h)
}

func TestClusterRows(t *testing.T) {
	items := []models.TextFragment{
		{Text: "b2", X: 100, Y: 650, Height: 10},
		{Text: "a1", X: 40, Y: 680, Height: 10},
		{Text: "a2", X: 100, Y: 680, Height: 10},
		{Text: "b1", X: 40, Y: 650, Height: 10},
	}

	rows := clusterRows(items)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0].Text != "a1" || rows[0][1].Text != "a2" {
		t.Errorf("first row out of order: %v", rows[0])
	}
	if rows[1][0].Text != "b1" || rows[1][1].Text != "b2" {
		t.Errorf("second row out of order: %v", rows[1])
	}

	// Fragments within 1.5x the average height stay in one row even when
	// their baselines wobble.
	wobble := []models.TextFragment{
		{Text: "x", X: 40, Y: 650, Height: 10},
		{Text: "y", X: 100, Y: 644, Height: 10},
	}
	if rows := clusterRows(wobble); len(rows) != 1 {
		t.Errorf("expected 1 row for wobbly baseline, got %d", len(rows))
	}

	if rows := clusterRows(nil); rows != nil {
		t.Errorf("expected nil for empty input, got %v", rows)
	}
}

func TestExtractCashRows(t *testing.T) {
	bounds := testCashBounds(t)
	items := []models.TextFragment{
		{Text: "04 März 2025", X: 40, Y: 650, Height: 10},
		{Text: "Handel", X: 100, Y: 650, Height: 10},
		{Text: "Wertpapierkauf", X: 160, Y: 650, Height: 10},
		{Text: "500,00 €", X: 380, Y: 650, Height: 10},
		{Text: "1.500,00 €", X: 470, Y: 650, Height: 10},

		{Text: "05 März 2025", X: 40, Y: 620, Height: 10},
		{Text: "Gutschrift", X: 100, Y: 620, Height: 10},
		{Text: "Überweisung", X: 160, Y: 620, Height: 10},
		{Text: "100,00 €", X: 300, Y: 620, Height: 10},
		{Text: "1.600,00 €", X: 470, Y: 620, Height: 10},
	}

	txs := extractCashRows(items, bounds)
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}

	first := txs[0]
	if first.Date != "04 März 2025" || first.Type != "Handel" {
		t.Errorf("unexpected first row: %+v", first)
	}
	if first.Outgoing != "500,00 €" || first.Incoming != "" {
		t.Errorf("money split wrong in first row: %+v", first)
	}
	if first.Balance != "1.500,00 €" {
		t.Errorf("balance = %q, want %q", first.Balance, "1.500,00 €")
	}

	second := txs[1]
	if second.Incoming != "100,00 €" || second.Outgoing != "" {
		t.Errorf("money split wrong in second row: %+v", second)
	}
}

func TestExtractCashRowsRightmostIsBalance(t *testing.T) {
	bounds := testCashBounds(t)
	// A single money fragment drifting left of the balance boundary is still
	// the balance: right-aligned numbers overhang their nominal column.
	items := []models.TextFragment{
		{Text: "04 März 2025", X: 40, Y: 650, Height: 10},
		{Text: "Gebühr", X: 100, Y: 650, Height: 10},
		{Text: "Depotführung", X: 160, Y: 650, Height: 10},
		{Text: "1.499,10 €", X: 440, Y: 650, Height: 10},
	}

	txs := extractCashRows(items, bounds)
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if txs[0].Balance != "1.499,10 €" {
		t.Errorf("balance = %q, want the rightmost money value", txs[0].Balance)
	}
	if txs[0].Incoming != "" || txs[0].Outgoing != "" {
		t.Errorf("expected empty payment columns: %+v", txs[0])
	}
}

func TestExtractCashRowsSkipsHeaderAndBlankRows(t *testing.T) {
	bounds := testCashBounds(t)
	items := []models.TextFragment{
		// On and above the header line: must not appear in output.
		{Text: "DATUM", X: 40, Y: 700, Height: 10},
		{Text: "Kontoauszug", X: 40, Y: 730, Height: 10},
		// Blank fragments only: the row collapses to nothing and is dropped.
		{Text: "   ", X: 160, Y: 650, Height: 10},
	}

	if txs := extractCashRows(items, bounds); len(txs) != 0 {
		t.Errorf("expected no transactions, got %v", txs)
	}
}

func TestExtractInterestRows(t *testing.T) {
	h := findInterestHeaders([]models.TextFragment{
		{Text: "DATUM", X: 40, Y: 500, Width: 30, Height: 10},
		{Text: "ZAHLUNGSART", X: 100, Y: 500, Width: 60, Height: 10},
		{Text: "GELDMARKTFONDS", X: 180, Y: 500, Width: 80, Height: 10},
		{Text: "STÜCK", X: 300, Y: 500, Width: 30, Height: 10},
		{Text: "KURS PRO STÜCK", X: 360, Y: 500, Width: 75, Height: 10},
		{Text: "BETRAG", X: 470, Y: 500, Width: 40, Height: 10},
	})
	if h == nil {
		t.Fatal("test header row did not resolve")
	}
	bounds := interestColumnBounds(h)

	items := []models.TextFragment{
		{Text: "30 Juni 2025", X: 40, Y: 450, Height: 10},
		{Text: "Ertrag", X: 100, Y: 450, Height: 10},
		{Text: "XTRACKERS II EUR", X: 180, Y: 450, Height: 10},
		{Text: "0,0421", X: 300, Y: 450, Height: 10},
		{Text: "139,40 €", X: 360, Y: 450, Height: 10},
		{Text: "5,87 €", X: 470, Y: 450, Height: 10},
	}

	txs := extractInterestRows(items, bounds)
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	tx := txs[0]
	if tx.Date != "30 Juni 2025" || tx.PaymentType != "Ertrag" || tx.Fund != "XTRACKERS II EUR" {
		t.Errorf("unexpected text columns: %+v", tx)
	}
	if tx.Quantity != "0,0421" || tx.PricePerUnit != "139,40 €" || tx.Amount != "5,87 €" {
		t.Errorf("unexpected numeric columns: %+v", tx)
	}
}
