package parser

import (
	"testing"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
)

func TestApplySanityChecks(t *testing.T) {
	txs := []models.CashTransaction{
		{Balance: "1.000,00 €"},
		{Incoming: "100,00 €", Balance: "1.100,00 €"},
		{Outgoing: "50,00 €", Balance: "1.050,00 €"},
		// Printed balance disagrees with the running sum.
		{Outgoing: "50,00 €", Balance: "1.010,00 €"},
	}

	checked, failed := ApplySanityChecks(txs)
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	for i, want := range []bool{true, true, true, false} {
		if checked[i].SanityOK != want {
			t.Errorf("row %d SanityOK = %v, want %v", i, checked[i].SanityOK, want)
		}
	}

	// Input must stay untouched.
	if txs[3].SanityOK {
		t.Error("input slice was modified")
	}
}

func TestApplySanityChecksTolerance(t *testing.T) {
	txs := []models.CashTransaction{
		{Balance: "100,00"},
		// Off by one cent: within tolerance.
		{Incoming: "10,00", Balance: "110,01"},
		// Off by ten cents: a failure.
		{Incoming: "10,00", Balance: "120,11"},
	}

	checked, failed := ApplySanityChecks(txs)
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if !checked[1].SanityOK {
		t.Error("one-cent difference must pass")
	}
	if checked[2].SanityOK {
		t.Error("ten-cent difference must fail")
	}
}

func TestApplySanityChecksUnreadableBalance(t *testing.T) {
	txs := []models.CashTransaction{
		{Balance: "1.000,00"},
		{Balance: "siehe unten"},
		{Incoming: "999,99", Balance: "1.234,56"},
	}

	checked, failed := ApplySanityChecks(txs)
	if failed != 0 {
		t.Errorf("failed = %d, want 0 (unreadable balances skip the check)", failed)
	}
	for i := range checked {
		if !checked[i].SanityOK {
			t.Errorf("row %d flagged despite unreadable balance chain", i)
		}
	}
}

func TestApplySanityChecksEmpty(t *testing.T) {
	checked, failed := ApplySanityChecks(nil)
	if len(checked) != 0 || failed != 0 {
		t.Errorf("expected empty result, got %v, %d", checked, failed)
	}
}
