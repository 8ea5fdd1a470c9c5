package parser

import (
	"testing"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
)

func TestFindStartMarkerExactMatch(t *testing.T) {
	items := []models.TextFragment{
		{Text: "Seite 1", Y: 800},
		{Text: "  UMSATZÜBERSICHT  ", Y: 750},
	}
	if m := findStartMarker(items, cashStartLabels); m == nil {
		t.Error("expected trimmed exact label to match")
	}

	// Start markers never match on substring.
	embedded := []models.TextFragment{{Text: "IHRE UMSATZÜBERSICHT IM DETAIL", Y: 750}}
	if m := findStartMarker(embedded, cashStartLabels); m != nil {
		t.Error("expected embedded start label not to match")
	}
}

func TestFindEndMarkerSubstringMatch(t *testing.T) {
	items := []models.TextFragment{
		{Text: "WEITER ZUR BARMITTELÜBERSICHT UND MEHR", Y: 300},
	}
	if m := findEndMarker(items, cashEndLabels); m == nil {
		t.Error("expected embedded end label to match")
	}
	if m := findEndMarker(items, interestEndLabels); m != nil {
		t.Error("expected no match for unrelated labels")
	}
}

func TestCropSection(t *testing.T) {
	items := []models.TextFragment{
		{Text: "above", Y: 760},
		{Text: "at start", Y: 750},
		{Text: "inside", Y: 500},
		{Text: "at end", Y: 300},
		{Text: "below", Y: 200},
	}
	start := &models.TextFragment{Y: 750}
	end := &models.TextFragment{Y: 300}

	got := cropSection(items, start, end)
	if len(got) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(got))
	}
	if got[0].Text != "at start" || got[1].Text != "inside" {
		t.Errorf("unexpected crop result: %v", got)
	}

	// Nil markers leave the respective side open.
	if got := cropSection(items, nil, end); len(got) != 3 {
		t.Errorf("open start: expected 3 fragments, got %d", len(got))
	}
	if got := cropSection(items, start, nil); len(got) != 4 {
		t.Errorf("open end: expected 4 fragments, got %d", len(got))
	}
	if got := cropSection(items, nil, nil); len(got) != len(items) {
		t.Errorf("no markers: expected all fragments, got %d", len(got))
	}
}
