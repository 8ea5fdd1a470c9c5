package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
)

// Callers seed Options.FooterBand and flag defaults from this constant, so
// it has to carry the float type itself.
var _ float64 = DefaultFooterBand

type fakeSource struct {
	pages   [][]models.TextFragment
	failOn  int
	failErr error
}

func (f *fakeSource) NumPages() int { return len(f.pages) }

func (f *fakeSource) Page(n int) ([]models.TextFragment, error) {
	if f.failOn == n {
		return nil, f.failErr
	}
	return f.pages[n-1], nil
}

type recordingObserver struct {
	statuses []string
	progress []int
}

func (o *recordingObserver) OnStatus(msg string)   { o.statuses = append(o.statuses, msg) }
func (o *recordingObserver) OnProgress(cur, _ int) { o.progress = append(o.progress, cur) }

// cashSectionPage builds a page with a cash section: start marker, header
// row, the given content rows, and optionally the end marker near the bottom.
func cashSectionPage(withEnd bool, rows ...[]models.TextFragment) []models.TextFragment {
	page := []models.TextFragment{
		{Text: "UMSATZÜBERSICHT", X: 40, Y: 750, Width: 90, Height: 10},
	}
	page = append(page, germanCashHeaderRow()...)
	for _, row := range rows {
		page = append(page, row...)
	}
	if withEnd {
		page = append(page, models.TextFragment{Text: "BARMITTELÜBERSICHT", X: 40, Y: 150, Width: 100, Height: 10})
	}
	return page
}

func cashRow(y float64, date, typ, desc, in, out, balance string) []models.TextFragment {
	row := []models.TextFragment{
		{Text: date, X: 40, Y: y, Height: 10},
		{Text: typ, X: 100, Y: y, Height: 10},
		{Text: desc, X: 160, Y: y, Height: 10},
	}
	if in != "" {
		row = append(row, models.TextFragment{Text: in, X: 300, Y: y, Height: 10})
	}
	if out != "" {
		row = append(row, models.TextFragment{Text: out, X: 380, Y: y, Height: 10})
	}
	row = append(row, models.TextFragment{Text: balance, X: 470, Y: y, Height: 10})
	return row
}

func TestParseSinglePageCashSection(t *testing.T) {
	src := &fakeSource{pages: [][]models.TextFragment{
		cashSectionPage(true,
			cashRow(650, "04 März 2025", "Gutschrift", "Überweisung", "1.000,00 €", "", "1.000,00 €"),
			cashRow(620, "05 März 2025", "Handel", "Wertpapierkauf", "", "500,00 €", "500,00 €"),
		),
	}}

	result, err := Parse(src, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Cash) != 2 {
		t.Fatalf("expected 2 cash transactions, got %d", len(result.Cash))
	}
	if len(result.Interest) != 0 {
		t.Errorf("expected no interest transactions, got %d", len(result.Interest))
	}

	first := result.Cash[0]
	if first.Date != "04 März 2025" || first.Incoming != "1.000,00 €" || first.Balance != "1.000,00 €" {
		t.Errorf("unexpected first transaction: %+v", first)
	}
	second := result.Cash[1]
	if second.Type != "Handel" || second.Outgoing != "500,00 €" {
		t.Errorf("unexpected second transaction: %+v", second)
	}
}

func TestParseSectionSpanningPages(t *testing.T) {
	// Page 1 opens the section and has the header; page 2 continues the
	// table without repeating the header and closes the section.
	page2 := []models.TextFragment{}
	page2 = append(page2, cashRow(650, "06 März 2025", "Gebühr", "Depotführung", "", "10,00 €", "490,00 €")...)
	page2 = append(page2, models.TextFragment{Text: "BARMITTELÜBERSICHT", X: 40, Y: 150, Height: 10})

	src := &fakeSource{pages: [][]models.TextFragment{
		cashSectionPage(false,
			cashRow(650, "04 März 2025", "Gutschrift", "Überweisung", "500,00 €", "", "500,00 €"),
		),
		page2,
	}}

	result, err := Parse(src, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Cash) != 2 {
		t.Fatalf("expected 2 cash transactions across pages, got %d", len(result.Cash))
	}
	if result.Cash[1].Date != "06 März 2025" {
		t.Errorf("page 2 row missing or out of order: %+v", result.Cash)
	}
}

func TestParseEndMarkerClosesSection(t *testing.T) {
	// The section starts and ends on page 1; rows on page 2 must be ignored
	// even though they sit below remembered column boundaries.
	src := &fakeSource{pages: [][]models.TextFragment{
		cashSectionPage(true,
			cashRow(650, "04 März 2025", "Gutschrift", "Überweisung", "500,00 €", "", "500,00 €"),
		),
		cashRow(650, "99 Nirgendwo 9999", "Rauschen", "Fußnote", "", "1,00 €", "2,00 €"),
	}}

	result, err := Parse(src, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Cash) != 1 {
		t.Fatalf("expected 1 cash transaction, got %d: %+v", len(result.Cash), result.Cash)
	}
}

func TestParseFooterBandFiltersFragments(t *testing.T) {
	// A row inside the footer band must be invisible to the parser.
	src := &fakeSource{pages: [][]models.TextFragment{
		cashSectionPage(true,
			cashRow(650, "04 März 2025", "Gutschrift", "Überweisung", "500,00 €", "", "500,00 €"),
			cashRow(180, "05 März 2025", "Fußzeile", "Seitenangabe", "", "1,00 €", "499,00 €"),
		),
	}}

	result, err := Parse(src, Options{FooterBand: 200})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Cash) != 1 {
		t.Fatalf("expected footer row to be dropped, got %d rows", len(result.Cash))
	}
}

func TestParseNoSectionMarker(t *testing.T) {
	// A header without a surrounding section start is ignored.
	src := &fakeSource{pages: [][]models.TextFragment{
		append(germanCashHeaderRow(),
			cashRow(650, "04 März 2025", "Gutschrift", "Überweisung", "500,00 €", "", "500,00 €")...),
	}}

	result, err := Parse(src, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Cash) != 0 {
		t.Errorf("expected no transactions without a section marker, got %d", len(result.Cash))
	}
	if result.Cash == nil || result.Interest == nil {
		t.Error("result slices must never be nil")
	}
}

func TestParsePageLoadErrorIsFatal(t *testing.T) {
	pageErr := errors.New("stream corrupted")
	src := &fakeSource{
		pages:   make([][]models.TextFragment, 3),
		failOn:  2,
		failErr: pageErr,
	}

	result, err := Parse(src, Options{})
	if err == nil {
		t.Fatal("expected an error for a failing page")
	}
	if result != nil {
		t.Error("expected no partial result on page failure")
	}
	if !errors.Is(err, pageErr) {
		t.Errorf("expected wrapped page error, got %v", err)
	}
	if !strings.Contains(err.Error(), "page 2") {
		t.Errorf("error should name the failing page: %v", err)
	}
}

func TestParseReportsProgress(t *testing.T) {
	src := &fakeSource{pages: [][]models.TextFragment{
		cashSectionPage(true),
		nil,
	}}
	obs := &recordingObserver{}

	if _, err := Parse(src, Options{Observer: obs}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(obs.progress) != 2 || obs.progress[0] != 1 || obs.progress[1] != 2 {
		t.Errorf("unexpected progress sequence: %v", obs.progress)
	}
	want := fmt.Sprintf("Processing page %d of %d", 1, 2)
	found := false
	for _, s := range obs.statuses {
		if s == want {
			found = true
		}
	}
	if !found {
		t.Errorf("missing status %q in %v", want, obs.statuses)
	}
}

func TestParseInterestSection(t *testing.T) {
	page := []models.TextFragment{
		{Text: "TRANSAKTIONSÜBERSICHT", X: 40, Y: 750, Height: 10},
		{Text: "DATUM", X: 40, Y: 700, Width: 30, Height: 10},
		{Text: "ZAHLUNGSART", X: 100, Y: 700, Width: 60, Height: 10},
		{Text: "GELDMARKTFONDS", X: 180, Y: 700, Width: 80, Height: 10},
		{Text: "STÜCK", X: 300, Y: 700, Width: 30, Height: 10},
		{Text: "KURS PRO STÜCK", X: 360, Y: 700, Width: 75, Height: 10},
		{Text: "BETRAG", X: 470, Y: 700, Width: 40, Height: 10},
		{Text: "30 Juni 2025", X: 40, Y: 650, Height: 10},
		{Text: "Ertrag", X: 100, Y: 650, Height: 10},
		{Text: "XTRACKERS II EUR", X: 180, Y: 650, Height: 10},
		{Text: "0,0421", X: 300, Y: 650, Height: 10},
		{Text: "139,40 €", X: 360, Y: 650, Height: 10},
		{Text: "5,87 €", X: 470, Y: 650, Height: 10},
		{Text: "HINWEISE ZUM KONTOAUSZUG", X: 40, Y: 150, Height: 10},
	}
	src := &fakeSource{pages: [][]models.TextFragment{page}}

	result, err := Parse(src, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Interest) != 1 {
		t.Fatalf("expected 1 interest transaction, got %d", len(result.Interest))
	}
	tx := result.Interest[0]
	if tx.Fund != "XTRACKERS II EUR" || tx.Amount != "5,87 €" {
		t.Errorf("unexpected interest transaction: %+v", tx)
	}
}
