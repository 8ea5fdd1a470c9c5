package parser

import (
	"fmt"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
)

// DefaultFooterBand is the height in points of the bottom-of-page band whose
// fragments are discarded before any section or row detection. It suppresses
// repeating footer boilerplate. Calibrate per statement template.
const DefaultFooterBand float64 = 120

// Observer receives progress reporting from a parse run. Implementations
// must not block; the parser performs no I/O of its own.
type Observer interface {
	OnStatus(msg string)
	OnProgress(current, total int)
}

// PageSource supplies positioned text fragments page by page. Page numbers
// are 1-based. The extractor package implements this over a PDF file.
type PageSource interface {
	NumPages() int
	Page(n int) ([]models.TextFragment, error)
}

// Options configures a statement parse run. All fields are optional.
type Options struct {
	Observer   Observer
	FooterBand float64 // points from the page bottom to drop; 0 means DefaultFooterBand
}

type noopObserver struct{}

func (noopObserver) OnStatus(string)     {}
func (noopObserver) OnProgress(int, int) {}

// Parser carries the cross-page state of one statement parse run: the column
// boundaries found so far and whether each section is currently open. A
// table that continues on a later page without repeating its header row is
// parsed with the boundaries persisted from the page that had one.
//
// Each run needs its own Parser; two concurrent parses must not share state.
type Parser struct {
	footerBand float64

	cashBounds      *models.CashColumns
	interestBounds  *models.InterestColumns
	parsingCash     bool
	parsingInterest bool

	cash     []models.CashTransaction
	interest []models.InterestTransaction
}

// NewParser returns a parser with fresh cross-page state.
func NewParser(opts Options) *Parser {
	band := opts.FooterBand
	if band == 0 {
		band = DefaultFooterBand
	}
	return &Parser{footerBand: band}
}

// ProcessPage scans one page's fragments for both sections and accumulates
// any rows found. Pages must be fed strictly in order: boundaries and
// section flags carried from earlier pages decide how this page is read.
func (p *Parser) ProcessPage(fragments []models.TextFragment) {
	items := make([]models.TextFragment, 0, len(fragments))
	for _, it := range fragments {
		if it.Y > p.footerBand {
			items = append(items, it)
		}
	}

	cashStart := findStartMarker(items, cashStartLabels)
	cashEnd := findEndMarker(items, cashEndLabels)
	if p.parsingCash || cashStart != nil {
		cashItems := cropSection(items, cashStart, cashEnd)
		if h := findCashHeaders(cashItems); h != nil {
			b := cashColumnBounds(h)
			p.cashBounds = &b
		}
		if p.cashBounds != nil {
			p.cash = append(p.cash, extractCashRows(cashItems, *p.cashBounds)...)
		}
	}
	// The end marker always closes the section, even if a start marker
	// appeared on the same page.
	switch {
	case cashEnd != nil:
		p.parsingCash = false
	case p.parsingCash || cashStart != nil:
		p.parsingCash = true
	}

	interestStart := findStartMarker(items, interestStartLabels)
	interestEnd := findEndMarker(items, interestEndLabels)
	if p.parsingInterest || interestStart != nil {
		interestItems := cropSection(items, interestStart, interestEnd)
		if h := findInterestHeaders(interestItems); h != nil {
			b := interestColumnBounds(h)
			p.interestBounds = &b
		}
		if p.interestBounds != nil {
			p.interest = append(p.interest, extractInterestRows(interestItems, *p.interestBounds)...)
		}
	}
	switch {
	case interestEnd != nil:
		p.parsingInterest = false
	case p.parsingInterest || interestStart != nil:
		p.parsingInterest = true
	}
}

// Result returns the rows accumulated so far, in page order. The slices are
// never nil so that they marshal to JSON arrays.
func (p *Parser) Result() *models.StatementResult {
	res := &models.StatementResult{Cash: p.cash, Interest: p.interest}
	if res.Cash == nil {
		res.Cash = []models.CashTransaction{}
	}
	if res.Interest == nil {
		res.Interest = []models.InterestTransaction{}
	}
	return res
}

// Parse runs a full statement parse over all pages of src, strictly in
// order. A page-load failure aborts the run with no partial result; all
// parse-level oddities (missing headers, garbled cells) are absorbed per the
// usual rules instead of failing.
func Parse(src PageSource, opts Options) (*models.StatementResult, error) {
	obs := opts.Observer
	if obs == nil {
		obs = noopObserver{}
	}

	p := NewParser(opts)
	total := src.NumPages()
	obs.OnStatus("Parsing PDF...")

	for pageNum := 1; pageNum <= total; pageNum++ {
		obs.OnStatus(fmt.Sprintf("Processing page %d of %d", pageNum, total))
		fragments, err := src.Page(pageNum)
		if err != nil {
			return nil, fmt.Errorf("loading page %d: %w", pageNum, err)
		}
		p.ProcessPage(fragments)
		obs.OnProgress(pageNum, total)
	}

	return p.Result(), nil
}
