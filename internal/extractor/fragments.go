// Package extractor reads PDF files and exposes their text as positioned
// fragments, one slice per page, for the layout-driven statement parser.
package extractor

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
)

// Document wraps an open PDF file. It implements parser.PageSource.
// Close must be called when done.
type Document struct {
	file   *os.File
	reader *pdf.Reader
}

// Open opens a PDF file for fragment extraction.
func Open(filePath string) (*Document, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %q: %w", filePath, err)
	}
	if r.NumPage() == 0 {
		f.Close()
		return nil, fmt.Errorf("PDF %q has no pages", filePath)
	}
	return &Document{file: f, reader: r}, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	return d.file.Close()
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// Page returns the positioned text fragments of page n (1-based). The
// fragment height is the font size of the run; the library exposes no
// glyph bounding box and the row clustering only needs a scale estimate.
//
// The underlying library panics on some malformed content streams, so the
// extraction is wrapped in a recover and reported as an error instead.
func (d *Document) Page(n int) (fragments []models.TextFragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			fragments = nil
			err = fmt.Errorf("failed to read page %d: %v", n, r)
		}
	}()

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d is missing", n)
	}

	content := page.Content()
	fragments = make([]models.TextFragment, 0, len(content.Text))
	for _, t := range content.Text {
		fragments = append(fragments, models.TextFragment{
			Text:   t.S,
			X:      t.X,
			Y:      t.Y,
			Width:  t.W,
			Height: t.FontSize,
		})
	}
	return fragments, nil
}

// AllPages reads every page of the document into memory. Used by the
// depot statement parser, which works on whole-document lines rather than
// streaming page by page.
func (d *Document) AllPages() ([][]models.TextFragment, error) {
	pages := make([][]models.TextFragment, 0, d.NumPages())
	for i := 1; i <= d.NumPages(); i++ {
		frags, err := d.Page(i)
		if err != nil {
			return nil, err
		}
		pages = append(pages, frags)
	}
	return pages, nil
}
