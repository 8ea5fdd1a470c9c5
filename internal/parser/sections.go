package parser

import (
	"strings"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
)

// Section markers delimit the two table sections of a statement. Start
// markers are matched on the exact trimmed label; end markers by substring,
// since they tend to be embedded in longer footer-ish lines.

var (
	cashStartLabels = []string{
		"UMSATZÜBERSICHT", "TRANSAZIONI SUL CONTO", "ACCOUNT TRANSACTIONS",
	}
	cashEndLabels = []string{
		"BARMITTELÜBERSICHT", "CASH SUMMARY", "BALANCE OVERVIEW",
	}
	interestStartLabels = []string{
		"TRANSAKTIONSÜBERSICHT", "TRANSACTION OVERVIEW", "TRANSACTIONS",
	}
	interestEndLabels = []string{
		"HINWEISE ZUM KONTOAUSZUG", "NOTES TO ACCOUNT STATEMENT", "ACCOUNT STATEMENT NOTES",
	}
)

func findStartMarker(items []models.TextFragment, labels []string) *models.TextFragment {
	for i := range items {
		t := strings.TrimSpace(items[i].Text)
		for _, label := range labels {
			if t == label {
				return &items[i]
			}
		}
	}
	return nil
}

func findEndMarker(items []models.TextFragment, labels []string) *models.TextFragment {
	for i := range items {
		t := strings.TrimSpace(items[i].Text)
		for _, label := range labels {
			if strings.Contains(t, label) {
				return &items[i]
			}
		}
	}
	return nil
}

// cropSection restricts fragments to the vertical band belonging to the
// section: at or below the start marker and strictly above the end marker.
// Either marker may be nil when the section spills over from or onto another
// page. A section that both starts and ends inside one page is cropped from
// both sides.
func cropSection(items []models.TextFragment, start, end *models.TextFragment) []models.TextFragment {
	out := items
	if start != nil {
		filtered := make([]models.TextFragment, 0, len(out))
		for _, it := range out {
			if it.Y <= start.Y {
				filtered = append(filtered, it)
			}
		}
		out = filtered
	}
	if end != nil {
		filtered := make([]models.TextFragment, 0, len(out))
		for _, it := range out {
			if it.Y > end.Y {
				filtered = append(filtered, it)
			}
		}
		out = filtered
	}
	return out
}
