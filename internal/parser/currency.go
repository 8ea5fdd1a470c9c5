package parser

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ParseCurrency converts a German/Italian formatted money string like
// "1.234,56 €" to a float64. The dot is a thousands separator, the comma the
// decimal separator. Unparsable or empty input yields 0; statements are
// OCR-adjacent and downstream sanity checks have to tolerate garbled cells.
func ParseCurrency(s string) float64 {
	v, _ := ParseCurrencyStrict(s)
	return v
}

// ParseCurrencyStrict reports whether the input actually contained a number.
// The sanity checker uses this to skip rows whose balance cell is unreadable
// instead of comparing against a bogus zero.
func ParseCurrencyStrict(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '€' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// monthsByName maps lowercased German and Italian month names (full and
// abbreviated, without trailing period) to their time.Month.
var monthsByName = map[string]time.Month{
	// German
	"jan": time.January, "januar": time.January,
	"feb": time.February, "februar": time.February,
	"mär": time.March, "märz": time.March, "mrz": time.March, "marz": time.March,
	"apr": time.April, "april": time.April,
	"mai": time.May,
	"jun": time.June, "juni": time.June,
	"jul": time.July, "juli": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"okt": time.October, "oktober": time.October,
	"nov": time.November, "november": time.November,
	"dez": time.December, "dezember": time.December,
	// Italian
	"gen": time.January, "gennaio": time.January,
	"febb": time.February, "febbraio": time.February,
	"mar": time.March, "marzo": time.March,
	"aprile": time.April,
	"mag": time.May, "maggio": time.May,
	"giu": time.June, "giugno": time.June,
	"lug": time.July, "luglio": time.July,
	"ago": time.August, "agosto": time.August,
	"set": time.September, "sett": time.September, "settembre": time.September,
	"ott": time.October, "ottobre": time.October,
	"novembre": time.November,
	"dic":      time.December, "dicembre": time.December,
}

// ParseLocalizedDate parses statement dates of the form
// "<day> <month-name>[.] <year>", e.g. "04 März 2021" or "3 Sett. 2021".
// The month name lookup is case-insensitive and covers German and Italian.
// ok is false on any structural mismatch; callers must treat that as
// "unparseable", not as an error.
func ParseLocalizedDate(s string) (time.Time, bool) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) < 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, false
	}

	name := strings.ToLower(strings.TrimSuffix(parts[1], "."))
	month, found := monthsByName[name]
	if !found {
		return time.Time{}, false
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// collapseWhitespace trims a field and squeezes internal runs of whitespace
// into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
