package trading

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
)

// SecuritiesParser reads depot (custody account) statements listing the
// current holdings, used to enrich trading positions with market values.
//
// Depot statements are line-oriented rather than strictly tabular: a
// position starts with a quantity line ("1,2345 Stk. VANGUARD ... 95,31
// 15.09.2025 117,82") and is followed by continuation lines carrying the
// ISIN, the custody country and extra name fragments.
type SecuritiesParser struct {
	// FallbackPriceDate is used when a position's tail matches without an
	// explicit price date. Statements print the valuation date in their
	// title block only, so this must be supplied per document; the default
	// matches the template the parser was calibrated against.
	FallbackPriceDate string
}

// NewSecuritiesParser returns a parser with the default fallback price date.
func NewSecuritiesParser() *SecuritiesParser {
	return &SecuritiesParser{FallbackPriceDate: "15.09.2025"}
}

var (
	quantityLine = regexp.MustCompile(`(?i)^\s*([\d.]+,\d{2,6}|\d+)\s*(Stk\.?|Nominale)\b`)
	// price + total, without an explicit price date
	tailPlain = regexp.MustCompile(`(\d{1,3}(?:[.,]\d{3})*,\d{2})\s+(\d{1,3}(?:[.,]\d{3})*,\d{2})\s*$`)
	// price + date + total
	tailWithDate = regexp.MustCompile(`(\d{1,3}(?:[.,]\d{3})*,\d{2})\s*(\d{2}\.\d{2}\.\d{4})\s*(\d{1,3}(?:[.,]\d{3})*,\d{2})\s*$`)
	isinLine     = regexp.MustCompile(`\bISIN:\s*([A-Z]{2}[A-Z0-9]{10})\b`)
	custodyLine  = regexp.MustCompile(`(?i)^Lagerland\s*:`)
	skipLine     = regexp.MustCompile(`(?i)(POSITIONEN|STK\.?\s*/\s*NOMINALE|KURS PRO ST[ÜU]CK|KURSWERT IN EUR|DEPOTAUSZUG|SEITE)`)
)

// Parse extracts holdings from the positioned fragments of a depot
// statement. Pages are flattened into y-grouped text lines first; position
// records are then assembled by walking the lines and attaching
// continuation data to the most recent record.
func (sp *SecuritiesParser) Parse(pages [][]models.TextFragment) []models.Security {
	var records []models.Security
	// quantity and price can legitimately be absent; track which records
	// actually carried both so the derived value is only computed for those.
	var haveNumbers []bool

	for _, page := range pages {
		for _, line := range groupLines(page) {
			if m := quantityLine.FindStringSubmatch(line); m != nil {
				qty, qtyOK := toNumberEU(m[1])
				unit := m[2]
				if strings.HasPrefix(strings.ToLower(unit), "stk") {
					unit = "Stk"
				}

				namePart := line
				var price, total float64
				var priceOK, totalOK bool
				priceDate := ""

				if t := tailWithDate.FindStringSubmatchIndex(line); t != nil {
					price, priceOK = toNumberEU(line[t[2]:t[3]])
					priceDate = line[t[4]:t[5]]
					total, totalOK = toNumberEU(line[t[6]:t[7]])
					namePart = strings.TrimSpace(line[:t[0]])
				} else if t := tailPlain.FindStringSubmatchIndex(line); t != nil {
					price, priceOK = toNumberEU(line[t[2]:t[3]])
					priceDate = sp.FallbackPriceDate
					total, totalOK = toNumberEU(line[t[4]:t[5]])
					namePart = strings.TrimSpace(line[:t[0]])
				}

				namePart = quantityLine.ReplaceAllString(namePart, "")
				namePart = strings.TrimLeft(namePart, ". \t")

				rec := models.Security{
					Quantity:     qty,
					Unit:         unit,
					Name:         strings.TrimSpace(namePart),
					PriceDate:    priceDate,
					PricePerUnit: price,
				}
				if totalOK {
					rec.MarketValueEUR = total
				}
				records = append(records, rec)
				haveNumbers = append(haveNumbers, qtyOK && priceOK)
				continue
			}

			if len(records) == 0 {
				continue
			}
			last := &records[len(records)-1]

			if m := isinLine.FindStringSubmatch(line); m != nil {
				last.ISIN = m[1]
				continue
			}
			if custodyLine.MatchString(line) {
				if _, rest, found := strings.Cut(line, ":"); found {
					last.CustodyCountry = stripAccents(strings.TrimSpace(rest))
				}
				continue
			}
			// Short descriptor lines continue the security name.
			if !skipLine.MatchString(line) && utf8.RuneCountInString(line) <= 80 && !isinLine.MatchString(line) {
				if last.NameExtra != "" {
					last.NameExtra += " "
				}
				last.NameExtra += strings.TrimSpace(line)
			}
		}
	}

	for i := range records {
		if haveNumbers[i] {
			records[i].ComputedValue = math.Round(records[i].Quantity*records[i].PricePerUnit*100) / 100
		}
	}
	return records
}

// groupLines flattens one page's fragments into text lines by rounding y to
// whole points and joining each line's fragments left to right. Lines come
// out in reading order, top of the page first: page coordinates grow upward,
// and the continuation lines of a position sit below its quantity line.
func groupLines(page []models.TextFragment) []string {
	byY := make(map[int][]models.TextFragment)
	for _, it := range page {
		y := int(math.Round(it.Y))
		byY[y] = append(byY[y], it)
	}

	ys := make([]int, 0, len(byY))
	for y := range byY {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	lines := make([]string, 0, len(ys))
	for _, y := range ys {
		row := byY[y]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		parts := make([]string, len(row))
		for i, it := range row {
			parts[i] = it.Text
		}
		lines = append(lines, strings.TrimSpace(strings.Join(parts, " ")))
	}
	return lines
}

// toNumberEU parses a German-formatted number ("1.234,56") into a float.
func toNumberEU(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var accentFolder = strings.NewReplacer(
	"ä", "a", "ö", "o", "ü", "u", "Ä", "A", "Ö", "O", "Ü", "U",
	"é", "e", "è", "e", "à", "a", "ì", "i", "ò", "o", "ù", "u",
	"ß", "ss",
)

func stripAccents(s string) string {
	return accentFolder.Replace(s)
}
