package extraction

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Item is one priced line of a receipt.
type Item struct {
	Name  string `json:"name"`
	Price string `json:"price"` // two decimals, no currency symbol
}

// LineFilter reports whether a line should be dropped before price matching.
type LineFilter func(line string) bool

func matches(re *regexp.Regexp) LineFilter {
	return re.MatchString
}

// summaryFilters drop totals, headers and dates.
var summaryFilters = []LineFilter{
	matches(regexp.MustCompile(`(?i)^(?:SUB\s*TOTAL|TOTAL|SALES\s*TAX|TAX|AMOUNT\s*DUE|GRAND\s*TOTAL|BALANCE\s*DUE)`)),
	matches(regexp.MustCompile(`(?i)^(?:DATE|INVOICE|RECEIPT|BILL|THANK\s*YOU)`)),
	matches(regexp.MustCompile(`^\d{1,2}[\-/]\d{1,2}[\-/]\d{2,4}`)),
	matches(regexp.MustCompile(`^[A-Z]{2,}\s+\d{5}`)),
}

// nonItemFilters drop addresses, phone numbers and transaction codes.
var nonItemFilters = []LineFilter{
	matches(regexp.MustCompile(`(?i)^\d+\s+[A-Z][a-z]+\s+(?:Drive|Street|Avenue|Road|Lane|Blvd|Ave|St|Rd)`)),
	matches(regexp.MustCompile(`^[A-Z]{2,}\s+\d{5}(?:-\d{4})?$`)),
	matches(regexp.MustCompile(`^\d{3,}\s+\d{3}-\d+`)),
	matches(regexp.MustCompile(`^[A-Z0-9]{8,}$`)),
	matches(regexp.MustCompile(`(?i)Auth.*Trace.*Number`)),
}

// descriptionFilters spot counts, sizes and codes that run into the price.
var descriptionFilters = []LineFilter{
	matches(regexp.MustCompile(`\d+CT\s*$`)),
	matches(regexp.MustCompile(`\d+PK\s*$`)),
	matches(regexp.MustCompile(`(?i)\d+\s*SQ\s*FT`)),
	matches(regexp.MustCompile(`\d+-\d+`)),
	matches(regexp.MustCompile(`(?i)[A-Z]\d+[A-Z]\d+`)),
	matches(regexp.MustCompile(`\d{4,}`)),
}

var (
	// OCR sometimes adds a third decimal.
	reTrailingPrice = regexp.MustCompile(`\$\s*(\d+\.\d{2,3})\s*$|(\d+\.\d{2,3})\s*$`)
	reNameNoise     = regexp.MustCompile(`[\\|{}]`)
	reSpaces        = regexp.MustCompile(`\s+`)
	reTrailingQty   = regexp.MustCompile(`\s+\d{1,2}(?:[.,]\d+)?\s*$`)
	reLetter        = regexp.MustCompile(`[A-Za-z]`)
)

const (
	maxItemPrice   = 10000
	descriptionWin = 10
)

// ExtractItems returns the priced lines of doc in page order. Lines caught by
// a filter are skipped, as are prices glued to the preceding word.
func ExtractItems(doc Document) []Item {
	items := []Item{}
	for _, line := range doc.Lines {
		if anyFilter(summaryFilters, line) || anyFilter(nonItemFilters, line) {
			continue
		}
		if item, ok := parseItemLine(line); ok {
			items = append(items, item)
		}
	}
	return items
}

func anyFilter(filters []LineFilter, line string) bool {
	for _, f := range filters {
		if f(line) {
			return true
		}
	}
	return false
}

func parseItemLine(line string) (Item, bool) {
	m := reTrailingPrice.FindStringSubmatchIndex(line)
	if m == nil {
		return Item{}, false
	}
	start := m[0]
	var raw string
	if m[2] >= 0 {
		raw = line[m[2]:m[3]]
	} else {
		raw = line[m[4]:m[5]]
	}

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price <= 0 || price >= maxItemPrice {
		return Item{}, false
	}

	before := line[:start]
	prev, _ := utf8.DecodeLastRuneInString(before) // RuneError when empty
	if anyFilter(descriptionFilters, lastRunes(before, descriptionWin)) && !isPriceSeparator(prev) {
		return Item{}, false
	}
	if isAlnum(prev) {
		return Item{}, false
	}

	name := strings.TrimSpace(reSpaces.ReplaceAllString(reNameNoise.ReplaceAllString(before, " "), " "))
	name = strings.TrimSpace(reTrailingQty.ReplaceAllString(name, ""))
	if utf8.RuneCountInString(name) <= 3 || !reLetter.MatchString(name) {
		return Item{}, false
	}

	return Item{Name: name, Price: formatCents(price)}, true
}

// formatCents rounds to two decimals with ties going up.
func formatCents(v float64) string {
	f := new(big.Float).SetPrec(256).SetFloat64(v)
	f.Mul(f, big.NewFloat(100))
	f.Add(f, big.NewFloat(0.5))
	cents, _ := f.Int64()
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[len(r)-n:]
	}
	return string(r)
}

func isPriceSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '|', '\\', '-':
		return true
	}
	return false
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
