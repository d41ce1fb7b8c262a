package extraction

import (
	"regexp"
	"strings"
)

var (
	reTotalLabel = regexp.MustCompile(`(?i)\b(?:TOTAL|AMOUNT DUE|GRAND TOTAL|BALANCE DUE|TOTAL DUE)\b`)
	reCurrency   = regexp.MustCompile(`(?i)\$?\s*(\d{1,3}(?:[\,\s]?\d{3})*(?:\.\d{2})?)`)

	reLabelThenNumber  = regexp.MustCompile(`(?i)(?:TOTAL|AMOUNT DUE|GRAND TOTAL|BALANCE DUE|TOTAL DUE)[\s:]*\$?\s*(\d{1,3}(?:[\,\s]?\d{3})*(?:\.\d{2})?)`)
	reLabelThenDecimal = regexp.MustCompile(`(?i)(?:TOTAL|AMOUNT DUE|GRAND TOTAL|BALANCE DUE)[^\d]*(\d+\.\d{2})`)
	reNumberThenLabel  = regexp.MustCompile(`(?i)\$?\s*(\d{1,3}(?:[\,\s]?\d{3})*(?:\.\d{2}))\s*(?:TOTAL|AMOUNT|DUE)`)
	reDecimal          = regexp.MustCompile(`\$?\s*(\d+\.\d{2})\b`)
)

var amountStrategies = []Strategy{
	labeledLineAmount,
	firstSubmatch(reLabelThenNumber),
	firstSubmatch(reLabelThenDecimal),
	firstSubmatch(reNumberThenLabel),
	lastDecimal,
}

// ExtractTotal returns the document total with thousands separators removed.
func ExtractTotal(doc Document) string {
	return firstMatch(doc, amountStrategies)
}

// labeledLineAmount looks for an amount on a total line, or on the line right
// below it when the label sits alone.
func labeledLineAmount(doc Document) (string, bool) {
	for i, line := range doc.Lines {
		if !reTotalLabel.MatchString(line) {
			continue
		}
		if m := reCurrency.FindStringSubmatch(line); m != nil {
			return cleanAmount(m[1]), true
		}
		if i+1 < len(doc.Lines) {
			if m := reCurrency.FindStringSubmatch(doc.Lines[i+1]); m != nil {
				return cleanAmount(m[1]), true
			}
		}
	}
	return "", false
}

func firstSubmatch(re *regexp.Regexp) Strategy {
	return func(doc Document) (string, bool) {
		if m := re.FindStringSubmatch(doc.Text); m != nil {
			return cleanAmount(m[1]), true
		}
		return "", false
	}
}

// lastDecimal picks the final cents-bearing number; totals usually come after
// the line items.
func lastDecimal(doc Document) (string, bool) {
	all := reDecimal.FindAllStringSubmatch(doc.Text, -1)
	if len(all) == 0 {
		return "", false
	}
	return cleanAmount(all[len(all)-1][1]), true
}

func cleanAmount(v string) string {
	return strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
}
