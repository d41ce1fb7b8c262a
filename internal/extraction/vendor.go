package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxVendorLen = 128

var (
	reNotLetterOrSpace = regexp.MustCompile(`[^A-Za-z\s]`)
	reNotLetter        = regexp.MustCompile(`[^A-Za-z]`)
	reHeaderWord       = regexp.MustCompile(`(?i)\b(?:RECEIPT|INVOICE|BILL|DATE|TOTAL|AMOUNT|ITEM|QTY|PRICE)\b`)
	rePhone            = regexp.MustCompile(`\d{3}[-.]?\d{3}[-.]?\d{4}|\(\d{3}\)`)
	reUpperRun         = regexp.MustCompile(`[A-Z]{2,}`)
	reLeadingNonLetter = regexp.MustCompile(`^[^A-Za-z]+`)
	reLeadingNonAlnum  = regexp.MustCompile(`^[^A-Za-z0-9]+`)
	reVendorJunk       = regexp.MustCompile(`[^A-Za-z0-9\s&\-\.]+`)
)

var vendorStrategies = []Strategy{
	headerVendor,
	firstLineVendor,
}

// ExtractVendor guesses the merchant from the top of the document.
func ExtractVendor(doc Document) string {
	return firstMatch(doc, vendorStrategies)
}

func headerVendor(doc Document) (string, bool) {
	for _, line := range head(doc.Lines, 10) {
		s := strings.TrimSpace(line)
		n := utf8.RuneCountInString(s)
		if n < 3 {
			continue
		}
		// mostly digits or symbols
		if float64(len(reNotLetterOrSpace.ReplaceAllString(s, ""))) < float64(n)*0.5 {
			continue
		}
		if reHeaderWord.MatchString(s) || rePhone.MatchString(s) {
			continue
		}
		if reUpperRun.MatchString(s) || len(reNotLetter.ReplaceAllString(s, "")) >= 3 {
			if v := cleanVendor(s); utf8.RuneCountInString(v) >= 3 {
				return truncateRunes(v, maxVendorLen), true
			}
		}
	}
	return "", false
}

// firstLineVendor is the last resort: the first reasonably long line, with only
// leading punctuation removed.
func firstLineVendor(doc Document) (string, bool) {
	for _, line := range head(doc.Lines, 5) {
		s := strings.TrimSpace(line)
		if utf8.RuneCountInString(s) >= 3 {
			s = reLeadingNonAlnum.ReplaceAllString(s, "")
			return truncateRunes(s, maxVendorLen), true
		}
	}
	return "", false
}

func cleanVendor(s string) string {
	s = reLeadingNonLetter.ReplaceAllString(s, "")
	return reVendorJunk.ReplaceAllString(s, "")
}

func head(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
