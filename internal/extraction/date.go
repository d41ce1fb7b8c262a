package extraction

import (
	"regexp"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

var (
	reLabeledDate = regexp.MustCompile(`(?i)(?:DATE|INVOICE DATE|BILL DATE)[\s:]*(\d{1,2}[\-/]\d{1,2}[\-/]\d{2,4})`)
	reTimeOfDay   = regexp.MustCompile(`\d{1,2}:\d{2}`)

	reSlashYear4  = regexp.MustCompile(`(?i)(\d{1,2}[\-/]\d{1,2}[\-/]\d{4})`)
	reYearFirst   = regexp.MustCompile(`(?i)(\d{4}[\-/]\d{1,2}[\-/]\d{1,2})`)
	reSlashYear2  = regexp.MustCompile(`(?i)(\d{1,2}[\-/]\d{1,2}[\-/]\d{2})`)
	reMonthByName = regexp.MustCompile(`(?i)([A-Za-z]{3,9}\s+\d{1,2},\s*\d{4})`)
)

// numericLayouts is tried in order; month-first wins over day-first when both parse.
var numericLayouts = []string{
	"1/2/2006",
	"2/1/2006",
	"1-2-2006",
	"2-1-2006",
	"2006-1-2",
	"2006/1/2",
	"1/2/06",
	"2/1/06",
}

var textualLayouts = append(append([]string{}, numericLayouts...),
	"Jan 2, 2006",
	"January 2, 2006",
)

var dateStrategies = []Strategy{
	labeledDate,
	bareDate(reSlashYear4),
	bareDate(reYearFirst),
	bareDate(reSlashYear2),
	bareDate(reMonthByName),
}

// ExtractDate returns the document date as YYYY-MM-DD. A matched date that
// none of the known layouts understands is returned as found.
func ExtractDate(doc Document) string {
	return firstMatch(doc, dateStrategies)
}

func labeledDate(doc Document) (string, bool) {
	for _, line := range doc.Lines {
		if m := reLabeledDate.FindStringSubmatch(line); m != nil {
			return reformatDate(m[1], numericLayouts), true
		}
	}
	return "", false
}

// bareDate scans the top half of the document only. Dates near the bottom tend
// to be print timestamps rather than the invoice date.
func bareDate(re *regexp.Regexp) Strategy {
	return func(doc Document) (string, bool) {
		head := topHalf(doc.Lines)
		for _, loc := range re.FindAllStringSubmatchIndex(head, -1) {
			if followedByTime(head, loc[1]) {
				continue
			}
			return reformatDate(head[loc[2]:loc[3]], textualLayouts), true
		}
		return "", false
	}
}

func topHalf(lines []string) string {
	n := (len(lines) + 1) / 2
	if n < 1 {
		n = 1
	}
	if n > len(lines) {
		n = len(lines)
	}
	return strings.Join(lines[:n], "\n")
}

func followedByTime(s string, end int) bool {
	if end >= len(s) {
		return false
	}
	tail := []rune(s[end:])
	if len(tail) > 10 {
		tail = tail[:10]
	}
	return reTimeOfDay.MatchString(string(tail))
}

func reformatDate(raw string, layouts []string) string {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(isoDate)
		}
	}
	return raw
}
