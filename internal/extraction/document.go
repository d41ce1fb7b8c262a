package extraction

import (
	"regexp"
	"strings"
)

var reLineBreak = regexp.MustCompile(`\r\n|[\n\r\v\f\x1c\x1d\x1e\x{85}\x{2028}\x{2029}]`)

// Document is OCR output split into trimmed, non-empty lines.
// Line order follows the page top to bottom.
type Document struct {
	Text  string
	Lines []string
}

// Normalize drops blank lines and trims the rest, preserving order.
func Normalize(raw string) Document {
	var lines []string
	for _, ln := range reLineBreak.Split(raw, -1) {
		if s := strings.TrimSpace(ln); s != "" {
			lines = append(lines, s)
		}
	}
	return Document{
		Text:  strings.Join(lines, "\n"),
		Lines: lines,
	}
}

// Strategy is a single matcher. It reports false when it has nothing to offer
// so the next strategy in the chain gets a turn.
type Strategy func(doc Document) (string, bool)

// firstMatch runs strategies in order and returns the first hit.
func firstMatch(doc Document, strategies []Strategy) string {
	for _, s := range strategies {
		if v, ok := s(doc); ok {
			return v
		}
	}
	return ""
}
