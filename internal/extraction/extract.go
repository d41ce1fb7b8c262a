// Package extraction turns raw OCR text from receipts and invoices into a
// vendor, a date and a total using line-oriented heuristics.
//
// Every function in this package is pure. Missing fields come back as empty
// strings; nothing here returns an error.
package extraction

// Result holds the fields pulled out of one document.
type Result struct {
	Vendor string `json:"vendor"`
	Date   string `json:"date"`  // YYYY-MM-DD, or the raw match when unparsable
	Total  string `json:"total"` // decimal string, no currency symbol
}

// Extract normalizes raw OCR text and runs all three field extractors on it.
func Extract(raw string) Result {
	return ExtractDocument(Normalize(raw))
}

// ExtractDocument runs the field extractors on an already normalized document.
func ExtractDocument(doc Document) Result {
	return Result{
		Vendor: ExtractVendor(doc),
		Date:   ExtractDate(doc),
		Total:  ExtractTotal(doc),
	}
}
