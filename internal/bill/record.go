package bill

import (
	"time"

	"github.com/zombor/bills-ocr/internal/extraction"
)

// timestampLayout is the ProcessedAt format, UTC with second precision
const timestampLayout = "2006-01-02T15:04:05Z"

// Record is one processed bill. It is created once per file and never mutated.
type Record struct {
	ID          string `json:"id,omitempty"`
	Filename    string `json:"filename"`
	Vendor      string `json:"vendor"`
	Date        string `json:"date"`
	Total       string `json:"total"`
	RawText     string `json:"raw_text"`
	ProcessedAt string `json:"processed_at"`
	ContentType string `json:"content_type,omitempty"`
	ArchivePath string `json:"archive_path,omitempty"` // set when the original upload was archived

	Items []extraction.Item `json:"items,omitempty"`
}

// FileResult is one entry of a batch response
type FileResult struct {
	Record
	Error string `json:"error,omitempty"`
}

// NewRecord combines extraction output with the upload's metadata
func NewRecord(id, filename, rawText string, result extraction.Result, now time.Time) *Record {
	if filename == "" {
		filename = "unknown"
	}
	return &Record{
		ID:          id,
		Filename:    filename,
		Vendor:      result.Vendor,
		Date:        result.Date,
		Total:       result.Total,
		RawText:     rawText,
		ProcessedAt: formatTimestamp(now),
		Items:       extraction.ExtractItems(extraction.Normalize(rawText)),
	}
}

func failedResult(filename string, now time.Time, msg string) FileResult {
	if filename == "" {
		filename = "unknown"
	}
	return FileResult{
		Record: Record{Filename: filename, ProcessedAt: formatTimestamp(now)},
		Error:  msg,
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(timestampLayout)
}
