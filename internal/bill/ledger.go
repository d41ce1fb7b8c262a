package bill

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bills"

var ledgerColumns = []struct {
	name  string
	width float64
}{
	{"ProcessedAt", 20},
	{"Filename", 30},
	{"Vendor", 30},
	{"Date", 15},
	{"Total", 12},
	{"RawText", 80},
}

// ErrLedgerMissing is returned by Snapshot before the first workbook exists
var ErrLedgerMissing = errors.New("ledger not found")

// Ledger is the durable, append-only table of processed bills
type Ledger interface {
	// Ensure creates the workbook with its header row if it does not exist
	Ensure() error

	// Append adds one row for rec after the last existing row
	Append(rec *Record) error

	// Snapshot returns the current workbook bytes
	Snapshot() ([]byte, error)
}

// ExcelLedger keeps the ledger as an .xlsx workbook on disk
type ExcelLedger struct {
	path string
	mu   sync.Mutex
}

// NewExcelLedger creates a ledger backed by the workbook at path
func NewExcelLedger(path string) *ExcelLedger {
	return &ExcelLedger{path: path}
}

// Path returns the workbook location
func (l *ExcelLedger) Path() string {
	return l.path
}

// Ensure creates the workbook if it is absent; an existing file is left alone
func (l *ExcelLedger) Ensure() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ensure()
}

func (l *ExcelLedger) ensure() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking ledger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(ledgerColumns))
	for i, c := range ledgerColumns {
		header[i] = c.name
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, c.width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if err := f.SaveAs(l.path); err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}
	return nil
}

// Append writes rec as a new row, creating the workbook first if needed
func (l *ExcelLedger) Append(rec *Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensure(); err != nil {
		return err
	}

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("locating next row: %w", err)
	}
	row := []interface{}{rec.ProcessedAt, rec.Filename, rec.Vendor, rec.Date, rec.Total, cellText(rec.RawText)}
	if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("writing row: %w", err)
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}
	return nil
}

// Snapshot reads the workbook while no append is in progress
func (l *ExcelLedger) Snapshot() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrLedgerMissing
	}
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	return data, nil
}

// cellText caps s at the number of characters a worksheet cell can hold
func cellText(s string) string {
	r := []rune(s)
	if len(r) <= excelize.TotalCellChars {
		return s
	}
	return string(r[:excelize.TotalCellChars])
}
