package bill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/bills-ocr/internal/extraction"
	"github.com/zombor/bills-ocr/internal/scanning"
)

// ErrNoArchive is returned when the original upload of a record was not kept
var ErrNoArchive = errors.New("original file not archived")

var (
	supportedContentTypes = []string{"image/png", "image/jpeg", "image/jpg", "image/webp"}
	supportedExtensions   = []string{".png", ".jpg", ".jpeg", ".webp"}
)

// IDGenerator generates unique IDs for records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates time-ordered UUIDv7 IDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Upload is one file received by the HTTP surface
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
	ReadErr     error // set when the upload body could not be read
}

// Service runs uploads through OCR and extraction and records the results
type Service struct {
	engine      scanning.Engine
	ledger      Ledger
	db          DB
	storage     Storage // nil disables archiving
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(engine scanning.Engine, ledger Ledger, db DB, storage Storage) *Service {
	return NewServiceWithDeps(engine, ledger, db, storage, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(engine scanning.Engine, ledger Ledger, db DB, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		engine:      engine,
		ledger:      ledger,
		db:          db,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// ProcessBatch processes uploads in order. A failing file yields a result
// with Error set and never stops the rest of the batch.
func (s *Service) ProcessBatch(ctx context.Context, uploads []Upload) []FileResult {
	results := make([]FileResult, 0, len(uploads))
	failed := 0
	for _, u := range uploads {
		res := s.processSafely(ctx, u)
		if res.Error != "" {
			failed++
		}
		results = append(results, res)
	}
	slog.Info("Completed processing", "success", len(results)-failed, "errors", failed)
	return results
}

func (s *Service) processSafely(ctx context.Context, u Upload) (res FileResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while processing file", "filename", u.Filename, "panic", r)
			res = failedResult(u.Filename, s.timeSource.Now(), fmt.Sprintf("internal error: %v", r))
		}
	}()
	return s.ProcessFile(ctx, u)
}

// ProcessFile validates, recognizes and records a single upload
func (s *Service) ProcessFile(ctx context.Context, u Upload) FileResult {
	filename := u.Filename
	if filename == "" {
		filename = "unknown"
	}
	slog.Info("Processing file", "filename", filename)

	if u.ReadErr != nil {
		return failedResult(filename, s.timeSource.Now(), "Error reading file. Please try again.")
	}
	if !isSupported(u.ContentType, filename) {
		ct := u.ContentType
		if ct == "" {
			ct = "unknown"
		}
		msg := "Unsupported file type: " + ct
		slog.Warn("Rejected file", "filename", filename, "error", msg)
		return failedResult(filename, s.timeSource.Now(), msg)
	}
	if len(u.Data) == 0 {
		slog.Warn("Rejected file", "filename", filename, "error", "Empty file")
		return failedResult(filename, s.timeSource.Now(), "Empty file")
	}

	img, err := scanning.DecodeImage(u.Data)
	if err != nil {
		slog.Error("Failed to decode image", "filename", filename, "file_size", len(u.Data), "error", err)
		return failedResult(filename, s.timeSource.Now(), err.Error())
	}

	rawText, err := s.engine.Recognize(ctx, img)
	if err != nil {
		slog.Error("Failed to recognize text",
			"filename", filename,
			"content_type", u.ContentType,
			"file_size", len(u.Data),
			"error", err,
		)
		return failedResult(filename, s.timeSource.Now(), err.Error())
	}

	rec := NewRecord(s.idGenerator.Generate(), filename, rawText, extraction.Extract(rawText), s.timeSource.Now())
	rec.ContentType = strings.ToLower(strings.TrimSpace(u.ContentType))
	s.record(rec, u.Data)

	return FileResult{Record: *rec}
}

// record persists rec. Failures are logged; the extraction result stands.
func (s *Service) record(rec *Record, data []byte) {
	if err := s.ledger.Append(rec); err != nil {
		slog.Error("Failed to append to ledger", "filename", rec.Filename, "error", err)
	}

	if s.storage != nil {
		name, err := s.storage.Save(fmt.Sprintf("%s_%s", rec.ID, sanitizeFilename(rec.Filename)), data)
		if err != nil {
			slog.Error("Failed to archive upload", "filename", rec.Filename, "error", err)
		} else {
			rec.ArchivePath = name
		}
	}

	if err := s.db.SaveRecord(rec); err != nil {
		slog.Error("Failed to save bill history", "id", rec.ID, "error", err)
		if rec.ArchivePath != "" {
			// Nothing references the archived copy without the history entry
			if derr := s.storage.Delete(rec.ArchivePath); derr != nil {
				slog.Warn("Failed to delete archived file", "name", rec.ArchivePath, "error", derr)
			}
			rec.ArchivePath = ""
		}
	}
}

// GetRecord retrieves a processed bill by ID
func (s *Service) GetRecord(id string) (*Record, error) {
	rec, err := s.db.GetRecord(id)
	if err != nil {
		return nil, fmt.Errorf("getting bill: %w", err)
	}
	return rec, nil
}

// ListRecords returns all processed bills, newest first
func (s *Service) ListRecords() ([]*Record, error) {
	records, err := s.db.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	return records, nil
}

// GetRecordFile retrieves the archived original upload of a bill
func (s *Service) GetRecordFile(id string) ([]byte, string, error) {
	rec, err := s.db.GetRecord(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting bill: %w", err)
	}
	if s.storage == nil || rec.ArchivePath == "" {
		return nil, "", ErrNoArchive
	}

	data, err := s.storage.Get(rec.ArchivePath)
	if err != nil {
		return nil, "", fmt.Errorf("getting bill file: %w", err)
	}
	contentType := rec.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// Ledger returns the current ledger workbook
func (s *Service) Ledger() ([]byte, error) {
	return s.ledger.Snapshot()
}

// isSupported accepts an image content type, then falls back to the file name
func isSupported(contentType, filename string) bool {
	ct := strings.ToLower(contentType)
	for _, t := range supportedContentTypes {
		if strings.Contains(ct, t) {
			return true
		}
	}
	name := strings.ToLower(filename)
	for _, ext := range supportedExtensions {
		if strings.Contains(name, ext) {
			return true
		}
	}
	return false
}
