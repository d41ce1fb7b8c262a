package bill

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
)

const (
	maxUploadSize = int64(50 << 20) // high-resolution phone photos
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// writeJSONError writes {"error": message} with CORS headers set
func writeJSONError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleStaticJS serves the JavaScript file
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}

// extractResponse is the body of a successful POST /api/extract
type extractResponse struct {
	Results   []FileResult `json:"results"`
	ExcelPath string       `json:"excel_path"`
}

// handleExtract runs every uploaded file through the pipeline
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, "Upload is too large. Maximum size is 50MB.", http.StatusRequestEntityTooLarge)
			return
		}
		slog.Warn("Error parsing multipart form", "error", err)
		writeJSONError(w, "No files uploaded", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSONError(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	slog.Info("Processing upload", "files", len(headers))
	results := s.service.ProcessBatch(r.Context(), uploadsFromParts(headers))

	setCORSHeaders(w)
	writeJSON(w, extractResponse{Results: results, ExcelPath: "/api/download"})
}

// uploadsFromParts reads every file part. A part that cannot be read becomes
// an upload carrying ReadErr so it fails alone.
func uploadsFromParts(headers []*multipart.FileHeader) []Upload {
	uploads := make([]Upload, 0, len(headers))
	for _, h := range headers {
		data, err := readPart(h)
		if err != nil {
			slog.Error("Error reading file data", "error", err, "filename", h.Filename)
		}
		uploads = append(uploads, Upload{
			Filename:    h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Data:        data,
			ReadErr:     err,
		})
	}
	return uploads
}

func readPart(h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// handleDownload returns the ledger workbook
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.Ledger()
	if errors.Is(err, ErrLedgerMissing) {
		writeJSONError(w, "Excel not found yet", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Error reading ledger", "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", `attachment; filename="bills.xlsx"`)
	w.Write(data)
}

// handleListBills returns the processing history
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListRecords()
	if err != nil {
		slog.Error("Error listing bills", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setCORSHeaders(w)
	writeJSON(w, records)
}

// handleGetBill returns a single processed bill
func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Bill ID required", http.StatusBadRequest)
		return
	}
	rec, err := s.service.GetRecord(id)
	if errors.Is(err, ErrNotFound) {
		corsError(w, "Bill not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Error getting bill", "id", id, "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setCORSHeaders(w)
	writeJSON(w, rec)
}

// handleGetBillFile returns the archived upload for a bill
func (s *Server) handleGetBillFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Bill ID required", http.StatusBadRequest)
		return
	}
	data, contentType, err := s.service.GetRecordFile(id)
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
