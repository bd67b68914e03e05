package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jonathan/candidate-tracker/internal/ingestion"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// ExtractResponse is the data returned by a successful extraction.
type ExtractResponse struct {
	Fields     *types.ExtractedFields `json:"fields"`
	CVFileName string                 `json:"cvFileName,omitempty"`
}

// readUpload returns the named multipart file, rejecting bodies over limit.
func readUpload(w http.ResponseWriter, r *http.Request, field string, limit int64) ([]byte, string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", "", &ErrValidation{Field: field, Message: fmt.Sprintf("file exceeds %d MiB", limit>>20)}
		}
		return nil, "", "", &ErrValidation{Field: field, Message: "invalid multipart body"}
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", "", &ErrValidation{Field: field, Message: "file is required"}
	}
	defer file.Close()

	if header.Size > limit {
		return nil, "", "", &ErrValidation{Field: field, Message: fmt.Sprintf("file exceeds %d MiB", limit>>20)}
	}
	body, err := io.ReadAll(file)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to read upload: %w", err)
	}
	return body, header.Filename, header.Header.Get("Content-Type"), nil
}

// handleExtract archives an uploaded CV and extracts its recruitment form fields
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "extraction is not configured")
		return
	}

	body, filename, _, err := readUpload(w, r, "cv", MaxCVBytes)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if !ingestion.IsPDF(body) {
		s.failure(w, r, &ErrValidation{Field: "cv", Message: "only PDF files are accepted"})
		return
	}

	resp := ExtractResponse{}
	if s.cvs != nil {
		key, err := s.cvs.StoreCV(r.Context(), filename, body)
		if err != nil {
			s.failure(w, r, err)
			return
		}
		resp.CVFileName = key
	}

	text, err := s.pdfText(body)
	if err != nil {
		s.failure(w, r, &ErrValidation{Field: "cv", Message: "unreadable PDF: " + err.Error()})
		return
	}
	s.logger.Debug("cv text extracted",
		slog.String("file", filename),
		slog.Int("chars", len(text)),
		slog.String("preview", ingestion.Preview(text, 120)))

	fields, err := s.extractor.Extract(r.Context(), text)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	resp.Fields = fields
	s.success(w, http.StatusOK, resp)
}

// handleModelHealth reports whether the text-generation endpoint is reachable
func (s *Server) handleModelHealth(w http.ResponseWriter, r *http.Request) {
	if s.model == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "extraction is not configured")
		return
	}

	health, err := s.model.Health(r.Context())
	if err != nil {
		s.logger.Warn("model health check failed", slog.Any("error", err))
		s.jsonResponse(w, http.StatusServiceUnavailable, envelope{Success: false, Data: health, Error: err.Error()})
		return
	}
	s.success(w, http.StatusOK, health)
}
