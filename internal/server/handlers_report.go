package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jonathan/candidate-tracker/internal/ingestion"
)

var reportTypes = map[string]string{
	".pdf":  ingestion.MIMEPDF,
	".doc":  ingestion.MIMEDoc,
	".docx": ingestion.MIMEDocx,
}

// handleUploadReport attaches an internship report (PDF or Word) to a candidate
func (s *Server) handleUploadReport(w http.ResponseWriter, r *http.Request) {
	body, filename, contentType, err := readUpload(w, r, "rapportStage", MaxReportBytes)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	expected, ok := reportTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		s.failure(w, r, &ErrValidation{Field: "rapportStage", Message: "only PDF and Word documents are accepted"})
		return
	}
	if contentType != "" && contentType != expected && contentType != "application/octet-stream" {
		s.failure(w, r, &ErrValidation{Field: "rapportStage", Message: "content type " + contentType + " does not match " + filepath.Ext(filename)})
		return
	}

	c, err := s.service.UploadInternshipReport(r.Context(), r.PathValue("id"), filename, expected, body)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusOK, c)
}
