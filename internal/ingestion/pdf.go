package ingestion

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
)

// MIME types accepted by the upload endpoints.
const (
	MIMEPDF  = "application/pdf"
	MIMEDoc  = "application/msword"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// IsPDF sniffs the content rather than trusting the declared type.
func IsPDF(data []byte) bool {
	return http.DetectContentType(data) == MIMEPDF
}

// PDFPages returns the plain text of every page, in page order.
func PDFPages(data []byte) (pages []string, err error) {
	// The reader panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	n := r.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// PDFBytesText converts an in-memory PDF to cleaned text, pages separated by PageBreak.
// Documents the page reader cannot decode go through pdftotext (via docconv),
// which yields the text without page boundaries.
func PDFBytesText(data []byte) (string, error) {
	if !IsPDF(data) {
		return "", fmt.Errorf("content is not a PDF document")
	}

	pages, err := PDFPages(data)
	if err == nil && strings.TrimSpace(strings.Join(pages, "")) != "" {
		return CleanText(strings.Join(pages, PageBreak)), nil
	}

	text, _, convErr := docconv.ConvertPDF(bytes.NewReader(data))
	if convErr != nil {
		if err != nil {
			return "", fmt.Errorf("failed to convert PDF: %w (page reader: %v)", convErr, err)
		}
		return "", fmt.Errorf("failed to convert PDF: %w", convErr)
	}
	return CleanText(text), nil
}

// WordText converts a .doc or .docx document to cleaned text.
// .doc conversion requires the wv tools, which docconv shells out to.
func WordText(data []byte, ext string) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(ext) {
	case ".docx":
		text, _, err = docconv.ConvertDocx(bytes.NewReader(data))
	case ".doc":
		text, _, err = docconv.ConvertDoc(bytes.NewReader(data))
	default:
		return "", fmt.Errorf("unsupported Word extension %q", ext)
	}
	if err != nil {
		return "", fmt.Errorf("failed to convert Word document: %w", err)
	}
	return CleanText(text), nil
}

// FileText reads a local file and converts it by content (PDF) or extension (Word).
// Anything else is treated as plain text.
func FileText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	if IsPDF(data) {
		return PDFBytesText(data)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".doc", ".docx":
		return WordText(data, ext)
	}
	return CleanText(string(data)), nil
}
