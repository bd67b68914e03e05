package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText_KeepsPageBreaks(t *testing.T) {
	input := "page one\r\n\fpage two\fQUESTIONNAIRE DE RECRUTEMENT"
	result := CleanText(input)

	assert.Equal(t, "page one\n\fpage two\fQUESTIONNAIRE DE RECRUTEMENT", result)
}

func TestCleanText_KeepsGridSpacing(t *testing.T) {
	input := "Lu        X                     \nEcrit              oui"
	result := CleanText(input)

	assert.Equal(t, "Lu        X\nEcrit              oui", result)
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	result := CleanText("Line 1\n\n\n\n\nLine 2")
	assert.Equal(t, "Line 1\n\nLine 2", result)
}

func TestCleanText_Empty(t *testing.T) {
	assert.Equal(t, "", CleanText(""))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "Soci", Preview("Société", 4))
	assert.Equal(t, "abc", Preview("abc", 10))
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7\n%âãÏÓ\n1 0 obj")))
	assert.False(t, IsPDF([]byte("plain text")))
}

func TestPDFBytesText_RejectsNonPDF(t *testing.T) {
	_, err := PDFBytesText([]byte("hello"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a PDF")
}

func TestFileText_PlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("Nom : Benali   \r\n"), 0644))

	text, err := FileText(path)
	require.NoError(t, err)
	assert.Equal(t, "Nom : Benali", text)
}

func TestFileText_Missing(t *testing.T) {
	_, err := FileText(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}
