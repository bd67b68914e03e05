package ingestion

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/candidate-tracker/internal/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal uncompressed PDF with one Helvetica text block per page.
func buildPDF(t *testing.T, pages ...[]string) []byte {
	t.Helper()

	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, lines := range pages {
		var content strings.Builder
		content.WriteString("BT /F1 12 Tf 14 TL 72 720 Td")
		for _, line := range lines {
			fmt.Fprintf(&content, " (%s) Tj T*", line)
		}
		content.WriteString(" ET")

		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func formCV(t *testing.T) []byte {
	return buildPDF(t,
		[]string{"Curriculum Vitae", "Sara Benali"},
		[]string{"Experience", "Technicienne chez Acme"},
		[]string{"QUESTIONNAIRE DE RECRUTEMENT", "Nom: Benali"},
		[]string{"Annexe", "References sur demande"},
	)
}

func TestPDFPages(t *testing.T) {
	pages, err := PDFPages(formCV(t))
	require.NoError(t, err)
	require.Len(t, pages, 4)

	assert.Contains(t, pages[0], "Sara Benali")
	assert.Contains(t, pages[2], "QUESTIONNAIRE DE RECRUTEMENT")
	assert.NotContains(t, pages[2], "Acme")
}

func TestPDFBytesText_KeepsPageBreaks(t *testing.T) {
	text, err := PDFBytesText(formCV(t))
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(text, PageBreak))
}

func TestPDFBytesText_FormPageReachesLocateForm(t *testing.T) {
	text, err := PDFBytesText(formCV(t))
	require.NoError(t, err)

	form, err := extraction.LocateForm(text)
	require.NoError(t, err)

	assert.Contains(t, form, "QUESTIONNAIRE DE RECRUTEMENT")
	assert.Contains(t, form, "Nom: Benali")
	assert.NotContains(t, form, "References sur demande", "text after the form page must not reach the model")
	assert.NotContains(t, form, "Acme")
}

func TestFileText_PDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(path, formCV(t), 0644))

	text, err := FileText(path)
	require.NoError(t, err)
	assert.Contains(t, text, PageBreak+"QUESTIONNAIRE DE RECRUTEMENT")
}

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	ct, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`))
	require.NoError(t, err)

	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, "<w:p><w:r><w:t>%s</w:t></w:r></w:p>", p)
	}
	doc, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = fmt.Fprintf(doc, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>%s</w:body></w:document>`, body.String())
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFileText_Docx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.docx")
	require.NoError(t, os.WriteFile(path, buildDocx(t, "QUESTIONNAIRE DE RECRUTEMENT", "Nom: Benali"), 0644))

	text, err := FileText(path)
	require.NoError(t, err)

	assert.Contains(t, text, "QUESTIONNAIRE DE RECRUTEMENT")
	assert.Contains(t, text, "Nom: Benali")
	assert.NotContains(t, text, "word/document.xml")

	_, err = extraction.LocateForm(text)
	assert.NoError(t, err)
}

func TestWordText_UnknownExtension(t *testing.T) {
	_, err := WordText([]byte("x"), ".odt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}
