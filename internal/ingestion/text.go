// Package ingestion turns uploaded documents into plain text for extraction.
package ingestion

import (
	"regexp"
	"strings"
)

// PageBreak separates pages in extracted PDF text.
const PageBreak = "\f"

var excessiveBlankLines = regexp.MustCompile(`\n\n\n+`)

// CleanText normalizes line endings and blank lines while keeping page breaks
// and in-line spacing, which carries the column layout of form grids.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	result := strings.Join(lines, "\n")
	result = excessiveBlankLines.ReplaceAllString(result, "\n\n")

	return strings.Trim(result, " \t\n")
}

// Preview returns at most n runes of text.
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
