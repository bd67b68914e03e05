package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ExtractionPrompt(t *testing.T) {
	prompt, err := Get(ExtractionFile, ExtractCandidate)
	require.NoError(t, err)

	assert.Contains(t, prompt, "STRICT data extraction engine")
	assert.Contains(t, prompt, "{{.FormText}}")
	assert.Contains(t, prompt, `"Votre niveau de l'anglais technique"`)
	assert.Contains(t, prompt, "If MORE THAN ONE level is marked")
}

func TestGet_InvalidFile(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	_, err := Get(ExtractionFile, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFormat(t *testing.T) {
	out, err := Format("Form: {{.FormText}} / {{.FormText}}", map[string]string{"FormText": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "Form: abc / abc", out)
}

func TestFormat_ValueContainingPlaceholderSyntax(t *testing.T) {
	out, err := Format("Form: {{.FormText}}", map[string]string{"FormText": "{{.Other}}"})
	require.NoError(t, err)
	assert.Equal(t, "Form: {{.Other}}", out)
}

func TestFormat_MissingValue(t *testing.T) {
	_, err := Format("{{.FormText}} and {{.Name}}", map[string]string{"FormText": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")
}
