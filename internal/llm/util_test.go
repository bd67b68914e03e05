package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `  {"key": "value"}  `,
			expected: `{"key": "value"}`,
		},
		{
			name:     "fence after preamble",
			input:    "Voici le résultat:\n```json\n{\"Nom\": \"-\"}\n```\nMerci",
			expected: "Voici le résultat:\n\n{\"Nom\": \"-\"}\n\nMerci",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{
			name:     "preamble and trailing text",
			input:    "Here is the JSON: {\"a\": 1} hope this helps",
			expected: `{"a": 1}`,
			ok:       true,
		},
		{
			name:     "nested objects keep outer span",
			input:    `{"outer": {"inner": "v"}}`,
			expected: `{"outer": {"inner": "v"}}`,
			ok:       true,
		},
		{
			name:  "no braces",
			input: "I could not find the form.",
			ok:    false,
		},
		{
			name:  "closing before opening",
			input: "} nothing {",
			ok:    false,
		},
		{
			name:  "only opening brace",
			input: `{"truncated": "val`,
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
