package llm

import "strings"

// CleanJSONBlock removes markdown code fences from a model response.
// Fences are removed wherever they appear since models sometimes open a block mid-answer.
func CleanJSONBlock(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// ExtractJSONObject returns the substring from the first '{' to the last '}'.
// The boolean is false when the text holds no such span.
func ExtractJSONObject(text string) (string, bool) {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first < 0 || last < first {
		return "", false
	}
	return text[first : last+1], true
}
