// Package prompts provides a loader for the embedded model prompt templates.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// Prompt file and keys used by the extraction pipeline.
const (
	ExtractionFile    = "extraction.json"
	ExtractCandidate  = "extract-candidate-form"
	PlaceholderPrefix = "{{."
)

var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// Get retrieves a prompt by filename and key.
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return prompt, nil
}

// Format replaces placeholders of the form {{.Key}} with values from data.
// A placeholder left without a value is an error so a prompt is never sent half-filled.
func Format(template string, data map[string]string) (string, error) {
	result := template
	for key, value := range data {
		result = strings.ReplaceAll(result, PlaceholderPrefix+key+"}}", value)
	}

	// Values may legitimately contain braces, so only scan the template itself.
	if missing := unresolved(template, data); len(missing) > 0 {
		return "", fmt.Errorf("prompt placeholders without value: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

func unresolved(template string, data map[string]string) []string {
	var missing []string
	rest := template
	for {
		start := strings.Index(rest, PlaceholderPrefix)
		if start < 0 {
			return missing
		}
		rest = rest[start+len(PlaceholderPrefix):]
		end := strings.Index(rest, "}}")
		if end < 0 {
			return missing
		}
		name := rest[:end]
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
		rest = rest[end+2:]
	}
}

func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	if prompts, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return prompts, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var prompts map[string]string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()

	return prompts, nil
}
