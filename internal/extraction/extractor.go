package extraction

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jonathan/candidate-tracker/internal/llm"
	"github.com/jonathan/candidate-tracker/internal/prompts"
	"github.com/jonathan/candidate-tracker/internal/schemas"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// Extractor runs the region, prompt, model, parse and normalize steps.
type Extractor struct {
	client  llm.Client
	options llm.Options
	logger  *slog.Logger
}

// NewExtractor creates an extractor using deterministic decoding options.
func NewExtractor(client llm.Client, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		client:  client,
		options: llm.DeterministicOptions(),
		logger:  logger,
	}
}

// Extract reads the structured fields from the full text of a CV.
// Errors are *FormNotFoundError, *ModelError or *SchemaError.
func (e *Extractor) Extract(ctx context.Context, documentText string) (*types.ExtractedFields, error) {
	formText, err := LocateForm(documentText)
	if err != nil {
		return nil, err
	}

	prompt, err := buildPrompt(formText)
	if err != nil {
		return nil, err
	}

	e.logger.Info("calling model",
		slog.String("model", e.client.Model()),
		slog.Int("form_chars", len([]rune(formText))))

	response, err := e.client.Generate(ctx, prompt, e.options)
	if err != nil {
		return nil, &ModelError{
			Message: "failed to generate content",
			Cause:   err,
		}
	}

	raw, err := parseResponse(response)
	if err != nil {
		return nil, err
	}

	fields, resets, err := schemas.Normalize(raw)
	if err != nil {
		return nil, err
	}
	for _, fe := range resets {
		e.logger.Warn("model value discarded",
			slog.String("field", fe.Field),
			slog.String("reason", fe.Message))
	}

	return fields, nil
}

func buildPrompt(formText string) (string, error) {
	template, err := prompts.Get(prompts.ExtractionFile, prompts.ExtractCandidate)
	if err != nil {
		return "", err
	}
	return prompts.Format(template, map[string]string{
		"FormText": formText,
	})
}

// parseResponse strips fences and decodes the outermost JSON object of a completion.
func parseResponse(response string) (map[string]any, error) {
	cleaned := llm.CleanJSONBlock(response)

	object, ok := llm.ExtractJSONObject(cleaned)
	if !ok {
		return nil, &SchemaError{
			Message:  "no JSON object in model response",
			Response: response,
		}
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(object), &raw); err != nil {
		return nil, &SchemaError{
			Message:  "failed to parse JSON response",
			Response: response,
			Cause:    err,
		}
	}
	return raw, nil
}
