// Package rendering lays out form answers as HTML and prints them to PDF.
package rendering

import (
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/jonathan/candidate-tracker/internal/questions"
	"github.com/jonathan/candidate-tracker/internal/types"
)

//go:embed templates/*.html.tmpl
var templateFiles embed.FS

// Kind selects the document layout.
type Kind string

// Document kinds
const (
	KindQuestionnaire Kind = "questionnaire"
	KindEvaluation    Kind = "evaluation"
)

// missingEvalAnswer is printed for an evaluation question left blank.
const missingEvalAnswer = "N/A"

// Document is the data rendered into an artifact.
type Document struct {
	CandidateID   string
	CandidateName string
	Answers       map[string]string
	Corrections   map[string]bool // evaluation only
	Score         int             // evaluation only
	GeneratedAt   time.Time
}

type layoutItem struct {
	Label   string
	Answer  string
	Correct bool
}

type layoutData struct {
	Title         string
	CandidateName string
	Score         int
	Total         int
	Items         []layoutItem
	GeneratedAt   string
}

// RenderHTML executes the layout for kind.
func RenderHTML(kind Kind, doc Document) (string, error) {
	tmpl, err := parseLayout(kind)
	if err != nil {
		return "", err
	}

	data := buildLayoutData(kind, doc)

	var out strings.Builder
	if err := tmpl.ExecuteTemplate(&out, "layout", data); err != nil {
		return "", &TemplateError{
			Kind:    kind,
			Message: "failed to execute template",
			Cause:   err,
		}
	}
	return out.String(), nil
}

func parseLayout(kind Kind) (*template.Template, error) {
	var body string
	switch kind {
	case KindQuestionnaire:
		body = "templates/questionnaire.html.tmpl"
	case KindEvaluation:
		body = "templates/evaluation.html.tmpl"
	default:
		return nil, &TemplateError{Kind: kind, Message: "unknown document kind"}
	}

	tmpl, err := template.ParseFS(templateFiles, "templates/layout.html.tmpl", body)
	if err != nil {
		return nil, &TemplateError{
			Kind:    kind,
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	return tmpl, nil
}

func buildLayoutData(kind Kind, doc Document) layoutData {
	catalogue := questions.Recruitment()
	if kind == KindEvaluation {
		catalogue = questions.Evaluation()
	}

	generatedAt := doc.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	name := doc.CandidateName
	if strings.TrimSpace(name) == "" {
		name = types.Unset
	}

	data := layoutData{
		Title:         catalogue.Title,
		CandidateName: name,
		Score:         doc.Score,
		Total:         len(catalogue.Questions),
		Items:         make([]layoutItem, 0, len(catalogue.Questions)),
		GeneratedAt:   generatedAt.Format("02/01/2006 15:04"),
	}

	for _, q := range catalogue.Questions {
		item := layoutItem{Label: q.Label, Answer: doc.Answers[q.ID]}
		if strings.TrimSpace(item.Answer) == "" {
			if kind == KindEvaluation {
				item.Answer = missingEvalAnswer
			} else {
				item.Answer = types.Unset
			}
		}
		if kind == KindEvaluation {
			item.Correct = doc.Corrections[q.ID]
		}
		data.Items = append(data.Items, item)
	}
	return data
}
