// Package questions holds the fixed question catalogues rendered in the form artifacts.
package questions

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var catalogueFiles embed.FS

// Question is a single item of a catalogue.
type Question struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

// Catalogue is an ordered list of questions with a document title.
type Catalogue struct {
	Name      string     `yaml:"name"`
	Title     string     `yaml:"title"`
	Questions []Question `yaml:"questions"`
}

// Catalogue names
const (
	RecruitmentName = "recruitment"
	EvaluationName  = "evaluation"
)

// Expected sizes; a mismatch means the embedded file was edited by mistake.
const (
	RecruitmentSize = 8
	EvaluationSize  = 38
)

var (
	loadOnce    sync.Once
	recruitment *Catalogue
	evaluation  *Catalogue
	loadErr     error
)

// Recruitment returns the 8-item recruitment questionnaire.
func Recruitment() *Catalogue {
	mustLoad()
	return recruitment
}

// Evaluation returns the 38-item skills evaluation.
func Evaluation() *Catalogue {
	mustLoad()
	return evaluation
}

// ParseCatalogueYAML decodes and validates a catalogue definition.
func ParseCatalogueYAML(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("questions: parse catalogue: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that ids and labels are present and ids are unique.
func (c *Catalogue) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("questions: catalogue name is required")
	}
	if len(c.Questions) == 0 {
		return fmt.Errorf("questions: catalogue %s has no questions", c.Name)
	}
	seen := make(map[string]bool, len(c.Questions))
	for i, q := range c.Questions {
		if strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.Label) == "" {
			return fmt.Errorf("questions: catalogue %s item %d needs an id and a label", c.Name, i+1)
		}
		if seen[q.ID] {
			return fmt.Errorf("questions: catalogue %s repeats id %q", c.Name, q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}

// IDs returns the question ids in order.
func (c *Catalogue) IDs() []string {
	ids := make([]string, len(c.Questions))
	for i, q := range c.Questions {
		ids[i] = q.ID
	}
	return ids
}

// Has reports whether id belongs to the catalogue.
func (c *Catalogue) Has(id string) bool {
	for _, q := range c.Questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

func mustLoad() {
	loadOnce.Do(func() {
		recruitment, loadErr = loadCatalogue(RecruitmentName+".yaml", RecruitmentSize)
		if loadErr != nil {
			return
		}
		evaluation, loadErr = loadCatalogue(EvaluationName+".yaml", EvaluationSize)
	})
	if loadErr != nil {
		panic(loadErr)
	}
}

func loadCatalogue(filename string, size int) (*Catalogue, error) {
	data, err := catalogueFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("questions: read %s: %w", filename, err)
	}
	c, err := ParseCatalogueYAML(data)
	if err != nil {
		return nil, err
	}
	if len(c.Questions) != size {
		return nil, fmt.Errorf("questions: %s has %d questions, want %d", filename, len(c.Questions), size)
	}
	return c, nil
}
