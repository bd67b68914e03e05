package schemas

import (
	_ "embed"
	"strconv"
	"strings"
	"sync"

	"github.com/jonathan/candidate-tracker/internal/types"
	"github.com/xeipuuv/gojsonschema"
)

// Keys of the recruitment form as the model is instructed to emit them.
const (
	KeyLastName        = "Nom"
	KeyFirstName       = "Prénom"
	KeyBirthDate       = "Date de naissance"
	KeyAddress         = "Adress Actuel"
	KeyCurrentPosition = "Post Actuel"
	KeyCompany         = "Société"
	KeyHireDate        = "Date d'embauche"
	KeyNetSalary       = "Salaire net Actuel"
	KeyLastDiploma     = "Votre dernier diplome"
	KeyEnglishLevel    = "Votre niveau de l'anglais technique"

	KeyRead    = "Lu"
	KeyWritten = "Ecrit"
	KeySpoken  = "Parlé"
)

// placeholder is echoed back by models that copy the output template verbatim.
const placeholder = "string"

// TextKeys lists the flat string fields in form order.
var TextKeys = []string{
	KeyLastName,
	KeyFirstName,
	KeyBirthDate,
	KeyAddress,
	KeyCurrentPosition,
	KeyCompany,
	KeyHireDate,
	KeyNetSalary,
	KeyLastDiploma,
}

// LevelKeys lists the rows of the proficiency grid.
var LevelKeys = []string{KeyRead, KeyWritten, KeySpoken}

//go:embed extracted_fields.schema.json
var extractedFieldsSchema string

var (
	compiledOnce   sync.Once
	compiledSchema *gojsonschema.Schema
	compileErr     error
)

func fieldsSchema() (*gojsonschema.Schema, error) {
	compiledOnce.Do(func() {
		compiledSchema, compileErr = Compile("extracted_fields", extractedFieldsSchema)
	})
	return compiledSchema, compileErr
}

// Normalize coerces an untyped model response into ExtractedFields.
// Missing, blank and placeholder values become "-", as does any value the schema rejects.
// It never fails on content; the returned FieldErrors describe what was reset.
func Normalize(raw map[string]any) (*types.ExtractedFields, []FieldError, error) {
	doc := make(map[string]any, len(TextKeys)+1)
	for _, key := range TextKeys {
		doc[key] = textValue(raw[key])
	}

	levels := map[string]any{}
	if grid, ok := raw[KeyEnglishLevel].(map[string]any); ok {
		for _, key := range LevelKeys {
			levels[key] = textValue(grid[key])
		}
	} else {
		for _, key := range LevelKeys {
			levels[key] = types.Unset
		}
	}
	doc[KeyEnglishLevel] = levels

	schema, err := fieldsSchema()
	if err != nil {
		return nil, nil, err
	}

	var resets []FieldError
	if err := ValidateDocument(schema, doc); err != nil {
		validationErr, ok := err.(*ValidationError)
		if !ok {
			return nil, nil, err
		}
		for _, fe := range validationErr.Errors {
			if resetField(doc, fe.Field) {
				resets = append(resets, fe)
			}
		}
	}

	return toFields(doc), resets, nil
}

// textValue applies the default substitution rule to a single value.
func textValue(v any) string {
	switch val := v.(type) {
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" || trimmed == placeholder {
			return types.Unset
		}
		return trimmed
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return types.Unset
	}
}

// resetField sets the value at a dotted schema path back to the sentinel.
func resetField(doc map[string]any, path string) bool {
	if path == "" || path == "(root)" {
		return false
	}
	parent, key, found := strings.Cut(path, ".")
	if !found {
		if _, ok := doc[parent]; !ok || parent == KeyEnglishLevel {
			return false
		}
		doc[parent] = types.Unset
		return true
	}
	nested, ok := doc[parent].(map[string]any)
	if !ok {
		return false
	}
	if _, ok := nested[key]; !ok {
		return false
	}
	nested[key] = types.Unset
	return true
}

func toFields(doc map[string]any) *types.ExtractedFields {
	str := func(key string) string {
		s, _ := doc[key].(string)
		return s
	}
	levels, _ := doc[KeyEnglishLevel].(map[string]any)
	level := func(key string) types.Proficiency {
		s, _ := levels[key].(string)
		return types.Proficiency(s)
	}

	return &types.ExtractedFields{
		LastName:        str(KeyLastName),
		FirstName:       str(KeyFirstName),
		BirthDate:       str(KeyBirthDate),
		Address:         str(KeyAddress),
		CurrentPosition: str(KeyCurrentPosition),
		Company:         str(KeyCompany),
		HireDate:        str(KeyHireDate),
		NetSalary:       str(KeyNetSalary),
		LastDiploma:     str(KeyLastDiploma),
		EnglishLevel: types.EnglishLevel{
			Read:    level(KeyRead),
			Written: level(KeyWritten),
			Spoken:  level(KeySpoken),
		},
	}
}
