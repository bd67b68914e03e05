package questions

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecruitment(t *testing.T) {
	c := Recruitment()
	require.Len(t, c.Questions, RecruitmentSize)
	assert.Equal(t, "presentezVous", c.Questions[0].ID)
	assert.Equal(t, "lastExperience", c.Questions[7].ID)
	assert.Equal(t, "1. Présentez-vous ?", c.Questions[0].Label)
}

func TestEvaluation(t *testing.T) {
	c := Evaluation()
	require.Len(t, c.Questions, EvaluationSize)
	for i, q := range c.Questions {
		assert.Equal(t, fmt.Sprintf("q%d", i+1), q.ID)
	}
	assert.Equal(t, "9. Conformité normes (ATEX, UL, etc.) ?", c.Questions[8].Label)
	assert.True(t, c.Has("q38"))
	assert.False(t, c.Has("q39"))
	assert.Len(t, c.IDs(), EvaluationSize)
}

func TestParseCatalogueYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "invalid yaml", data: "name: [", want: "parse catalogue"},
		{name: "missing name", data: "questions:\n  - id: a\n    label: b\n", want: "name is required"},
		{name: "empty", data: "name: x\n", want: "has no questions"},
		{name: "missing label", data: "name: x\nquestions:\n  - id: a\n", want: "needs an id and a label"},
		{name: "duplicate", data: "name: x\nquestions:\n  - id: a\n    label: b\n  - id: a\n    label: c\n", want: "repeats id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalogueYAML([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
