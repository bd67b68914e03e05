package types

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// NewCandidate is the body of the save request issued after an extraction has been reviewed.
type NewCandidate struct {
	ExtractedFields
	CVFileName string `json:"cvFileName,omitempty"`
	Comment    string `json:"comment,omitempty" validate:"max=2000"`
}

// Validate validates the NewCandidate using the validator.
func (r *NewCandidate) Validate() error {
	return validate.Struct(r)
}

// CandidatePatch is a partial update. Nil fields are left untouched.
type CandidatePatch struct {
	ApplicationStatus *ApplicationStatus `json:"applicationStatus,omitempty" validate:"omitempty,oneof=pending accepted rejected"`
	FormStatus        *FormStatus        `json:"formStatus,omitempty" validate:"omitempty,oneof=inactive active submitted"`
	EvalStatus        *EvalStatus        `json:"evalStatus,omitempty" validate:"omitempty,oneof=inactive active submitted corrected"`
	HiringStatus      *HiringStatus      `json:"hiringStatus,omitempty" validate:"omitempty,oneof=awaiting-client-validation hired not-hired"`
	HiringFinalStatus *HiringFinalStatus `json:"hiringFinalStatus,omitempty" validate:"omitempty,oneof=unset confirmed training-extended"`

	Comment        *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
	Salary         *string `json:"salary,omitempty" validate:"omitempty,max=100"`
	Service        *string `json:"service,omitempty" validate:"omitempty,max=200"`
	TrainingDate   *string `json:"trainingDate,omitempty" validate:"omitempty,max=50"`
	EvaluationDate *string `json:"evaluationDate,omitempty" validate:"omitempty,max=50"`
	DepartureDate  *string `json:"departureDate,omitempty" validate:"omitempty,max=50"`
}

// Validate validates the CandidatePatch using the validator.
func (r *CandidatePatch) Validate() error {
	return validate.Struct(r)
}

// Empty reports whether the patch carries no change at all.
func (r *CandidatePatch) Empty() bool {
	return r.ApplicationStatus == nil && r.FormStatus == nil && r.EvalStatus == nil &&
		r.HiringStatus == nil && r.HiringFinalStatus == nil && r.Comment == nil &&
		r.Salary == nil && r.Service == nil && r.TrainingDate == nil &&
		r.EvaluationDate == nil && r.DepartureDate == nil
}

// Axis names one of the independent status dimensions of a candidate.
type Axis string

// Status axes
const (
	AxisApplication Axis = "applicationStatus"
	AxisForm        Axis = "formStatus"
	AxisEval        Axis = "evalStatus"
	AxisHiring      Axis = "hiringStatus"
	AxisHiringFinal Axis = "hiringFinalStatus"
)

// TransitionRequest moves a single axis to a new value.
type TransitionRequest struct {
	Axis  Axis   `json:"axis" validate:"required,oneof=applicationStatus formStatus evalStatus hiringStatus hiringFinalStatus"`
	Value string `json:"value" validate:"required"`
}

// Validate validates the TransitionRequest using the validator.
func (r *TransitionRequest) Validate() error {
	return validate.Struct(r)
}

// CorrectionRequest carries the evaluator's per-question verdicts.
type CorrectionRequest struct {
	EvalCorrection map[string]bool `json:"evalCorrection" validate:"required"`
}

// Validate validates the CorrectionRequest using the validator.
func (r *CorrectionRequest) Validate() error {
	return validate.Struct(r)
}
