// Package types provides type definitions for candidate records and the requests that mutate them.
package types

import (
	"time"
)

// Unset is the sentinel stored for any field that could not be read from the source document.
const Unset = "-"

// ApplicationStatus is the recruiter screening decision.
type ApplicationStatus string

// Application statuses
const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// FormStatus is the recruitment-questionnaire gate.
type FormStatus string

// Form gate statuses
const (
	FormInactive  FormStatus = "inactive"
	FormActive    FormStatus = "active"
	FormSubmitted FormStatus = "submitted"
)

// EvalStatus is the skills-evaluation gate.
type EvalStatus string

// Evaluation gate statuses
const (
	EvalInactive  EvalStatus = "inactive"
	EvalActive    EvalStatus = "active"
	EvalSubmitted EvalStatus = "submitted"
	EvalCorrected EvalStatus = "corrected"
)

// HiringStatus is the post-acceptance outcome.
type HiringStatus string

// Hiring statuses
const (
	HiringAwaitingClient HiringStatus = "awaiting-client-validation"
	HiringHired          HiringStatus = "hired"
	HiringNotHired       HiringStatus = "not-hired"
)

// HiringFinalStatus is the post-hire review outcome.
type HiringFinalStatus string

// Final review statuses
const (
	HiringFinalUnset            HiringFinalStatus = "unset"
	HiringFinalConfirmed        HiringFinalStatus = "confirmed"
	HiringFinalTrainingExtended HiringFinalStatus = "training-extended"
)

// Proficiency is one cell of the technical-English grid.
type Proficiency string

// Proficiency levels as printed on the recruitment form
const (
	ProficiencyLow    Proficiency = "Faible"
	ProficiencyMedium Proficiency = "Moyen"
	ProficiencyGood   Proficiency = "Bien"
	ProficiencyUnset  Proficiency = Unset
)

// Valid reports whether p is one of the printed levels or the sentinel.
func (p Proficiency) Valid() bool {
	switch p {
	case ProficiencyLow, ProficiencyMedium, ProficiencyGood, ProficiencyUnset:
		return true
	}
	return false
}

// EnglishLevel holds the three independent rows of the technical-English grid.
type EnglishLevel struct {
	Read    Proficiency `json:"read" bson:"read"`
	Written Proficiency `json:"written" bson:"written"`
	Spoken  Proficiency `json:"spoken" bson:"spoken"`
}

// ExtractedFields are the attributes read from the recruitment form of a CV.
type ExtractedFields struct {
	LastName        string       `json:"lastName" bson:"lastName"`
	FirstName       string       `json:"firstName" bson:"firstName"`
	BirthDate       string       `json:"birthDate" bson:"birthDate"`
	Address         string       `json:"address" bson:"address"`
	CurrentPosition string       `json:"currentPosition" bson:"currentPosition"`
	Company         string       `json:"company" bson:"company"`
	HireDate        string       `json:"hireDate" bson:"hireDate"`
	NetSalary       string       `json:"netSalary" bson:"netSalary"`
	LastDiploma     string       `json:"lastDiploma" bson:"lastDiploma"`
	EnglishLevel    EnglishLevel `json:"englishLevel" bson:"englishLevel"`
}

// UnsetFields returns a record with every field set to the sentinel.
func UnsetFields() ExtractedFields {
	return ExtractedFields{
		LastName:        Unset,
		FirstName:       Unset,
		BirthDate:       Unset,
		Address:         Unset,
		CurrentPosition: Unset,
		Company:         Unset,
		HireDate:        Unset,
		NetSalary:       Unset,
		LastDiploma:     Unset,
		EnglishLevel: EnglishLevel{
			Read:    ProficiencyUnset,
			Written: ProficiencyUnset,
			Spoken:  ProficiencyUnset,
		},
	}
}

// FullName joins first and last name, skipping unset parts.
func (f ExtractedFields) FullName() string {
	name := ""
	for _, part := range []string{f.FirstName, f.LastName} {
		if part == "" || part == Unset {
			continue
		}
		if name != "" {
			name += " "
		}
		name += part
	}
	return name
}

// Candidate is the central record tracked through the hiring lifecycle.
// JSON and BSON names are identical so store filters can use either.
type Candidate struct {
	ID string `json:"id" bson:"-"`

	ExtractedFields `bson:",inline"`

	ApplicationStatus ApplicationStatus `json:"applicationStatus" bson:"applicationStatus"`
	FormStatus        FormStatus        `json:"formStatus" bson:"formStatus"`
	EvalStatus        EvalStatus        `json:"evalStatus" bson:"evalStatus"`
	HiringStatus      HiringStatus      `json:"hiringStatus" bson:"hiringStatus"`
	HiringFinalStatus HiringFinalStatus `json:"hiringFinalStatus" bson:"hiringFinalStatus"`

	FormToken string `json:"formToken,omitempty" bson:"formToken,omitempty"`
	EvalToken string `json:"evalToken,omitempty" bson:"evalToken,omitempty"`

	FormAnswers    map[string]string `json:"qualifiedForm,omitempty" bson:"qualifiedForm,omitempty"`
	EvalAnswers    map[string]string `json:"evalAnswers,omitempty" bson:"evalAnswers,omitempty"`
	EvalCorrection map[string]bool   `json:"evalCorrection,omitempty" bson:"evalCorrection,omitempty"`
	EvalScore      *int              `json:"evalScore,omitempty" bson:"evalScore,omitempty"`

	CVFileName        string `json:"cvFileName,omitempty" bson:"cvFileName,omitempty"`
	QualifiedFormPath string `json:"qualifiedFormPath,omitempty" bson:"qualifiedFormPath,omitempty"`
	EvalPDFPath       string `json:"evalPdfPath,omitempty" bson:"evalPdfPath,omitempty"`
	RapportStagePath  string `json:"rapportStagePath,omitempty" bson:"rapportStagePath,omitempty"`

	Comment        string `json:"comment,omitempty" bson:"comment,omitempty"`
	Salary         string `json:"salary,omitempty" bson:"salary,omitempty"`
	Service        string `json:"service,omitempty" bson:"service,omitempty"`
	TrainingDate   string `json:"trainingDate,omitempty" bson:"trainingDate,omitempty"`
	EvaluationDate string `json:"evaluationDate,omitempty" bson:"evaluationDate,omitempty"`
	DepartureDate  string `json:"departureDate,omitempty" bson:"departureDate,omitempty"`

	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	FormSubmittedAt *time.Time `json:"formSubmittedAt,omitempty" bson:"formSubmittedAt,omitempty"`
	EvalSubmittedAt *time.Time `json:"evalSubmittedAt,omitempty" bson:"evalSubmittedAt,omitempty"`
	EvalCorrectedAt *time.Time `json:"evalCorrectedAt,omitempty" bson:"evalCorrectedAt,omitempty"`
}

// Field names shared by every store backend.
const (
	FieldApplicationStatus = "applicationStatus"
	FieldFormStatus        = "formStatus"
	FieldEvalStatus        = "evalStatus"
	FieldHiringStatus      = "hiringStatus"
	FieldHiringFinalStatus = "hiringFinalStatus"
	FieldFormToken         = "formToken"
	FieldEvalToken         = "evalToken"
	FieldFormAnswers       = "qualifiedForm"
	FieldEvalAnswers       = "evalAnswers"
	FieldEvalCorrection    = "evalCorrection"
	FieldEvalScore         = "evalScore"
	FieldQualifiedFormPath = "qualifiedFormPath"
	FieldEvalPDFPath       = "evalPdfPath"
	FieldRapportStagePath  = "rapportStagePath"
	FieldComment           = "comment"
	FieldSalary            = "salary"
	FieldService           = "service"
	FieldTrainingDate      = "trainingDate"
	FieldEvaluationDate    = "evaluationDate"
	FieldDepartureDate     = "departureDate"
	FieldCreatedAt         = "createdAt"
	FieldFormSubmittedAt   = "formSubmittedAt"
	FieldEvalSubmittedAt   = "evalSubmittedAt"
	FieldEvalCorrectedAt   = "evalCorrectedAt"
)
