package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jonathan/candidate-tracker/internal/db"
	"github.com/jonathan/candidate-tracker/internal/questions"
	"github.com/jonathan/candidate-tracker/internal/rendering"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// SubmitForm records the questionnaire answers of an active form gate and archives them as PDF.
func (s *Service) SubmitForm(ctx context.Context, id string, answers map[string]string) (*types.Candidate, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.submitForm(ctx, c, answers)
}

// SubmitFormByToken is SubmitForm addressed by the questionnaire token.
func (s *Service) SubmitFormByToken(ctx context.Context, token string, answers map[string]string) (*types.Candidate, error) {
	c, err := s.GetByFormToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.submitForm(ctx, c, answers)
}

func (s *Service) submitForm(ctx context.Context, c *types.Candidate, answers map[string]string) (*types.Candidate, error) {
	if c.FormStatus != types.FormActive {
		return nil, &InvalidTransitionError{Axis: types.AxisForm, From: string(c.FormStatus), To: string(types.FormSubmitted)}
	}
	if err := checkAnswers(questions.Recruitment(), answers); err != nil {
		return nil, err
	}

	// The artifact must exist before the status moves.
	url, err := s.artifacts.Generate(ctx, rendering.KindQuestionnaire, rendering.Document{
		CandidateID:   c.ID,
		CandidateName: c.FullName(),
		Answers:       answers,
	})
	if err != nil {
		return nil, err
	}

	fresh, err := s.write(ctx, c, db.Fields{
		types.FieldFormAnswers:       answers,
		types.FieldQualifiedFormPath: url,
		types.FieldFormSubmittedAt:   s.now().UTC(),
		types.FieldFormStatus:        types.FormSubmitted,
	}, db.Fields{
		types.FieldFormStatus: types.FormActive,
	})
	if errors.Is(err, errConflict) {
		s.logger.Warn("questionnaire artifact orphaned", slog.String("candidate_id", c.ID), slog.String("url", url))
		return nil, &InvalidTransitionError{Axis: types.AxisForm, From: string(fresh.FormStatus), To: string(types.FormSubmitted), Message: err.Error()}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("questionnaire submitted", slog.String("candidate_id", c.ID), slog.String("artifact", url))
	return fresh, nil
}

// SubmitEvaluation stores evaluation answers verbatim; the artifact is produced at correction.
func (s *Service) SubmitEvaluation(ctx context.Context, id string, answers map[string]string) (*types.Candidate, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.submitEvaluation(ctx, c, answers)
}

// SubmitEvaluationByToken is SubmitEvaluation addressed by the evaluation token.
func (s *Service) SubmitEvaluationByToken(ctx context.Context, token string, answers map[string]string) (*types.Candidate, error) {
	c, err := s.GetByEvalToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.submitEvaluation(ctx, c, answers)
}

func (s *Service) submitEvaluation(ctx context.Context, c *types.Candidate, answers map[string]string) (*types.Candidate, error) {
	if c.EvalStatus != types.EvalActive {
		return nil, &InvalidTransitionError{Axis: types.AxisEval, From: string(c.EvalStatus), To: string(types.EvalSubmitted)}
	}
	if err := checkAnswers(questions.Evaluation(), answers); err != nil {
		return nil, err
	}

	fresh, err := s.write(ctx, c, db.Fields{
		types.FieldEvalAnswers:     answers,
		types.FieldEvalSubmittedAt: s.now().UTC(),
		types.FieldEvalStatus:      types.EvalSubmitted,
	}, db.Fields{
		types.FieldEvalStatus: types.EvalActive,
	})
	if errors.Is(err, errConflict) {
		return nil, &InvalidTransitionError{Axis: types.AxisEval, From: string(fresh.EvalStatus), To: string(types.EvalSubmitted), Message: err.Error()}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("evaluation submitted", slog.String("candidate_id", c.ID), slog.Int("answers", len(answers)))
	return fresh, nil
}

// CorrectEvaluation records a verdict for every evaluation question, scores it and archives the corrected sheet.
func (s *Service) CorrectEvaluation(ctx context.Context, id string, corrections map[string]bool) (*types.Candidate, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.EvalStatus != types.EvalSubmitted {
		return nil, &InvalidTransitionError{Axis: types.AxisEval, From: string(c.EvalStatus), To: string(types.EvalCorrected)}
	}
	if missing, unknown := coverage(questions.Evaluation(), corrections); len(missing) > 0 || len(unknown) > 0 {
		return nil, &InvalidTransitionError{
			Axis:    types.AxisEval,
			From:    string(c.EvalStatus),
			To:      string(types.EvalCorrected),
			Message: coverageMessage(missing, unknown),
		}
	}

	score := Score(corrections)
	url, err := s.artifacts.Generate(ctx, rendering.KindEvaluation, rendering.Document{
		CandidateID:   c.ID,
		CandidateName: c.FullName(),
		Answers:       c.EvalAnswers,
		Corrections:   corrections,
		Score:         score,
	})
	if err != nil {
		return nil, err
	}

	fresh, err := s.write(ctx, c, db.Fields{
		types.FieldEvalCorrection:  corrections,
		types.FieldEvalScore:       score,
		types.FieldEvalPDFPath:     url,
		types.FieldEvalCorrectedAt: s.now().UTC(),
		types.FieldEvalStatus:      types.EvalCorrected,
	}, db.Fields{
		types.FieldEvalStatus: types.EvalSubmitted,
	})
	if errors.Is(err, errConflict) {
		s.logger.Warn("evaluation artifact orphaned", slog.String("candidate_id", c.ID), slog.String("url", url))
		return nil, &InvalidTransitionError{Axis: types.AxisEval, From: string(fresh.EvalStatus), To: string(types.EvalCorrected), Message: err.Error()}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("evaluation corrected",
		slog.String("candidate_id", c.ID),
		slog.Int("score", score),
		slog.String("artifact", url))
	return fresh, nil
}

// UploadInternshipReport archives an internship report and links it to the candidate.
func (s *Service) UploadInternshipReport(ctx context.Context, id, filename, contentType string, body []byte) (*types.Candidate, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, &ValidationError{Message: "report file is empty"}
	}

	url, err := s.artifacts.StoreReport(ctx, c.ID, filename, contentType, body)
	if err != nil {
		return nil, err
	}

	fresh, err := s.write(ctx, c, db.Fields{types.FieldRapportStagePath: url}, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info("internship report stored", slog.String("candidate_id", c.ID), slog.String("artifact", url))
	return fresh, nil
}

// Score counts the questions marked correct.
func Score(corrections map[string]bool) int {
	score := 0
	for _, ok := range corrections {
		if ok {
			score++
		}
	}
	return score
}

func checkAnswers(catalogue *questions.Catalogue, answers map[string]string) error {
	if answers == nil {
		return &ValidationError{Message: "answers are required"}
	}
	for id := range answers {
		if !catalogue.Has(id) {
			return &ValidationError{Message: fmt.Sprintf("unknown question %q in %s", id, catalogue.Name)}
		}
	}
	return nil
}

// coverage lists catalogue ids absent from corrections and correction keys outside the catalogue.
func coverage(catalogue *questions.Catalogue, corrections map[string]bool) (missing, unknown []string) {
	for _, id := range catalogue.IDs() {
		if _, ok := corrections[id]; !ok {
			missing = append(missing, id)
		}
	}
	for id := range corrections {
		if !catalogue.Has(id) {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	return missing, unknown
}

func coverageMessage(missing, unknown []string) string {
	switch {
	case len(missing) > 0 && len(unknown) > 0:
		return fmt.Sprintf("correction misses %v and has unknown questions %v", missing, unknown)
	case len(missing) > 0:
		return fmt.Sprintf("correction misses %v", missing)
	default:
		return fmt.Sprintf("correction has unknown questions %v", unknown)
	}
}
