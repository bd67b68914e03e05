package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonathan/candidate-tracker/internal/db"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// statusActive is shared by both gates.
const statusActive = "active"

// errConflict marks a lost conditional update; callers translate it for their axis.
var errConflict = errors.New("candidate changed concurrently")

// gate describes a token-guarded form axis.
type gate struct {
	axis        types.Axis
	statusField string
	tokenField  string
	inactive    string
}

var (
	formGate = gate{
		axis:        types.AxisForm,
		statusField: types.FieldFormStatus,
		tokenField:  types.FieldFormToken,
		inactive:    string(types.FormInactive),
	}
	evalGate = gate{
		axis:        types.AxisEval,
		statusField: types.FieldEvalStatus,
		tokenField:  types.FieldEvalToken,
		inactive:    string(types.EvalInactive),
	}
)

func (g gate) current(c *types.Candidate) (status, token string) {
	if g.axis == types.AxisForm {
		return string(c.FormStatus), c.FormToken
	}
	return string(c.EvalStatus), c.EvalToken
}

// activate computes the write that opens the gate. A nil set means nothing to do.
// An existing token is always kept; a missing one is minted under the condition that it is still absent.
func (s *Service) activate(g gate, c *types.Candidate, set, cond db.Fields) error {
	status, token := g.current(c)

	switch status {
	case statusActive:
		if token != "" {
			return nil
		}
		cond[g.statusField] = statusActive
	case g.inactive, "":
		set[g.statusField] = statusActive
		if status == "" {
			cond[g.statusField] = nil
		} else {
			cond[g.statusField] = status
		}
	default:
		return &InvalidTransitionError{Axis: g.axis, From: status, To: statusActive, Message: "gates only move forward"}
	}

	if token == "" {
		minted, err := s.issue()
		if err != nil {
			return err
		}
		set[g.tokenField] = minted
		cond[g.tokenField] = nil
	}
	return nil
}

// gateChange validates a requested gate value coming from a partial update.
// Only activation is allowed here; submission and correction carry payloads and have their own operations.
func (s *Service) gateChange(g gate, c *types.Candidate, value string, set, cond db.Fields) error {
	status, _ := g.current(c)
	switch value {
	case statusActive:
		return s.activate(g, c, set, cond)
	case g.inactive:
		if status == g.inactive {
			return nil
		}
		return &InvalidTransitionError{Axis: g.axis, From: status, To: value, Message: "gates only move forward"}
	default:
		return &InvalidTransitionError{Axis: g.axis, From: status, To: value, Message: "requires a submission"}
	}
}

// Update applies a partial update in a single conditional write.
// Free-edit fields and the application and hiring axes are overwritten directly.
func (s *Service) Update(ctx context.Context, id string, patch *types.CandidatePatch) (*types.Candidate, error) {
	if err := patch.Validate(); err != nil {
		return nil, &ValidationError{Message: "invalid update", Cause: err}
	}
	if patch.Empty() {
		return nil, &ValidationError{Message: "update contains no fields"}
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.applyPatch(ctx, c, patch)
}

func (s *Service) applyPatch(ctx context.Context, c *types.Candidate, patch *types.CandidatePatch) (*types.Candidate, error) {
	set := db.Fields{}
	cond := db.Fields{}

	if patch.FormStatus != nil {
		if err := s.gateChange(formGate, c, string(*patch.FormStatus), set, cond); err != nil {
			return nil, err
		}
	}
	if patch.EvalStatus != nil {
		if err := s.gateChange(evalGate, c, string(*patch.EvalStatus), set, cond); err != nil {
			return nil, err
		}
	}

	if patch.ApplicationStatus != nil {
		set[types.FieldApplicationStatus] = *patch.ApplicationStatus
	}
	if patch.HiringStatus != nil {
		set[types.FieldHiringStatus] = *patch.HiringStatus
	}
	if patch.HiringFinalStatus != nil {
		set[types.FieldHiringFinalStatus] = *patch.HiringFinalStatus
	}
	setString(set, types.FieldComment, patch.Comment)
	setString(set, types.FieldSalary, patch.Salary)
	setString(set, types.FieldService, patch.Service)
	setString(set, types.FieldTrainingDate, patch.TrainingDate)
	setString(set, types.FieldEvaluationDate, patch.EvaluationDate)
	setString(set, types.FieldDepartureDate, patch.DepartureDate)

	if len(set) == 0 {
		return c, nil
	}

	fresh, err := s.write(ctx, c, set, cond)
	if errors.Is(err, errConflict) {
		g := formGate
		if _, ok := cond[types.FieldEvalStatus]; ok {
			g = evalGate
		}
		status, _ := g.current(fresh)
		return nil, &InvalidTransitionError{Axis: g.axis, From: status, To: statusActive, Message: err.Error()}
	}
	return fresh, err
}

// write applies set under cond and returns the fresh record.
// A failed condition means another request changed the record first.
func (s *Service) write(ctx context.Context, c *types.Candidate, set, cond db.Fields) (*types.Candidate, error) {
	matched, err := s.store.Update(ctx, c.ID, set, cond)
	if err != nil {
		return nil, fmt.Errorf("failed to update candidate: %w", err)
	}

	fresh, err := s.reload(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if !matched {
		s.logger.Warn("conditional update did not match",
			slog.String("candidate_id", c.ID),
			slog.Any("condition", cond))
		return fresh, errConflict
	}
	return fresh, nil
}

func setString(set db.Fields, field string, v *string) {
	if v != nil {
		set[field] = *v
	}
}

// Transition moves one axis to value, running the side effects of that axis.
func (s *Service) Transition(ctx context.Context, id string, axis types.Axis, value string) (*types.Candidate, error) {
	req := types.TransitionRequest{Axis: axis, Value: value}
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Message: "invalid transition", Cause: err}
	}

	if axis == types.AxisEval && value == statusActive {
		return s.ActivateEvaluation(ctx, id)
	}

	patch := &types.CandidatePatch{}
	switch axis {
	case types.AxisApplication:
		v := types.ApplicationStatus(value)
		patch.ApplicationStatus = &v
	case types.AxisForm:
		v := types.FormStatus(value)
		patch.FormStatus = &v
	case types.AxisEval:
		v := types.EvalStatus(value)
		patch.EvalStatus = &v
	case types.AxisHiring:
		v := types.HiringStatus(value)
		patch.HiringStatus = &v
	case types.AxisHiringFinal:
		v := types.HiringFinalStatus(value)
		patch.HiringFinalStatus = &v
	}
	return s.Update(ctx, id, patch)
}

// ActivateForm opens the questionnaire gate, minting the form token once.
func (s *Service) ActivateForm(ctx context.Context, id string) (*types.Candidate, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.activateGate(ctx, formGate, c)
}

// ActivateEvaluation opens the evaluation gate, minting the evaluation token once.
// The id may be in a non-canonical encoding.
func (s *Service) ActivateEvaluation(ctx context.Context, id string) (*types.Candidate, error) {
	c, err := s.store.FindByRawID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	if c == nil {
		return nil, &NotFoundError{Kind: "id", Key: id}
	}
	return s.activateGate(ctx, evalGate, c)
}

func (s *Service) activateGate(ctx context.Context, g gate, c *types.Candidate) (*types.Candidate, error) {
	set := db.Fields{}
	cond := db.Fields{}
	if err := s.activate(g, c, set, cond); err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return c, nil
	}

	fresh, err := s.write(ctx, c, set, cond)
	if errors.Is(err, errConflict) {
		// A concurrent activation won; its token stands.
		if status, token := g.current(fresh); status == statusActive && token != "" {
			return fresh, nil
		}
		status, _ := g.current(fresh)
		return nil, &InvalidTransitionError{Axis: g.axis, From: status, To: statusActive, Message: errConflict.Error()}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("gate activated",
		slog.String("candidate_id", c.ID),
		slog.String("axis", string(g.axis)))
	return fresh, nil
}
