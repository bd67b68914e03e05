// Package lifecycle implements the candidate workflow: status axes, token-gated forms and their artifacts.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/candidate-tracker/internal/db"
	"github.com/jonathan/candidate-tracker/internal/rendering"
	"github.com/jonathan/candidate-tracker/internal/tokens"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// ArtifactGenerator renders and archives documents, returning their public URL.
type ArtifactGenerator interface {
	Generate(ctx context.Context, kind rendering.Kind, doc rendering.Document) (string, error)
	StoreReport(ctx context.Context, candidateID, filename, contentType string, body []byte) (string, error)
}

// Service applies lifecycle operations to candidates held in a store.
type Service struct {
	store     db.Store
	artifacts ArtifactGenerator
	logger    *slog.Logger

	issue func() (string, error)
	now   func() time.Time
}

// NewService creates a lifecycle service
func NewService(store db.Store, artifacts ArtifactGenerator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		artifacts: artifacts,
		logger:    logger,
		issue:     tokens.Issue,
		now:       time.Now,
	}
}

// Create saves a reviewed extraction as a new candidate with default statuses.
func (s *Service) Create(ctx context.Context, req *types.NewCandidate) (*types.Candidate, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Message: "invalid candidate", Cause: err}
	}

	fields, err := normalizeFields(req.ExtractedFields)
	if err != nil {
		return nil, err
	}

	c := &types.Candidate{
		ExtractedFields:   fields,
		ApplicationStatus: types.ApplicationPending,
		FormStatus:        types.FormInactive,
		EvalStatus:        types.EvalInactive,
		HiringStatus:      types.HiringAwaitingClient,
		HiringFinalStatus: types.HiringFinalUnset,
		CVFileName:        req.CVFileName,
		Comment:           req.Comment,
		CreatedAt:         s.now().UTC(),
	}

	id, err := s.store.Insert(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	c.ID = id

	s.logger.Info("candidate created", slog.String("candidate_id", id))
	return c, nil
}

// Get returns the candidate with the given id
func (s *Service) Get(ctx context.Context, id string) (*types.Candidate, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	if c == nil {
		return nil, &NotFoundError{Kind: "id", Key: id}
	}
	return c, nil
}

// List returns candidates newest first
func (s *Service) List(ctx context.Context, opts db.ListOptions) ([]types.Candidate, error) {
	candidates, err := s.store.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	if candidates == nil {
		candidates = []types.Candidate{}
	}
	return candidates, nil
}

// Delete removes a candidate permanently
func (s *Service) Delete(ctx context.Context, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.store.Delete(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if !deleted {
		return &NotFoundError{Kind: "id", Key: id}
	}
	s.logger.Info("candidate deleted", slog.String("candidate_id", c.ID))
	return nil
}

// GetByFormToken returns the candidate owning a questionnaire token
func (s *Service) GetByFormToken(ctx context.Context, token string) (*types.Candidate, error) {
	return s.findByToken(ctx, types.FieldFormToken, token)
}

// GetByEvalToken returns the candidate owning an evaluation token
func (s *Service) GetByEvalToken(ctx context.Context, token string) (*types.Candidate, error) {
	return s.findByToken(ctx, types.FieldEvalToken, token)
}

func (s *Service) findByToken(ctx context.Context, field, token string) (*types.Candidate, error) {
	if token == "" {
		return nil, &NotFoundError{Kind: field, Key: token}
	}
	c, err := s.store.FindOne(ctx, field, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	if c == nil {
		return nil, &NotFoundError{Kind: field, Key: token}
	}
	return c, nil
}

// reload re-reads a candidate by its stored id after a write.
func (s *Service) reload(ctx context.Context, id string) (*types.Candidate, error) {
	c, err := s.store.FindByRawID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload candidate: %w", err)
	}
	if c == nil {
		return nil, &NotFoundError{Kind: "id", Key: id}
	}
	return c, nil
}

// normalizeFields maps blank values to the sentinel and rejects unknown proficiency levels.
func normalizeFields(f types.ExtractedFields) (types.ExtractedFields, error) {
	for _, p := range []*string{
		&f.LastName, &f.FirstName, &f.BirthDate, &f.Address, &f.CurrentPosition,
		&f.Company, &f.HireDate, &f.NetSalary, &f.LastDiploma,
	} {
		if *p == "" {
			*p = types.Unset
		}
	}
	for _, p := range []*types.Proficiency{&f.EnglishLevel.Read, &f.EnglishLevel.Written, &f.EnglishLevel.Spoken} {
		if *p == "" {
			*p = types.ProficiencyUnset
		}
		if !p.Valid() {
			return f, &ValidationError{Message: fmt.Sprintf("invalid proficiency level %q", *p)}
		}
	}
	return f, nil
}
