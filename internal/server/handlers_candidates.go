package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"

	"github.com/jonathan/candidate-tracker/internal/db"
	"github.com/jonathan/candidate-tracker/internal/types"
)

const maxJSONBytes = 1 << 20

var (
	applicationStatuses = []types.ApplicationStatus{types.ApplicationPending, types.ApplicationAccepted, types.ApplicationRejected}
	hiringStatuses      = []types.HiringStatus{types.HiringAwaitingClient, types.HiringHired, types.HiringNotHired}
)

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Field: "body", Message: "request body is empty"}
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// handleSaveCandidate stores a reviewed extraction
func (s *Server) handleSaveCandidate(w http.ResponseWriter, r *http.Request) {
	var req types.NewCandidate
	if err := decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	c, err := s.service.Create(r.Context(), &req)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusCreated, c)
}

// handleListCandidates returns candidates newest first, optionally filtered
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	opts := db.ListOptions{}

	if v := r.URL.Query().Get("applicationStatus"); v != "" {
		status := types.ApplicationStatus(v)
		if !slices.Contains(applicationStatuses, status) {
			s.failure(w, r, &ErrValidation{Field: "applicationStatus", Message: "unknown status " + v})
			return
		}
		opts.ApplicationStatus = status
	}
	if v := r.URL.Query().Get("hiringStatus"); v != "" {
		status := types.HiringStatus(v)
		if !slices.Contains(hiringStatuses, status) {
			s.failure(w, r, &ErrValidation{Field: "hiringStatus", Message: "unknown status " + v})
			return
		}
		opts.HiringStatus = status
	}

	candidates, err := s.service.List(r.Context(), opts)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusOK, candidates)
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := s.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusOK, c)
}

// handleUpdateCandidate applies a partial update
func (s *Server) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	var patch types.CandidatePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.failure(w, r, err)
		return
	}

	c, err := s.service.Update(r.Context(), r.PathValue("id"), &patch)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.Delete(r.Context(), id); err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusOK, map[string]string{"id": id})
}

// handleTransition moves a single status axis
func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req types.TransitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	c, err := s.service.Transition(r.Context(), r.PathValue("id"), req.Axis, req.Value)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusOK, c)
}
