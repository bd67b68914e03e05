package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/candidate-tracker/internal/types"
)

// decodeAnswers reads a questionnaire submission. The body is either
// {"answers": {"q1": "..."}} or the flat answer map itself.
func (s *Server) decodeAnswers(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	var body map[string]json.RawMessage
	if err := decodeJSON(w, r, &body); err != nil {
		s.failure(w, r, err)
		return nil, false
	}
	if wrapped, ok := body["answers"]; ok && len(body) == 1 {
		body = nil
		if err := json.Unmarshal(wrapped, &body); err != nil {
			s.failure(w, r, &ErrValidation{Field: "answers", Message: "answers must be an object"})
			return nil, false
		}
	}
	if len(body) == 0 {
		s.failure(w, r, &ErrValidation{Field: "answers", Message: "no answers submitted"})
		return nil, false
	}

	answers := make(map[string]string, len(body))
	for id, raw := range body {
		var answer string
		if err := json.Unmarshal(raw, &answer); err != nil {
			s.failure(w, r, &ErrValidation{Field: id, Message: "answer must be a string"})
			return nil, false
		}
		answers[id] = answer
	}
	return answers, true
}

func (s *Server) handleGetByFormToken(w http.ResponseWriter, r *http.Request) {
	c, err := s.service.GetByFormToken(r.Context(), r.PathValue("token"))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusOK, c)
}

func (s *Server) handleSubmitFormByToken(w http.ResponseWriter, r *http.Request) {
	answers, ok := s.decodeAnswers(w, r)
	if !ok {
		return
	}
	c, err := s.service.SubmitFormByToken(r.Context(), r.PathValue("token"), answers)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusOK, c)
}

// handleSubmitForm records the recruitment questionnaire and renders its PDF
func (s *Server) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	answers, ok := s.decodeAnswers(w, r)
	if !ok {
		return
	}
	c, err := s.service.SubmitForm(r.Context(), r.PathValue("id"), answers)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusOK, c)
}

func (s *Server) handleGetByEvalToken(w http.ResponseWriter, r *http.Request) {
	c, err := s.service.GetByEvalToken(r.Context(), r.PathValue("token"))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusOK, c)
}

func (s *Server) handleSubmitEvaluationByToken(w http.ResponseWriter, r *http.Request) {
	answers, ok := s.decodeAnswers(w, r)
	if !ok {
		return
	}
	c, err := s.service.SubmitEvaluationByToken(r.Context(), r.PathValue("token"), answers)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusOK, c)
}

// handleActivateEvaluation opens the evaluation gate and returns the record with its token
func (s *Server) handleActivateEvaluation(w http.ResponseWriter, r *http.Request) {
	c, err := s.service.ActivateEvaluation(r.Context(), r.PathValue("id"))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusOK, c)
}

func (s *Server) handleSubmitEvaluation(w http.ResponseWriter, r *http.Request) {
	answers, ok := s.decodeAnswers(w, r)
	if !ok {
		return
	}
	c, err := s.service.SubmitEvaluation(r.Context(), r.PathValue("id"), answers)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusOK, c)
}

// handleCorrectEvaluation scores a submitted evaluation
func (s *Server) handleCorrectEvaluation(w http.ResponseWriter, r *http.Request) {
	var req types.CorrectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.failure(w, r, &ErrValidation{Field: "evalCorrection", Message: "corrections are required"})
		return
	}

	c, err := s.service.CorrectEvaluation(r.Context(), r.PathValue("id"), req.EvalCorrection)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.success(w, http.StatusOK, c)
}
