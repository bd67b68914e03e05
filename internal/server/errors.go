package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/candidate-tracker/internal/artifacts"
	"github.com/jonathan/candidate-tracker/internal/extraction"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/rendering"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound     *lifecycle.NotFoundError
		transition   *lifecycle.InvalidTransitionError
		invalid      *lifecycle.ValidationError
		request      *ErrValidation
		fieldErrs    validator.ValidationErrors
		formNotFound *extraction.FormNotFoundError
		modelErr     *extraction.ModelError
		schemaErr    *extraction.SchemaError
		uploadErr    *artifacts.UploadError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &transition):
		return http.StatusConflict
	case errors.As(err, &invalid), errors.As(err, &request), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.As(err, &formNotFound):
		return http.StatusBadRequest
	case errors.As(err, &modelErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &uploadErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// failure writes err with its mapped status. Internal errors are logged and
// their details withheld from the client.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status < http.StatusInternalServerError {
		s.errorResponse(w, status, err.Error())
		return
	}

	s.logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err))

	var renderErr *rendering.RenderError
	switch {
	case status == http.StatusServiceUnavailable:
		s.errorResponse(w, status, "text-generation service unavailable")
	case status == http.StatusBadGateway:
		s.errorResponse(w, status, "object storage unavailable")
	case errors.As(err, &renderErr):
		s.errorResponse(w, status, "failed to generate document")
	default:
		s.errorResponse(w, status, "internal server error")
	}
}
