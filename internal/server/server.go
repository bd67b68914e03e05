// Package server provides the HTTP REST API for the candidate tracker.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/ingestion"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/llm"
	"github.com/jonathan/candidate-tracker/internal/server/ratelimit"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// Upload limits
const (
	MaxCVBytes     = 10 << 20
	MaxReportBytes = 20 << 20
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Extractor reads the recruitment form fields out of CV text.
type Extractor interface {
	Extract(ctx context.Context, documentText string) (*types.ExtractedFields, error)
}

// CVArchive stores uploaded CVs and returns their object key.
type CVArchive interface {
	StoreCV(ctx context.Context, filename string, body []byte) (string, error)
}

// ModelHealth reports on the text-generation endpoint.
type ModelHealth interface {
	Health(ctx context.Context) (*llm.Health, error)
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Service   *lifecycle.Service
	Extractor Extractor
	CVs       CVArchive
	Model     ModelHealth
	Logger    *slog.Logger
}

// Config holds server configuration
type Config struct {
	Port        int
	CORSOrigins []string
	RateLimit   *ratelimit.Config
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	service     *lifecycle.Service
	extractor   Extractor
	cvs         CVArchive
	model       ModelHealth
	logger      *slog.Logger
	rateLimiter *ratelimit.Limiter
	corsOrigins []string

	pdfText func([]byte) (string, error)
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Service == nil {
		return nil, fmt.Errorf("server requires a lifecycle service")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		service:     deps.Service,
		extractor:   deps.Extractor,
		cvs:         deps.CVs,
		model:       deps.Model,
		logger:      logger,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		corsOrigins: cfg.CORSOrigins,
		pdfText:     ingestion.PDFBytesText,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 6 * time.Minute, // extraction waits on the model
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Extraction
	mux.HandleFunc("GET /api/cv/health", s.handleModelHealth)
	mux.HandleFunc("POST /api/cv/extract", s.handleExtract)

	// Candidates
	mux.HandleFunc("POST /api/cv/save", s.handleSaveCandidate)
	mux.HandleFunc("GET /api/cv", s.handleListCandidates)
	mux.HandleFunc("GET /api/cv/{id}", s.handleGetCandidate)
	mux.HandleFunc("PUT /api/cv/{id}", s.handleUpdateCandidate)
	mux.HandleFunc("DELETE /api/cv/{id}", s.handleDeleteCandidate)
	mux.HandleFunc("POST /api/cv/{id}/transitions", s.handleTransition)
	mux.HandleFunc("POST /api/cv/{id}/upload-rapport-stage", s.handleUploadReport)

	// Recruitment questionnaire
	mux.HandleFunc("GET /api/cv/token/{token}", s.handleGetByFormToken)
	mux.HandleFunc("POST /api/cv/token/{token}/submit", s.handleSubmitFormByToken)
	mux.HandleFunc("PATCH /api/cv/qualified/{id}", s.handleSubmitForm)

	// Evaluation
	mux.HandleFunc("GET /api/cv/eval/token/{token}", s.handleGetByEvalToken)
	mux.HandleFunc("POST /api/cv/eval/token/{token}/submit", s.handleSubmitEvaluationByToken)
	mux.HandleFunc("PUT /api/cv/eval/activate/{id}", s.handleActivateEvaluation)
	mux.HandleFunc("PATCH /api/cv/eval/submit/{id}", s.handleSubmitEvaluation)
	mux.HandleFunc("PATCH /api/cv/eval/correct/{id}", s.handleCorrectEvaluation)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start begins listening for requests and blocks until SIGINT/SIGTERM or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(s.corsOrigins) == 0 || slices.Contains(s.corsOrigins, "*"):
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.corsOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging assigns a request id and logs each request once it completes
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote", r.RemoteAddr))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// success writes data in the success envelope
func (s *Server) success(w http.ResponseWriter, status int, data any) {
	s.jsonResponse(w, status, envelope{Success: true, Data: data})
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, envelope{Success: false, Error: message})
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())+1))
	}
	s.logger.Warn("rate limit exceeded",
		slog.Int("limit", info.Limit),
		slog.Time("reset", info.ResetTime))
	s.errorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}
