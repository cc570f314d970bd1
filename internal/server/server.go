// Package server exposes layouts and cooling-rate sweeps over HTTP.
//
// Routes:
//
//	POST /v1/layouts      lay out an explicit graph or a generated topology
//	POST /v1/sweeps       run a cooling-rate sweep; the result carries an id
//	GET  /v1/sweeps/{id}  fetch a stored sweep result
//	GET  /healthz         liveness and build information
//	GET  /metrics         Prometheus metrics
//
// Configuration errors are answered with 400 and a body naming the
// offending field:
//
//	{"code": "INVALID_PARAMETER", "field": "cooling_rate", "message": "must be < 1, got 1.5"}
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/forcelayout/pkg/config"
	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/fdp"
	"github.com/matzehuels/forcelayout/pkg/observability"
	"github.com/matzehuels/forcelayout/pkg/optimize"
	"github.com/matzehuels/forcelayout/pkg/pipeline"
)

// maxBodyBytes bounds request bodies; explicit graphs are the largest input.
const maxBodyBytes = 8 << 20

// StatusClientClosedRequest is returned when the client went away before
// the run finished.
const StatusClientClosedRequest = 499

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	metrics  *observability.Prometheus
	logger   *log.Logger
	cfg      config.ServerConfig
	params   fdp.Parameters
	sweep    optimize.Range
	shutdown time.Duration
}

// New creates a server. Request parameters default to cfg.Simulation and
// cfg.Sweep. metrics may be nil, in which case /metrics is not served.
func New(runner *pipeline.Runner, metrics *observability.Prometheus, cfg *config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:   runner,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg.Server,
		params:   cfg.Simulation,
		sweep:    cfg.Sweep,
		shutdown: 10 * time.Second,
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(bodyLimit(maxBodyBytes))
		r.Post("/layouts", s.handleLayout)
		r.Post("/sweeps", s.handleSweep)
		r.Get("/sweeps/{id}", s.handleGetSweep)
	})
	return r
}

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	if s.cfg.RequestTimeout > 0 {
		srv.WriteTimeout = s.cfg.RequestTimeout + 30*time.Second
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.shutdown)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// =============================================================================
// Responses
// =============================================================================

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// respondError maps err to a status code: configuration errors are the
// caller's to fix (400), cancellations are 499 when the client left and 503
// when the request timed out.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	switch {
	case errors.IsConfig(err):
		status = http.StatusBadRequest
	case code == errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case code == errors.ErrCodeCancelled:
		status = http.StatusServiceUnavailable
		if r.Context().Err() != nil {
			status = StatusClientClosedRequest
		}
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}

	resp := ErrorResponse{Code: code, Field: errors.GetField(err), Message: errors.GetMessage(err)}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		resp.Message = "internal error"
	}
	s.respondJSON(w, status, resp)
}
