package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/forcelayout/pkg/buildinfo"
	"github.com/matzehuels/forcelayout/pkg/cache"
	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/fdp"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/optimize"
	"github.com/matzehuels/forcelayout/pkg/pipeline"
)

// =============================================================================
// Request and response types
// =============================================================================

// LayoutRequest asks for one layout. Exactly one of Topology or Graph must
// be set; omitted parameters take the server defaults.
type LayoutRequest struct {
	pipeline.GraphSource
	Params fdp.Parameters `json:"params"`
}

// LayoutResponse is the answer to a LayoutRequest.
type LayoutResponse struct {
	Layout     graph.Layout `json:"layout"`
	GraphHash  string       `json:"graph_hash"`
	DurationMS int64        `json:"duration_ms"`
	CacheHit   bool         `json:"cache_hit"`
}

// SweepRequest asks for a cooling-rate sweep.
type SweepRequest struct {
	pipeline.GraphSource
	Params  fdp.Parameters `json:"params"`
	Range   optimize.Range `json:"range"`
	Seed    uint64         `json:"seed,omitempty"`
	Refresh bool           `json:"refresh,omitempty"`
}

// SweepResponse is the answer to a SweepRequest. ID can be used with
// GET /v1/sweeps/{id} while the result is cached.
type SweepResponse struct {
	ID         string           `json:"id"`
	Source     string           `json:"source"`
	Result     *optimize.Result `json:"result"`
	DurationMS int64            `json:"duration_ms"`
	CacheHit   bool             `json:"cache_hit"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req := LayoutRequest{Params: s.params}
	if err := decodeJSON(r.Body, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	g, err := req.Build(fdp.NewRand(req.Params.Seed))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	res, err := s.runner.Layout(ctx, g, req.Params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, LayoutResponse{
		Layout:     res.Layout,
		GraphHash:  res.GraphHash,
		DurationMS: res.Duration.Milliseconds(),
		CacheHit:   res.CacheHit,
	})
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	req := SweepRequest{Params: s.params, Range: s.sweep}
	if err := decodeJSON(r.Body, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Seed == 0 {
		req.Seed = req.Params.Seed
	}
	if limit := s.cfg.MaxSampleSize; limit > 0 && req.Range.SampleSize > limit {
		s.respondError(w, r, errors.Field(errors.ErrCodeInvalidRange, "sample_size",
			"must be <= %d, got %d", limit, req.Range.SampleSize))
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	res, err := s.runner.Sweep(ctx, pipeline.SweepRequest{
		Source:  req.GraphSource,
		Params:  req.Params,
		Range:   req.Range,
		Seed:    req.Seed,
		Refresh: req.Refresh,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := SweepResponse{
		ID:         uuid.NewString(),
		Source:     req.Spec(),
		Result:     res.Result,
		DurationMS: res.Duration.Milliseconds(),
		CacheHit:   res.CacheHit,
	}
	s.storeSweep(r.Context(), resp)
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSweep(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		s.respondError(w, r, errors.Field(errors.ErrCodeInvalidInput, "id", "not a UUID: %q", id))
		return
	}

	data, hit, err := s.runner.Cache.Get(r.Context(), sweepKey(id))
	if err != nil {
		s.respondError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "load sweep %s", id))
		return
	}
	if !hit {
		s.respondError(w, r, errors.Field(errors.ErrCodeNotFound, "id", "sweep %s not found", id))
		return
	}

	var resp SweepResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		s.respondError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "decode sweep %s", id))
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Helpers
// =============================================================================

// sweepKey is the cache key of a sweep result stored by id.
func sweepKey(id string) string {
	return "sweep-id:" + id
}

// storeSweep keeps resp retrievable by id. Failures are logged, not returned:
// the caller already has the result.
func (s *Server) storeSweep(ctx context.Context, resp SweepResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Warn("encode sweep", "id", resp.ID, "error", err)
		return
	}
	if err := s.runner.Cache.Set(ctx, sweepKey(resp.ID), data, cache.TTLSweep); err != nil {
		s.logger.Warn("store sweep", "id", resp.ID, "error", err)
	}
}

// requestContext bounds a run by the configured request timeout.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout > 0 {
		return context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	}
	return context.WithCancel(r.Context())
}

// decodeJSON decodes a single JSON object into v, rejecting unknown fields.
func decodeJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return errors.Field(errors.ErrCodeInvalidInput, "body", "request body exceeds %d bytes", maxErr.Limit)
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request").WithField("body")
	}
	return nil
}
