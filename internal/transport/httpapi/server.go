// Package httpapi exposes the fusion search engine over a chi-routed JSON
// API: search, weight preference management, health, and metrics.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/scenedex/scenedex/internal/domain"
	"github.com/scenedex/scenedex/internal/domain/channel"
	"github.com/scenedex/scenedex/internal/domain/search/request"
	"github.com/scenedex/scenedex/internal/domain/weights"
	healthuc "github.com/scenedex/scenedex/internal/usecase/health"
	searchuc "github.com/scenedex/scenedex/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the API handlers.
type Server struct {
	search        searchService
	weights       weightsService
	health        healthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search searchService, weights weightsService, health healthService, logger *zap.Logger) *Server {
	s := &Server{
		search:  search,
		weights: weights,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownChannel, http.StatusBadRequest, CodeUnknownChannel),
		sentinelHandler(domain.ErrWeightLocked, http.StatusConflict, CodeWeightLocked),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
	}
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/v1/search", s.Search)
	r.Route("/v1/weights", func(r chi.Router) {
		r.Get("/", s.GetWeights)
		r.Delete("/", s.ResetWeights)
		r.Put("/{key}", s.UpdateWeight)
		r.Post("/preset", s.ApplyPreset)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	searchReq, err := request.New(
		req.Query, req.Owner, req.TopK, req.Threshold,
		weightMap(req.Weights), channelKeys(req.Channels),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	resp, err := s.search.Search(r.Context(), &searchReq)
	if err != nil {
		// Every channel settling without entries is a valid outcome, not a
		// server fault: the caller gets the per-channel breakdown.
		var allFailed *searchuc.AllChannelsFailedError
		if errors.As(err, &allFailed) {
			writeJSON(w, http.StatusOK, SearchResponse{
				Candidates: []CandidateDTO{},
				NoResults:  true,
				Channels: ChannelBreakdown{
					Empty:    keysToStrings(allFailed.Empty),
					Failed:   keysToStrings(allFailed.Failed),
					TimedOut: keysToStrings(allFailed.TimedOut),
				},
			})
			return
		}
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchToDTO(resp))
}

// GetWeights handles GET /v1/weights.
func (s *Server) GetWeights(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerParam(w, r)
	if !ok {
		return
	}

	model, saved, err := s.weights.Get(r.Context(), owner)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weightsToDTO(owner, model, saved))
}

// UpdateWeight handles PUT /v1/weights/{key}: one slider move and/or a lock
// toggle. The redistributed model comes back so the client can reposition
// every slider.
func (s *Server) UpdateWeight(w http.ResponseWriter, r *http.Request) {
	key := channel.Key(chi.URLParam(r, "key"))

	var req UpdateWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Owner == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "owner is required")
		return
	}
	if req.Weight == nil && req.Locked == nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "either weight or locked is required")
		return
	}
	if req.Weight != nil && (*req.Weight < 0 || *req.Weight > 1) {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "weight must be between 0 and 1")
		return
	}

	var model weights.Model
	var err error
	if req.Weight != nil {
		model, err = s.weights.Update(r.Context(), req.Owner, key, *req.Weight)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
	}
	if req.Locked != nil {
		model, err = s.weights.SetLock(r.Context(), req.Owner, key, *req.Locked)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, weightsToDTO(req.Owner, model, true))
}

// ApplyPreset handles POST /v1/weights/preset.
func (s *Server) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	var req PresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Owner == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "owner is required")
		return
	}
	if len(req.Weights) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "weights are required")
		return
	}

	model, err := s.weights.ApplyPreset(r.Context(), req.Owner, weightMap(req.Weights))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weightsToDTO(req.Owner, model, true))
}

// ResetWeights handles DELETE /v1/weights: back to the system default.
func (s *Server) ResetWeights(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerParam(w, r)
	if !ok {
		return
	}

	model, err := s.weights.Reset(r.Context(), owner)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weightsToDTO(owner, model, false))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func ownerParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "owner query parameter is required")
		return "", false
	}
	return owner, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnknownChannel,
		domain.ErrWeightLocked,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
