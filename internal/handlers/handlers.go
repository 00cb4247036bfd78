// Package handlers provides HTTP request handlers
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/findosh/quantcore/internal/config"
	"github.com/findosh/quantcore/internal/services/analytics"
	"github.com/findosh/quantcore/internal/services/marketdata"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// Handler contains all HTTP handlers and dependencies
type Handler struct {
	cfg           *config.Config
	analyticsSvc  *analytics.Service
	marketDataSvc *marketdata.Service
	log           zerolog.Logger
}

// New creates a new handler with all dependencies
func New(
	cfg *config.Config,
	analyticsSvc *analytics.Service,
	marketDataSvc *marketdata.Service,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		cfg:           cfg,
		analyticsSvc:  analyticsSvc,
		marketDataSvc: marketDataSvc,
		log:           log.With().Str("component", "http").Logger(),
	}
}

// Routes registers every endpoint on mux
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("POST /api/analyze", h.APIAnalyze)
	mux.HandleFunc("POST /api/optimize", h.APIOptimize)
	mux.HandleFunc("GET /api/market/quote", h.APIQuote)
	mux.HandleFunc("GET /api/market/status", h.APIMarketStatus)
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"environment": h.cfg.Environment,
	})
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// writeJSON writes v as a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
	}
}

// jsonError writes a JSON error response
func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// serviceError maps a service error to a status code and writes it
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case analytics.IsValidation(err):
		status = http.StatusBadRequest
	case analytics.IsMissingData(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// client went away
		return
	}
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	h.jsonError(w, err.Error(), status)
}
