// Package handler provides HTTP handlers for the banner configuration API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"oil-config/internal/banner"
	"oil-config/internal/model"
	"oil-config/internal/oilconfig"
	"oil-config/internal/session"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	source   banner.Source
	versions oilconfig.ReleaseVersioner
	logger   *slog.Logger
}

// New creates a new Handler serving records from source. versions feeds the
// default hub path; nil uses the build version.
func New(source banner.Source, versions oilconfig.ReleaseVersioner, logger *slog.Logger) *Handler {
	return &Handler{
		source:   source,
		versions: versions,
		logger:   logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// REST transport - resolved settings for the request's session
	mux.HandleFunc("GET /oil/config", h.handleConfig)
	mux.HandleFunc("GET /oil/config/language", h.handleLanguage)
	mux.HandleFunc("GET /oil/config/values/{key}", h.handleValue)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

// resolve builds a fresh resolver for one session: a private copy of the base
// record with the session hints applied.
func (h *Handler) resolve(ctx context.Context, hints session.Hints) (*oilconfig.Resolver, error) {
	raw, err := h.source.Banner(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading banner config: %w", err)
	}

	logger := h.logger
	if hints.ClientIP != "" {
		logger = logger.With(slog.String("client_ip", hints.ClientIP))
	}

	r := oilconfig.New(raw,
		oilconfig.WithLogger(logger),
		oilconfig.WithReleaseVersioner(h.versions),
	)
	session.Record(ctx, hints.Apply(r))
	return r, nil
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError

	if errors.As(err, &apiErr) {
		// Found APIError in error chain - use it
	} else {
		// Wrap unexpected errors
		apiErr = model.NewInternalError(err)
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
