package handler

import (
	"net/http"
	"strings"

	"oil-config/internal/model"
	"oil-config/internal/oilconfig"
	"oil-config/internal/session"
)

// handleConfig returns the resolved banner settings for the request's session.
// GET /oil/config
func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	resolver, err := h.resolve(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Vary", session.ContextHeader)
	h.writeJSON(w, http.StatusOK, resolver.Snapshot())
}

// handleLanguage returns the language code for a locale variant. Without a
// locale parameter the session's resolved variant is used.
// GET /oil/config/language?locale=deDE_01
func (h *Handler) handleLanguage(w http.ResponseWriter, r *http.Request) {
	locale := strings.TrimSpace(r.URL.Query().Get("locale"))
	if locale == "" {
		resolver, err := h.resolve(r.Context(), session.FromContext(r.Context()))
		if err != nil {
			h.writeError(w, err)
			return
		}
		locale = resolver.LocaleVariantName()
	}

	h.writeJSON(w, http.StatusOK, LanguageResult{
		Locale:   locale,
		Language: oilconfig.LanguageFromLocale(locale),
	})
}

// handleValue returns one stored setting exactly as configured, without
// defaulting. The synthesized locale URL is reported once it exists.
// GET /oil/config/values/{key}
func (h *Handler) handleValue(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	resolver, err := h.resolve(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if key == oilconfig.KeyLocaleURL {
		resolver.LocaleURL()
	}

	v := resolver.Value(key, nil)
	if v == nil {
		h.writeError(w, model.NewNotFoundError("setting "+key))
		return
	}

	h.writeJSON(w, http.StatusOK, valueResponse{Key: key, Value: v})
}

// handleHealth returns a simple health check response.
// GET /health, GET /healthz
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if h.versions != nil {
		resp.Release = h.versions.LatestReleaseVersion()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// LanguageResult pairs a locale variant with its language code.
type LanguageResult struct {
	Locale   string `json:"locale"`
	Language string `json:"language"`
}

type valueResponse struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Release string `json:"release,omitempty"`
}
