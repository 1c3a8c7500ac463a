package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// CountryLocator resolves a client address to a country code.
// *geo.Locator satisfies it; a nil locator is allowed.
type CountryLocator interface {
	Lookup(ip string) (country string, ok bool)
}

// Middleware parses the Oil-Context header, fills in the visitor country from
// geolocation when the header does not name one, and stores the Hints in the
// request context for handlers.
//
// A malformed header is rejected with 400 Bad Request; a missing header is fine.
func Middleware(locator CountryLocator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Health checks and MCP carry no session hints
			if isExemptPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get(ContextHeader)
			hints, err := ParseContextHeader(header)
			if err != nil {
				logger.Warn("invalid Oil-Context header",
					slog.String("header", header),
					slog.String("error", err.Error()))
				writeSessionError(w, http.StatusBadRequest, InvalidContext,
					"Invalid Oil-Context header: "+err.Error())
				return
			}

			hints.ClientIP = ClientIP(r)
			if hints.Country == "" && locator != nil {
				if country, ok := locator.Lookup(hints.ClientIP); ok {
					hints.Country = country
				}
			}

			reqCtx := context.WithValue(r.Context(), HintsContextKey, hints)
			next.ServeHTTP(w, r.WithContext(reqCtx))
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop, falling back to RemoteAddr.
// The port is stripped.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// isExemptPath returns true for paths that don't take session hints.
func isExemptPath(path string) bool {
	switch {
	case path == "/health" || path == "/healthz":
		return true
	case path == "/mcp" || strings.HasPrefix(path, "/mcp/"):
		return true
	default:
		return false
	}
}

// writeSessionError writes the standard error envelope.
func writeSessionError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}{}
	resp.Error.Code = code
	resp.Error.Message = message

	json.NewEncoder(w).Encode(resp)
}

// FromContext retrieves the hints stored by Middleware.
// Returns empty hints if the middleware was skipped.
func FromContext(ctx context.Context) Hints {
	h, _ := ctx.Value(HintsContextKey).(Hints)
	return h
}
