// Package middleware provides HTTP middleware for the banner configuration service.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"oil-config/internal/model"
	"oil-config/internal/session"
)

// Logging returns middleware that writes one access log line per request.
// Requests that resolved a banner session also log how the hints shaped it:
// whether a locale hint was used, where the GDPR decision came from, and the
// visitor country. Server errors are logged at error level.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, trace := session.WithTrace(r.Context())
			rec := record(w)

			next.ServeHTTP(rec, r.WithContext(ctx))

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int("bytes", rec.bytes),
				slog.Duration("duration", time.Since(start)),
				slog.String("client_ip", session.ClientIP(r)),
			}
			if o, ok := trace.Outcome(); ok {
				attrs = append(attrs, slog.Group("session",
					slog.Bool("locale_hint", o.LocaleHint),
					slog.String("gdpr", o.GDPRSource),
					slog.String("country", o.Country),
				))
			}

			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "request", attrs...)
		})
	}
}

// Recovery returns middleware that turns a handler panic into a 500 with the
// service's JSON error envelope. The panic and stack are logged.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := record(w)
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				logger.Error("panic recovered",
					slog.Any("error", p),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				if rec.wroteHeader {
					return
				}
				apiErr := model.NewInternalError(nil)
				rec.Header().Set("Content-Type", "application/json")
				rec.WriteHeader(apiErr.StatusCode)
				json.NewEncoder(rec).Encode(map[string]any{
					"error": map[string]string{"code": apiErr.Code, "message": apiErr.Message},
				})
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// recorder remembers the status and body size written through it.
type recorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

// record wraps w, reusing an existing recorder so nested middleware share counts.
func record(w http.ResponseWriter) *recorder {
	if rec, ok := w.(*recorder); ok {
		return rec
	}
	return &recorder{ResponseWriter: w, status: http.StatusOK}
}

func (w *recorder) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *recorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Flush keeps MCP event streams unbuffered.
func (w *recorder) Flush() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *recorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Chain applies middlewares so the first one listed is outermost.
func Chain(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			h = middlewares[i](h)
		}
		return h
	}
}
