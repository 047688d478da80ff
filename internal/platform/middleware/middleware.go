package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"relato/internal/platform/metrics"
	"relato/pkg/requestcontext"
)

// RequestContext stamps every request with an ID and its arrival time, and
// lifts the caller identity from the X-User-ID header into the context.
// Authentication happens upstream; this layer only carries the result.
func RequestContext(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = requestcontext.WithRequestID(ctx, uuid.NewString())
			ctx = requestcontext.WithTime(ctx, time.Now())

			if raw := r.Header.Get("X-User-ID"); raw != "" {
				userID, err := uuid.Parse(raw)
				if err != nil {
					logger.WarnContext(ctx, "ignoring malformed X-User-ID header",
						"value", raw,
						"error", err,
					)
				} else {
					ctx = requestcontext.WithUserID(ctx, userID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Instrument records request counts and latency against the matched chi
// route pattern, so path parameters do not explode label cardinality.
func Instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			m.ObserveRequest(r.Method, route, strconv.Itoa(sw.status), time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// RequireUser rejects requests that did not carry a resolvable user identity.
func RequireUser(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.UserID(ctx) == uuid.Nil {
				logger.WarnContext(ctx, "rejected request without user identity",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"missing user identity"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
