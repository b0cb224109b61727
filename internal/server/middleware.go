package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/metrics"
)

// MaxRequestIDLength caps client-supplied X-Request-ID values.
const MaxRequestIDLength = 128

// validRequestID keeps client IDs safe to echo into headers and logs.
var validRequestID = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

type requestIDKey struct{}

// RequestIDFrom returns the request ID stored by the RequestID middleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Recovery answers a panicking handler with a 500 JSON error and logs the
// stack. http.ErrAbortHandler is re-raised so net/http still aborts the connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), config.MsgPanic,
					config.LogKeyComponent, config.CompServer,
					config.LogKeyError, fmt.Sprint(rec),
					config.LogKeyRequestID, RequestIDFrom(r.Context()),
					config.LogKeyStack, string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, config.ErrInternal)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID tags the request with the client's X-Request-ID when it is short
// and made of safe characters, or with a fresh UUID otherwise. The ID is
// echoed in the response and readable through RequestIDFrom.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(config.HeaderRequestID)
		if len(id) > MaxRequestIDLength || !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set(config.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// Logger writes one access line per request. Health checks are only logged
// when they fail.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if r.URL.Path == config.RouteHealth && status < http.StatusInternalServerError {
				return
			}

			logger.InfoContext(r.Context(), config.MsgHTTPRequest,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyMethod, r.Method,
				config.LogKeyPath, r.URL.Path,
				config.LogKeyStatus, status,
				config.LogKeySizeBytes, ww.BytesWritten(),
				config.LogKeyDuration, time.Since(start).Milliseconds(),
				config.LogKeyRequestID, RequestIDFrom(r.Context()),
				config.LogKeyRemote, r.RemoteAddr,
			)
		})
	}
}

// BodyLimit caps request bodies at maxBytes.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Latency observes request durations labeled by chi route pattern.
func Latency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if m == nil {
				return
			}
			m.ObserveEndpointLatency(routeLabel(r), time.Since(start).Seconds())
		})
	}
}

func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return config.MetricRouteUnmatched
}
