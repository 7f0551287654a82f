package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/namehunt-core/internal/monitoring"
)

// statusRecorder captures the response status for logging and metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush forwards to the underlying writer so SSE streaming keeps working
// behind the middleware chain.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// RequestLogger logs each request and records HTTP metrics
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			// The route pattern keeps metric cardinality bounded; raw paths
			// contain IDs.
			path := r.Pattern
			if path == "" {
				path = r.URL.Path
			}

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", duration.Milliseconds(),
			)

			if monitoring.HTTPRequestsTotal != nil {
				status := strconv.Itoa(rec.status)
				monitoring.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
				monitoring.HTTPRequestDuration.WithLabelValues(r.Method, path, status).Observe(duration.Seconds())
			}
		})
	}
}
