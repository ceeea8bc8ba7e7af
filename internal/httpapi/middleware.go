// v1
// internal/httpapi/middleware.go
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/metrics"
)

// WrapWithLogging decorates the provided handler to record structured
// HTTP access logs with latency, method, path, and status code.
func WrapWithLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		logger.Info("http_request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rw.status),
			slog.String("duration", duration.String()),
		)
		if r.URL.Path == "/status" {
			metrics.ObserveStatusRequest(rw.status, duration)
		}
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader stores the status code so the middleware can log it.
func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
