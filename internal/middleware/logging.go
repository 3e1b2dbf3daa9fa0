package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RequestLogging logs HTTP requests with timing and status information.
type RequestLogging struct {
	logger *slog.Logger
}

// NewRequestLogging creates a new request logging middleware.
func NewRequestLogging(logger *slog.Logger) *RequestLogging {
	return &RequestLogging{
		logger: logger,
	}
}

// Handler returns middleware that logs all HTTP requests.
func (m *RequestLogging) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipLogging(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		attrs := []any{
			"method", r.Method,
			"path", redactQuery(r.URL.Path, r.URL.Query()),
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", getClientIP(r),
		}

		if wrapped.statusCode >= 500 {
			m.logger.Warn("request", attrs...)
		} else {
			m.logger.Info("request", attrs...)
		}
	})
}

// skipLogging returns true for paths that are too noisy to log.
func skipLogging(path string) bool {
	if path == "/health" || path == "/metrics" {
		return true
	}
	return strings.HasPrefix(path, "/static/")
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// redactQuery rebuilds the query string with sensitive values masked.
// Verification and password reset links carry single-use tokens in the
// query, and those must never end up in logs.
func redactQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}

	sensitive := map[string]bool{
		"token":         true,
		"code":          true,
		"state":         true,
		"password":      true,
		"access_token":  true,
		"refresh_token": true,
	}

	redacted := url.Values{}
	for key, values := range query {
		if sensitive[strings.ToLower(key)] {
			redacted.Set(key, "[REDACTED]")
			continue
		}
		for _, v := range values {
			redacted.Add(key, v)
		}
	}

	return path + "?" + redacted.Encode()
}
