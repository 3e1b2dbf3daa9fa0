package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter tracks request counts per key with a sliding window.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.RWMutex
	entries map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a new rate limiter allowing limit requests per
// window for each key.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*rateLimitEntry),
	}

	go rl.cleanup()

	return rl
}

// Allow reports whether a request from the given key should be allowed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	entry, exists := rl.entries[key]

	if !exists {
		rl.entries[key] = &rateLimitEntry{count: 1, windowStart: now}
		return true
	}

	if now.Sub(entry.windowStart) > rl.window {
		entry.count = 1
		entry.windowStart = now
		return true
	}

	if entry.count < rl.limit {
		entry.count++
		return true
	}

	return false
}

// Reset clears the rate limit for a key, used after a successful login so
// a user who finally got their password right is not locked out.
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.entries, key)
}

// TimeUntilReset returns how long until the window expires for a key.
func (rl *RateLimiter) TimeUntilReset(key string) time.Duration {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	entry, exists := rl.entries[key]
	if !exists {
		return 0
	}

	elapsed := time.Since(entry.windowStart)
	if elapsed >= rl.window {
		return 0
	}

	return rl.window - elapsed
}

// cleanup periodically removes expired entries to prevent memory leaks.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, entry := range rl.entries {
			if now.Sub(entry.windowStart) > rl.window {
				delete(rl.entries, key)
			}
		}
		rl.mu.Unlock()
	}
}

// FormRateLimiter holds per-concern limiters for the site's form
// endpoints. Auth endpoints get tight limits, enquiry and contact forms a
// looser one.
type FormRateLimiter struct {
	login    *RateLimiter
	register *RateLimiter
	reset    *RateLimiter
	enquiry  *RateLimiter
	logger   *slog.Logger
}

// NewFormRateLimiter creates limiters with defaults:
//   - Login: 5 attempts per 15 minutes
//   - Register: 3 attempts per hour
//   - Password reset / resend verification: 3 attempts per hour
//   - Enquiry and contact forms: 20 submissions per hour
func NewFormRateLimiter(logger *slog.Logger) *FormRateLimiter {
	return &FormRateLimiter{
		login:    NewRateLimiter(5, 15*time.Minute),
		register: NewRateLimiter(3, time.Hour),
		reset:    NewRateLimiter(3, time.Hour),
		enquiry:  NewRateLimiter(20, time.Hour),
		logger:   logger,
	}
}

// LimitLogin returns middleware for rate limiting login attempts.
func (f *FormRateLimiter) LimitLogin(next http.Handler) http.Handler {
	return f.limit(f.login, next)
}

// LimitRegister returns middleware for rate limiting registration attempts.
func (f *FormRateLimiter) LimitRegister(next http.Handler) http.Handler {
	return f.limit(f.register, next)
}

// LimitPasswordReset returns middleware for rate limiting password reset
// and verification resend requests.
func (f *FormRateLimiter) LimitPasswordReset(next http.Handler) http.Handler {
	return f.limit(f.reset, next)
}

// LimitEnquiry returns middleware for rate limiting enquiry and contact
// form submissions.
func (f *FormRateLimiter) LimitEnquiry(next http.Handler) http.Handler {
	return f.limit(f.enquiry, next)
}

// ResetLogin clears the login limit for an IP after successful sign-in.
func (f *FormRateLimiter) ResetLogin(ip string) {
	f.login.Reset(ip)
}

func (f *FormRateLimiter) limit(limiter *RateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)

		if !limiter.Allow(clientIP) {
			f.logger.Warn("rate limit exceeded",
				"ip", clientIP,
				"path", r.URL.Path,
				"method", r.Method,
			)

			retryAfter := int(limiter.TimeUntilReset(clientIP).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Too Many Requests</title></head>
<body>
<h1>Too Many Requests</h1>
<p>You have made too many requests. Please wait a moment and try again.</p>
</body>
</html>`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the client IP from the request, considering proxy
// headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First entry is the original client
		ips := strings.Split(xff, ",")
		if clientIP := strings.TrimSpace(ips[0]); clientIP != "" {
			return clientIP
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}
