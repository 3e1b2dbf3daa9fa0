package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")

	if rl.Allow("10.0.0.1") {
		t.Error("third request should be blocked")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	rl.Allow("10.0.0.1")

	if !rl.Allow("10.0.0.2") {
		t.Error("a different key must not inherit another key's count")
	}
}

func TestRateLimiter_Reset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	rl.Allow("10.0.0.1")
	if rl.Allow("10.0.0.1") {
		t.Fatal("should be at the limit")
	}

	rl.Reset("10.0.0.1")

	if !rl.Allow("10.0.0.1") {
		t.Error("reset should clear the count")
	}
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	rl.Allow("10.0.0.1")
	time.Sleep(20 * time.Millisecond)

	if !rl.Allow("10.0.0.1") {
		t.Error("an expired window should start a fresh count")
	}
}

func TestRateLimiter_TimeUntilReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if d := rl.TimeUntilReset("unknown"); d != 0 {
		t.Errorf("unknown key should report 0, got %v", d)
	}

	rl.Allow("10.0.0.1")
	d := rl.TimeUntilReset("10.0.0.1")
	if d <= 0 || d > time.Minute {
		t.Errorf("TimeUntilReset = %v", d)
	}
}

func TestFormRateLimiter_LimitReturns429(t *testing.T) {
	f := NewFormRateLimiter(testLogger())
	handler := f.LimitRegister(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	newReq := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/register", nil)
		r.RemoteAddr = "203.0.113.5:33000"
		return r
	}

	// Register allows 3 per hour
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newReq())
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, newReq())

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response should carry Retry-After")
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestFormRateLimiter_ResetLogin(t *testing.T) {
	f := NewFormRateLimiter(testLogger())
	handler := f.LimitLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	newReq := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.RemoteAddr = "203.0.113.9:40000"
		return r
	}

	for i := 0; i < 5; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), newReq())
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, newReq())
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("should be limited after 5 attempts, got %d", w.Code)
	}

	f.ResetLogin("203.0.113.9")

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, newReq())
	if w.Code != http.StatusOK {
		t.Errorf("login limit should be cleared after reset, got %d", w.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "192.0.2.1:12345",
			want:       "192.0.2.1",
		},
		{
			name:       "x-forwarded-for wins",
			remoteAddr: "10.0.0.1:80",
			xff:        "203.0.113.50, 10.0.0.1",
			want:       "203.0.113.50",
		},
		{
			name:       "x-real-ip fallback",
			remoteAddr: "10.0.0.1:80",
			realIP:     "203.0.113.60",
			want:       "203.0.113.60",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.0.2.7",
			want:       "192.0.2.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}

			if got := getClientIP(r); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
