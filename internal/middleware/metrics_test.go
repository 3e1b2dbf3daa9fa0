package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func metricsHandler(auth *MetricsAuth) http.Handler {
	return auth.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestMetricsAuth_DisabledPassesThrough(t *testing.T) {
	handler := metricsHandler(NewMetricsAuth("", ""))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestMetricsAuth_MissingCredentials(t *testing.T) {
	handler := metricsHandler(NewMetricsAuth("metrics", "secret"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); got != `Basic realm="metrics"` {
		t.Errorf("WWW-Authenticate = %q", got)
	}
}

func TestMetricsAuth_WrongPassword(t *testing.T) {
	handler := metricsHandler(NewMetricsAuth("metrics", "secret"))

	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.SetBasicAuth("metrics", "wrong")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestMetricsAuth_CorrectCredentials(t *testing.T) {
	handler := metricsHandler(NewMetricsAuth("metrics", "secret"))

	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.SetBasicAuth("metrics", "secret")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
