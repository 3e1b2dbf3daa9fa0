package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soulparadise/web/internal/domain"
)

// stubResolver implements SessionResolver with a function field.
type stubResolver struct {
	CurrentUserFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request) (*domain.User, error)
}

func (s *stubResolver) CurrentUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (*domain.User, error) {
	if s.CurrentUserFunc != nil {
		return s.CurrentUserFunc(ctx, w, r)
	}
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signedIn(user *domain.User) *stubResolver {
	return &stubResolver{
		CurrentUserFunc: func(context.Context, http.ResponseWriter, *http.Request) (*domain.User, error) {
			return user, nil
		},
	}
}

func TestWithUser_SetsContextUser(t *testing.T) {
	mw := NewAuthMiddleware(signedIn(&domain.User{ID: "u1", Name: "Amy"}), testLogger())

	var got *domain.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUser(r.Context())
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/account", nil)
	mw.WithUser(next).ServeHTTP(w, r)

	if got == nil || got.ID != "u1" {
		t.Errorf("context user = %+v", got)
	}
}

func TestWithUser_ResolutionFailureContinuesAnonymous(t *testing.T) {
	resolver := &stubResolver{
		CurrentUserFunc: func(context.Context, http.ResponseWriter, *http.Request) (*domain.User, error) {
			return nil, errors.New("backend down")
		},
	}
	mw := NewAuthMiddleware(resolver, testLogger())

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if GetUser(r.Context()) != nil {
			t.Error("expected anonymous context")
		}
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	mw.WithUser(next).ServeHTTP(w, r)

	if !called {
		t.Error("the page must still render when session resolution fails")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestRequireUser_RedirectsAnonymous(t *testing.T) {
	mw := NewAuthMiddleware(signedIn(nil), testLogger())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for anonymous requests")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/account?tab=details", nil)
	Stack(mw.WithUser, mw.RequireUser)(next).ServeHTTP(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?return_to=/account?tab=details" {
		t.Errorf("Location = %q", loc)
	}
}

func TestRequireUser_PassesSignedIn(t *testing.T) {
	mw := NewAuthMiddleware(signedIn(&domain.User{ID: "u1"}), testLogger())

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/account", nil)
	Stack(mw.WithUser, mw.RequireUser)(next).ServeHTTP(w, r)

	if !called {
		t.Error("signed-in request should reach the handler")
	}
}

func TestRedirectAuthenticated(t *testing.T) {
	tests := []struct {
		name       string
		user       *domain.User
		target     string
		wantPassed bool
	}{
		{
			name:       "anonymous reaches login page",
			user:       nil,
			target:     "/login",
			wantPassed: true,
		},
		{
			name:       "signed-in user is redirected home",
			user:       &domain.User{ID: "u1"},
			target:     "/login",
			wantPassed: false,
		},
		{
			name:       "fresh registrant sees the verification notice",
			user:       &domain.User{ID: "u2"},
			target:     "/login?registered=true&email=amy%40example.com",
			wantPassed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewAuthMiddleware(signedIn(tt.user), testLogger())

			passed := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				passed = true
			})

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			Stack(mw.WithUser, mw.RedirectAuthenticated)(next).ServeHTTP(w, r)

			if passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v (status %d)", passed, tt.wantPassed, w.Code)
			}
			if !tt.wantPassed {
				if loc := w.Header().Get("Location"); loc != "/" {
					t.Errorf("Location = %q, want /", loc)
				}
			}
		})
	}
}

func TestGetUser_MissingReturnsNil(t *testing.T) {
	if GetUser(context.Background()) != nil {
		t.Error("empty context should resolve to nil user")
	}
}

func TestStack_OrdersFirstOutermost(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Stack(tag("a"), tag("b"), tag("c"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"a", "b", "c", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
