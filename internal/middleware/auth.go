// Package middleware contains HTTP middleware for the Soul Paradise web
// front-end.
//
// Middleware functions follow the standard Go pattern of wrapping
// http.Handler and are composed with Stack.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/soulparadise/web/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const userContextKey contextKey = "user"

// GetUser retrieves the resolved user from the request context.
// Returns nil for anonymous requests.
func GetUser(ctx context.Context) *domain.User {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// setUser stores a user in the request context.
func setUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// SessionResolver resolves the session bound to a request. Implemented by
// the auth controller.
type SessionResolver interface {
	CurrentUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (*domain.User, error)
}

// AuthMiddleware keeps navigation consistent with session state.
type AuthMiddleware struct {
	sessions SessionResolver
	logger   *slog.Logger
}

// NewAuthMiddleware creates the session/route-guard middleware.
func NewAuthMiddleware(sessions SessionResolver, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		logger:   logger,
	}
}

// WithUser resolves the session and stores the user in the request context.
// The request always continues: pages that work anonymously render the
// signed-out variant. A backend 401 has already cleared the stale tokens by
// the time this returns; any other backend failure is logged and the
// request proceeds anonymous rather than failing the page.
func (m *AuthMiddleware) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.sessions.CurrentUser(r.Context(), w, r)
		if err != nil {
			m.logger.Warn("session resolution failed", "error", err, "path", r.URL.Path)
		}
		if user != nil {
			r = r.WithContext(setUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser redirects anonymous requests to the login page, carrying the
// original destination in return_to. Must run after WithUser.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r.Context()) == nil {
			returnTo := r.URL.Path
			if r.URL.RawQuery != "" {
				returnTo += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, "/login?return_to="+returnTo, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectAuthenticated sends signed-in users away from auth-only pages
// (login, register, forgot-password) back to the home page. Must run after
// WithUser.
//
// A user arriving at /login?registered=true has just registered: they hold
// fresh tokens but still need to see the verification notice, so that
// request is exempt.
func (m *AuthMiddleware) RedirectAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r.Context()) != nil && r.URL.Query().Get("registered") == "" {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stack composes multiple middleware functions into a single middleware.
// The first middleware in the slice is the outermost.
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
