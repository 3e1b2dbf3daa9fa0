// Package auth owns the client-side session lifecycle: establishing it
// against the backend, mirroring its token pair into the session store, and
// tearing it down.
//
// The controller is an explicit dependency-injected instance, never package
// state, so tests construct isolated controllers with an in-memory store and
// a stubbed backend.
package auth

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/soulparadise/web/internal/domain"
	"github.com/soulparadise/web/internal/metrics"
	"github.com/soulparadise/web/internal/session"
)

// Backend is the slice of the API client the controller depends on.
// Declared here so tests can stub it.
type Backend interface {
	Register(ctx context.Context, params domain.RegisterParams) (*domain.AuthResponse, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResponse, error)
	GoogleAuth(ctx context.Context, idToken string) (*domain.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.AuthResponse, error)
	Logout(ctx context.Context, accessToken string) error
	LogoutAll(ctx context.Context, accessToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*domain.User, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// ErrActionInFlight is returned when the same client retriggers an auth
// action that is still running (e.g. a double-submitted login form).
var ErrActionInFlight = domain.Errorf(domain.ERATELIMIT, "auth.inflight",
	"That request is already being processed. Please wait a moment.")

// Controller mediates every session state transition. The session store is
// the single source of truth for "is there a session": a token pair exists
// if and only if the client is considered authenticated.
type Controller struct {
	backend Backend
	store   session.Store
	logger  *slog.Logger

	// Double-submit gate: one auth action of a given kind per client at a
	// time. Keyed by client address + action.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewController creates a session controller.
func NewController(backend Backend, store session.Store, logger *slog.Logger) *Controller {
	return &Controller{
		backend:  backend,
		store:    store,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// Store exposes the session store (used by middleware for token cleanup).
func (c *Controller) Store() session.Store {
	return c.store
}

// =============================================================================
// Session establishment
// =============================================================================

// Login authenticates with email and password. On success the fresh token
// pair is stored before returning, so the session is visible to the very
// next request.
func (c *Controller) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, creds domain.Credentials) (*domain.User, error) {
	release, ok := c.acquire(r, "login")
	if !ok {
		return nil, ErrActionInFlight
	}
	defer release()

	resp, err := c.backend.Login(ctx, creds)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return nil, err
	}

	c.store.SetTokens(w, resp.AccessToken, resp.RefreshToken)
	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	c.logger.Info("user logged in", "user_id", resp.User.ID)

	return &resp.User, nil
}

// GoogleAuth exchanges a Google ID token for a backend session.
func (c *Controller) GoogleAuth(ctx context.Context, w http.ResponseWriter, r *http.Request, idToken string) (*domain.User, error) {
	release, ok := c.acquire(r, "google")
	if !ok {
		return nil, ErrActionInFlight
	}
	defer release()

	resp, err := c.backend.GoogleAuth(ctx, idToken)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("google", "failure").Inc()
		return nil, err
	}

	c.store.SetTokens(w, resp.AccessToken, resp.RefreshToken)
	metrics.AuthAttempts.WithLabelValues("google", "success").Inc()
	c.logger.Info("user logged in via google", "user_id", resp.User.ID)

	return &resp.User, nil
}

// Register creates an account. The returned token pair IS stored - the
// backend issues a usable session - but callers route the user to the login
// page with a verification banner instead of treating them as signed in.
func (c *Controller) Register(ctx context.Context, w http.ResponseWriter, r *http.Request, params domain.RegisterParams) (*domain.User, error) {
	release, ok := c.acquire(r, "register")
	if !ok {
		return nil, ErrActionInFlight
	}
	defer release()

	resp, err := c.backend.Register(ctx, params)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "failure").Inc()
		return nil, err
	}

	c.store.SetTokens(w, resp.AccessToken, resp.RefreshToken)
	metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	c.logger.Info("user registered", "user_id", resp.User.ID)

	return &resp.User, nil
}

// Refresh exchanges the stored refresh token for a new token pair.
func (c *Controller) Refresh(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	refreshToken, ok := c.store.RefreshToken(r)
	if !ok {
		return &domain.APIError{
			Message:    "No refresh token available",
			StatusCode: 401,
		}
	}

	resp, err := c.backend.Refresh(ctx, refreshToken)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("refresh", "failure").Inc()
		return err
	}

	c.store.SetTokens(w, resp.AccessToken, resp.RefreshToken)
	metrics.AuthAttempts.WithLabelValues("refresh", "success").Inc()
	return nil
}

// =============================================================================
// Session resolution
// =============================================================================

// CurrentUser resolves the session for this request. Returns (nil, nil) for
// an anonymous client: no access token stored, or the backend rejecting the
// token with a 401, in which case the stale pair is cleared. Any other
// backend failure is returned without touching the stored tokens, so a
// transient outage does not log everyone out.
func (c *Controller) CurrentUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (*domain.User, error) {
	accessToken, ok := c.store.AccessToken(r)
	if !ok {
		return nil, nil
	}

	user, err := c.backend.CurrentUser(ctx, accessToken)
	if err != nil {
		if apiErr, ok := domain.AsAPIError(err); ok && apiErr.IsUnauthorized() {
			// Session expired or revoked. No refresh-and-retry here: the
			// client falls back to anonymous and signs in again.
			c.store.Clear(w)
			c.logger.Debug("session expired, tokens cleared")
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

// =============================================================================
// Session teardown
// =============================================================================

// Logout ends the session. The server call is best-effort: the local token
// pair is cleared no matter what the backend says.
func (c *Controller) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	c.logout(ctx, w, r, false)
}

// LogoutAll ends every session of the account. Same best-effort contract
// as Logout.
func (c *Controller) LogoutAll(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	c.logout(ctx, w, r, true)
}

func (c *Controller) logout(ctx context.Context, w http.ResponseWriter, r *http.Request, all bool) {
	if accessToken, ok := c.store.AccessToken(r); ok {
		var err error
		if all {
			err = c.backend.LogoutAll(ctx, accessToken)
		} else {
			err = c.backend.Logout(ctx, accessToken)
		}
		if err != nil {
			// Local teardown proceeds regardless.
			c.logger.Warn("server-side logout failed", "all", all, "error", err)
		}
	}

	c.store.Clear(w)
	metrics.AuthAttempts.WithLabelValues("logout", "success").Inc()
	c.logger.Debug("session cleared", "all", all)
}

// =============================================================================
// Verification and password reset pass-throughs
// =============================================================================

// VerifyEmail confirms an email address with a token from the email link.
func (c *Controller) VerifyEmail(ctx context.Context, token string) error {
	return c.backend.VerifyEmail(ctx, token)
}

// ResendVerification requests a new verification email.
func (c *Controller) ResendVerification(ctx context.Context, email string) error {
	return c.backend.ResendVerification(ctx, email)
}

// ForgotPassword requests a password reset email.
func (c *Controller) ForgotPassword(ctx context.Context, email string) error {
	return c.backend.ForgotPassword(ctx, email)
}

// ResetPassword sets a new password with a token from the reset link.
func (c *Controller) ResetPassword(ctx context.Context, token, password string) error {
	return c.backend.ResetPassword(ctx, token, password)
}

// =============================================================================
// Double-submit gate
// =============================================================================

// acquire claims the in-flight slot for this client and action. The second
// return value is false when an identical action is still running.
func (c *Controller) acquire(r *http.Request, action string) (func(), bool) {
	key := clientKey(r) + ":" + action

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inFlight[key]; busy {
		return nil, false
	}
	c.inFlight[key] = struct{}{}

	return func() {
		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()
	}, true
}

// clientKey identifies the submitting client. Proxy headers are preferred
// so clients behind the load balancer are distinguished.
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
