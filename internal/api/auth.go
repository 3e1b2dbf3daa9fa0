package api

import (
	"context"

	"github.com/soulparadise/web/internal/domain"
)

// Register creates a new account.
// POST /auth/register
func (c *Client) Register(ctx context.Context, params domain.RegisterParams) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.post(ctx, "/auth/register", params, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates with email and password. Fails with the backend's
// unverified-email rejection when the account has not confirmed its address.
// POST /auth/login
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.post(ctx, "/auth/login", creds, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GoogleAuth exchanges a Google ID token for a backend session.
// POST /auth/google-auth
func (c *Client) GoogleAuth(ctx context.Context, idToken string) (*domain.AuthResponse, error) {
	body := struct {
		IDToken string `json:"idToken"`
	}{IDToken: idToken}

	var resp domain.AuthResponse
	if err := c.post(ctx, "/auth/google-auth", body, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges the refresh token for a new token pair. The refresh
// token is the bearer on this call.
// POST /auth/refresh
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.post(ctx, "/auth/refresh", nil, refreshToken, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the current session server-side.
// POST /auth/logout
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	var resp MessageResponse
	return c.post(ctx, "/auth/logout", nil, accessToken, &resp)
}

// LogoutAll invalidates every session of the account server-side.
// POST /auth/logout-all
func (c *Client) LogoutAll(ctx context.Context, accessToken string) error {
	var resp MessageResponse
	return c.post(ctx, "/auth/logout-all", nil, accessToken, &resp)
}

// CurrentUser fetches the account the access token belongs to. A 401 means
// the token is invalid or expired.
// GET /auth/me
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	var user domain.User
	if err := c.get(ctx, "/auth/me", accessToken, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyEmail confirms an email address with the token from the
// verification link.
// POST /auth/verify-email
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	body := struct {
		Token string `json:"token"`
	}{Token: token}

	var resp MessageResponse
	return c.post(ctx, "/auth/verify-email", body, "", &resp)
}

// ResendVerification requests a new verification email. The backend never
// reveals whether the address is registered.
// POST /auth/resend-verification
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{Email: email}

	var resp MessageResponse
	return c.post(ctx, "/auth/resend-verification", body, "", &resp)
}

// ForgotPassword requests a password reset email. Same non-enumeration
// contract as ResendVerification.
// POST /auth/forgot-password
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{Email: email}

	var resp MessageResponse
	return c.post(ctx, "/auth/forgot-password", body, "", &resp)
}

// ResetPassword sets a new password using the token from the reset link.
// The backend invalidates all prior sessions on success.
// POST /auth/reset-password
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	body := struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}{Token: token, Password: password}

	var resp MessageResponse
	return c.post(ctx, "/auth/reset-password", body, "", &resp)
}
