// Package domain contains core types shared across the front-end.
//
// This file defines the User type and the session types mirrored from the
// Soul Paradise backend. The front-end never owns this data: the User is
// re-fetched from the backend on demand, and the token pair is the only
// state persisted on the client.
package domain

import "time"

// Role is the access level assigned by the backend.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAgent    Role = "AGENT"
	RoleAdmin    Role = "ADMIN"
)

// Provider identifies how the account was created.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

// User is the backend's representation of an account, as returned by
// GET /auth/me and embedded in auth responses.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	ProfilePicture *string    `json:"profilePicture"`
	Role           Role       `json:"role,omitempty"`
	EmailVerified  bool       `json:"emailVerified"`
	Provider       Provider   `json:"provider"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastLoginAt    *time.Time `json:"lastLoginAt"`
}

// DisplayName returns the user's name or email if name is empty.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// TokenPair holds the opaque access/refresh tokens issued by the backend.
// The front-end never inspects their contents.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Credentials are ephemeral login inputs. Never persisted or logged.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterParams contains the inputs for account creation.
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the success shape of register, login, google-auth and
// refresh: a fresh token pair plus the account it belongs to.
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// Tokens returns the token pair from the response.
func (r *AuthResponse) Tokens() TokenPair {
	return TokenPair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}
