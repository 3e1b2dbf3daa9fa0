package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/soulparadise/web/internal/domain"
)

// GoogleCallbackPath is where Google redirects after consent.
const GoogleCallbackPath = "/auth/google/callback"

// GoogleOAuth runs the browser half of Google sign-in: the authorization
// code flow that yields the ID token the backend's /auth/google-auth
// endpoint expects. The backend does the actual token verification.
type GoogleOAuth struct {
	conf *oauth2.Config
}

// NewGoogleOAuth configures the Google code flow. baseURL is this site's
// externally visible URL, used to build the redirect.
func NewGoogleOAuth(clientID, clientSecret, baseURL string) *GoogleOAuth {
	return &GoogleOAuth{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  baseURL + GoogleCallbackPath,
			Scopes:       []string{"openid", "email", "profile"},
		},
	}
}

// StateToken generates the anti-forgery state parameter for one flow.
func (g *GoogleOAuth) StateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AuthURL returns the Google consent page URL for the given state.
func (g *GoogleOAuth) AuthURL(state string) string {
	return g.conf.AuthCodeURL(state)
}

// ExchangeIDToken redeems the authorization code and extracts the ID token
// from the response. The ID token, not the access token, is what the
// backend bridges into a session.
func (g *GoogleOAuth) ExchangeIDToken(ctx context.Context, code string) (string, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return "", domain.Internal(err, "auth.google", "Google sign-in failed. Please try again.")
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", domain.Errorf(domain.EINTERNAL, "auth.google", "Google did not return an identity token")
	}

	return idToken, nil
}
