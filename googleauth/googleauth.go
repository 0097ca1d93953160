// Package googleauth performs the Google side of OAuth sign-in: the
// authorization-code exchange and ID-token verification. The verified
// profile is then handed to the backend's oauth-google endpoint, which
// issues the application's own access token.
package googleauth

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/voyago/voyago-go/authapi"
)

const (
	issuerURL    = "https://accounts.google.com"
	providerName = "Google"
)

// Config carries the OAuth client registration for the application.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Authenticator drives the Google authorization-code flow.
type Authenticator struct {
	oauthConfig oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

// New discovers the Google OIDC endpoints and prepares the flow.
func New(ctx context.Context, cfg Config) (*Authenticator, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("[googleauth.New] client ID is required")
	}

	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, errors.Wrap(err, "[googleauth.New] OIDC discovery")
	}

	return &Authenticator{
		oauthConfig: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// AuthCodeURL returns the URL the user visits to grant consent.
func (a *Authenticator) AuthCodeURL(state, nonce string) string {
	return a.oauthConfig.AuthCodeURL(state, oidc.Nonce(nonce))
}

// Exchange redeems the authorization code, verifies the returned ID token
// (signature, audience, and nonce), and extracts the profile the backend
// needs.
func (a *Authenticator) Exchange(ctx context.Context, code, nonce string) (*authapi.GoogleProfile, error) {
	oauth2Token, err := a.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "[Authenticator.Exchange] token exchange")
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("[Authenticator.Exchange] no ID token in response")
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Authenticator.Exchange] ID token verification")
	}

	var claims profileClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.Wrap(err, "[Authenticator.Exchange] extract claims")
	}

	if nonce != "" && claims.Nonce != nonce {
		return nil, errors.New("[Authenticator.Exchange] invalid nonce")
	}

	return claims.profile(), nil
}

type profileClaims struct {
	Nonce      string `json:"nonce"`
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// profile maps Google claims onto the backend's oauth-google request. A
// missing given name falls back to the display name; a missing family name
// stays empty.
func (c profileClaims) profile() *authapi.GoogleProfile {
	firstName := c.GivenName
	if firstName == "" {
		firstName = c.Name
	}

	return &authapi.GoogleProfile{
		Email:         c.Email,
		FirstName:     firstName,
		LastName:      c.FamilyName,
		OauthUID:      c.Sub,
		OauthProvider: providerName,
		OauthPicture:  c.Picture,
	}
}
