// Package voyago is the client SDK for the trip-planner backend. It wires
// the HTTP client core, the token store, and the session controller
// together and exposes one typed service per backend area, mirroring the
// application's unit-of-work.
package voyago

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/voyago/voyago-go/amadeus"
	"github.com/voyago/voyago-go/authapi"
	"github.com/voyago/voyago-go/googleauth"
	"github.com/voyago/voyago-go/httpclient"
	"github.com/voyago/voyago-go/internal/config"
	"github.com/voyago/voyago-go/mailbox"
	"github.com/voyago/voyago-go/pdfexport"
	"github.com/voyago/voyago-go/session"
	"github.com/voyago/voyago-go/tokenstore"
	"github.com/voyago/voyago-go/trips"
)

// Client is the assembled SDK: one service per backend area plus the shared
// session controller.
type Client struct {
	Auth    *authapi.Service
	Trips   *trips.Service
	Amadeus *amadeus.Service
	Mailbox *mailbox.Service
	PDF     *pdfexport.Service
	Session *session.Manager

	http   *httpclient.Client
	logger zerolog.Logger
	cfg    config.Config
}

// Option defines a function type to modify the Client assembly.
type Option func(*assembly)

type assembly struct {
	cfg          config.Config
	overrides    []func(*config.Config)
	oauthSignOut func(ctx context.Context) error
}

// WithBaseURL overrides the backend origin from the environment config.
func WithBaseURL(baseURL string) Option {
	return func(a *assembly) {
		a.overrides = append(a.overrides, func(c *config.Config) { c.BaseURL = baseURL })
	}
}

// WithTokenFile overrides where the token record is persisted.
func WithTokenFile(path string) Option {
	return func(a *assembly) {
		a.overrides = append(a.overrides, func(c *config.Config) { c.TokenFile = path })
	}
}

// WithGoogle overrides the Google OAuth client registration.
func WithGoogle(cfg googleauth.Config) Option {
	return func(a *assembly) {
		a.overrides = append(a.overrides, func(c *config.Config) {
			c.GoogleClientID = cfg.ClientID
			c.GoogleClientSecret = cfg.ClientSecret
			c.GoogleRedirectURL = cfg.RedirectURL
		})
	}
}

// WithOAuthSignOut registers a hook invoked on logout so an external OAuth
// provider can clear its own session. Its failure is logged, never fatal.
func WithOAuthSignOut(signOut func(ctx context.Context) error) Option {
	return func(a *assembly) {
		a.oauthSignOut = signOut
	}
}

// New assembles the SDK from the environment configuration plus any
// overrides. Call Start before issuing requests so a persisted session is
// restored first.
func New(logger zerolog.Logger, options ...Option) (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "[voyago.New]")
	}

	a := assembly{cfg: cfg}
	for _, opt := range options {
		opt(&a)
	}
	for _, override := range a.overrides {
		override(&a.cfg)
	}

	httpClient := httpclient.New(a.cfg.BaseURL,
		httpclient.WithTimeout(a.cfg.RequestTimeout),
		httpclient.WithRetries(a.cfg.RequestRetries),
		httpclient.WithLogger(logger),
	)

	auth := authapi.NewService(httpClient)
	store := tokenstore.New(a.cfg.TokenFile, tokenstore.WithLogger(logger))

	sessionOptions := []session.Option{
		session.WithLogger(logger),
		session.WithTokenTTL(a.cfg.TokenTTL),
	}
	if a.oauthSignOut != nil {
		sessionOptions = append(sessionOptions, session.WithOAuthSignOut(a.oauthSignOut))
	}

	manager, err := session.NewManager(auth, store, sessionOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "[voyago.New]")
	}

	// The session controller performs its own calls through the same
	// client it now guards; the wiring order mirrors that mutual
	// dependency.
	httpClient.AttachSession(manager)

	return &Client{
		Auth:    auth,
		Trips:   trips.NewService(httpClient),
		Amadeus: amadeus.NewService(httpClient),
		Mailbox: mailbox.NewService(httpClient),
		PDF:     pdfexport.NewService(httpClient),
		Session: manager,
		http:    httpClient,
		logger:  logger,
		cfg:     a.cfg,
	}, nil
}

// Start restores a persisted session, if any, and resolves the initial
// loading state.
func (c *Client) Start(ctx context.Context) error {
	return c.Session.Start(ctx)
}

// Login exchanges credentials for a token and establishes the session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	token, err := c.Auth.Login(ctx, authapi.Credentials{Email: email, Password: password})
	if err != nil {
		return errors.Wrap(err, "[Client.Login]")
	}
	return c.Session.Login(ctx, token)
}

// SignInWithGoogle completes a Google authorization-code sign-in: verifies
// the code with Google, registers or signs in the account backend-side, and
// establishes the session.
func (c *Client) SignInWithGoogle(ctx context.Context, code, nonce string) error {
	google, err := c.googleAuthenticator(ctx)
	if err != nil {
		return err
	}

	profile, err := google.Exchange(ctx, code, nonce)
	if err != nil {
		return errors.Wrap(err, "[Client.SignInWithGoogle]")
	}

	token, err := c.Auth.SignInWithGoogle(ctx, *profile)
	if err != nil {
		return errors.Wrap(err, "[Client.SignInWithGoogle]")
	}
	return c.Session.Login(ctx, token)
}

// GoogleAuthCodeURL returns the consent URL for the Google sign-in flow.
func (c *Client) GoogleAuthCodeURL(ctx context.Context, state, nonce string) (string, error) {
	google, err := c.googleAuthenticator(ctx)
	if err != nil {
		return "", err
	}
	return google.AuthCodeURL(state, nonce), nil
}

func (c *Client) googleAuthenticator(ctx context.Context) (*googleauth.Authenticator, error) {
	google, err := googleauth.New(ctx, googleauth.Config{
		ClientID:     c.cfg.GoogleClientID,
		ClientSecret: c.cfg.GoogleClientSecret,
		RedirectURL:  c.cfg.GoogleRedirectURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.googleAuthenticator]")
	}
	return google, nil
}
