// Package authapi is the typed wrapper around the backend's /auth endpoints.
// It owns request validation and envelope decoding; session state belongs to
// the session package.
package authapi

import (
	"context"

	"github.com/pkg/errors"

	"github.com/voyago/voyago-go/httpclient"
	"github.com/voyago/voyago-go/internal/utils"
	"github.com/voyago/voyago-go/users"
)

const basePath = "/api/v1/auth"

var ErrNoAccessToken = errors.New("response carried no access token")

// Service wraps the backend auth endpoints.
type Service struct {
	client *httpclient.Client
}

func NewService(client *httpclient.Client) *Service {
	return &Service{client: client}
}

// tokenEnvelope matches {success, data:{accessToken}} responses.
type tokenEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		AccessToken *string `json:"accessToken"`
	} `json:"data"`
}

// meEnvelope matches the {data:{user}} response of /auth/me.
type meEnvelope struct {
	Data struct {
		User *users.User `json:"user"`
	} `json:"data"`
}

// Login exchanges credentials for an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (string, error) {
	if err := ValidateCredentials(creds.Email, creds.Password); err != nil {
		return "", errors.Wrap(err, "[Service.Login] invalid credentials input")
	}

	var envelope tokenEnvelope
	if err := s.client.Post(ctx, basePath+"/login", payload{Data: creds}, &envelope); err != nil {
		return "", errors.Wrap(err, "[Service.Login]")
	}

	token := utils.Value(envelope.Data.AccessToken)
	if token == "" {
		return "", errors.Wrap(ErrNoAccessToken, "[Service.Login]")
	}
	return token, nil
}

// Register creates a new account; the account still needs activation.
func (s *Service) Register(ctx context.Context, reg Registration) error {
	if err := ValidateRegistration(reg); err != nil {
		return errors.Wrap(err, "[Service.Register] invalid registration input")
	}
	if err := s.client.Post(ctx, basePath+"/register", payload{Data: reg}, nil); err != nil {
		return errors.Wrap(err, "[Service.Register]")
	}
	return nil
}

// Logout invalidates the server-side session for the current token.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.client.Post(ctx, basePath+"/logout", nil, nil); err != nil {
		return errors.Wrap(err, "[Service.Logout]")
	}
	return nil
}

// Me fetches the profile the current token resolves to.
func (s *Service) Me(ctx context.Context) (*users.User, error) {
	var envelope meEnvelope
	if err := s.client.Get(ctx, basePath+"/me", nil, &envelope); err != nil {
		return nil, errors.Wrap(err, "[Service.Me]")
	}
	if envelope.Data.User == nil {
		return nil, errors.New("[Service.Me] response carried no user")
	}
	return envelope.Data.User, nil
}

// RefreshToken exchanges the current (possibly just-expired) token for a new
// one. The call runs with the retry stage disabled: a failing refresh must
// surface, never trigger another refresh.
func (s *Service) RefreshToken(ctx context.Context) (string, error) {
	ctx = httpclient.WithoutAuthRetry(ctx)

	var envelope tokenEnvelope
	if err := s.client.Post(ctx, basePath+"/refresh-token", nil, &envelope); err != nil {
		return "", errors.Wrap(err, "[Service.RefreshToken]")
	}

	token := utils.Value(envelope.Data.AccessToken)
	if token == "" {
		return "", errors.Wrap(ErrNoAccessToken, "[Service.RefreshToken]")
	}
	return token, nil
}

// Activate redeems an account-activation token from the sign-up email.
func (s *Service) Activate(ctx context.Context, activationToken string) error {
	body := payload{Data: map[string]string{"accountActivationToken": activationToken}}
	if err := s.client.Patch(ctx, basePath+"/activate", body, nil); err != nil {
		return errors.Wrap(err, "[Service.Activate]")
	}
	return nil
}

// ForgotPassword requests a password-reset email.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if err := validateEmail(email); err != nil {
		return errors.Wrap(err, "[Service.ForgotPassword]")
	}
	body := payload{Data: map[string]string{"email": email}}
	if err := s.client.Post(ctx, basePath+"/forgot-password", body, nil); err != nil {
		return errors.Wrap(err, "[Service.ForgotPassword]")
	}
	return nil
}

// ChangePassword redeems a password-reset token for a new password.
func (s *Service) ChangePassword(ctx context.Context, resetToken, password string) error {
	if err := ValidatePasswordStrength(password); err != nil {
		return errors.Wrap(err, "[Service.ChangePassword]")
	}
	body := payload{Data: map[string]string{
		"passwordResetToken": resetToken,
		"password":           password,
	}}
	if err := s.client.Post(ctx, basePath+"/change-password", body, nil); err != nil {
		return errors.Wrap(err, "[Service.ChangePassword]")
	}
	return nil
}

// VerifyCurrentPassword confirms the account password before sensitive
// settings changes.
func (s *Service) VerifyCurrentPassword(ctx context.Context, password string) error {
	body := payload{Data: map[string]string{"password": password}}
	if err := s.client.Post(ctx, basePath+"/verify-current-password", body, nil); err != nil {
		return errors.Wrap(err, "[Service.VerifyCurrentPassword]")
	}
	return nil
}

// UpdateProfile changes the account's name fields. Callers re-fetch the
// session user afterwards.
func (s *Service) UpdateProfile(ctx context.Context, firstName, lastName string) error {
	body := payload{Data: map[string]string{
		"firstName": firstName,
		"lastName":  lastName,
	}}
	if err := s.client.Patch(ctx, basePath+"/update-profile", body, nil); err != nil {
		return errors.Wrap(err, "[Service.UpdateProfile]")
	}
	return nil
}

// DeleteAccount permanently removes the account.
func (s *Service) DeleteAccount(ctx context.Context, email string) error {
	body := payload{Data: map[string]string{"email": email}}
	if err := s.client.Delete(ctx, basePath+"/delete-account", body, nil); err != nil {
		return errors.Wrap(err, "[Service.DeleteAccount]")
	}
	return nil
}

// SignInWithGoogle exchanges a verified Google profile for a backend access
// token, creating the account on first sign-in.
func (s *Service) SignInWithGoogle(ctx context.Context, profile GoogleProfile) (string, error) {
	var envelope tokenEnvelope
	if err := s.client.Post(ctx, basePath+"/oauth-google", payload{Data: profile}, &envelope); err != nil {
		return "", errors.Wrap(err, "[Service.SignInWithGoogle]")
	}

	token := utils.Value(envelope.Data.AccessToken)
	if token == "" {
		return "", errors.Wrap(ErrNoAccessToken, "[Service.SignInWithGoogle]")
	}
	return token, nil
}
