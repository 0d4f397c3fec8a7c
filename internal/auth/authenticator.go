package auth

import (
	"context"
	"crypto/subtle"

	"candle-labels/internal/model"

	"github.com/rs/zerolog"
)

// Authenticator exchanges the operator credentials for an access token.
type Authenticator struct {
	login        string
	passwordHash string
	tokens       *TokenManager
	logger       zerolog.Logger
}

// NewAuthenticator creates an Authenticator for a single operator account.
func NewAuthenticator(login, passwordHash string, tokens *TokenManager, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		login:        login,
		passwordHash: passwordHash,
		tokens:       tokens,
		logger:       logger.With().Str("service", "auth").Logger(),
	}
}

// Login checks the credentials and issues a bearer token.
func (a *Authenticator) Login(_ context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	loginOK := subtle.ConstantTimeCompare([]byte(req.Login), []byte(a.login)) == 1
	// bcrypt runs even for an unknown login
	passwordOK := VerifyPassword(req.Password, a.passwordHash)

	if !loginOK || !passwordOK {
		a.logger.Warn().Str("login", req.Login).Msg("rejected login attempt")
		return nil, model.ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(a.login)
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to sign access token")
		return nil, err
	}

	a.logger.Info().Str("login", a.login).Msg("operator logged in")

	return &model.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(a.tokens.TTL().Seconds()),
	}, nil
}
