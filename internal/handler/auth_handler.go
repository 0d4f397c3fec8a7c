package handler

import (
	"context"
	"net/http"

	"candle-labels/internal/model"

	"github.com/rs/zerolog"
)

// Authenticator exchanges operator credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
}

// AuthHandler handles the login endpoint.
type AuthHandler struct {
	auth   Authenticator
	logger zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth Authenticator, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		handleError(w, r, err, "failed to log in", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
