package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/eventboard/server/internal/api/problem"
	"github.com/eventboard/server/internal/audit"
	"github.com/eventboard/server/internal/auth"
	"github.com/eventboard/server/internal/domain/users"
	"github.com/eventboard/server/internal/metrics"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthHandler struct {
	Service Authenticator
	Audit   *audit.Logger
}

func NewAuthHandler(service Authenticator) *AuthHandler {
	return &AuthHandler{Service: service}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	const failure = "Internal server error during login"
	if h == nil || h.Service == nil {
		metrics.LoginAttempts.WithLabelValues(metrics.LoginError).Inc()
		problem.Write(w, r, problem.InternalError, errors.New("auth service not configured"), problem.WithMessage(failure))
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		metrics.LoginAttempts.WithLabelValues(metrics.LoginInvalidRequest).Inc()
		problem.Write(w, r, problem.BadRequest, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		metrics.LoginAttempts.WithLabelValues(metrics.LoginInvalidRequest).Inc()
		problem.Write(w, r, problem.BadRequest, err)
		return
	}

	token, err := h.Service.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, users.ErrInvalidCredentials):
		metrics.LoginAttempts.WithLabelValues(metrics.LoginInvalidCredentials).Inc()
		h.Audit.LogFromRequest(r, "auth.login", "user", "", audit.StatusFailure, map[string]string{"username": req.Username})
		problem.Write(w, r, problem.InvalidCredentials, err)
		return
	case errors.Is(err, auth.ErrMissingSecret):
		metrics.LoginAttempts.WithLabelValues(metrics.LoginError).Inc()
		problem.Write(w, r, problem.InternalError, err, problem.WithMessage("Configuration error"))
		return
	default:
		metrics.LoginAttempts.WithLabelValues(metrics.LoginError).Inc()
		problem.Write(w, r, problem.InternalError, err, problem.WithMessage(failure))
		return
	}

	metrics.LoginAttempts.WithLabelValues(metrics.LoginSuccess).Inc()
	h.Audit.LogFromRequest(r, "auth.login", "user", "", audit.StatusSuccess, map[string]string{"username": req.Username})
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
