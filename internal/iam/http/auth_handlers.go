package http

import (
	"errors"
	"net/http"

	"github.com/kyralabs/iamcore/internal/iam/domain"
	"github.com/kyralabs/iamcore/internal/iam/service"
	"github.com/kyralabs/iamcore/internal/iam/store"
	"github.com/kyralabs/iamcore/pkg/httpx"
	"github.com/kyralabs/iamcore/pkg/slogx"
)

// TokenPairResponse is the body returned by login, register and refresh.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func tokenPairResponse(pair *domain.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}

// LoginHandler authenticates a credentials payload and returns a token pair.
// A wrong password and an unknown email produce the same response.
type LoginHandler struct {
	Auth *service.AuthService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var creds service.Credentials
	if err := httpx.DecodeValid(r, &creds); err != nil {
		httpx.WriteInvalidPayload(w, err)
		return
	}

	pair, err := h.Auth.Login(ctx, creds)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteUnauthorized(w)
			return
		}
		log.Error("login failed", "err", err)
		httpx.WriteServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenPairResponse(pair))
}

// RegisterHandler creates a new principal and signs them in.
type RegisterHandler struct {
	Auth *service.AuthService
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var creds service.Credentials
	if err := httpx.DecodeValid(r, &creds); err != nil {
		httpx.WriteInvalidPayload(w, err)
		return
	}

	pair, _, err := h.Auth.Register(ctx, creds)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyRegistered) {
			httpx.WriteError(w, http.StatusConflict, "conflict", creds.Email+" is already registered")
			return
		}
		log.Error("registration failed", "err", err)
		httpx.WriteServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tokenPairResponse(pair))
}

// refreshRequest is shared by refresh and logout.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshHandler exchanges a refresh token for a new pair.
type RefreshHandler struct {
	Auth *service.AuthService
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.WriteInvalidPayload(w, err)
		return
	}

	pair, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			httpx.WriteUnauthorized(w)
			return
		}
		log.Error("token refresh failed", "err", err)
		httpx.WriteServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenPairResponse(pair))
}

// LogoutHandler invalidates the subject's server-side session. Success is a
// bodiless 204.
type LogoutHandler struct {
	Auth *service.AuthService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.WriteInvalidPayload(w, err)
		return
	}

	if err := h.Auth.Logout(ctx, req.RefreshToken); err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			httpx.WriteUnauthorized(w)
			return
		}
		log.Error("logout failed", "err", err)
		httpx.WriteServerError(w)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// changePasswordRequest carries the current and replacement secrets.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// ChangePasswordHandler rotates the authenticated subject's password. The
// caller is already authenticated, so a mismatch gets a user-facing message
// rather than a generic 401.
type ChangePasswordHandler struct {
	Auth *service.AuthService
}

func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject := httpx.SubjectFromContext(ctx)
	if subject == "" {
		httpx.WriteUnauthorized(w)
		return
	}

	var req changePasswordRequest
	if err := httpx.DecodeValid(r, &req); err != nil {
		httpx.WriteInvalidPayload(w, err)
		return
	}

	err := h.Auth.ChangePassword(ctx, subject, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_password", "current password is incorrect")
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteNotFound(w)
		default:
			log.Error("password change failed", "user_id", subject, "err", err)
			httpx.WriteServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}
