package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kyralabs/iamcore/internal/iam/audit"
	"github.com/kyralabs/iamcore/internal/iam/domain"
	"github.com/kyralabs/iamcore/internal/iam/session"
	"github.com/kyralabs/iamcore/internal/iam/store"
	"github.com/kyralabs/iamcore/pkg/cryptox"
	"github.com/kyralabs/iamcore/pkg/idx"
	"github.com/kyralabs/iamcore/pkg/slogx"
	"github.com/kyralabs/iamcore/pkg/tokens"
)

var (
	// ErrInvalidCredentials covers both an unknown identifier and a wrong
	// password. The two cases must stay indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrAlreadyRegistered means the email is taken.
	ErrAlreadyRegistered = errors.New("already_registered")

	// ErrInvalidRefresh means the refresh token failed verification.
	ErrInvalidRefresh = errors.New("invalid_refresh_token")

	// ErrWrongPassword is the change-password mismatch. Unlike login, the
	// caller here is already authenticated, so a user-facing message is fine.
	ErrWrongPassword = errors.New("current password is incorrect")
)

// AuthService implements the credential lifecycle: register, login, refresh,
// logout and password change. Storage, sessions and auditing are injected
// collaborators; the service owns no request-time state.
type AuthService struct {
	Store    store.Store
	Tokens   *tokens.Service
	Sessions session.Store // optional, may be nil
	Audit    audit.Sink
}

// Credentials is the payload for login and register.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=100"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// Login verifies credentials and issues a token pair. The password check is
// constant-time via argon2 comparison, and a missing user takes the same
// error path as a wrong password.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(creds.Password, user.PasswordHash); err != nil {
		s.Audit.Record(ctx, audit.Event{
			Action: audit.ActionLogin,
			UserID: user.ID,
			Status: audit.StatusFail,
		})
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, audit.Event{Action: audit.ActionLogin, UserID: user.ID})
	log.Info("user logged in", "user_id", user.ID)
	return pair, nil
}

// Register creates a new principal with the default role and signs them in.
func (s *AuthService) Register(ctx context.Context, creds Credentials) (*domain.TokenPair, string, error) {
	log := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(creds.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        creds.Email,
		Name:         creds.Name,
		Phone:        creds.Phone,
		PasswordHash: hash,
		Role:         domain.DefaultRole,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, "", ErrAlreadyRegistered
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.Audit.Record(ctx, audit.Event{Action: audit.ActionRegister, UserID: user.ID})
	log.Info("user registered", "user_id", user.ID)
	return pair, user.ID, nil
}

// Refresh exchanges a valid refresh token for a fresh pair bound to the same
// subject. High-frequency operation, so no audit event.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.Tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	return s.issuePair(ctx, claims.Subject)
}

// Logout verifies the refresh token to recover the subject, then drops any
// server-side session record for it.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	log := slogx.FromContext(ctx)

	claims, err := s.Tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return ErrInvalidRefresh
	}

	if s.Sessions != nil {
		if err := s.Sessions.Invalidate(ctx, claims.Subject); err != nil {
			return fmt.Errorf("invalidate session: %w", err)
		}
	}

	log.Info("user logged out", "user_id", claims.Subject)
	return nil
}

// ChangePassword verifies the current secret before persisting the new one.
// Both outcomes leave an audit trail.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(currentPassword, user.PasswordHash); err != nil {
		s.Audit.Record(ctx, audit.Event{
			Action: audit.ActionPasswordChange,
			UserID: userID,
			Status: audit.StatusFail,
		})
		return ErrWrongPassword
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("persist password: %w", err)
	}

	s.Audit.Record(ctx, audit.Event{Action: audit.ActionPasswordChange, UserID: userID})
	return nil
}

// issuePair signs an access+refresh pair and records the session when a
// session store is configured.
func (s *AuthService) issuePair(ctx context.Context, subject string) (*domain.TokenPair, error) {
	access, err := s.Tokens.SignAccessToken(subject, nil)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.Tokens.SignRefreshToken(subject)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if s.Sessions != nil {
		ttl := s.Tokens.RefreshTTL()
		if err := s.Sessions.Put(ctx, subject, cryptox.FingerprintToken(refresh), ttl); err != nil {
			// Session tracking is best-effort; a failed write must not block
			// a successful authentication.
			slogx.FromContext(ctx).Warn("session record failed", "user_id", subject, "err", err)
		}
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.Tokens.AccessTTL(),
	}, nil
}
