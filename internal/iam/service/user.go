package service

import (
	"context"
	"fmt"

	"github.com/kyralabs/iamcore/internal/iam/audit"
	"github.com/kyralabs/iamcore/internal/iam/domain"
	"github.com/kyralabs/iamcore/internal/iam/store"
)

// UserService covers profile reads and writes on the subject recovered from
// verified claims.
type UserService struct {
	Store store.Store
	Audit audit.Sink
}

// GetProfile fetches a user and strips the credential hash.
func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}

// UpdateProfile applies a partial patch to the subject's profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) error {
	if err := s.Store.Users().UpdateProfile(ctx, userID, patch); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	s.Audit.Record(ctx, audit.Event{Action: audit.ActionProfileUpdate, UserID: userID})
	return nil
}

// DeleteProfile removes the subject's account.
func (s *UserService) DeleteProfile(ctx context.Context, userID string) error {
	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.Audit.Record(ctx, audit.Event{Action: audit.ActionProfileDelete, UserID: userID})
	return nil
}

// Role returns the stored role name for a user.
func (s *UserService) Role(ctx context.Context, userID string) (string, error) {
	return s.Store.Users().GetRole(ctx, userID)
}
