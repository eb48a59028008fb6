// Package store defines the data access contracts the IAM services depend
// on. Concrete drivers (sqlite today) live under drivers/.
package store

import (
	"context"
	"errors"

	"github.com/kyralabs/iamcore/internal/iam/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and duplicate-registration checks.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// UpdateProfile applies a partial patch and bumps updated_at.
	UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) error

	// GetRole returns the role name for a user. ErrNotFound when the user
	// does not exist; an existing user always has a role column, possibly "".
	GetRole(ctx context.Context, userID string) (string, error)

	// DeleteUser removes the user record.
	DeleteUser(ctx context.Context, userID string) error
}
