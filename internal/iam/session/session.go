// Package session tracks server-side session records keyed by subject, so a
// logout can invalidate a principal's session even though the tokens
// themselves are stateless.
package session

import (
	"context"
	"time"
)

// Store is the session-invalidation contract consumed by the auth service.
// A nil Store is a valid configuration: the service then runs fully
// stateless and logout becomes token verification only.
type Store interface {
	// Put records the active session fingerprint for subject with a TTL.
	Put(ctx context.Context, subject, fingerprint string, ttl time.Duration) error

	// Invalidate removes any session record for subject. Removing a
	// nonexistent record is not an error.
	Invalidate(ctx context.Context, subject string) error
}
