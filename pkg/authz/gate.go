package authz

import (
	"context"
	"errors"
	"net/http"

	"github.com/kyralabs/iamcore/pkg/httpx"
	"github.com/kyralabs/iamcore/pkg/slogx"
)

// ErrSubjectNotFound is what a RoleResolver returns when the principal does
// not exist at all, as opposed to existing without a usable role.
var ErrSubjectNotFound = errors.New("authz: subject not found")

// RoleResolver looks up the role for a subject. Implementations are storage
// adapters; the gate itself never touches a database.
type RoleResolver func(ctx context.Context, subject string) (string, error)

// Gate decides whether the identity attached to the request context may act
// as a required role. Configuration is immutable after construction.
type Gate struct {
	hierarchy Hierarchy
	resolve   RoleResolver
}

// NewGate builds a gate over the given hierarchy and role resolver.
func NewGate(hierarchy Hierarchy, resolve RoleResolver) *Gate {
	return &Gate{hierarchy: hierarchy, resolve: resolve}
}

// Require returns a middleware that rejects callers below the required role.
// Outcomes: no identity in context is 403, an absent principal is 404, an
// unknown or insufficient role is 403. Resolver failures surface as a bare
// 500; authorization errors never carry internal diagnostics.
func (g *Gate) Require(required string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			subject := httpx.SubjectFromContext(ctx)
			if subject == "" {
				httpx.WriteForbidden(w)
				return
			}

			role, err := g.resolve(ctx, subject)
			if err != nil {
				if errors.Is(err, ErrSubjectNotFound) {
					httpx.WriteNotFound(w)
					return
				}
				log.Error("role resolution failed", "subject", subject, "err", err)
				httpx.WriteServerError(w)
				return
			}

			if !g.hierarchy.Allows(role, required) {
				httpx.WriteForbidden(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
