package httpx

import (
	"context"

	"github.com/kyralabs/iamcore/pkg/tokens"
)

type ctxKey string

const (
	CtxKeySubject ctxKey = "subject"
	CtxKeyClaims  ctxKey = "claims"
)

// SubjectFromContext returns the verified principal identifier, or "" when
// the request did not pass the authn middleware.
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubject).(string); ok {
		return v
	}
	return ""
}

// ClaimsFromContext returns the full verified claims, if present.
func ClaimsFromContext(ctx context.Context) (tokens.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(tokens.Claims)
	return c, ok
}
