package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/kyralabs/iamcore/pkg/slogx"
	"github.com/kyralabs/iamcore/pkg/tokens"
)

// AccessTokenVerifier is the slice of the token service the authn middleware
// needs. Keeps the middleware testable with a stub.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (tokens.Claims, error)
}

// AuthnMiddleware extracts the bearer credential from the Authorization
// header, verifies it, and attaches the resulting claims to the request
// context. The header may carry either a bare token or the "Bearer <token>"
// form. Every failure is a uniform 401; the specific verification error is
// logged server-side only.
func AuthnMiddleware(v AccessTokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if after, ok := strings.CutPrefix(raw, "Bearer "); ok {
				raw = strings.TrimSpace(after)
			}
			if raw == "" {
				WriteUnauthorized(w)
				return
			}

			claims, err := v.VerifyAccessToken(raw)
			if err != nil {
				log.Warn("access token rejected", "err", err)
				WriteUnauthorized(w)
				return
			}

			ctx = contextWithIdentity(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithIdentity(ctx context.Context, c tokens.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeySubject, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}
