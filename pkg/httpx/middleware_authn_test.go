package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kyralabs/iamcore/pkg/httpx"
	"github.com/kyralabs/iamcore/pkg/tokens"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	claims tokens.Claims
	err    error
	calls  int
	seen   string
}

func (v *fakeVerifier) VerifyAccessToken(token string) (tokens.Claims, error) {
	v.calls++
	v.seen = token
	return v.claims, v.err
}

func authnServe(v *fakeVerifier, header string) (*httptest.ResponseRecorder, *http.Request) {
	var captured *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	httpx.AuthnMiddleware(v)(next).ServeHTTP(rec, req)
	return rec, captured
}

func TestAuthnMiddleware(t *testing.T) {
	claims := tokens.Claims{Subject: "user-123", Extra: map[string]any{"role": "admin"}}

	t.Run("accepts Bearer-prefixed token", func(t *testing.T) {
		v := &fakeVerifier{claims: claims}
		rec, captured := authnServe(v, "Bearer the-token")

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "the-token", v.seen)
		require.Equal(t, "user-123", httpx.SubjectFromContext(captured.Context()))

		got, ok := httpx.ClaimsFromContext(captured.Context())
		require.True(t, ok)
		require.Equal(t, "admin", got.Extra["role"])
	})

	t.Run("accepts bare token", func(t *testing.T) {
		v := &fakeVerifier{claims: claims}
		rec, captured := authnServe(v, "the-token")

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "the-token", v.seen)
		require.Equal(t, "user-123", httpx.SubjectFromContext(captured.Context()))
	})

	t.Run("missing credential fails without invoking the verifier", func(t *testing.T) {
		v := &fakeVerifier{claims: claims}
		rec, captured := authnServe(v, "")

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Zero(t, v.calls)
		require.Nil(t, captured)
	})

	t.Run("verification failures are indistinguishable", func(t *testing.T) {
		bodies := make(map[string]struct{})
		for _, verr := range []error{
			tokens.ErrTokenExpired,
			tokens.ErrTokenInvalid,
			tokens.ErrTokenMalformed,
		} {
			v := &fakeVerifier{err: verr}
			rec, captured := authnServe(v, "Bearer bad-token")

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Nil(t, captured)
			bodies[rec.Body.String()] = struct{}{}
		}

		// All three failure modes must produce the same response body.
		require.Len(t, bodies, 1)
	})
}
