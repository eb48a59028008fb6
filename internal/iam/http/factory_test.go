package http_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/kyralabs/iamcore/internal/iam/audit"
	iamhttp "github.com/kyralabs/iamcore/internal/iam/http"
	"github.com/kyralabs/iamcore/internal/iam/service"
	"github.com/kyralabs/iamcore/internal/iam/store/drivers/sqlite"
	"github.com/kyralabs/iamcore/pkg/authz"
	"github.com/kyralabs/iamcore/pkg/cryptox"
	"github.com/kyralabs/iamcore/pkg/httpx"
	"github.com/kyralabs/iamcore/pkg/tokens"
	"github.com/stretchr/testify/require"
)

var testRoles = authz.Hierarchy{"user", "support", "admin"}

// openRateLimit keeps pipeline shape without tripping limits in tests that
// exercise other behavior.
var openRateLimit = httpx.RateLimitConfig{
	RequestsPerWindow: 1000,
	Window:            time.Minute,
	Burst:             1000,
}

func newTestServices(t *testing.T) (*service.AuthService, *service.UserService, *sqlite.Store) {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper.key"))
	require.NoError(t, cryptox.ReloadPepper())

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "iam.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	cfg, err := tokens.Symmetric([]byte("factory-test-secret"))
	require.NoError(t, err)
	ts, err := tokens.NewService(cfg, tokens.WithAccessTTL(time.Minute))
	require.NoError(t, err)

	sink := audit.NewLogger(nil)
	auth := &service.AuthService{Store: st, Tokens: ts, Audit: sink}
	users := &service.UserService{Store: st, Audit: sink}
	return auth, users, st
}

func TestFactoryFallbackPipelines(t *testing.T) {
	auth, users, _ := newTestServices(t)

	h := iamhttp.NewHandlers(iamhttp.FactoryConfig{
		Auth:      auth,
		Users:     users,
		Roles:     testRoles,
		RateLimit: openRateLimit,
	})

	t.Run("auth operations carry only the rate limiter", func(t *testing.T) {
		for _, op := range []string{
			iamhttp.OpLogin, iamhttp.OpRegister, iamhttp.OpRefreshToken, iamhttp.OpLogout,
		} {
			p, ok := h.Pipeline(op)
			require.True(t, ok, op)
			require.Len(t, p.Steps, 1, op)
			require.NotNil(t, p.Terminal, op)
		}
	})

	t.Run("authenticated operations add the authn step", func(t *testing.T) {
		for _, op := range []string{
			iamhttp.OpMe, iamhttp.OpChangePw,
			iamhttp.OpProfileGet, iamhttp.OpProfileUpdate, iamhttp.OpProfileDelete,
		} {
			p, ok := h.Pipeline(op)
			require.True(t, ok, op)
			require.Len(t, p.Steps, 2, op)
		}
	})

	t.Run("terminals match their operation", func(t *testing.T) {
		p, _ := h.Pipeline(iamhttp.OpLogin)
		require.IsType(t, &iamhttp.LoginHandler{}, p.Terminal)

		p, _ = h.Pipeline(iamhttp.OpMe)
		require.IsType(t, &iamhttp.MeHandler{}, p.Terminal)

		p, _ = h.Pipeline(iamhttp.OpChangePw)
		require.IsType(t, &iamhttp.ChangePasswordHandler{}, p.Terminal)
	})

	t.Run("unknown operation handler is a 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Handler("nonesuch").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestFactoryOverrides(t *testing.T) {
	auth, users, _ := newTestServices(t)

	teapot := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	marker := func(next http.Handler) http.Handler { return next }

	h := iamhttp.NewHandlers(iamhttp.FactoryConfig{
		Auth:      auth,
		Users:     users,
		Roles:     testRoles,
		RateLimit: openRateLimit,
		Overrides: map[string]httpx.Override{
			iamhttp.OpLogin: httpx.ReplacePipeline(httpx.Pipeline{
				Steps:    []httpx.Middleware{marker},
				Terminal: teapot,
			}),
			iamhttp.OpMe: httpx.ReplaceStep(teapot),
		},
	})

	t.Run("full pipeline override is taken verbatim", func(t *testing.T) {
		p, ok := h.Pipeline(iamhttp.OpLogin)
		require.True(t, ok)
		require.Len(t, p.Steps, 1)

		rec := httptest.NewRecorder()
		p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("step override runs bare with no middleware", func(t *testing.T) {
		p, ok := h.Pipeline(iamhttp.OpMe)
		require.True(t, ok)
		require.Empty(t, p.Steps)

		rec := httptest.NewRecorder()
		p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/me", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("operations without an override keep the fallback", func(t *testing.T) {
		p, ok := h.Pipeline(iamhttp.OpRegister)
		require.True(t, ok)
		require.Len(t, p.Steps, 1)
		require.IsType(t, &iamhttp.RegisterHandler{}, p.Terminal)
	})
}
