package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/kyralabs/iamcore/internal/iam/service"
	"github.com/kyralabs/iamcore/internal/iam/store"
	"github.com/kyralabs/iamcore/pkg/authz"
	"github.com/kyralabs/iamcore/pkg/httpx"
	"github.com/kyralabs/iamcore/pkg/tokens"
)

// Operation names for pipeline overrides.
const (
	OpLogin         = "login"
	OpRegister      = "register"
	OpRefreshToken  = "refreshToken"
	OpLogout        = "logout"
	OpMe            = "me"
	OpChangePw      = "changePw"
	OpProfileGet    = "profileGet"
	OpProfileUpdate = "profileUpdate"
	OpProfileDelete = "profileDelete"
)

// FactoryConfig bundles the collaborators the handler factory assembles into
// pipelines. Everything here is constructed once at startup.
type FactoryConfig struct {
	Auth  *service.AuthService
	Users *service.UserService

	// Roles is the privilege hierarchy, lowest first.
	Roles authz.Hierarchy

	// GetRole resolves a subject's role. Defaults to the user store lookup
	// when nil.
	GetRole authz.RoleResolver

	// RateLimit applies to every fallback pipeline's first position.
	RateLimit httpx.RateLimitConfig

	// Overrides replaces whole pipelines per operation name. An override
	// supersedes the fallback entirely; there is no partial form.
	Overrides map[string]httpx.Override
}

// Handlers is the assembled set of ready-to-mount pipelines plus the shared
// primitives they were built from. It holds no request-time state.
type Handlers struct {
	Tokens *tokens.Service

	// Authn is the access-token verification middleware used by the
	// authenticated pipelines, exposed for callers mounting their own routes.
	Authn httpx.Middleware

	// Gate is the authorization gate as a role-accepting function.
	Gate func(required string) httpx.Middleware

	pipelines map[string]httpx.Pipeline
}

// NewHandlers composes one pipeline per operation. Fallback ordering is
// [RateLimiter, Authn (where the operation needs an identity), Terminal].
func NewHandlers(cfg FactoryConfig) *Handlers {
	getRole := cfg.GetRole
	if getRole == nil {
		getRole = storeRoleResolver(cfg.Users)
	}
	gate := authz.NewGate(cfg.Roles, getRole)

	limit := httpx.RateLimitByIP(cfg.RateLimit)
	authn := httpx.AuthnMiddleware(cfg.Auth.Tokens)

	h := &Handlers{
		Tokens:    cfg.Auth.Tokens,
		Authn:     authn,
		Gate:      gate.Require,
		pipelines: make(map[string]httpx.Pipeline),
	}

	fallbacks := map[string]httpx.Pipeline{
		OpLogin: {
			Steps:    []httpx.Middleware{limit},
			Terminal: &LoginHandler{Auth: cfg.Auth},
		},
		OpRegister: {
			Steps:    []httpx.Middleware{limit},
			Terminal: &RegisterHandler{Auth: cfg.Auth},
		},
		OpRefreshToken: {
			Steps:    []httpx.Middleware{limit},
			Terminal: &RefreshHandler{Auth: cfg.Auth},
		},
		OpLogout: {
			Steps:    []httpx.Middleware{limit},
			Terminal: &LogoutHandler{Auth: cfg.Auth},
		},
		OpMe: {
			Steps:    []httpx.Middleware{limit, authn},
			Terminal: &MeHandler{Users: cfg.Users},
		},
		OpChangePw: {
			Steps:    []httpx.Middleware{limit, authn},
			Terminal: &ChangePasswordHandler{Auth: cfg.Auth},
		},
		OpProfileGet: {
			Steps:    []httpx.Middleware{limit, authn},
			Terminal: &ProfileGetHandler{Users: cfg.Users},
		},
		OpProfileUpdate: {
			Steps:    []httpx.Middleware{limit, authn},
			Terminal: &ProfileUpdateHandler{Users: cfg.Users},
		},
		OpProfileDelete: {
			Steps:    []httpx.Middleware{limit, authn},
			Terminal: &ProfileDeleteHandler{Users: cfg.Users},
		},
	}

	for op, fallback := range fallbacks {
		h.pipelines[op] = cfg.Overrides[op].Resolve(fallback)
	}

	return h
}

// Pipeline returns the resolved pipeline for a named operation.
func (h *Handlers) Pipeline(op string) (httpx.Pipeline, bool) {
	p, ok := h.pipelines[op]
	return p, ok
}

// Handler returns the composed http.Handler for a named operation.
func (h *Handlers) Handler(op string) http.Handler {
	p, ok := h.pipelines[op]
	if !ok {
		return http.NotFoundHandler()
	}
	return p.Handler()
}

// storeRoleResolver maps the user store's not-found onto the gate's
// subject-absent sentinel.
func storeRoleResolver(users *service.UserService) authz.RoleResolver {
	return func(ctx context.Context, subject string) (string, error) {
		role, err := users.Role(ctx, subject)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "", authz.ErrSubjectNotFound
			}
			return "", err
		}
		return role, nil
	}
}
