package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/kyralabs/iamcore/internal/iam/store"
	"github.com/kyralabs/iamcore/pkg/httpx"
	"github.com/kyralabs/iamcore/pkg/slogx"
)

// AdminRole gates access to other users' profiles.
const AdminRole = "admin"

// Router mounts the assembled pipelines onto an http.ServeMux and applies
// the global middleware chain.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	handlers     *Handlers
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
}

func NewRouter(h *Handlers, st store.Store, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		handlers:     h,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProfile()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	r.Mux.Handle("POST /v1/auth/login", r.handlers.Handler(OpLogin))
	r.Mux.Handle("POST /v1/auth/register", r.handlers.Handler(OpRegister))
	r.Mux.Handle("POST /v1/auth/refresh", r.handlers.Handler(OpRefreshToken))
	r.Mux.Handle("POST /v1/auth/logout", r.handlers.Handler(OpLogout))
}

func (r *Router) registerProfile() {
	r.Mux.Handle("GET /v1/me", r.handlers.Handler(OpMe))
	r.Mux.Handle("POST /v1/me/password", r.handlers.Handler(OpChangePw))

	r.Mux.Handle("GET /v1/profile", r.handlers.Handler(OpProfileGet))
	r.Mux.Handle("PATCH /v1/profile", r.handlers.Handler(OpProfileUpdate))
	r.Mux.Handle("DELETE /v1/profile", r.handlers.Handler(OpProfileDelete))

	// Reading another user's profile requires admin privilege: the gate is
	// appended after the pipeline's authn step, in front of the terminal.
	if p, ok := r.handlers.Pipeline(OpProfileGet); ok {
		steps := append(append([]httpx.Middleware{}, p.Steps...), r.handlers.Gate(AdminRole))
		byID := httpx.Pipeline{Steps: steps, Terminal: p.Terminal}
		r.Mux.Handle("GET /v1/profile/{id}", byID.Handler())
	}
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
