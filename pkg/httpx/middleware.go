// Package httpx carries the HTTP plumbing shared by every pipeline: the
// middleware chain primitives, bearer-token authentication, per-key rate
// limiting, request validation, and response helpers.
package httpx

import "net/http"

// Middleware wraps an http.Handler with extra behaviour.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h in order: the first middleware listed is the
// outermost, i.e. the first to see the request.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
