package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/kyralabs/iamcore/pkg/httpx"
	"github.com/stretchr/testify/require"
)

// tagMiddleware appends its tag on the way in, so the recorded order is the
// order middlewares saw the request.
func tagMiddleware(order *[]string, tag string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, tag)
			next.ServeHTTP(w, r)
		})
	}
}

func TestChainOrdering(t *testing.T) {
	var order []string
	terminal := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "terminal")
	})

	h := httpx.Chain(terminal,
		tagMiddleware(&order, "first"),
		tagMiddleware(&order, "second"),
		tagMiddleware(&order, "third"),
	)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"first", "second", "third", "terminal"}, order)
}

func TestPipelineHandler(t *testing.T) {
	var order []string
	p := httpx.Pipeline{
		Steps: []httpx.Middleware{
			tagMiddleware(&order, "limit"),
			tagMiddleware(&order, "authn"),
		},
		Terminal: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "terminal")
		}),
	}

	p.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"limit", "authn", "terminal"}, order)
}

func TestOverrideResolve(t *testing.T) {
	fallbackTerminal := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	fallback := httpx.Pipeline{
		Steps:    []httpx.Middleware{tagMiddleware(new([]string), "limit")},
		Terminal: fallbackTerminal,
	}

	t.Run("zero value keeps the fallback", func(t *testing.T) {
		var o httpx.Override
		resolved := o.Resolve(fallback)
		require.Len(t, resolved.Steps, 1)
		require.Equal(t,
			reflect.ValueOf(http.Handler(fallbackTerminal)).Pointer(),
			reflect.ValueOf(resolved.Terminal).Pointer())
	})

	t.Run("ReplaceStep becomes a terminal-only pipeline", func(t *testing.T) {
		replacement := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})

		resolved := httpx.ReplaceStep(replacement).Resolve(fallback)
		require.Empty(t, resolved.Steps)

		rec := httptest.NewRecorder()
		resolved.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("ReplacePipeline is used verbatim", func(t *testing.T) {
		var order []string
		custom := httpx.Pipeline{
			Steps: []httpx.Middleware{tagMiddleware(&order, "custom")},
			Terminal: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, "custom-terminal")
			}),
		}

		resolved := httpx.ReplacePipeline(custom).Resolve(fallback)
		resolved.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, []string{"custom", "custom-terminal"}, order)
	})
}
