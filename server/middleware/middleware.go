package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/kbukum/modelgate/errors"
)

// Middleware wraps an http.Handler. The server applies the chain around the
// whole handler so every route, including /health, passes through it.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware; the first one runs outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// writeError renders err in the same envelope the API handlers use.
func writeError(w http.ResponseWriter, err error) {
	status, body := errors.ResponseFor(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
