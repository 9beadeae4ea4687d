package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/modelgate/errors"
	"github.com/kbukum/modelgate/logger"
)

// Recovery turns a panic into a 500 INTERNAL_ERROR response and logs the stack.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.WithContext(r.Context()).Error("Panic recovered", map[string]any{
						"panic":  fmt.Sprint(rec),
						"stack":  string(debug.Stack()),
						"method": r.Method,
						"path":   r.URL.Path,
					})
					writeError(w, errors.Internal(fmt.Errorf("panic: %v", rec)))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
