package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/modelgate/logger"
)

// RequestLogger logs method, path, status and duration for every request
// except /health. 5xx logs at error, 4xx at warn, the rest at debug.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			fields := map[string]any{
				"method":             r.Method,
				"path":               r.URL.Path,
				logger.FieldStatus:   sw.status,
				logger.FieldDuration: time.Since(start).Milliseconds(),
			}
			l := log.WithContext(r.Context())
			switch {
			case sw.status >= 500:
				l.Error("Request completed", fields)
			case sw.status >= 400:
				l.Warn("Request completed", fields)
			default:
				l.Debug("Request completed", fields)
			}
		})
	}
}
