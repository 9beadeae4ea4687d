package middleware

import (
	"net/http"

	"github.com/kbukum/modelgate/util"
)

const defaultMaxBodySize = 1 << 20

// BodySizeLimit caps request bodies at maxSize ("512KB", "1MB").
func BodySizeLimit(maxSize string) Middleware {
	limit := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
