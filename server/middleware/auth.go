package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/modelgate/errors"
)

// AuthConfig enables HS256 bearer-token authentication.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Secret  string `yaml:"secret" mapstructure:"secret"`
	Issuer  string `yaml:"issuer" mapstructure:"issuer"`
	// SkipPaths are path prefixes served without a token.
	SkipPaths []string `yaml:"skip_paths" mapstructure:"skip_paths"`
}

type claimsKey struct{}

// ClaimsFromContext returns the validated token claims, if any.
func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	c, ok := ctx.Value(claimsKey{}).(jwt.MapClaims)
	return c, ok
}

// Auth validates "Authorization: Bearer <jwt>" signed with cfg.Secret.
// Failures are answered with 401 UNAUTHORIZED.
func Auth(cfg AuthConfig) Middleware {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (any, error) { return []byte(cfg.Secret), nil }

	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.SkipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				writeError(w, errors.Unauthorized("bearer token required"))
				return
			}

			claims := jwt.MapClaims{}
			if _, err := parser.ParseWithClaims(token, claims, keyFunc); err != nil {
				writeError(w, errors.Unauthorized("invalid token").WithCause(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}
