package httpclient

import "net/http"

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone sends no credentials.
	AuthNone AuthType = iota
	// AuthBearer sends "Authorization: Bearer <token>".
	AuthBearer
	// AuthAPIKey sends the key in a named header.
	AuthAPIKey
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	Type  AuthType
	Token string
	// Header names the API key header. Defaults to "X-API-Key".
	Header string
}

// BearerAuth returns bearer token auth, or nil for an empty token so local
// backends without credentials get no Authorization header.
func BearerAuth(token string) *AuthConfig {
	if token == "" {
		return nil
	}
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// APIKeyAuth returns header API key auth.
func APIKeyAuth(key, header string) *AuthConfig {
	if key == "" {
		return nil
	}
	return &AuthConfig{Type: AuthAPIKey, Token: key, Header: header}
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthAPIKey:
		name := a.Header
		if name == "" {
			name = "X-API-Key"
		}
		req.Header.Set(name, a.Token)
	}
}
