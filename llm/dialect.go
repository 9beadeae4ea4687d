package llm

import (
	"fmt"
	"slices"
	"sync"
)

// Dialect maps ChatRequest and ChatResponse to one vendor's HTTP JSON format.
//
// Dialects register themselves from init in their own package:
//
//	func init() { llm.RegisterDialect(openai.Name, openai.Dialect{}) }
type Dialect interface {
	// Name returns the dialect identifier used in configuration.
	Name() string

	// ChatPath returns the default chat endpoint path, relative to the base URL.
	ChatPath() string

	// BuildRequest returns the JSON-encodable request body.
	BuildRequest(req ChatRequest) (any, error)

	// ParseResponse decodes a response body. An explicit backend error in the
	// body is returned as *RejectedError; anything else that cannot be decoded
	// is a plain error. Bodies of non-2xx responses are passed here too, so
	// the backend's own error message can be surfaced.
	ParseResponse(body []byte) (*ChatResponse, error)
}

var (
	dialectsMu sync.RWMutex
	dialects   = map[string]Dialect{}
)

// RegisterDialect adds d under name, replacing any previous registration.
func RegisterDialect(name string, d Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[name] = d
}

// GetDialect returns the dialect registered under name.
func GetDialect(name string) (Dialect, error) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("llm: unknown dialect %q (forgot to import driver?)", name)
	}
	return d, nil
}

// Dialects returns the registered dialect names, sorted.
func Dialects() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
