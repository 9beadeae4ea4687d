package httpclient

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/modelgate/resilience"
	"github.com/kbukum/modelgate/security"
)

const defaultTimeout = 60 * time.Second

// Config configures a backend HTTP client.
type Config struct {
	// BaseURL is prepended to every request path.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds a single attempt. Defaults to 60s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Auth is applied to every request unless the request overrides it.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// TLS customizes certificate verification. Nil keeps the default transport.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Retry enables retries of retryable failures. Nil disables retry.
	Retry *resilience.RetryConfig `yaml:"-" mapstructure:"-"`

	// CircuitBreaker fails fast while the backend is down. Nil disables it.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"-" mapstructure:"-"`

	// Bulkhead caps concurrent requests. Nil disables it.
	Bulkhead *resilience.BulkheadConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("httpclient: invalid base_url %q", c.BaseURL)
		}
	}
	return c.TLS.Validate()
}

// DefaultRetryConfig returns retry settings that only retry classified
// retryable errors.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = IsRetryable
	return &cfg
}

// DefaultCircuitBreakerConfig returns an enabled breaker for the named backend.
func DefaultCircuitBreakerConfig(name string) *resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	return &cfg
}
