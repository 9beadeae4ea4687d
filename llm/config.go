package llm

import (
	"os"
	"regexp"
	"time"

	"github.com/kbukum/modelgate/resilience"
	"github.com/kbukum/modelgate/security"
)

const defaultTimeout = 120 * time.Second

// Config describes one backend model. It is the per-adapter construction
// value: base endpoint, credential and upstream model id.
type Config struct {
	// Name is the registry key, e.g. "deepseek-chat".
	Name        string `mapstructure:"name" yaml:"name" validate:"required"`
	Description string `mapstructure:"description" yaml:"description"`

	// Dialect selects the wire format, e.g. "openai" or "ollama".
	Dialect string `mapstructure:"dialect" yaml:"dialect" validate:"required"`

	// BaseURL is the API root, e.g. "https://api.deepseek.com".
	BaseURL string `mapstructure:"base_url" yaml:"base_url" validate:"required,url"`
	// ChatPath overrides the dialect's chat endpoint path.
	ChatPath string `mapstructure:"chat_path" yaml:"chat_path"`

	// APIKey is sent as a bearer token. ${VAR} references are expanded from
	// the environment. Empty sends no credential.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// Version is the upstream model id sent in each request, e.g.
	// "deepseek-chat" or "THUDM/glm-4-9b-chat".
	Version string `mapstructure:"version" yaml:"version" validate:"required"`

	// Temperature and MaxTokens are the adapter's initial default parameters.
	Temperature *float64 `mapstructure:"temperature" yaml:"temperature" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   *int     `mapstructure:"max_tokens" yaml:"max_tokens" validate:"omitempty,gt=0"`

	// JSONMode sends the dialect's JSON output flag on typed calls. Off by
	// default: OpenAI and DeepSeek reject it unless the prompt mentions JSON,
	// and some compatible servers reject the field outright.
	JSONMode bool `mapstructure:"json_mode" yaml:"json_mode"`

	// Timeout bounds one HTTP attempt. Defaults to 120s.
	Timeout time.Duration     `mapstructure:"timeout" yaml:"timeout"`
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`
	// TLS is for self-hosted backends behind a private CA or mTLS.
	TLS *security.TLSConfig `mapstructure:"tls" yaml:"tls"`

	Retry          *resilience.RetryConfig          `mapstructure:"retry" yaml:"retry"`
	CircuitBreaker *resilience.CircuitBreakerConfig `mapstructure:"circuit_breaker" yaml:"circuit_breaker"`
	Concurrency    *resilience.BulkheadConfig       `mapstructure:"concurrency" yaml:"concurrency"`
}

// ApplyDefaults fills in zero-value fields and expands the API key.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Description == "" {
		c.Description = c.Name
	}
	c.APIKey = ExpandEnv(c.APIKey)
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnv replaces ${VAR} references with environment values. Unset
// variables expand to the empty string. A bare $ is left alone so keys
// containing one survive.
func ExpandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envRef.FindStringSubmatch(ref)[1])
	})
}
