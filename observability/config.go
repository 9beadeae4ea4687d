package observability

import (
	"fmt"
	"time"
)

// Config configures OpenTelemetry export. When Enabled is false the global
// no-op providers stay in place.
type Config struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Endpoint is the OTLP HTTP collector host:port.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	// Insecure disables TLS to the collector.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`
	// SampleRate is the trace sampling ratio (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
	// Interval is the metric export interval.
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	// Environment is reported as a resource attribute.
	Environment string `mapstructure:"environment" yaml:"environment"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.Interval <= 0 {
		c.Interval = 15 * time.Second
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability: sample_rate must be between 0 and 1, got %g", c.SampleRate)
	}
	return nil
}
