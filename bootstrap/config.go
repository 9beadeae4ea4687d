package bootstrap

import (
	"fmt"

	"github.com/kbukum/modelgate/config"
	"github.com/kbukum/modelgate/dispatch"
	"github.com/kbukum/modelgate/llm"
	"github.com/kbukum/modelgate/observability"
	"github.com/kbukum/modelgate/server"
)

// Config is the complete modelgate configuration, as read from config.yml.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Dispatch      DispatchConfig       `yaml:"dispatch" mapstructure:"dispatch"`
	Models        []llm.Config         `yaml:"models" mapstructure:"models"`
}

// DispatchConfig controls request routing.
type DispatchConfig struct {
	// Capabilities are the served capability tags. Defaults to text-generation.
	Capabilities []string `yaml:"capabilities" mapstructure:"capabilities"`
	// DefaultModel answers requests that name no model. Defaults to the
	// first configured model.
	DefaultModel string `yaml:"default_model" mapstructure:"default_model"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	if len(c.Dispatch.Capabilities) == 0 {
		c.Dispatch.Capabilities = []string{dispatch.CapabilityTextGeneration}
	}
	if c.Dispatch.DefaultModel == "" && len(c.Models) > 0 {
		c.Dispatch.DefaultModel = c.Models[0].Name
	}
}

// Validate checks cross-section constraints. Per-model fields are
// validated when the adapters are built.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Observability.Validate(); err != nil {
		return err
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("config.models must list at least one model")
	}
	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.Name == "" {
			return fmt.Errorf("config.models[%d].name is required", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("config.models[%d]: duplicate model name %q", i, m.Name)
		}
		seen[m.Name] = true
	}
	if !seen[c.Dispatch.DefaultModel] {
		return fmt.Errorf("config.dispatch.default_model %q is not a configured model", c.Dispatch.DefaultModel)
	}
	return nil
}
