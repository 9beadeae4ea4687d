package bootstrap

import (
	"time"

	"github.com/kbukum/modelgate/logger"
	"github.com/kbukum/modelgate/model"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	extraModels     []model.Model
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{gracefulTimeout: 15 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger instead of building one from config.logging.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout bounds shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = d }
}

// WithModels registers models that are not built from config, alongside
// the configured adapters.
func WithModels(models ...model.Model) Option {
	return func(o *appOptions) { o.extraModels = append(o.extraModels, models...) }
}
