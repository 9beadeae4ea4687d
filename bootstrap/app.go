package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/modelgate/dispatch"
	"github.com/kbukum/modelgate/llm"
	_ "github.com/kbukum/modelgate/llm/ollama"
	_ "github.com/kbukum/modelgate/llm/openai"
	"github.com/kbukum/modelgate/logger"
	"github.com/kbukum/modelgate/observability"
	"github.com/kbukum/modelgate/registry"
	"github.com/kbukum/modelgate/server"
	"github.com/kbukum/modelgate/session"
	"github.com/kbukum/modelgate/util"
	"github.com/kbukum/modelgate/version"
)

// App wires configuration, adapters, the registry and the dispatcher.
type App struct {
	Name       string
	Version    string
	Cfg        *Config
	Logger     *logger.Logger
	Registry   *registry.Registry
	Dispatcher *dispatch.Dispatcher

	gracefulTimeout time.Duration
	onStop          []Hook
}

// New applies defaults, validates cfg, starts telemetry when enabled and
// registers one adapter per configured model.
func New(ctx context.Context, cfg *Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	o := resolveOptions(opts)

	app := &App{
		Name:            cfg.Name,
		Version:         cfg.Version,
		Cfg:             cfg,
		Registry:        registry.New(),
		gracefulTimeout: o.gracefulTimeout,
	}
	if app.Version == "" {
		app.Version = version.Get().Short()
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&cfg.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	shutdown, err := observability.Setup(ctx, cfg.Observability, app.Name, app.Version)
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	app.OnStop(Hook(shutdown))

	adapters, err := llm.FromConfig(cfg.Models)
	if err != nil {
		return nil, err
	}
	if err := llm.RegisterAll(app.Registry, adapters); err != nil {
		return nil, err
	}
	for _, m := range o.extraModels {
		if err := app.Registry.Register(m); err != nil {
			return nil, err
		}
	}

	app.Dispatcher, err = dispatch.New(app.Registry,
		dispatch.WithCapabilities(cfg.Dispatch.Capabilities...),
		dispatch.WithDefaultModel(cfg.Dispatch.DefaultModel),
		dispatch.WithLogger(app.Logger),
	)
	if err != nil {
		return nil, err
	}

	for i, a := range adapters {
		app.Logger.Debug("Model registered", logger.Fields(
			logger.FieldModel, a.Name(),
			logger.FieldDialect, a.Dialect().Name(),
			"version", a.Version(),
			"parameters", a.Parameters().String(),
			"api_key", util.MaskSecret(llm.ExpandEnv(cfg.Models[i].APIKey), 4),
		))
	}
	app.Logger.Info("Models ready", logger.Fields(
		"count", app.Registry.Len(),
		"default", cfg.Dispatch.DefaultModel,
	))
	return app, nil
}

// NewSession starts a chat session on modelName, or on the default model
// when modelName is empty.
func (a *App) NewSession(modelName string) (*session.Session, error) {
	if modelName == "" {
		modelName = a.Cfg.Dispatch.DefaultModel
	}
	return session.New(a.Dispatcher, a.Registry, modelName)
}

// Serve runs the HTTP API until ctx is canceled or SIGINT/SIGTERM arrives,
// then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := server.New(a.Cfg.Server, a.Logger)
	server.NewAPI(a.Dispatcher, a.Registry, a.Name, a.Version, a.Cfg.Dispatch.DefaultModel).Register(srv.Engine())
	if err := srv.Start(ctx); err != nil {
		return err
	}
	a.OnStop(srv.Stop)

	a.WaitForSignal(ctx)
	return a.Shutdown()
}

// RunTask runs a finite task, canceling it on SIGINT/SIGTERM, then shuts down.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	taskCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	taskErr := task(taskCtx)
	if err := a.Shutdown(); err != nil && taskErr == nil {
		return err
	}
	return taskErr
}

// WaitForSignal blocks until SIGINT/SIGTERM or ctx cancellation.
func (a *App) WaitForSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", map[string]any{"signal": sig.String()})
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
	}
}

// Shutdown runs the stop hooks within the graceful timeout.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	err := runStopHooks(ctx, a.onStop)
	a.onStop = nil
	if err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.ErrorFields("shutdown", err))
		return err
	}
	a.Logger.Debug("Shutdown complete")
	return nil
}
