package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/modelgate/bootstrap"
	"github.com/kbukum/modelgate/config"
	"github.com/kbukum/modelgate/version"
)

const serviceName = "modelgate"

type rootOptions struct {
	configFile string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "modelgate",
		Short:         "Route text generation to interchangeable AI backends",
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default: ./config.yml)")
	flags.StringVar(&opts.envFile, "env-file", "", "env file loaded before reading MODELGATE_* variables (default: ./.env)")
	flags.StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newModelsCmd(opts),
		newAskCmd(opts),
		newChatCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadApp reads configuration and builds the application.
func (o *rootOptions) loadApp(ctx context.Context, quiet bool) (*bootstrap.App, error) {
	var loaderOpts []config.LoaderOption
	if o.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(o.envFile))
	}

	var cfg bootstrap.Config
	if err := config.Load(serviceName, &cfg, loaderOpts...); err != nil {
		return nil, err
	}
	switch {
	case o.logLevel != "":
		cfg.Logging.Level = o.logLevel
	case quiet && cfg.Logging.Level == "":
		cfg.Logging.Level = "warn"
	}
	return bootstrap.New(ctx, &cfg)
}
