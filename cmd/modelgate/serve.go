package main

import (
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.loadApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			return app.Serve(cmd.Context())
		},
	}
}
