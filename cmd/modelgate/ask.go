package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/modelgate/dispatch"
)

type askOptions struct {
	model       string
	temperature float64
	maxTokens   int
	asJSON      bool
}

func newAskCmd(root *rootOptions) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [flags] PROMPT...",
		Short: "Send one prompt and print the reply",
		Example: `  modelgate ask "Explain HTTP/2 in one sentence"
  modelgate ask -m qwen-plus -t 0.2 "Translate to French: good morning"
  modelgate ask --json "Return {\"city\": ...} for the capital of Japan"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.loadApp(cmd.Context(), true)
			if err != nil {
				return err
			}

			params := dispatch.Params{dispatch.ParamPrompt: strings.Join(args, " ")}
			if cmd.Flags().Changed("temperature") {
				params[dispatch.ParamTemperature] = opts.temperature
			}
			if cmd.Flags().Changed("max-tokens") {
				params[dispatch.ParamMaxTokens] = opts.maxTokens
			}

			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				if opts.asJSON {
					v, err := dispatch.ExecuteTyped[any](ctx, app.Dispatcher, dispatch.CapabilityTextGeneration, opts.model, params)
					if err != nil {
						return err
					}
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(v)
				}
				text, err := app.Dispatcher.Execute(ctx, dispatch.CapabilityTextGeneration, opts.model, params)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.model, "model", "m", "", "model name (default: dispatch.default_model)")
	flags.Float64VarP(&opts.temperature, "temperature", "t", 0, "temperature override for this call (0.0-2.0)")
	flags.IntVar(&opts.maxTokens, "max-tokens", 0, "max tokens override for this call")
	flags.BoolVar(&opts.asJSON, "json", false, "decode the reply as JSON and pretty-print it")
	return cmd
}
