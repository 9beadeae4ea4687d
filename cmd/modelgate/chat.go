package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/kbukum/modelgate/errors"
	"github.com/kbukum/modelgate/session"
)

const chatHelp = `Commands:
  help    show this help
  models  list available models
  use X   switch to model X (e.g. "use qwen-plus")
  temp X  set the current model's temperature (0.0-2.0)
  clear   clear the conversation
  exit    leave (also "quit" or Ctrl+D)
Anything else is sent to the current model.
`

func newChatCmd(root *rootOptions) *cobra.Command {
	var modelName string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat with conversation history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := root.loadApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer func() { _ = app.Shutdown() }()

			s, err := app.NewSession(modelName)
			if err != nil {
				return err
			}
			r := &repl{session: s, models: app.Registry, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
			return r.run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "model to start with (default: dispatch.default_model)")
	return cmd
}

// repl is the interactive loop. Input handling is separate from command
// handling so commands can be driven without a terminal.
type repl struct {
	session *session.Session
	models  modelLister
	out     io.Writer
	errOut  io.Writer
}

func (r *repl) run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(r.complete)

	fmt.Fprintf(r.out, "modelgate chat. Type 'help' for commands.\nCurrent model: %s\n\n", r.session.Current())
	for {
		input, err := line.Prompt(r.session.Current() + "> ")
		if err != nil {
			if stderrors.Is(err, liner.ErrPromptAborted) || stderrors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return err
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if quit := r.handle(ctx, input); quit {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}
	}
}

// handle executes one input line and reports whether the loop should end.
func (r *repl) handle(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return false
	case "exit", "quit":
		if arg == "" {
			return true
		}
	case "help":
		if arg == "" {
			fmt.Fprint(r.out, chatHelp)
			return false
		}
	case "models":
		if arg == "" {
			_ = printModels(r.out, r.models, r.session.Current())
			return false
		}
	case "clear":
		if arg == "" {
			r.session.Clear()
			fmt.Fprintln(r.out, "Conversation cleared.")
			return false
		}
	case "use":
		if arg != "" {
			if err := r.session.Use(arg); err != nil {
				r.printError(err)
				if errors.Is(err, errors.ErrCodeModelNotFound) {
					fmt.Fprintln(r.errOut, "Use 'models' to see available models.")
				}
				return false
			}
			fmt.Fprintf(r.out, "Switched to model: %s\n", arg)
			return false
		}
	case "temp":
		if arg != "" {
			r.setTemperature(arg)
			return false
		}
	}

	r.ask(ctx, input)
	return false
}

func (r *repl) setTemperature(arg string) {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		fmt.Fprintln(r.errOut, "Invalid temperature value. Enter a number between 0.0 and 2.0.")
		return
	}
	if _, err := r.session.SetTemperature(v); err != nil {
		r.printError(err)
		return
	}
	fmt.Fprintf(r.out, "Temperature for %s set to %.1f\n", r.session.Current(), v)
}

func (r *repl) ask(ctx context.Context, text string) {
	start := time.Now()
	reply, err := r.session.Ask(ctx, text)
	if err != nil {
		r.printError(err)
		return
	}
	fmt.Fprintf(r.out, "\n%s\n(%.2fs with %s)\n\n", formatReply(reply), time.Since(start).Seconds(), r.session.Current())
}

func (r *repl) printError(err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		fmt.Fprintf(r.errOut, "Error [%s]: %s\n", appErr.Code, appErr.Message)
		return
	}
	fmt.Fprintf(r.errOut, "Error: %v\n", err)
}

func (r *repl) complete(line string) []string {
	var out []string
	if name, ok := strings.CutPrefix(line, "use "); ok {
		for _, m := range r.models.Names() {
			if strings.HasPrefix(m, name) {
				out = append(out, "use "+m)
			}
		}
		return out
	}
	for _, c := range []string{"help", "models", "use ", "temp ", "clear", "exit", "quit"} {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

// formatReply frames fenced code blocks so they stand out in a terminal.
// An unterminated fence is closed at the end of the reply.
func formatReply(reply string) string {
	var b strings.Builder
	inCode := false
	for _, line := range strings.Split(reply, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inCode {
				b.WriteString(codeBottom + "\n")
			} else {
				b.WriteString(codeTop + "\n")
			}
			inCode = !inCode
			continue
		}
		if inCode {
			b.WriteString("│ ")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if inCode {
		b.WriteString(codeBottom + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

const (
	codeTop    = "┌──────────── code ────────────"
	codeBottom = "└──────────────────────────────"
)
