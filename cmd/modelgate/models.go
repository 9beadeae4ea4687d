package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/modelgate/model"
)

type modelLister interface {
	Lookup(name string) (model.Model, error)
	Names() []string
}

func newModelsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.loadApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer func() { _ = app.Shutdown() }()
			return printModels(cmd.OutOrStdout(), app.Registry, app.Cfg.Dispatch.DefaultModel)
		},
	}
}

// vendorPrefixes maps name or upstream-id prefixes to a display group.
var vendorPrefixes = []struct{ prefix, vendor string }{
	{"gpt", "OpenAI"},
	{"o1", "OpenAI"},
	{"deepseek", "DeepSeek"},
	{"qwen", "Qwen"},
	{"thudm/", "THUDM"},
	{"glm", "THUDM"},
	{"teleai/", "TeleAI"},
	{"telechat", "TeleAI"},
	{"llama", "Meta"},
}

const otherVendor = "Other"

func vendorOf(name, version string) string {
	for _, id := range []string{strings.ToLower(name), strings.ToLower(version)} {
		for _, vp := range vendorPrefixes {
			if strings.HasPrefix(id, vp.prefix) {
				return vp.vendor
			}
		}
	}
	return otherVendor
}

// printModels writes the models grouped by vendor, groups sorted with
// "Other" last; current is marked with "*".
func printModels(w io.Writer, models modelLister, current string) error {
	groups := map[string][]model.Model{}
	for _, name := range models.Names() {
		m, err := models.Lookup(name)
		if err != nil {
			continue
		}
		v := vendorOf(name, versionOf(m))
		groups[v] = append(groups[v], m)
	}
	vendors := slices.Collect(maps.Keys(groups))
	slices.SortFunc(vendors, func(a, b string) int {
		switch {
		case a == otherVendor:
			return 1
		case b == otherVendor:
			return -1
		}
		return strings.Compare(a, b)
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, vendor := range vendors {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s\n", vendor)
		for _, m := range groups[vendor] {
			mark := " "
			if m.Name() == current {
				mark = "*"
			}
			fmt.Fprintf(tw, "  %s %s\t%s\t%s\t%s\n", mark, m.Name(), versionOf(m), m.Parameters(), m.Description())
		}
	}
	return tw.Flush()
}

func versionOf(m model.Model) string {
	if v, ok := m.(interface{ Version() string }); ok && v.Version() != "" {
		return v.Version()
	}
	return "-"
}
