package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/typegen/internal/cli/ui"
	"github.com/conduit-lang/typegen/internal/typegen/discovery"
	"github.com/conduit-lang/typegen/internal/typegen/schema"
)

// NewDiscoverCommand creates the discover command
func NewDiscoverCommand() *cobra.Command {
	var (
		allPaths bool
		embedded bool
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List the resources reachable from the roots",
		Long: `Show which resources a generation pass would include and how each one
was reached. Nothing is written.

Examples:
  typegen discover
  typegen discover --paths
  typegen discover --embedded`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			reg, err := s.loadRegistry()
			if err != nil {
				return err
			}
			gen, err := s.generator(reg)
			if err != nil {
				return err
			}
			found, err := gen.Discover()
			if err != nil {
				return s.report(err, reg)
			}

			out := cmd.OutOrStdout()
			renderDiscovery(out, reg, found, allPaths, s.noColor)

			if embedded {
				emb, err := discovery.ScanEmbedded(reg, found.Names())
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				ui.Divider(out, 0, s.noColor)
				list := ui.NewNameList(out, s.noColor)
				list.Add("Embedded resources", emb.Resources...)
				list.Add("Typed structs", emb.TypedStructs...)
				list.Add("Input schemas", discovery.InputResources(reg, found)...)
				list.Render()
			}

			for _, name := range found.Unexposed() {
				fmt.Fprintln(out)
				fmt.Fprint(out, ui.Warning(
					fmt.Sprintf("resource %s is reachable but not exposed", name),
					[]string{"via " + found.Paths[name][0].String()},
					s.noColor))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allPaths, "paths", false, "Show every path that reached each resource")
	cmd.Flags().BoolVar(&embedded, "embedded", false, "Show embedded resources, typed structs and input schemas")

	return cmd
}

func renderDiscovery(w io.Writer, reg *schema.Registry, found *discovery.Result, allPaths bool, noColor bool) {
	roots := make(map[string]bool, len(found.Roots))
	for _, r := range found.Roots {
		roots[r] = true
	}

	ui.Header(w, fmt.Sprintf("%d of %d resources reachable", found.Len(), reg.Len()), noColor)
	table := ui.NewTable(w, noColor,
		ui.Column{Title: "Resource"},
		ui.Column{Title: "Kind", Style: kindStyle},
		ui.Column{Title: "Fields", Right: true},
		ui.Column{Title: "Via"},
	)
	for _, res := range found.Resources() {
		kind := kindUnexposed
		switch {
		case roots[res.Name]:
			kind = kindRoot
		case res.Embedded:
			kind = kindEmbedded
		}

		paths := found.Paths[res.Name]
		table.AddRow(res.Name, kind, strconv.Itoa(len(res.Fields)), paths[0].String())
		if allPaths {
			for _, p := range paths[1:] {
				table.Continue(p.String())
			}
		}
	}
	table.Render()
}

const (
	kindRoot      = "root"
	kindEmbedded  = "embedded"
	kindUnexposed = "unexposed"
)

func kindStyle(kind string) *color.Color {
	switch kind {
	case kindRoot:
		return color.New(color.FgGreen)
	case kindEmbedded:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgYellow)
	}
}
