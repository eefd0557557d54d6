package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/typegen/internal/cli/ui"
	"github.com/conduit-lang/typegen/internal/typegen/generator"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	var (
		out      string
		toStdout bool
	)

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"g", "gen"},
		Short:   "Generate the TypeScript schema file",
		Long: `Generate TypeScript schemas for every resource reachable from the
configured roots and write them to the output file.

The pass stops without writing anything when a field has a type with no
TypeScript rendering or when two generated names collide.

Examples:
  typegen generate
  typegen generate --out assets/js/schemas.ts
  typegen g --stdout > schemas.ts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			dest := s.cfg.OutputPath()
			if out != "" {
				dest = out
			}
			if toStdout {
				dest = ""
			}

			res, err := s.generate(dest, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if !toStdout {
				ui.WriteSuccess(cmd.OutOrStdout(), summary(res, dest), s.noColor)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (overrides output in typegen.yml)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Write the generated TypeScript to stdout")

	return cmd
}

// generate runs one pass and writes the result to dest, or to stdout when dest
// is empty. Errors the user can act on are reported before returning.
func (s *session) generate(dest string, stdout io.Writer) (*generator.Result, error) {
	reg, err := s.loadRegistry()
	if err != nil {
		return nil, err
	}
	gen, err := s.generator(reg)
	if err != nil {
		return nil, err
	}

	res, err := gen.Run()
	if err != nil {
		return nil, s.report(err, reg)
	}
	for _, w := range res.Warnings {
		s.warn(w)
	}

	if dest == "" {
		return res, generator.Render(stdout, res)
	}
	if err := generator.WriteFile(dest, res); err != nil {
		return nil, err
	}
	s.logger.Info("output written", zap.String("path", dest), zap.String("pass", res.PassID))
	return res, nil
}

func summary(res *generator.Result, dest string) string {
	return fmt.Sprintf("Generated %d schemas for %d resources in %s (%s)",
		len(res.Schemas()), res.Discovery.Len(), dest, res.Duration.Round(time.Microsecond))
}
