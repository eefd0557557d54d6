package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/typegen/internal/cli/config"
	"github.com/conduit-lang/typegen/internal/cli/ui"
	"github.com/conduit-lang/typegen/internal/typegen/naming"
	"github.com/conduit-lang/typegen/internal/typegen/schema"
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	var (
		metadata  string
		output    string
		roots     []string
		fieldCase string
		force     bool
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a typegen.yml",
		Long: `Create a typegen.yml in the current directory. Without --yes, missing
settings are asked for and the root resources are picked from the
resources in the metadata file.

Examples:
  typegen init
  typegen init --metadata priv/metadata.json --roots MyApp.Blog.Post --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			noColor := boolFlag(cmd, "no-color")
			out := cmd.OutOrStdout()

			path := stringFlag(cmd, "config")
			if path == "" {
				path = config.ConfigNames[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.Default()
			cfg.FieldCase = fieldCase
			if _, err := naming.ParseCase(fieldCase); err != nil {
				return err
			}

			cfg.Metadata = metadata
			if !yes && !cmd.Flags().Changed("metadata") {
				prompt := &survey.Input{Message: "Metadata file:", Default: cfg.Metadata}
				if err := survey.AskOne(prompt, &cfg.Metadata, survey.WithValidator(survey.Required)); err != nil {
					return err
				}
			}

			cfg.File = path
			reg, err := schema.LoadFile(cfg.MetadataPath())
			if err != nil {
				return err
			}

			if len(roots) == 0 {
				if yes {
					return fmt.Errorf("--roots is required with --yes")
				}
				prompt := &survey.MultiSelect{
					Message:  "Root resources:",
					Options:  exposable(reg),
					PageSize: 15,
				}
				if err := survey.AskOne(prompt, &roots, survey.WithValidator(survey.MinItems(1))); err != nil {
					return err
				}
			}
			for _, root := range roots {
				if _, ok := reg.Resource(root); !ok {
					suggestions := ui.FindSimilar(root, reg.Sorted(), &ui.FuzzyMatchOptions{Key: shortName})
					fmt.Fprint(cmd.ErrOrStderr(), ui.ResourceNotFoundError(root, suggestions, noColor))
					return &reportedError{err: &schema.UnknownResourceError{Name: root}}
				}
			}
			cfg.Roots = roots

			cfg.Output = output
			if !yes && !cmd.Flags().Changed("output") {
				prompt := &survey.Input{Message: "Output file:", Default: cfg.Output}
				if err := survey.AskOne(prompt, &cfg.Output, survey.WithValidator(survey.Required)); err != nil {
					return err
				}
			}

			if err := config.Save(cfg, path); err != nil {
				return err
			}
			ui.WriteSuccess(out, fmt.Sprintf("Created %s with %d root resources", filepath.Base(path), len(roots)), noColor)
			fmt.Fprintln(out, "  Next: typegen generate")
			return nil
		},
	}

	d := config.Default()
	cmd.Flags().StringVar(&metadata, "metadata", d.Metadata, "Metadata file (JSON or YAML)")
	cmd.Flags().StringVar(&output, "output", d.Output, "Output TypeScript file")
	cmd.Flags().StringSliceVar(&roots, "roots", nil, "Root resources, comma separated")
	cmd.Flags().StringVar(&fieldCase, "field-case", d.FieldCase, "Field name case: camel, pascal, snake, none")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not prompt; use flags and defaults")

	return cmd
}

// exposable returns the names of the standalone resources, sorted
func exposable(reg *schema.Registry) []string {
	var out []string
	for _, name := range reg.Sorted() {
		if !reg.IsEmbedded(name) {
			out = append(out, name)
		}
	}
	return out
}
