package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/drift/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new Drift project",
		Long: `Initialize a new Drift project with default configuration.

This creates:
  - drift.yaml configuration file
  - assets/ directory for segment and card definitions
  - .gitignore covering the local catalog and DuckDB files

Use --example to include a full set of asset definitions demonstrating
tables, segments, and cards over a demo orders schema.`,
		Example: `  # Initialize in current directory
  drift init

  # Initialize with example asset definitions
  drift init --example

  # Initialize in a new directory
  drift init my-project --example

  # Force overwrite existing config
  drift init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			// Create renderer
			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			if example {
				return runInitExample(r, dir, force)
			}
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Include example asset definitions")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := prepareInitDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("Drift project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Point the source in drift.yaml at your warehouse")
	r.Println("  2. Run 'drift discover' to sync tables into the catalog")
	r.Println("  3. Define segments and cards in assets/, then 'drift import'")
	r.Println("  4. Run 'drift fingerprint table:<name>' to profile an asset")

	return nil
}

func runInitExample(r *output.Renderer, dir string, force bool) error {
	if err := prepareInitDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("example", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("example")
	groups := groupTemplateFiles(files)

	r.Header(2, "Configuration")
	for _, f := range groups["config"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Assets")
	for _, f := range groups["assets"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("Drift project initialized with example definitions!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  drift import                         Load the example definitions")
	r.Println("  drift assets                         See what the catalog knows")
	r.Println("  drift fingerprint table:orders       Profile the orders table")
	r.Println("  drift compare table:orders segment:big_spenders")

	return nil
}

func prepareInitDir(dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := dir + "/drift.yaml"
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("drift.yaml already exists. Use --force to overwrite")
	}
	return nil
}
