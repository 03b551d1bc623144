// Package cli provides the command-line interface for Drift.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/drift/internal/cli/commands"
	"github.com/leapstack-labs/drift/internal/cli/output"
	"github.com/leapstack-labs/drift/internal/config"
)

var (
	cfgFile string
	envFlag string
	cfg     *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// rendererKey is used to store renderer in context.
type rendererKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "drift",
		Short: "Drift - Statistical Fingerprints for Analytical Assets",
		Long: `Drift extracts statistical fingerprints from tables, columns, segments,
and saved queries, and compares them to find what changed between two
versions of the same data.

Point it at a warehouse, discover tables into the catalog, then fingerprint
and compare assets across environments or points in time.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// Load configuration with optional environment override and CLI flags
			var err error
			cfg, err = config.LoadConfigWithEnv(cfgFile, envFlag, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			// Store config in context
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)

			// Build the logger from the verbosity setting and store it where
			// components look for it
			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)

			// Create and store renderer based on output mode
			mode := output.Mode(cfg.OutputFormat)
			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
			ctx = context.WithValue(ctx, rendererKey{}, renderer)
			cmd.SetContext(ctx)

			// Print config file used (if verbose)
			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
				if envFlag != "" {
					fmt.Fprintf(os.Stderr, "Using environment: %s\n", envFlag)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Statistical fingerprints for analytical assets
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./drift.yaml)")
	rootCmd.PersistentFlags().StringVarP(&envFlag, "env", "e", "", "Environment to use (e.g., dev, staging, prod)")
	rootCmd.PersistentFlags().String("project-dir", "", "Path to the project root")
	rootCmd.PersistentFlags().String("assets-dir", "", "Path to asset definitions directory")
	rootCmd.PersistentFlags().String("catalog", "", "Path to catalog database (\":memory:\" for ephemeral)")
	rootCmd.PersistentFlags().String("max-cost-query", "", "Query cost ceiling (sample|full-scan)")
	rootCmd.PersistentFlags().String("max-cost-computation", "", "Computation cost ceiling (linear|unbounded)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|table|json|markdown)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.Modes(), cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for env flag
	_ = rootCmd.RegisterFlagCompletionFunc("env", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"dev", "staging", "prod"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for the cost flags
	_ = rootCmd.RegisterFlagCompletionFunc("max-cost-query", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sample", "full-scan"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("max-cost-computation", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"linear", "unbounded"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewDiscoverCommand())
	rootCmd.AddCommand(commands.NewAssetsCommand())
	rootCmd.AddCommand(commands.NewImportCommand())
	rootCmd.AddCommand(commands.NewFingerprintCommand())
	rootCmd.AddCommand(commands.NewCompareCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Return default config if none in context
	return &config.Config{
		CatalogPath: config.DefaultCatalogFile,
		AssetsDir:   config.DefaultAssetsDir,
		SampleCap:   config.DefaultSampleCap,
		MaxCost:     config.DefaultMaxCost(),
		Environment: config.DefaultEnv,
	}
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	// Return default renderer if none in context
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for Drift.

To load completions:

Bash:
  $ source <(drift completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ drift completion bash > /etc/bash_completion.d/drift
  # macOS:
  $ drift completion bash > $(brew --prefix)/etc/bash_completion.d/drift

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ drift completion zsh > "${fpath[1]}/_drift"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ drift completion fish | source

  # To load completions for each session, execute once:
  $ drift completion fish > ~/.config/fish/completions/drift.fish

PowerShell:
  PS> drift completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> drift completion powershell > drift.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
