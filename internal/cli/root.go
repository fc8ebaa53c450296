// Package cli provides the command-line interface for redisTOON.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DreamStack-us/redisTOON/internal/cli/commands"
	"github.com/DreamStack-us/redisTOON/internal/cli/config"
)

var (
	cfgFile string
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

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "redistoon",
		Short: "redisTOON - TOON document engine",
		Long: `redisTOON is a document engine for TOON, a token-efficient text
notation for JSON-shaped data.

It stores TOON documents in memory behind an HTTP API with path-level
reads and writes, snapshots them to SQLite, and ships codec tooling to
convert between TOON and JSON and to estimate token costs.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// Load configuration with CLI flag overrides
			var err error
			cfg, err = config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			// Store config and logger in context
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			cmd.SetContext(ctx)

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", "path", configFile)
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Token-Oriented Object Notation document engine
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./redistoon.yaml)")
	rootCmd.PersistentFlags().String("listen-addr", "", "Address for the document server to listen on")
	rootCmd.PersistentFlags().String("state", "", "Path to the SQLite state database")
	rootCmd.PersistentFlags().String("seed-dir", "", "Directory of .toon seed documents")
	rootCmd.PersistentFlags().Bool("watch", false, "Reload seed documents when they change")
	rootCmd.PersistentFlags().Duration("snapshot-interval", 0, "Interval between store snapshots")
	rootCmd.PersistentFlags().String("server-url", "", "Base URL of the document server for client commands")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|table|plain|json|csv)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "table", "plain", "json", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for log flags
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewDecodeCommand())
	rootCmd.AddCommand(commands.NewEncodeCommand())
	rootCmd.AddCommand(commands.NewFmtCommand())
	rootCmd.AddCommand(commands.NewTokensCommand())
	rootCmd.AddCommand(commands.NewGetCommand())
	rootCmd.AddCommand(commands.NewSetCommand())
	rootCmd.AddCommand(commands.NewDelCommand())
	rootCmd.AddCommand(commands.NewTypeCommand())
	rootCmd.AddCommand(commands.NewKeysCommand())
	rootCmd.AddCommand(commands.NewMergeCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewArrCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewReplCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
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
		ListenAddr:       config.DefaultListenAddr,
		ServerURL:        config.DefaultServerURL,
		SnapshotInterval: config.DefaultSnapshotInterval,
		OutputFormat:     config.DefaultOutput,
		LogLevel:         config.DefaultLogLevel,
		LogFormat:        config.DefaultLogFormat,
	}
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for redisTOON.

To load completions:

Bash:
  $ source <(redistoon completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ redistoon completion bash > /etc/bash_completion.d/redistoon
  # macOS:
  $ redistoon completion bash > $(brew --prefix)/etc/bash_completion.d/redistoon

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ redistoon completion zsh > "${fpath[1]}/_redistoon"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ redistoon completion fish | source

  # To load completions for each session, execute once:
  $ redistoon completion fish > ~/.config/fish/completions/redistoon.fish

PowerShell:
  PS> redistoon completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> redistoon completion powershell > redistoon.ps1
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
