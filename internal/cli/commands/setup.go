// Package commands implements the redistoon CLI command tree.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/DreamStack-us/redisTOON/internal/cli/config"
	"github.com/spf13/cobra"
)

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		ListenAddr:       getEnvOrDefault("REDISTOON_LISTEN_ADDR", config.DefaultListenAddr),
		ServerURL:        getEnvOrDefault("REDISTOON_SERVER_URL", config.DefaultServerURL),
		StatePath:        os.Getenv("REDISTOON_STATE_PATH"),
		SeedDir:          os.Getenv("REDISTOON_SEED_DIR"),
		SnapshotInterval: config.DefaultSnapshotInterval,
		OutputFormat:     getEnvOrDefault("REDISTOON_OUTPUT", config.DefaultOutput),
		LogLevel:         getEnvOrDefault("REDISTOON_LOG_LEVEL", config.DefaultLogLevel),
		LogFormat:        getEnvOrDefault("REDISTOON_LOG_FORMAT", config.DefaultLogFormat),
		HistoryFile:      os.Getenv("REDISTOON_HISTORY_FILE"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// readInput returns the contents of the first positional argument as a file,
// or stdin when no argument (or "-") is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// splitKeyArgs separates the document key from the remaining positional
// arguments. In --file mode there is no key argument, the file takes its place.
func splitKeyArgs(file string, args []string) (string, []string, error) {
	if file != "" {
		return "", args, nil
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("a document key is required (or use --file)")
	}
	return args[0], args[1:], nil
}
