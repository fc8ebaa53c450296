package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DreamStack-us/redisTOON/internal/cli/config"
	"github.com/DreamStack-us/redisTOON/internal/server"
	"github.com/DreamStack-us/redisTOON/internal/state"
	"github.com/DreamStack-us/redisTOON/internal/store"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the document server",
		Long: `Start the HTTP document server. Documents are held in memory and
snapshotted to a SQLite state file at the configured interval and on
shutdown. A seed directory, when configured, is loaded on startup and
optionally watched for changes.`,
		Example: `  redistoon serve
  redistoon serve --listen-addr 0.0.0.0:7379 --state /var/lib/redistoon/state.db
  redistoon serve --seed-dir ./seeds --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			logger := config.GetLogger(cmd.Context())

			statePath := cfg.StatePath
			if statePath == "" {
				statePath = config.DefaultStateFile
			}
			if dir := filepath.Dir(statePath); dir != "." {
				if err := os.MkdirAll(dir, 0750); err != nil {
					return fmt.Errorf("failed to create state directory: %w", err)
				}
			}

			st := store.New()
			defer func() { _ = st.Close() }()

			sqlStore := state.NewSQLiteStore()
			if err := sqlStore.Open(statePath); err != nil {
				return fmt.Errorf("failed to open state database: %w", err)
			}
			defer func() { _ = sqlStore.Close() }()

			if err := sqlStore.Migrate(); err != nil {
				return fmt.Errorf("failed to migrate state database: %w", err)
			}
			if version, err := sqlStore.GetMigrationVersion(); err == nil {
				logger.Debug("state schema ready", "version", version, "path", statePath)
			}

			restored, err := sqlStore.Restore(cmd.Context(), st)
			if err != nil {
				return fmt.Errorf("failed to restore snapshot: %w", err)
			}
			if restored > 0 {
				logger.Info("restored snapshot", "documents", restored, "path", statePath)
			}

			if cfg.SeedDir != "" {
				loaded, err := server.LoadSeedDir(st, cfg.SeedDir, logger)
				if err != nil {
					return fmt.Errorf("failed to load seed directory: %w", err)
				}
				logger.Info("seeds loaded", "documents", loaded, "dir", cfg.SeedDir)
			}

			srv := server.NewServer(server.Config{
				Store:            st,
				State:            sqlStore,
				Addr:             cfg.ListenAddr,
				SeedDir:          cfg.SeedDir,
				Watch:            cfg.Watch,
				SnapshotInterval: cfg.SnapshotInterval,
				Logger:           logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Serving on http://%s\n", cfg.ListenAddr)
			fmt.Println("Press Ctrl+C to stop")

			return srv.Serve(ctx)
		},
	}
}
