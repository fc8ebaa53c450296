// Package server exposes the document store over HTTP. Mutating responses
// carry the entry's new revision as an ETag and the full re-encoded document
// body, so clients always replicate whole-document state.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/DreamStack-us/redisTOON/internal/state"
	"github.com/DreamStack-us/redisTOON/internal/store"
)

// Server is the document API server.
type Server struct {
	store            *store.Store
	state            *state.SQLiteStore
	addr             string
	seedDir          string
	watch            bool
	snapshotInterval time.Duration
	logger           *slog.Logger
}

// Config holds configuration for the server.
type Config struct {
	Store *store.Store
	// State is optional; when set together with SnapshotInterval the server
	// snapshots the store periodically and once more on shutdown.
	State            *state.SQLiteStore
	Addr             string
	SeedDir          string
	Watch            bool
	SnapshotInterval time.Duration
	Logger           *slog.Logger
}

// NewServer creates a new server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		store:            cfg.Store,
		state:            cfg.State,
		addr:             cfg.Addr,
		seedDir:          cfg.SeedDir,
		watch:            cfg.Watch,
		snapshotInterval: cfg.SnapshotInterval,
		logger:           logger,
	}
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start seed watcher if enabled
	if s.watch && s.seedDir != "" {
		eg.Go(func() error {
			return s.watchSeeds(egctx)
		})
	}

	// Start periodic snapshots if a state store is attached
	if s.state != nil && s.snapshotInterval > 0 {
		eg.Go(func() error {
			return s.snapshotLoop(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// snapshotLoop saves the store to the state database on every tick and once
// more on shutdown.
func (s *Server) snapshotLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			n, err := s.state.Snapshot(saveCtx, s.store)
			if err != nil {
				return fmt.Errorf("final snapshot: %w", err)
			}
			s.logger.Info("final snapshot saved", "documents", n)
			return nil

		case <-ticker.C:
			n, err := s.state.Snapshot(ctx, s.store)
			if err != nil {
				s.logger.Error("snapshot failed", "error", err)
				continue
			}
			s.logger.Debug("snapshot saved", "documents", n)
		}
	}
}

// watchSeeds watches the seed directory and reloads documents when .toon
// files or the manifest change.
func (s *Server) watchSeeds(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, s.seedDir); err != nil {
		s.logger.Error("failed to watch seed directory", "error", err)
		// Don't fail - continue without watching
		return nil
	}

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			ext := filepath.Ext(event.Name)
			if ext != ".toon" && ext != ".yaml" {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("seed changed, reloading", "file", event.Name)

				n, err := LoadSeedDir(s.store, s.seedDir, s.logger)
				if err != nil {
					s.logger.Error("seed reload failed", "error", err)
					return
				}
				s.logger.Info("seeds reloaded", "documents", n)
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
