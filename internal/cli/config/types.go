// Package config provides configuration management for the redistoon CLI.
//
// Configuration is loaded with layered precedence: built-in defaults, then
// an optional YAML config file, then REDISTOON_* environment variables, then
// command-line flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	ListenAddr       string        `koanf:"listen_addr"`
	StatePath        string        `koanf:"state_path"`
	SeedDir          string        `koanf:"seed_dir"`
	Watch            bool          `koanf:"watch"`
	SnapshotInterval time.Duration `koanf:"snapshot_interval"`
	ServerURL        string        `koanf:"server_url"`
	OutputFormat     string        `koanf:"output"`
	LogLevel         string        `koanf:"log_level"`
	LogFormat        string        `koanf:"log_format"`
	HistoryFile      string        `koanf:"history_file"`
}

// Default configuration values.
const (
	DefaultListenAddr       = "127.0.0.1:7379"
	DefaultServerURL        = "http://127.0.0.1:7379"
	DefaultStateFile        = ".redistoon/state.db"
	DefaultSnapshotInterval = 30 * time.Second
	DefaultOutput           = "auto" // Auto-detect: TTY=table, non-TTY=plain
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)
