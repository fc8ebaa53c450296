package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.ListenAddr != "" {
		if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
			return fmt.Errorf("invalid listen_addr %q: %w", c.ListenAddr, err)
		}
	}

	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil {
			return fmt.Errorf("invalid server_url %q: %w", c.ServerURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid server_url %q: scheme must be http or https", c.ServerURL)
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q (want debug, info, warn or error)", c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q (want text or json)", c.LogFormat)
	}

	switch strings.ToLower(c.OutputFormat) {
	case "", "auto", "table", "plain", "json", "csv":
	default:
		return fmt.Errorf("unknown output format %q (want auto, table, plain, json or csv)", c.OutputFormat)
	}

	if c.SnapshotInterval < 0 {
		return fmt.Errorf("snapshot_interval must not be negative, got %s", c.SnapshotInterval)
	}

	return nil
}
