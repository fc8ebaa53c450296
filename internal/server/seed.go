package server

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/DreamStack-us/redisTOON/internal/store"
)

// Manifest lists the documents a seed directory provides. Without one,
// every .toon file in the directory is loaded under its base name.
type Manifest struct {
	Documents []ManifestEntry `yaml:"documents"`
}

// ManifestEntry names one seed document. Key defaults to the file's base
// name without the .toon extension.
type ManifestEntry struct {
	Key  string `yaml:"key"`
	File string `yaml:"file"`
}

// LoadSeedDir loads the seed documents in dir into st and returns how many
// loaded. A document that fails to read or decode is logged and skipped so
// one bad seed does not block the rest.
func LoadSeedDir(st *store.Store, dir string, logger *slog.Logger) (int, error) {
	manifestPath := filepath.Join(dir, "manifest.yaml")
	if _, err := os.Stat(manifestPath); err == nil {
		return loadManifest(st, dir, manifestPath, logger)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read seed directory: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toon" {
			continue
		}
		key := strings.TrimSuffix(entry.Name(), ".toon")
		if err := loadSeedFile(st, key, filepath.Join(dir, entry.Name())); err != nil {
			logger.Error("failed to load seed", "file", entry.Name(), "error", err)
			continue
		}
		count++
	}
	return count, nil
}

func loadManifest(st *store.Store, dir, path string, logger *slog.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return 0, fmt.Errorf("parse manifest: %w", err)
	}

	count := 0
	for _, doc := range m.Documents {
		key := doc.Key
		if key == "" {
			key = strings.TrimSuffix(filepath.Base(doc.File), ".toon")
		}
		if err := loadSeedFile(st, key, filepath.Join(dir, doc.File)); err != nil {
			logger.Error("failed to load seed", "key", key, "file", doc.File, "error", err)
			continue
		}
		count++
	}
	return count, nil
}

func loadSeedFile(st *store.Store, key, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, _, err = st.Set(key, string(data))
	return err
}
