package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DreamStack-us/redisTOON/internal/state"
	"github.com/DreamStack-us/redisTOON/internal/store"
	"github.com/DreamStack-us/redisTOON/internal/testutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// =============================================================================
// Seed loading
// =============================================================================

func TestLoadSeedDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "users.toon"), "name: Alice\n")
	writeFile(t, filepath.Join(dir, "bad.toon"), "x: \"broken")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	st := store.New()
	n, err := LoadSeedDir(st, dir, testutil.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 1, n, "the broken seed is skipped, the text file ignored")

	keys, err := st.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, keys)

	body, _, err := st.Get("users", "")
	require.NoError(t, err)
	assert.Equal(t, "name: Alice\n", body)
}

func TestLoadSeedDirWithManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "sub", "cfg.toon"), "debug: true\n")
	writeFile(t, filepath.Join(dir, "users.toon"), "name: Alice\n")
	writeFile(t, filepath.Join(dir, "ignored.toon"), "skipped: true\n")
	writeFile(t, filepath.Join(dir, "manifest.yaml"), `documents:
  - key: config
    file: sub/cfg.toon
  - file: users.toon
  - key: missing
    file: nope.toon
`)

	st := store.New()
	n, err := LoadSeedDir(st, dir, testutil.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := st.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"config", "users"}, keys, "the manifest picks keys and files")
}

func TestLoadSeedDirMissing(t *testing.T) {
	st := store.New()
	_, err := LoadSeedDir(st, filepath.Join(t.TempDir(), "absent"), testutil.NewTestLogger(t))
	assert.Error(t, err)
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestServeShutsDownCleanly(t *testing.T) {
	st := store.New()
	_, _, err := st.Set("doc", "a: 1\n")
	require.NoError(t, err)

	db := state.NewSQLiteStore()
	require.NoError(t, db.Open(filepath.Join(t.TempDir(), "state.db")))
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	srv := NewServer(Config{
		Store:            st,
		State:            db,
		Addr:             "127.0.0.1:0",
		SnapshotInterval: time.Hour,
		Logger:           testutil.NewTestLogger(t),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	// Shutdown wrote a final snapshot.
	restored := store.New()
	n, err := db.Restore(context.Background(), restored)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
