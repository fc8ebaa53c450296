// Package commands_test provides tests for CLI command creation.
package commands

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DreamStack-us/redisTOON/internal/server"
	"github.com/DreamStack-us/redisTOON/internal/store"
)

// newTestServer starts a document server around a fresh store and points the
// client commands at it through the environment.
func newTestServer(t *testing.T) *store.Store {
	t.Helper()
	st := store.New()
	t.Cleanup(func() { _ = st.Close() })

	srv := server.NewServer(server.Config{Store: st, Addr: "127.0.0.1:0"})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	t.Setenv("REDISTOON_SERVER_URL", ts.URL)
	return st
}

func execCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// ---------- Command metadata ----------

func TestNewGetCommand(t *testing.T) {
	cmd := NewGetCommand()

	assert.Equal(t, "get [key] [path]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("file"), "flag \"file\" should exist")
}

func TestNewSetCommand(t *testing.T) {
	cmd := NewSetCommand()

	assert.Equal(t, "set [key] <path> <value>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("file"), "flag \"file\" should exist")
}

func TestNewArrCommand(t *testing.T) {
	cmd := NewArrCommand()

	assert.Equal(t, "arr", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("file"), "flag \"file\" should exist")

	subs := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subs[sub.Name()] = true
	}
	for _, name := range []string{"append", "insert", "pop", "len"} {
		assert.True(t, subs[name], "arr should have subcommand %q", name)
	}
}

func TestNewTokensCommand(t *testing.T) {
	cmd := NewTokensCommand()

	assert.Equal(t, "tokens [file]", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("key"), "flag \"key\" should exist")
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

// ---------- Server mode ----------

func TestGetCommandServer(t *testing.T) {
	st := newTestServer(t)
	_, _, err := st.Set("user", "name: demo\ntags: [2]: a,b\n")
	require.NoError(t, err)

	out, err := execCommand(t, NewGetCommand(), "user")
	require.NoError(t, err)
	assert.Equal(t, "name: demo\ntags: [2]: a,b\n", out)

	out, err = execCommand(t, NewGetCommand(), "user", "$.name")
	require.NoError(t, err)
	assert.Equal(t, "demo\n", out)
}

func TestGetCommandServerMissingKey(t *testing.T) {
	newTestServer(t)

	_, err := execCommand(t, NewGetCommand(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key not found")
}

func TestGetCommandRequiresKey(t *testing.T) {
	newTestServer(t)

	_, err := execCommand(t, NewGetCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key is required")
}

func TestSetCommandServerRoot(t *testing.T) {
	st := newTestServer(t)

	out, err := execCommand(t, NewSetCommand(), "user", "$", "name: demo")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "OK "), "set should print OK with the revision, got: %s", out)

	body, _, err := st.Get("user", "")
	require.NoError(t, err)
	assert.Equal(t, "name: demo\n", body)
}

func TestSetCommandServerPath(t *testing.T) {
	st := newTestServer(t)
	_, _, err := st.Set("user", "name: demo\n")
	require.NoError(t, err)

	_, err = execCommand(t, NewSetCommand(), "user", "$.name", "renamed")
	require.NoError(t, err)

	body, _, err := st.Get("user", "")
	require.NoError(t, err)
	assert.Equal(t, "name: renamed\n", body)
}

func TestSetCommandStdinValue(t *testing.T) {
	st := newTestServer(t)

	cmd := NewSetCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader("count: 1\nname: demo\n"))
	cmd.SetArgs([]string{"user", "$", "-"})
	require.NoError(t, cmd.Execute())

	body, _, err := st.Get("user", "")
	require.NoError(t, err)
	assert.Equal(t, "count: 1\nname: demo\n", body)
}

func TestDelCommandServer(t *testing.T) {
	st := newTestServer(t)
	_, _, err := st.Set("user", "name: demo\n")
	require.NoError(t, err)

	out, err := execCommand(t, NewDelCommand(), "user")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	_, _, err = st.Get("user", "")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
}

func TestDelCommandServerPath(t *testing.T) {
	st := newTestServer(t)
	_, _, err := st.Set("user", "name: demo\nage: 30\n")
	require.NoError(t, err)

	out, err := execCommand(t, NewDelCommand(), "user", "$.age")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "OK "), "path delete should print the revision, got: %s", out)

	body, _, err := st.Get("user", "")
	require.NoError(t, err)
	assert.Equal(t, "name: demo\n", body)
}

func TestTypeCommandServer(t *testing.T) {
	st := newTestServer(t)
	_, _, err := st.Set("user", "name: demo\ntags: [2]: a,b\n")
	require.NoError(t, err)

	out, err := execCommand(t, NewTypeCommand(), "user")
	require.NoError(t, err)
	assert.Equal(t, "object\n", out)

	out, err = execCommand(t, NewTypeCommand(), "user", "$.tags")
	require.NoError(t, err)
	assert.Equal(t, "array\n", out)
}

func TestKeysCommandServer(t *testing.T) {
	st := newTestServer(t)
	t.Setenv("REDISTOON_OUTPUT", "plain")

	_, _, err := st.Set("alpha", "a: 1\n")
	require.NoError(t, err)
	_, _, err = st.Set("beta", "b: 2\n")
	require.NoError(t, err)

	out, err := execCommand(t, NewKeysCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "key")
}

func TestMergeCommandServer(t *testing.T) {
	st := newTestServer(t)
	_, _, err := st.Set("user", "a: 1\n")
	require.NoError(t, err)

	source := writeTempFile(t, "source.toon", "b: 2\n")
	out, err := execCommand(t, NewMergeCommand(), "user", source)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "OK "), "merge should print the revision, got: %s", out)

	body, _, err := st.Get("user", "")
	require.NoError(t, err)
	assert.Equal(t, "a: 1\nb: 2\n", body)
}

func TestValidateCommandServer(t *testing.T) {
	st := newTestServer(t)
	_, _, err := st.Set("data", "rows: [2,]{id,name}:\n  1,A\n  2,B\n")
	require.NoError(t, err)

	out, err := execCommand(t, NewValidateCommand(), "data")
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)
}

func TestArrCommandsServer(t *testing.T) {
	st := newTestServer(t)
	_, _, err := st.Set("user", "tags: [2]: a,b\n")
	require.NoError(t, err)

	out, err := execCommand(t, NewArrCommand(), "append", "user", "$.tags", "c")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, err = execCommand(t, NewArrCommand(), "len", "user", "$.tags")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, err = execCommand(t, NewArrCommand(), "insert", "user", "$.tags", "0", "z")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "OK "), "insert should print the revision, got: %s", out)

	out, err = execCommand(t, NewArrCommand(), "pop", "user", "$.tags", "0")
	require.NoError(t, err)
	assert.Equal(t, "z\n", out)

	body, _, err := st.Get("user", "")
	require.NoError(t, err)
	assert.Equal(t, "tags: [3]: a,b,c\n", body)
}

func TestTokensCommandServerKey(t *testing.T) {
	st := newTestServer(t)
	t.Setenv("REDISTOON_OUTPUT", "plain")

	_, _, err := st.Set("user", "users: [2,]{id,name}:\n  1,A\n  2,B\n")
	require.NoError(t, err)

	out, err := execCommand(t, NewTokensCommand(), "--key", "user")
	require.NoError(t, err)
	assert.Contains(t, out, "toon")
	assert.Contains(t, out, "json")
	assert.Contains(t, out, "savings:")
}

func TestServerUnreachable(t *testing.T) {
	t.Setenv("REDISTOON_SERVER_URL", "http://127.0.0.1:1")

	_, err := execCommand(t, NewGetCommand(), "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redistoon serve")
}
