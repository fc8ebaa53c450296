package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DreamStack-us/redisTOON/internal/store"
)

func newTestSession(t *testing.T) (*replSession, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	st := store.New()
	t.Cleanup(func() { _ = st.Close() })

	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	return &replSession{
		store:     st,
		statePath: filepath.Join(t.TempDir(), "state.db"),
		format:    "plain",
		out:       out,
		errOut:    errOut,
	}, out, errOut
}

func dispatchLine(t *testing.T, s *replSession, line string) (*pendingBody, bool) {
	t.Helper()
	return s.dispatch(context.Background(), line)
}

func TestSplitArgs(t *testing.T) {
	words, rest := splitArgs("set user name: demo", 2)
	assert.Equal(t, []string{"set", "user"}, words)
	assert.Equal(t, "name: demo", rest)

	words, rest = splitArgs("get user", 3)
	assert.Equal(t, []string{"get", "user"}, words)
	assert.Equal(t, "", rest)

	words, rest = splitArgs(`append k $.x "a b"`, 3)
	assert.Equal(t, []string{"append", "k", "$.x"}, words)
	assert.Equal(t, `"a b"`, rest)
}

func TestReplSetAndGet(t *testing.T) {
	s, out, errOut := newTestSession(t)

	p, quit := dispatchLine(t, s, "set user name: demo")
	assert.Nil(t, p)
	assert.False(t, quit)
	assert.Equal(t, "OK\n", out.String())
	assert.Empty(t, errOut.String())

	out.Reset()
	dispatchLine(t, s, "get user $.name")
	assert.Equal(t, "demo\n", out.String())

	out.Reset()
	dispatchLine(t, s, "get user")
	assert.Equal(t, "name: demo\n", out.String())
}

func TestReplMultiLineSet(t *testing.T) {
	s, out, errOut := newTestSession(t)

	p, quit := dispatchLine(t, s, "set user")
	require.NotNil(t, p)
	assert.False(t, quit)
	assert.Equal(t, "set", p.verb)
	assert.Equal(t, "user", p.key)
	assert.Contains(t, out.String(), "Enter TOON text")

	out.Reset()
	s.complete(p, "name: demo\ntags: [2]: a,b\n")
	assert.Equal(t, "OK\n", out.String())
	assert.Empty(t, errOut.String())

	out.Reset()
	dispatchLine(t, s, "get user")
	assert.Equal(t, "name: demo\ntags: [2]: a,b\n", out.String())
}

func TestReplMultiLineSetBadBody(t *testing.T) {
	s, _, errOut := newTestSession(t)

	p, _ := dispatchLine(t, s, "set user")
	require.NotNil(t, p)

	s.complete(p, "tags: [3]: a,b\n")
	assert.Contains(t, errOut.String(), "Error:")
}

func TestReplArrayVerbs(t *testing.T) {
	s, out, errOut := newTestSession(t)

	dispatchLine(t, s, "set user tags: [2]: a,b")
	out.Reset()

	dispatchLine(t, s, "append user $.tags c")
	assert.Equal(t, "3\n", out.String())

	out.Reset()
	dispatchLine(t, s, "len user $.tags")
	assert.Equal(t, "3\n", out.String())

	out.Reset()
	dispatchLine(t, s, "insert user $.tags 0 z")
	assert.Equal(t, "OK\n", out.String())

	out.Reset()
	dispatchLine(t, s, "pop user $.tags 0")
	assert.Equal(t, "z\n", out.String())

	assert.Empty(t, errOut.String())
}

func TestReplInsertInvalidIndex(t *testing.T) {
	s, _, errOut := newTestSession(t)

	dispatchLine(t, s, "set user tags: [1]: a")
	dispatchLine(t, s, "insert user $.tags x z")
	assert.Contains(t, errOut.String(), "invalid index")
}

func TestReplTypeTokensValidate(t *testing.T) {
	s, out, _ := newTestSession(t)

	dispatchLine(t, s, "set user tags: [2]: a,b")
	out.Reset()

	dispatchLine(t, s, "type user $.tags")
	assert.Equal(t, "array\n", out.String())

	out.Reset()
	dispatchLine(t, s, "tokens user")
	assert.Contains(t, out.String(), "toon:")
	assert.Contains(t, out.String(), "json:")

	out.Reset()
	dispatchLine(t, s, "validate user")
	assert.Equal(t, "valid\n", out.String())
}

func TestReplJSONBridge(t *testing.T) {
	s, out, errOut := newTestSession(t)

	dispatchLine(t, s, `fromjson user {"a":1}`)
	assert.Equal(t, "OK\n", out.String())
	assert.Empty(t, errOut.String())

	out.Reset()
	dispatchLine(t, s, "tojson user")
	assert.Equal(t, "{\"a\":1}\n", out.String())
}

func TestReplMergeInline(t *testing.T) {
	s, out, _ := newTestSession(t)

	dispatchLine(t, s, "set user a: 1")
	out.Reset()

	dispatchLine(t, s, "merge user b: 2")
	assert.Equal(t, "OK\n", out.String())

	out.Reset()
	dispatchLine(t, s, "get user")
	assert.Equal(t, "a: 1\nb: 2\n", out.String())
}

func TestReplDel(t *testing.T) {
	s, out, errOut := newTestSession(t)

	dispatchLine(t, s, "set user a: 1")
	out.Reset()

	dispatchLine(t, s, "del user")
	assert.Equal(t, "OK\n", out.String())

	dispatchLine(t, s, "get user")
	assert.Contains(t, errOut.String(), "key not found")
}

func TestReplUnknownVerb(t *testing.T) {
	s, _, errOut := newTestSession(t)

	dispatchLine(t, s, "frobnicate user")
	assert.Contains(t, errOut.String(), "Unknown command: frobnicate")
}

func TestReplUsageErrors(t *testing.T) {
	s, _, errOut := newTestSession(t)

	dispatchLine(t, s, "get")
	assert.Contains(t, errOut.String(), "Usage: get <key> [path]")

	errOut.Reset()
	dispatchLine(t, s, "append user $.tags")
	assert.Contains(t, errOut.String(), "Usage: append <key> <path> <value>")
}

func TestReplQuit(t *testing.T) {
	s, _, _ := newTestSession(t)

	_, quit := dispatchLine(t, s, ".quit")
	assert.True(t, quit)

	_, quit = dispatchLine(t, s, ".exit")
	assert.True(t, quit)

	_, quit = dispatchLine(t, s, "quit")
	assert.True(t, quit)
}

func TestReplDotCommands(t *testing.T) {
	s, out, errOut := newTestSession(t)

	dispatchLine(t, s, ".help")
	assert.Contains(t, out.String(), ".quit")
	assert.Contains(t, out.String(), "set <key>")

	dispatchLine(t, s, "set alpha a: 1")
	dispatchLine(t, s, "set beta b: 2")
	out.Reset()

	dispatchLine(t, s, ".keys")
	assert.Contains(t, out.String(), "alpha")
	assert.Contains(t, out.String(), "beta")

	dispatchLine(t, s, ".bogus")
	assert.Contains(t, errOut.String(), "Unknown command: .bogus")
}

func TestReplSaveAndOpen(t *testing.T) {
	s, out, errOut := newTestSession(t)
	snapshot := filepath.Join(t.TempDir(), "snap.db")

	dispatchLine(t, s, "set user name: demo")
	out.Reset()

	dispatchLine(t, s, "save "+snapshot)
	assert.Contains(t, out.String(), "saved 1 documents")
	assert.Empty(t, errOut.String())

	fresh, freshOut, freshErr := newTestSession(t)
	dispatchLine(t, fresh, "open "+snapshot)
	assert.Contains(t, freshOut.String(), "loaded 1 documents")
	assert.Empty(t, freshErr.String())

	freshOut.Reset()
	dispatchLine(t, fresh, "get user")
	assert.Equal(t, "name: demo\n", freshOut.String())
}

func TestReplSaveDefaultPath(t *testing.T) {
	s, out, errOut := newTestSession(t)

	dispatchLine(t, s, "set user name: demo")
	out.Reset()

	dispatchLine(t, s, "save")
	assert.Contains(t, out.String(), "saved 1 documents to "+s.statePath)
	assert.Empty(t, errOut.String())
}
