package commands

import (
	"bytes"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []map[string]any {
	return []map[string]any{
		{"key": "alpha", "tokens": 12},
		{"key": "beta", "tokens": 7},
	}
}

func TestRenderRowsTable(t *testing.T) {
	buf := new(bytes.Buffer)
	err := renderRows(buf, []string{"key", "tokens"}, sampleRows(), "table")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "alpha")
	assert.Contains(t, output, "beta")
	assert.Contains(t, output, "(2 rows)")
}

func TestRenderRowsTableEmpty(t *testing.T) {
	buf := new(bytes.Buffer)
	err := renderRows(buf, []string{"key"}, nil, "table")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "(0 rows)")
}

func TestRenderRowsJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	err := renderRows(buf, []string{"key", "tokens"}, sampleRows(), "json")
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "alpha", decoded[0]["key"])
}

func TestRenderRowsCSV(t *testing.T) {
	rows := []map[string]any{
		{"key": "a,b", "tokens": 1},
		{"key": "plain", "tokens": 2},
	}

	buf := new(bytes.Buffer)
	err := renderRows(buf, []string{"key", "tokens"}, rows, "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // header + 2 rows
	assert.Equal(t, "key,tokens", lines[0])
	assert.Equal(t, `"a,b",1`, lines[1])
	assert.Equal(t, "plain,2", lines[2])
}

func TestRenderRowsPlain(t *testing.T) {
	buf := new(bytes.Buffer)
	err := renderRows(buf, []string{"key", "tokens"}, sampleRows(), "plain")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "key\ttokens", lines[0])
	assert.Equal(t, "alpha\t12", lines[1])
}

func TestResolveFormat(t *testing.T) {
	assert.Equal(t, "json", resolveFormat("json"))
	assert.Equal(t, "csv", resolveFormat("csv"))
	assert.Equal(t, "plain", resolveFormat("plain"))
	assert.Equal(t, "table", resolveFormat("table"))

	// Auto depends on whether stdout is a terminal; either way it must
	// resolve to a concrete renderer.
	auto := resolveFormat("auto")
	assert.Contains(t, []string{"table", "plain"}, auto)
	assert.Equal(t, auto, resolveFormat(""))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		input    any
		expected string
	}{
		{nil, ""},
		{"hello", "hello"},
		{42, "42"},
		{3.14, "3.14"},
		{true, "true"},
	}

	for _, tt := range tests {
		result := formatValue(tt.input)
		assert.Equal(t, tt.expected, result)
	}
}

func TestEscapeCSV(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "simple"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", `"with
newline"`},
		{`complex,"values"`, `"complex,""values"""`},
	}

	for _, tt := range tests {
		result := escapeCSV(tt.input)
		assert.Equal(t, tt.expected, result)
	}
}

func TestPrintText(t *testing.T) {
	buf := new(bytes.Buffer)
	printText(buf, "demo")
	assert.Equal(t, "demo\n", buf.String())

	buf.Reset()
	printText(buf, "name: demo\n")
	assert.Equal(t, "name: demo\n", buf.String())
}
