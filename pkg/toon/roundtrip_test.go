package toon_test

import (
	"testing"

	"github.com/DreamStack-us/redisTOON/pkg/toon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- Wire Text Round Trips ----------

// Decoding a document, encoding it, and decoding again must yield a tree
// semantically equal to the first decode, and the re-encoded text must be
// stable from then on.
func TestRoundTripWireDocuments(t *testing.T) {
	inputs := []struct {
		name string
		text string
	}{
		{name: "flat object", text: "name: Alice\nage: 30\n"},
		{name: "nested object", text: "server:\n  host: localhost\n  port: 8080\ndebug: true\n"},
		{name: "empty object value", text: "meta:\nnext: 1\n"},
		{name: "compact array", text: "[4]: null,true,x,1.5"},
		{name: "array under key", text: "tags: [2]: alpha,beta\n"},
		{name: "empty array", text: "xs: [0]:\n"},
		{name: "block array of objects", text: "users: [2]:\n  - name: Alice\n    admin: true\n  - name: Bob\n    admin: false\n"},
		{name: "block array of arrays", text: "grid: [2]:\n  - [2]: 1,2\n  - [2]: 3,4\n"},
		{name: "bare dash element", text: "[1]:\n  - \n"},
		{name: "root tabular", text: "[2,]{id,name}:\n1,Alice\n2,Bob\n"},
		{name: "nested tabular", text: "data: [2,]{id,score}:\n  1,9.5\n  2,8\ncount: 2\n"},
		{name: "quoted strings", text: "note: \"a, b: c\"\nblank: \"\"\nnum: \"3.14\"\n"},
		{name: "exponent numbers", text: "big: 1.5e300\nsmall: -2.5e-4\n"},
		{name: "nested compact arrays", text: "[2]: [1]: 5,7"},
		{name: "whitespace normalization", text: "a:   1  \n\n\nb:\t2\n"},
	}
	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			first, err := toon.Decode(tt.text)
			require.NoError(t, err)

			encoded := toon.Encode(first)
			second, err := toon.Decode(encoded)
			require.NoError(t, err, "re-decode of %q", encoded)
			assert.True(t, toon.Equal(first, second), "trees diverged through %q", encoded)

			assert.Equal(t, encoded, toon.Encode(second), "encoding is not stable")
		})
	}
}

// Canonical wire text survives a decode/encode cycle byte for byte.
func TestRoundTripCanonicalBytes(t *testing.T) {
	canonical := []string{
		"name: Alice\nage: 30\n",
		"[2]: 1,2",
		"[0]:",
		"server:\n  host: localhost\n  port: 8080\ndebug: true\n",
		"a:\n",
		"tags: [3]: a,b,c\n",
		"[2,]{id,name}:\n1,Alice\n2,Bob\n",
		"data: [2,]{id,name}:\n  1,Alice\n  2,Bob\ncount: 2\n",
		"users: [2]:\n    - name: Alice\n      age: 30\n    - name: Bob\n      age: 25\n",
		"[2]:\n  - [2]: 1,x\n  - true\n",
		"[1]:\n  - cfg:\n      x: 1\n    y: 2\n",
		"t: [0,]{a}:\n",
		"note: \"a, b: c\"\n",
	}
	for _, text := range canonical {
		v, err := toon.Decode(text)
		require.NoError(t, err, "input %q", text)
		assert.Equal(t, text, toon.Encode(v), "canonical text drifted")
	}
}

// ---------- Tree Round Trips ----------

func TestRoundTripTrees(t *testing.T) {
	trees := []struct {
		name string
		v    *toon.Value
	}{
		{name: "empty object", v: obj()},
		{name: "scalars", v: obj(
			kv("s", toon.String("plain")),
			kv("n", toon.Number(-12.25)),
			kv("b", toon.Bool(false)),
			kv("z", toon.Null()),
		)},
		{name: "string edge cases", v: toon.NewArray(
			toon.String(""),
			toon.String("null"),
			toon.String("3.14"),
			toon.String("a,b"),
			toon.String("a:b"),
			toon.String(" padded "),
			toon.String("line1\nline2"),
			toon.String(`say "hi"`),
			toon.String(`"starts`),
			toon.String("12abc"),
			toon.String("-"),
			toon.String("- x"),
			toon.String("x[1]"),
		)},
		{name: "number edge cases", v: toon.NewArray(
			toon.Number(0),
			toon.Number(-1),
			toon.Number(0.1),
			toon.Number(1.0/3.0),
			toon.Number(1e21),
			toon.Number(1.5e300),
			toon.Number(-2.5e-4),
			toon.Number(9007199254740992),
		)},
		{name: "empty object element", v: toon.NewArray(obj())},
		{name: "null and empty object elements", v: toon.NewArray(toon.Null(), obj())},
		{name: "array of empty arrays", v: toon.NewArray(toon.NewArray(), toon.NewArray())},
		{name: "deep nesting", v: obj(
			kv("a", obj(kv("b", obj(kv("c", toon.NewArray(
				obj(kv("list", toon.NewArray(obj(kv("x", toon.Number(1))))), kv("z", toon.Number(2))),
			)))))),
		)},
		{name: "object element with leading nested object", v: toon.NewArray(
			obj(kv("cfg", obj(kv("x", toon.Number(1)))), kv("y", toon.Number(2))),
		)},
		{name: "duplicate keys", v: obj(kv("a", toon.Number(1)), kv("a", toon.Number(2)))},
	}
	for _, tt := range trees {
		t.Run(tt.name, func(t *testing.T) {
			encoded := toon.Encode(tt.v)
			got, err := toon.Decode(encoded)
			require.NoError(t, err, "decode of %q", encoded)
			assert.True(t, toon.Equal(tt.v, got), "tree diverged through %q", encoded)
		})
	}
}

func TestRoundTripTabularTrees(t *testing.T) {
	v := obj(
		kv("rows", tab(t, []string{"id", "label", "ok", "note"},
			[]*toon.Value{toon.Number(1), toon.String("alpha"), toon.Bool(true), toon.Null()},
			[]*toon.Value{toon.Number(2), toon.String("with, comma"), toon.Bool(false), toon.String("")},
		)),
		kv("tail", toon.Number(7)),
	)
	encoded := toon.Encode(v)
	got, err := toon.Decode(encoded)
	require.NoError(t, err, "decode of %q", encoded)
	assert.True(t, toon.Equal(v, got))
}
