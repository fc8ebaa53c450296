package toon_test

import (
	"testing"

	"github.com/DreamStack-us/redisTOON/pkg/toon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obj(fields ...toon.Field) *toon.Value { return toon.NewObject(fields...) }

func kv(key string, v *toon.Value) toon.Field { return toon.Field{Key: key, Value: v} }

func tab(t *testing.T, headers []string, rows ...[]*toon.Value) *toon.Value {
	t.Helper()
	v := toon.NewTabular(headers...)
	for _, row := range rows {
		require.NoError(t, v.AppendRow(row...))
	}
	return v
}

// ---------- Scalars ----------

func TestEncodeStrings(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "hello", want: "hello"},
		{name: "interior spaces", in: "hello world", want: "hello world"},
		{name: "empty", in: "", want: `""`},
		{name: "keyword null", in: "null", want: `"null"`},
		{name: "keyword true", in: "true", want: `"true"`},
		{name: "numeric lookalike", in: "3.14", want: `"3.14"`},
		{name: "exponent lookalike", in: "1e5", want: `"1e5"`},
		{name: "comma", in: "a,b", want: `"a,b"`},
		{name: "colon", in: "a:b", want: `"a:b"`},
		{name: "brackets", in: "x[1]", want: `"x[1]"`},
		{name: "braces", in: "a{b}", want: `"a{b}"`},
		{name: "leading space", in: " x", want: `" x"`},
		{name: "trailing space", in: "x ", want: `"x "`},
		{name: "newline", in: "line1\nline2", want: `"line1\nline2"`},
		{name: "tab", in: "tab\tend", want: `"tab\tend"`},
		{name: "interior quote stays raw", in: `say "hi"`, want: `say "hi"`},
		{name: "leading quote", in: `"starts`, want: `"\"starts"`},
		{name: "lone dash", in: "-", want: "-"},
		{name: "dash prefix", in: "- x", want: "- x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toon.Encode(toon.String(tt.in)))
		})
	}
}

func TestEncodeNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{name: "integer", in: 42, want: "42"},
		{name: "zero", in: 0, want: "0"},
		{name: "negative", in: -3.5, want: "-3.5"},
		{name: "fraction", in: 0.1, want: "0.1"},
		{name: "repeating fraction", in: 1.0 / 3.0, want: "0.3333333333"},
		{name: "large integral uses exponent form", in: 1e21, want: "1e+21"},
		{name: "huge", in: 1.5e300, want: "1.5e+300"},
		{name: "two to the 53", in: 9007199254740992, want: "9007199254740992"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toon.Encode(toon.Number(tt.in)))
		})
	}
}

func TestEncodeKeywordScalars(t *testing.T) {
	assert.Equal(t, "null", toon.Encode(toon.Null()))
	assert.Equal(t, "true", toon.Encode(toon.Bool(true)))
	assert.Equal(t, "false", toon.Encode(toon.Bool(false)))
}

// ---------- Objects ----------

func TestEncodeObjects(t *testing.T) {
	tests := []struct {
		name string
		in   *toon.Value
		want string
	}{
		{
			name: "empty object is empty text",
			in:   obj(),
			want: "",
		},
		{
			name: "flat",
			in:   obj(kv("name", toon.String("Alice")), kv("age", toon.Number(30))),
			want: "name: Alice\nage: 30\n",
		},
		{
			name: "nested",
			in: obj(
				kv("server", obj(kv("host", toon.String("localhost")), kv("port", toon.Number(8080)))),
				kv("debug", toon.Bool(true)),
			),
			want: "server:\n  host: localhost\n  port: 8080\ndebug: true\n",
		},
		{
			name: "empty child object",
			in:   obj(kv("a", obj())),
			want: "a:\n",
		},
		{
			name: "deep empty chain",
			in:   obj(kv("a", obj(kv("b", obj())))),
			want: "a:\n  b:\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toon.Encode(tt.in))
		})
	}
}

// ---------- Arrays ----------

func TestEncodeArrays(t *testing.T) {
	tests := []struct {
		name string
		in   *toon.Value
		want string
	}{
		{
			name: "root compact",
			in:   toon.NewArray(toon.Number(1), toon.Number(2)),
			want: "[2]: 1,2",
		},
		{
			name: "root empty",
			in:   toon.NewArray(),
			want: "[0]:",
		},
		{
			name: "compact under a key",
			in:   obj(kv("tags", toon.NewArray(toon.String("a"), toon.String("b"), toon.String("c")))),
			want: "tags: [3]: a,b,c\n",
		},
		{
			name: "empty under a key",
			in:   obj(kv("xs", toon.NewArray())),
			want: "xs: [0]:\n",
		},
		{
			name: "mixed scalars stay compact",
			in:   toon.NewArray(toon.Null(), toon.Bool(true), toon.String("x"), toon.Number(1.5)),
			want: "[4]: null,true,x,1.5",
		},
		{
			name: "root block with nested array element",
			in:   toon.NewArray(toon.NewArray(toon.Number(1), toon.String("x")), toon.Bool(true)),
			want: "[2]:\n  - [2]: 1,x\n  - true\n",
		},
		{
			name: "object elements under a key",
			in: obj(kv("users", toon.NewArray(
				obj(kv("name", toon.String("Alice")), kv("age", toon.Number(30))),
				obj(kv("name", toon.String("Bob")), kv("age", toon.Number(25))),
			))),
			want: "users: [2]:\n    - name: Alice\n      age: 30\n    - name: Bob\n      age: 25\n",
		},
		{
			name: "empty object element keeps its dash line",
			in:   toon.NewArray(obj()),
			want: "[1]:\n  - \n",
		},
		{
			name: "element entry with nested object",
			in:   toon.NewArray(obj(kv("cfg", obj(kv("x", toon.Number(1)))), kv("y", toon.Number(2)))),
			want: "[1]:\n  - cfg:\n      x: 1\n    y: 2\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toon.Encode(tt.in))
		})
	}
}

// ---------- Tabular Arrays ----------

func TestEncodeTabular(t *testing.T) {
	idName := []string{"id", "name"}

	tests := []struct {
		name string
		in   *toon.Value
		want string
	}{
		{
			name: "root",
			in: tab(t, idName,
				[]*toon.Value{toon.Number(1), toon.String("Alice")},
				[]*toon.Value{toon.Number(2), toon.String("Bob")},
			),
			want: "[2,]{id,name}:\n1,Alice\n2,Bob\n",
		},
		{
			name: "root with no rows",
			in:   tab(t, []string{"id"}),
			want: "[0,]{id}:\n",
		},
		{
			name: "quoted cell",
			in:   tab(t, idName, []*toon.Value{toon.Number(3), toon.String("Last, First")}),
			want: "[1,]{id,name}:\n3,\"Last, First\"\n",
		},
		{
			name: "mixed cell kinds",
			in: tab(t, []string{"a", "b", "c"},
				[]*toon.Value{toon.Number(1), toon.Bool(true), toon.Null()},
			),
			want: "[1,]{a,b,c}:\n1,true,null\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toon.Encode(tt.in))
		})
	}

	t.Run("nested rows indent under their key", func(t *testing.T) {
		doc := obj(
			kv("data", tab(t, idName,
				[]*toon.Value{toon.Number(1), toon.String("Alice")},
				[]*toon.Value{toon.Number(2), toon.String("Bob")},
			)),
			kv("count", toon.Number(2)),
		)
		assert.Equal(t, "data: [2,]{id,name}:\n  1,Alice\n  2,Bob\ncount: 2\n", toon.Encode(doc))
	})

	t.Run("nested with no rows", func(t *testing.T) {
		doc := obj(kv("t", tab(t, []string{"a"})))
		assert.Equal(t, "t: [0,]{a}:\n", toon.Encode(doc))
	})
}

// ---------- Determinism ----------

func TestEncodeDeterministic(t *testing.T) {
	doc := obj(
		kv("name", toon.String("demo")),
		kv("users", toon.NewArray(
			obj(kv("name", toon.String("Alice")), kv("tags", toon.NewArray(toon.String("a")))),
		)),
		kv("data", tab(t, []string{"id"}, []*toon.Value{toon.Number(1)}, []*toon.Value{toon.Number(2)})),
	)
	first := toon.Encode(doc)
	second := toon.Encode(doc)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestEncodeNilIsNull(t *testing.T) {
	assert.Equal(t, "null", toon.Encode(nil))
}
