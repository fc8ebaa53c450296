package toon

import "fmt"

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindTabular
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBool:    "boolean",
	KindNumber:  "number",
	KindString:  "string",
	KindArray:   "array",
	KindObject:  "object",
	KindTabular: "tabular_array",
}

// String returns the stable name of the kind as it appears on the wire
// (TYPE command output, error messages).
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Field is one ordered entry of an object. Keys are not required to be
// unique; every lookup resolves the first match.
type Field struct {
	Key   string
	Value *Value
}

// Value is a node in a document tree: null, boolean, number, string, array,
// object, or tabular array. A Value belongs to exactly one tree; attach a
// Clone, not the value itself, when a second tree needs the same data.
type Value struct {
	kind    Kind
	boolVal bool
	numVal  float64
	strVal  string
	elems   []*Value   // KindArray
	fields  []Field    // KindObject
	headers []string   // KindTabular
	rows    [][]*Value // KindTabular
}

// Null returns a null value.
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(v bool) *Value { return &Value{kind: KindBool, boolVal: v} }

// Number returns a numeric value.
func Number(v float64) *Value { return &Value{kind: KindNumber, numVal: v} }

// String returns a string value.
func String(v string) *Value { return &Value{kind: KindString, strVal: v} }

// NewArray returns an array holding the given elements in order.
func NewArray(elems ...*Value) *Value {
	return &Value{kind: KindArray, elems: elems}
}

// NewObject returns an object holding the given fields in order.
func NewObject(fields ...Field) *Value {
	return &Value{kind: KindObject, fields: fields}
}

// NewTabular returns a tabular array with the given column headers and no
// rows.
func NewTabular(headers ...string) *Value {
	return &Value{kind: KindTabular, headers: headers}
}

// Kind reports which variant the value holds.
func (v *Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v *Value) IsNull() bool { return v.kind == KindNull }

func (v *Value) kindError(want Kind) error {
	return fmt.Errorf("toon: expected %s, got %s", want, v.kind)
}

// AsBool returns the boolean payload.
func (v *Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, v.kindError(KindBool)
	}
	return v.boolVal, nil
}

// AsNumber returns the numeric payload.
func (v *Value) AsNumber() (float64, error) {
	if v.kind != KindNumber {
		return 0, v.kindError(KindNumber)
	}
	return v.numVal, nil
}

// AsString returns the string payload.
func (v *Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", v.kindError(KindString)
	}
	return v.strVal, nil
}

// Len returns the element count of an array, the entry count of an object,
// or the row count of a tabular array. Scalars have length 0.
func (v *Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.elems)
	case KindObject:
		return len(v.fields)
	case KindTabular:
		return len(v.rows)
	default:
		return 0
	}
}

// Index returns the i-th element of an array.
func (v *Value) Index(i int) (*Value, error) {
	if v.kind != KindArray {
		return nil, v.kindError(KindArray)
	}
	if i < 0 || i >= len(v.elems) {
		return nil, fmt.Errorf("toon: index %d out of range [0,%d)", i, len(v.elems))
	}
	return v.elems[i], nil
}

// Get returns the value of the first object entry with the given key.
func (v *Value) Get(key string) (*Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Fields returns the object's entries in insertion order. The slice is a
// copy; the values are shared.
func (v *Value) Fields() []Field {
	return append([]Field(nil), v.fields...)
}

// Elements returns the array's elements in order. The slice is a copy; the
// values are shared.
func (v *Value) Elements() []*Value {
	return append([]*Value(nil), v.elems...)
}

// Headers returns the column names of a tabular array.
func (v *Value) Headers() []string {
	return append([]string(nil), v.headers...)
}

// Row returns the i-th row of a tabular array. The slice is a copy; the
// cells are shared.
func (v *Value) Row(i int) ([]*Value, error) {
	if v.kind != KindTabular {
		return nil, v.kindError(KindTabular)
	}
	if i < 0 || i >= len(v.rows) {
		return nil, fmt.Errorf("toon: row %d out of range [0,%d)", i, len(v.rows))
	}
	return append([]*Value(nil), v.rows[i]...), nil
}

// Set replaces the value of the first object entry with the given key, or
// appends a new entry when the key is absent. Entry order is preserved.
func (v *Value) Set(key string, val *Value) error {
	if v.kind != KindObject {
		return v.kindError(KindObject)
	}
	for i := range v.fields {
		if v.fields[i].Key == key {
			v.fields[i].Value = val
			return nil
		}
	}
	v.fields = append(v.fields, Field{Key: key, Value: val})
	return nil
}

// Append adds elements to the end of an array.
func (v *Value) Append(elems ...*Value) error {
	if v.kind != KindArray {
		return v.kindError(KindArray)
	}
	v.elems = append(v.elems, elems...)
	return nil
}

// AppendRow adds a row to a tabular array. The cell count must equal the
// header count.
func (v *Value) AppendRow(cells ...*Value) error {
	if v.kind != KindTabular {
		return v.kindError(KindTabular)
	}
	if len(cells) != len(v.headers) {
		return fmt.Errorf("toon: row has %d cells, want %d", len(cells), len(v.headers))
	}
	v.rows = append(v.rows, cells)
	return nil
}

// Clone returns a deep copy sharing no nodes with the receiver. The copy is
// safe to attach to another tree and to mutate independently.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	c := &Value{kind: v.kind, boolVal: v.boolVal, numVal: v.numVal, strVal: v.strVal}
	switch v.kind {
	case KindArray:
		c.elems = make([]*Value, len(v.elems))
		for i, e := range v.elems {
			c.elems[i] = e.Clone()
		}
	case KindObject:
		c.fields = make([]Field, len(v.fields))
		for i, f := range v.fields {
			c.fields[i] = Field{Key: f.Key, Value: f.Value.Clone()}
		}
	case KindTabular:
		c.headers = append([]string(nil), v.headers...)
		c.rows = make([][]*Value, len(v.rows))
		for i, row := range v.rows {
			cells := make([]*Value, len(row))
			for j, cell := range row {
				cells[j] = cell.Clone()
			}
			c.rows[i] = cells
		}
	}
	return c
}

// Equal reports deep semantic equality: same kind, same payload, same
// children in the same order.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindNumber:
		return a.numVal == b.numVal
	case KindString:
		return a.strVal == b.strVal
	case KindArray:
		if len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for i := range a.fields {
			if a.fields[i].Key != b.fields[i].Key || !Equal(a.fields[i].Value, b.fields[i].Value) {
				return false
			}
		}
		return true
	case KindTabular:
		if len(a.headers) != len(b.headers) || len(a.rows) != len(b.rows) {
			return false
		}
		for i := range a.headers {
			if a.headers[i] != b.headers[i] {
				return false
			}
		}
		for i := range a.rows {
			if len(a.rows[i]) != len(b.rows[i]) {
				return false
			}
			for j := range a.rows[i] {
				if !Equal(a.rows[i][j], b.rows[i][j]) {
					return false
				}
			}
		}
		return true
	}
	return false
}

// EstimateTokens returns an approximate LLM-token cost of the value's
// encoded form. It is a cheap heuristic (≈4 characters per token), not a
// tokenizer.
func EstimateTokens(v *Value) int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindNull, KindBool, KindNumber:
		return 1
	case KindString:
		return tokenCost(v.strVal)
	case KindArray:
		n := 2 // [N]:
		for _, e := range v.elems {
			n += EstimateTokens(e)
		}
		return n
	case KindObject:
		n := 0
		for _, f := range v.fields {
			n += tokenCost(f.Key) + 1 + EstimateTokens(f.Value) // key:
		}
		return n
	case KindTabular:
		n := 3 // [N,]{}:
		for _, h := range v.headers {
			n += tokenCost(h)
		}
		for _, row := range v.rows {
			for _, cell := range row {
				n += EstimateTokens(cell)
			}
		}
		return n
	}
	return 0
}

func tokenCost(s string) int {
	return (len(s)+3)/4 + 1
}
