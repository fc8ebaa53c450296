package toon

import (
	"math"
	"strconv"
	"strings"
)

// Encode renders a value tree as document text at indent 0. The output is
// the sole persisted representation: Decode(Encode(v)) yields a tree
// semantically equal to v. Formatting is deterministic; numeric and quoting
// normalization may make the text differ from the input the tree was
// decoded from.
func Encode(v *Value) string {
	var e encoder
	e.encodeRoot(v)
	return e.sb.String()
}

// encoder walks the tree appending to a single builder. last tracks the
// final written byte so entry emitters know whether a block form already
// closed its line.
type encoder struct {
	sb   strings.Builder
	last byte
}

func (e *encoder) write(s string) {
	if len(s) == 0 {
		return
	}
	e.sb.WriteString(s)
	e.last = s[len(s)-1]
}

func (e *encoder) atLineStart() bool {
	return e.last == '\n'
}

// pad writes 2 spaces per indent level.
func (e *encoder) pad(level int) {
	for i := 0; i < level; i++ {
		e.write("  ")
	}
}

func (e *encoder) encodeRoot(v *Value) {
	if v == nil {
		e.write("null")
		return
	}
	if v.kind == KindObject {
		e.encodeObjectBody(v, 0)
		return
	}
	e.encodeValue(v, 0)
	if !e.atLineStart() && v.kind == KindTabular {
		e.write("\n")
	}
}

// encodeValue renders a value whose line sits at the given level. Block
// forms (multi-line arrays, tabular rows) hang off that line and finish
// with a newline; scalar and compact forms stay on it.
func (e *encoder) encodeValue(v *Value, level int) {
	if v == nil {
		e.write("null")
		return
	}
	switch v.kind {
	case KindNull:
		e.write("null")
	case KindBool:
		if v.boolVal {
			e.write("true")
		} else {
			e.write("false")
		}
	case KindNumber:
		e.write(formatNumber(v.numVal))
	case KindString:
		e.write(encodeString(v.strVal))
	case KindArray:
		e.encodeArray(v, level)
	case KindObject:
		// Object values never render inline; callers emit the key line and
		// call encodeObjectBody at a deeper level.
		e.encodeObjectBody(v, level)
	case KindTabular:
		e.encodeTabular(v, level)
	}
}

// encodeArray emits the compact form when every element is primitive,
// otherwise the block form with one `- element` line per element.
func (e *encoder) encodeArray(v *Value, level int) {
	allPrimitive := true
	for _, elem := range v.elems {
		if elem == nil {
			continue
		}
		switch elem.kind {
		case KindArray, KindObject, KindTabular:
			allPrimitive = false
		}
	}

	e.write("[" + strconv.Itoa(len(v.elems)) + "]:")
	if allPrimitive {
		if len(v.elems) > 0 {
			e.write(" ")
		}
		for i, elem := range v.elems {
			if i > 0 {
				e.write(",")
			}
			e.encodeValue(elem, 0)
		}
		return
	}

	e.write("\n")
	for _, elem := range v.elems {
		e.pad(level + 1)
		e.write("- ")
		if elem != nil && elem.kind == KindObject {
			e.encodeObjectBody(elem, level+2)
		} else {
			e.encodeValue(elem, level+1)
		}
		if !e.atLineStart() {
			e.write("\n")
		}
	}
}

// encodeObjectBody emits one `key: value` line per entry at the given
// level. When the emitter sits mid-line (an object element's first entry
// goes on its dash line) the first entry skips the indent.
func (e *encoder) encodeObjectBody(v *Value, level int) {
	for i, f := range v.fields {
		if i > 0 || e.atLineStart() {
			e.pad(level)
		}
		e.write(f.Key + ":")
		if f.Value == nil {
			e.write(" null\n")
			continue
		}
		switch f.Value.kind {
		case KindObject:
			e.write("\n")
			if f.Value.Len() > 0 {
				e.encodeObjectBody(f.Value, level+1)
			}
		case KindArray, KindTabular:
			e.write(" ")
			e.encodeValue(f.Value, level+1)
			if !e.atLineStart() {
				e.write("\n")
			}
		default:
			e.write(" ")
			e.encodeValue(f.Value, 0)
			e.write("\n")
		}
	}
}

// encodeTabular emits the header line and one comma-joined row per line at
// the value's own level.
func (e *encoder) encodeTabular(v *Value, level int) {
	e.write("[" + strconv.Itoa(len(v.rows)) + ",]{" + strings.Join(v.headers, ",") + "}:")
	for _, row := range v.rows {
		e.write("\n")
		e.pad(level)
		for i, cell := range row {
			if i > 0 {
				e.write(",")
			}
			e.encodeValue(cell, 0)
		}
	}
	if len(v.rows) > 0 {
		e.write("\n")
	}
}

// formatNumber renders integral values without a fractional part and
// everything else with 10 significant digits.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', 10, 64)
}

// encodeString quotes only when the raw text would not survive the trip
// back through the decoder.
func encodeString(s string) string {
	if needsQuoting(s) {
		return quoteString(s)
	}
	return s
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	switch s {
	case "null", "true", "false":
		return true
	}
	// Anything the number scanner would fully consume must be quoted to
	// stay a string.
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	// A leading quote would read back as a quoted literal.
	if s[0] == '"' {
		return true
	}
	if isSpaceByte(s[0]) || isSpaceByte(s[len(s)-1]) {
		return true
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case ',', ':', '\n', '\r', '{', '}', '[', ']':
			return true
		default:
			if c < 32 {
				return true
			}
		}
	}
	return false
}

func isSpaceByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
