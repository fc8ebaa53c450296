package toon

import (
	"fmt"
	"strconv"
	"strings"
)

// Decode parses document text into a value tree. The text is an object when
// its first content line carries an unescaped ':' outside quotes that is not
// immediately preceded by ']' (and is not a tabular header line); otherwise
// it is a single value. Empty or whitespace-only input decodes to an empty
// object, which is also what an empty object encodes to.
//
// Decoding stops at the first error and returns a *DecodeError with a
// 1-based line and column; no partial tree is returned.
func Decode(input string) (*Value, error) {
	d := &decoder{input: input, line: 1, col: 1}

	d.skipBlankLines()
	if d.atEOF() {
		return NewObject(), nil
	}

	var v *Value
	indent := d.peekIndent()
	d.consumeIndent()
	if looksLikeEntryLine(d.restOfLine()) {
		v = d.parseObjectBlock(indent)
	} else {
		v = d.parseValue(indent, true, false)
		d.endOfLine()
	}
	if d.err != nil {
		return nil, d.err
	}

	d.skipBlankLines()
	if !d.atEOF() {
		d.fail("unexpected content after document")
		return nil, d.err
	}
	return v, nil
}

// decoder is the scan state threaded through the recursive descent. pos is
// the offset of the next unread byte; line and col locate that byte,
// 1-based. The first error wins: fail is a no-op once err is set, and every
// parse function bails out early when err is non-nil.
type decoder struct {
	input string
	pos   int
	line  int
	col   int
	err   *DecodeError
}

func (d *decoder) fail(msg string) {
	if d.err != nil {
		return
	}
	d.err = &DecodeError{
		Pos:     Position{Line: d.line, Column: d.col, Offset: d.pos},
		Message: msg,
	}
}

func (d *decoder) failf(format string, args ...any) {
	d.fail(fmt.Sprintf(format, args...))
}

func (d *decoder) atEOF() bool {
	return d.pos >= len(d.input)
}

// peek returns the next unread byte, or 0 at end of input.
func (d *decoder) peek() byte {
	if d.pos >= len(d.input) {
		return 0
	}
	return d.input[d.pos]
}

// advance consumes one byte.
func (d *decoder) advance() byte {
	if d.pos >= len(d.input) {
		return 0
	}
	c := d.input[d.pos]
	d.pos++
	if c == '\n' {
		d.line++
		d.col = 1
	} else {
		d.col++
	}
	return c
}

func isLineSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

// skipSpaces consumes spaces and tabs but never a newline.
func (d *decoder) skipSpaces() {
	for !d.atEOF() && isLineSpace(d.peek()) {
		d.advance()
	}
}

// skipBlankLines consumes whole lines that contain only whitespace. It
// leaves the scanner at the start of the next content line (before its
// indent) or at end of input. The scanner must be at a line start.
func (d *decoder) skipBlankLines() {
	for {
		i := d.pos
		for i < len(d.input) && isLineSpace(d.input[i]) {
			i++
		}
		if i >= len(d.input) {
			for !d.atEOF() {
				d.advance()
			}
			return
		}
		if d.input[i] != '\n' {
			return
		}
		for d.pos <= i {
			d.advance()
		}
	}
}

// peekIndent returns the indent width of the current line without consuming
// it. The scanner must be at a line start.
func (d *decoder) peekIndent() int {
	i := d.pos
	for i < len(d.input) && isLineSpace(d.input[i]) {
		i++
	}
	return i - d.pos
}

func (d *decoder) consumeIndent() {
	d.skipSpaces()
}

// restOfLine returns the unread remainder of the current line.
func (d *decoder) restOfLine() string {
	end := strings.IndexByte(d.input[d.pos:], '\n')
	if end < 0 {
		return d.input[d.pos:]
	}
	return d.input[d.pos : d.pos+end]
}

// endOfLine consumes trailing spaces and the newline. Anything else is an
// error. Block-form values finish having consumed their own final newline;
// at column 1 there is nothing left to close.
func (d *decoder) endOfLine() {
	if d.err != nil {
		return
	}
	if d.col == 1 {
		return
	}
	d.skipSpaces()
	if d.atEOF() {
		return
	}
	if d.peek() != '\n' {
		d.fail("unexpected content after value")
		return
	}
	d.advance()
}

// looksLikeEntryLine reports whether a line reads as a `key: value` entry:
// it carries a ':' outside any quoted span that is not escaped and not
// immediately preceded by ']'. Tabular header lines ([N,]{...}:) are never
// entries even though '}' precedes their ':'.
func looksLikeEntryLine(s string) bool {
	if isTabularHeaderLine(s) {
		return false
	}
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			if c == '\\' {
				i++
				continue
			}
			if c == '"' {
				inQuote = false
			}
			continue
		}
		switch c {
		case '"':
			inQuote = true
		case '\\':
			i++
		case ':':
			if i > 0 && s[i-1] == ']' {
				continue
			}
			return true
		}
	}
	return false
}

// isTabularHeaderLine matches the shape [digits,]{...}: at the start of a
// line.
func isTabularHeaderLine(s string) bool {
	if len(s) == 0 || s[0] != '[' {
		return false
	}
	i := 1
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 1 || i+1 >= len(s) || s[i] != ',' || s[i+1] != ']' {
		return false
	}
	i += 2
	if i >= len(s) || s[i] != '{' {
		return false
	}
	close := strings.IndexByte(s[i:], '}')
	if close < 0 {
		return false
	}
	i += close + 1
	return i < len(s) && s[i] == ':'
}

// parseObjectBlock parses `key: value` entries whose lines sit at the given
// indent. The scanner must be positioned at the first key (either after the
// line's indent, or mid-line after a `- ` marker for object array elements).
// The block ends at a dedent or end of input, with the scanner left at the
// following line start.
func (d *decoder) parseObjectBlock(indent int) *Value {
	obj := NewObject()
	for d.err == nil {
		key, val := d.parseEntry(indent)
		if d.err != nil {
			return nil
		}
		obj.fields = append(obj.fields, Field{Key: key, Value: val})

		d.skipBlankLines()
		if d.atEOF() {
			return obj
		}
		next := d.peekIndent()
		if next < indent {
			return obj
		}
		if next > indent {
			d.consumeIndent()
			d.fail("unexpected indentation")
			return nil
		}
		d.consumeIndent()
	}
	return nil
}

// parseEntry parses one `key: ...` entry. The scanner starts at the key and
// finishes at the start of the next line (the entry's value consumes its own
// block lines, if any).
func (d *decoder) parseEntry(indent int) (string, *Value) {
	rest := d.restOfLine()
	colon := entryColonIndex(rest)
	if colon < 0 {
		d.fail("expected ':' after object key")
		return "", nil
	}
	key := strings.TrimSpace(rest[:colon])
	if key == "" {
		d.fail("empty object key")
		return "", nil
	}
	for i := 0; i <= colon; i++ {
		d.advance()
	}
	d.skipSpaces()

	// Empty remainder: a nested object block at a deeper indent, or an
	// empty object when no deeper block follows.
	if d.atEOF() || d.peek() == '\n' {
		if !d.atEOF() {
			d.advance()
		}
		d.skipBlankLines()
		if !d.atEOF() {
			child := d.peekIndent()
			if child > indent {
				d.consumeIndent()
				if !looksLikeEntryLine(d.restOfLine()) {
					d.fail("expected object entry")
					return "", nil
				}
				return key, d.parseObjectBlock(child)
			}
		}
		return key, NewObject()
	}

	val := d.parseValue(indent, true, false)
	if d.err != nil {
		return "", nil
	}
	d.endOfLine()
	return key, val
}

// entryColonIndex finds the key-terminating ':' on an entry line, skipping
// quoted spans and escaped colons.
func entryColonIndex(s string) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			if c == '\\' {
				i++
				continue
			}
			if c == '"' {
				inQuote = false
			}
			continue
		}
		switch c {
		case '"':
			inQuote = true
		case '\\':
			i++
		case ':':
			return i
		}
	}
	return -1
}

// parseValue parses a value starting at the scanner position. indent is the
// indent of the line the value starts on; block forms (multi-line arrays,
// tabular rows, nested objects) hang off that line at deeper indents.
// allowBlock permits those multi-line forms; inCompact marks values inside a
// compact array list, where ',' belongs to the enclosing list.
func (d *decoder) parseValue(indent int, allowBlock, inCompact bool) *Value {
	if d.err != nil {
		return nil
	}
	switch c := d.peek(); {
	case c == '"':
		return String(d.parseQuotedString())
	case c == '[':
		return d.parseArrayOrTabular(indent, allowBlock, inCompact)
	default:
		return d.parseScalarToken(",\n\r:")
	}
}

// parseQuotedString parses a double-quoted string with the escapes
// \" \\ \n \r \t.
func (d *decoder) parseQuotedString() string {
	d.advance() // opening quote
	var sb strings.Builder
	for {
		if d.atEOF() {
			d.fail(errUnterminatedString)
			return ""
		}
		c := d.advance()
		if c == '"' {
			return sb.String()
		}
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		if d.atEOF() {
			d.fail(errUnterminatedString)
			return ""
		}
		switch e := d.advance(); e {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		default:
			d.fail(errInvalidEscape)
			return ""
		}
	}
}

// parseScalarToken reads an unquoted token up to one of the delimiters,
// trims trailing whitespace, and classifies it: keyword, number when fully
// numeric, string otherwise.
func (d *decoder) parseScalarToken(delims string) *Value {
	start := d.pos
	for !d.atEOF() && !strings.ContainsRune(delims, rune(d.peek())) {
		d.advance()
	}
	tok := strings.TrimRight(d.input[start:d.pos], " \t")
	if tok == "" {
		d.fail(errExpectedValue)
		return nil
	}
	switch tok {
	case "null":
		return Null()
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if isNumericToken(tok) {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			d.failf("invalid number %q", tok)
			return nil
		}
		return Number(f)
	}
	return String(tok)
}

// isNumericToken reports whether s matches the wire number grammar: an
// optional leading '-', digits, an optional fractional part, and an
// optional exponent (the encoder falls back to exponent notation for
// magnitudes the plain form cannot carry).
func isNumericToken(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		frac := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			frac++
		}
		if frac == 0 {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

// parseArrayOrTabular dispatches on the character after the digit run
// following '[': ',' opens a tabular array, ']' a simple one.
func (d *decoder) parseArrayOrTabular(indent int, allowBlock, inCompact bool) *Value {
	d.advance() // '['
	start := d.pos
	for !d.atEOF() && d.peek() >= '0' && d.peek() <= '9' {
		d.advance()
	}
	if d.pos == start {
		d.fail("expected array length after '['")
		return nil
	}
	n, err := strconv.Atoi(d.input[start:d.pos])
	if err != nil {
		d.fail("invalid array length")
		return nil
	}
	switch d.peek() {
	case ',':
		if !allowBlock || inCompact {
			d.fail("tabular array not allowed here")
			return nil
		}
		return d.parseTabular(n)
	case ']':
		return d.parseArray(n, indent, allowBlock, inCompact)
	default:
		d.fail("expected ',' or ']' in array header")
		return nil
	}
}

// parseArray parses `[N]:` followed by either a compact comma-separated
// list on the same line or, in block position, N `- element` lines at a
// deeper indent.
func (d *decoder) parseArray(n, indent int, allowBlock, inCompact bool) *Value {
	d.advance() // ']'
	if d.peek() != ':' {
		d.fail("expected ':' after array length")
		return nil
	}
	d.advance()
	d.skipSpaces()

	arr := &Value{kind: KindArray}
	if n == 0 {
		return arr
	}

	if d.atEOF() || d.peek() == '\n' {
		if !allowBlock {
			d.failf("expected %d array values", n)
			return nil
		}
		return d.parseArrayBlock(arr, n, indent)
	}

	// Compact form: exactly n comma-separated values.
	arr.elems = make([]*Value, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			d.skipSpaces()
			if d.peek() != ',' {
				d.fail("expected ',' in array")
				return nil
			}
			d.advance()
			d.skipSpaces()
		}
		elem := d.parseValue(indent, false, true)
		if d.err != nil {
			return nil
		}
		arr.elems = append(arr.elems, elem)
	}
	if !inCompact {
		d.skipSpaces()
		if d.peek() == ',' {
			d.failf("array has more values than declared length %d", n)
			return nil
		}
	}
	return arr
}

// parseArrayBlock parses n `- element` lines below the array header. Each
// element line must be indented deeper than the header's line. Object
// elements put their first entry on the dash line; further entries align
// under it.
func (d *decoder) parseArrayBlock(arr *Value, n, indent int) *Value {
	if !d.atEOF() {
		d.advance() // newline after ':'
	}
	arr.elems = make([]*Value, 0, n)
	for i := 0; i < n; i++ {
		d.skipBlankLines()
		if d.atEOF() {
			d.failf("expected %d array elements, found %d", n, i)
			return nil
		}
		if d.peekIndent() <= indent {
			d.consumeIndent()
			d.failf("expected %d array elements, found %d", n, i)
			return nil
		}
		elemIndent := d.peekIndent()
		d.consumeIndent()
		if d.peek() != '-' {
			d.fail("expected '-' before array element")
			return nil
		}
		d.advance()
		if !d.atEOF() && d.peek() != '\n' && !isLineSpace(d.peek()) {
			d.fail("expected space after '-'")
			return nil
		}
		d.skipSpaces()

		// A bare dash is an empty object element; empty strings are always
		// quoted, so the forms cannot collide.
		if d.atEOF() || d.peek() == '\n' {
			if !d.atEOF() {
				d.advance()
			}
			arr.elems = append(arr.elems, NewObject())
			continue
		}

		var elem *Value
		if looksLikeEntryLine(d.restOfLine()) {
			entryIndent := d.col - 1
			elem = d.parseObjectBlock(entryIndent)
		} else {
			elem = d.parseValue(elemIndent, true, false)
			d.endOfLine()
		}
		if d.err != nil {
			return nil
		}
		arr.elems = append(arr.elems, elem)
	}
	return arr
}

// parseTabular parses `[N,]{h1,...}:` and exactly n rows of cells, one row
// per line. Row indentation is not significant; each row must carry exactly
// one cell per header.
func (d *decoder) parseTabular(n int) *Value {
	d.advance() // ','
	if d.peek() != ']' {
		d.fail("expected ']' in tabular header")
		return nil
	}
	d.advance()
	if d.peek() != '{' {
		d.fail("expected '{' in tabular header")
		return nil
	}
	d.advance()

	headerText := d.restOfLine()
	close := strings.IndexByte(headerText, '}')
	if close < 0 {
		d.fail("expected '}' in tabular header")
		return nil
	}
	var headers []string
	for _, h := range strings.Split(headerText[:close], ",") {
		h = strings.TrimSpace(h)
		if h == "" {
			d.fail("empty column header")
			return nil
		}
		headers = append(headers, h)
	}
	if len(headers) == 0 {
		d.fail("tabular array has no headers")
		return nil
	}
	for i := 0; i <= close; i++ {
		d.advance()
	}
	if d.peek() != ':' {
		d.fail("expected ':' after tabular header")
		return nil
	}
	d.advance()
	d.endOfLine()

	tab := &Value{kind: KindTabular, headers: headers}
	tab.rows = make([][]*Value, 0, n)
	for r := 0; r < n; r++ {
		d.skipBlankLines()
		if d.atEOF() {
			d.failf("expected %d rows, found %d", n, r)
			return nil
		}
		d.consumeIndent()
		row := make([]*Value, 0, len(headers))
		for c := 0; c < len(headers); c++ {
			if c > 0 {
				d.skipSpaces()
				if d.peek() != ',' {
					d.failf("expected %d cells in row", len(headers))
					return nil
				}
				d.advance()
				d.skipSpaces()
			}
			cell := d.parseCell()
			if d.err != nil {
				return nil
			}
			row = append(row, cell)
		}
		d.skipSpaces()
		if d.peek() == ',' {
			d.failf("row has more cells than %d headers", len(headers))
			return nil
		}
		d.endOfLine()
		if d.err != nil {
			return nil
		}
		tab.rows = append(tab.rows, row)
	}
	return tab
}

// parseCell parses one tabular cell: a quoted string or a scalar token.
// Cells never hold nested structures, and ':' is an ordinary character
// inside them.
func (d *decoder) parseCell() *Value {
	if d.peek() == '"' {
		return String(d.parseQuotedString())
	}
	return d.parseScalarToken(",\n\r")
}
