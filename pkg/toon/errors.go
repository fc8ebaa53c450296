package toon

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a path did not resolve to a value: a missing key,
// an out-of-range index, a wildcard segment, or a segment applied to an
// incompatible kind. It is always wrapped in a *PathError; test with
// errors.Is.
var ErrNotFound = errors.New("not found")

// ErrInvalidPath reports a path string that does not conform to the path
// grammar, as opposed to one that fails to resolve.
var ErrInvalidPath = errors.New("invalid path")

// DecodeError reports malformed document text. Decoding stops at the first
// error and returns no partial tree.
type DecodeError struct {
	Pos     Position
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("toon: decode error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// PathError reports a path that failed to parse or to resolve. Err is
// ErrInvalidPath for grammar violations and ErrNotFound for resolution
// failures.
type PathError struct {
	Path    string
	Segment string // segment being resolved when the failure occurred, if any
	Err     error
}

func (e *PathError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("toon: path %q at %s: %v", e.Path, e.Segment, e.Err)
	}
	return fmt.Sprintf("toon: path %q: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// OperationError reports a document operation applied to the wrong kind of
// value.
type OperationError struct {
	Op   string
	Want Kind
	Got  Kind
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("toon: %s: expected %s, got %s", e.Op, e.Want, e.Got)
}

// ValidationError reports the first structural violation found in a tree.
type ValidationError struct {
	Location string // where the violation sits, e.g. "$.users row 2"
	Message  string
}

func (e *ValidationError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("toon: invalid document at %s: %s", e.Location, e.Message)
	}
	return fmt.Sprintf("toon: invalid document: %s", e.Message)
}

// IndexError reports an array index outside the range an operation
// accepts. Length is the array length at the time of the call.
type IndexError struct {
	Op     string
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("toon: %s: index %d out of range for length %d", e.Op, e.Index, e.Length)
}

// Common decode error messages.
const (
	errUnterminatedString = "unterminated string literal"
	errInvalidEscape      = "invalid escape sequence"
	errExpectedValue      = "expected a value"
)
