package toon

import "strings"

// Paths address values inside a document. Every path begins with '$'
// (the root), followed by any number of segments: '.name' descends into
// an object entry, '[i]' indexes an array (negative indexes count from
// the end), and '[*]' is a wildcard that never matches a single value.
//
// Malformed paths report ErrInvalidPath; well-formed paths that miss
// report ErrNotFound. Both arrive wrapped in a *PathError.

type segmentKind int

const (
	segKey segmentKind = iota
	segIndex
	segWildcard
)

type segment struct {
	kind segmentKind
	key  string
	idx  int
	text string
}

func parsePath(path string) ([]segment, error) {
	if path == "" || path[0] != '$' {
		return nil, &PathError{Path: path, Err: ErrInvalidPath}
	}
	var segs []segment
	i := 1
	for i < len(path) {
		switch path[i] {
		case '.':
			j := i + 1
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				j++
			}
			name := path[i+1 : j]
			if name == "" {
				return nil, &PathError{Path: path, Segment: path[i:j], Err: ErrInvalidPath}
			}
			segs = append(segs, segment{kind: segKey, key: name, text: path[i:j]})
			i = j
		case '[':
			j := strings.IndexByte(path[i:], ']')
			if j < 0 {
				return nil, &PathError{Path: path, Segment: path[i:], Err: ErrInvalidPath}
			}
			j += i
			inner := path[i+1 : j]
			text := path[i : j+1]
			if inner == "*" {
				segs = append(segs, segment{kind: segWildcard, text: text})
			} else {
				idx, ok := parsePathIndex(inner)
				if !ok {
					return nil, &PathError{Path: path, Segment: text, Err: ErrInvalidPath}
				}
				segs = append(segs, segment{kind: segIndex, idx: idx, text: text})
			}
			i = j + 1
		default:
			return nil, &PathError{Path: path, Segment: path[i:], Err: ErrInvalidPath}
		}
	}
	return segs, nil
}

func parsePathIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(s) {
		return 0, false
	}
	n := 0
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

// GetPath resolves path against root and returns the addressed value.
// The returned value is shared with the document, not a copy.
func GetPath(root *Value, path string) (*Value, error) {
	segs, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	cur := root
	for _, s := range segs {
		next, ok := resolveSegment(cur, s)
		if !ok {
			return nil, &PathError{Path: path, Segment: s.text, Err: ErrNotFound}
		}
		cur = next
	}
	return cur, nil
}

func resolveSegment(v *Value, s segment) (*Value, bool) {
	if v == nil {
		return nil, false
	}
	switch s.kind {
	case segKey:
		if v.kind != KindObject {
			return nil, false
		}
		return v.Get(s.key)
	case segIndex:
		if v.kind != KindArray {
			return nil, false
		}
		eff := s.idx
		if eff < 0 {
			eff += len(v.elems)
		}
		if eff < 0 || eff >= len(v.elems) {
			return nil, false
		}
		return v.elems[eff], true
	default:
		return nil, false
	}
}

// SetPath replaces the value addressed by path. The final segment must
// name an object entry (created if absent) or an existing array index;
// the root itself cannot be assigned through a path.
func SetPath(root *Value, path string, val *Value) error {
	segs, err := parsePath(path)
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		return &PathError{Path: path, Err: ErrInvalidPath}
	}
	if val == nil {
		val = Null()
	}
	parent, perr := walkToParent(root, path, segs)
	if perr != nil {
		return perr
	}
	last := segs[len(segs)-1]
	switch last.kind {
	case segKey:
		if parent.kind != KindObject {
			return &PathError{Path: path, Segment: last.text, Err: ErrNotFound}
		}
		parent.Set(last.key, val)
		return nil
	case segIndex:
		if parent.kind != KindArray {
			return &PathError{Path: path, Segment: last.text, Err: ErrNotFound}
		}
		eff := last.idx
		if eff < 0 {
			eff += len(parent.elems)
		}
		if eff < 0 || eff >= len(parent.elems) {
			return &PathError{Path: path, Segment: last.text, Err: ErrNotFound}
		}
		parent.elems[eff] = val
		return nil
	default:
		return &PathError{Path: path, Segment: last.text, Err: ErrInvalidPath}
	}
}

// DeletePath removes the value addressed by path, shifting later array
// elements left. The root itself cannot be deleted.
func DeletePath(root *Value, path string) error {
	segs, err := parsePath(path)
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		return &PathError{Path: path, Err: ErrInvalidPath}
	}
	parent, perr := walkToParent(root, path, segs)
	if perr != nil {
		return perr
	}
	last := segs[len(segs)-1]
	switch last.kind {
	case segKey:
		if parent.kind != KindObject {
			return &PathError{Path: path, Segment: last.text, Err: ErrNotFound}
		}
		for i, f := range parent.fields {
			if f.Key == last.key {
				parent.fields = append(parent.fields[:i], parent.fields[i+1:]...)
				return nil
			}
		}
		return &PathError{Path: path, Segment: last.text, Err: ErrNotFound}
	case segIndex:
		if parent.kind != KindArray {
			return &PathError{Path: path, Segment: last.text, Err: ErrNotFound}
		}
		eff := last.idx
		if eff < 0 {
			eff += len(parent.elems)
		}
		if eff < 0 || eff >= len(parent.elems) {
			return &PathError{Path: path, Segment: last.text, Err: ErrNotFound}
		}
		parent.elems = append(parent.elems[:eff], parent.elems[eff+1:]...)
		return nil
	default:
		return &PathError{Path: path, Segment: last.text, Err: ErrInvalidPath}
	}
}

func walkToParent(root *Value, path string, segs []segment) (*Value, error) {
	cur := root
	for _, s := range segs[:len(segs)-1] {
		next, ok := resolveSegment(cur, s)
		if !ok {
			return nil, &PathError{Path: path, Segment: s.text, Err: ErrNotFound}
		}
		cur = next
	}
	return cur, nil
}
