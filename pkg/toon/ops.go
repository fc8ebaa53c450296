package toon

import "fmt"

// ArrayAppend appends values to the array addressed by path and returns
// the new length. The document is untouched when an error is returned.
func ArrayAppend(root *Value, path string, values ...*Value) (int, error) {
	target, err := GetPath(root, path)
	if err != nil {
		return 0, err
	}
	if target.kind != KindArray {
		return 0, &OperationError{Op: "append", Want: KindArray, Got: target.kind}
	}
	for _, v := range values {
		if v == nil {
			v = Null()
		}
		target.elems = append(target.elems, v)
	}
	return len(target.elems), nil
}

// ArrayInsert places value at index in the array addressed by path,
// shifting later elements right. Index ranges over [0, length]; length
// means append.
func ArrayInsert(root *Value, path string, index int, value *Value) error {
	target, err := GetPath(root, path)
	if err != nil {
		return err
	}
	if target.kind != KindArray {
		return &OperationError{Op: "insert", Want: KindArray, Got: target.kind}
	}
	if index < 0 || index > len(target.elems) {
		return &IndexError{Op: "insert", Index: index, Length: len(target.elems)}
	}
	if value == nil {
		value = Null()
	}
	target.elems = append(target.elems, nil)
	copy(target.elems[index+1:], target.elems[index:])
	target.elems[index] = value
	return nil
}

// ArrayPop removes and returns the element at index from the array
// addressed by path. Negative indexes count from the end, so -1 pops
// the last element.
func ArrayPop(root *Value, path string, index int) (*Value, error) {
	target, err := GetPath(root, path)
	if err != nil {
		return nil, err
	}
	if target.kind != KindArray {
		return nil, &OperationError{Op: "pop", Want: KindArray, Got: target.kind}
	}
	eff := index
	if eff < 0 {
		eff += len(target.elems)
	}
	if eff < 0 || eff >= len(target.elems) {
		return nil, &IndexError{Op: "pop", Index: index, Length: len(target.elems)}
	}
	popped := target.elems[eff]
	target.elems = append(target.elems[:eff], target.elems[eff+1:]...)
	return popped, nil
}

// ArrayLength returns the element count of the array, or the row count
// of the tabular array, addressed by path.
func ArrayLength(root *Value, path string) (int, error) {
	target, err := GetPath(root, path)
	if err != nil {
		return 0, err
	}
	switch target.kind {
	case KindArray:
		return len(target.elems), nil
	case KindTabular:
		return len(target.rows), nil
	default:
		return 0, &OperationError{Op: "length", Want: KindArray, Got: target.kind}
	}
}

// Merge copies source's entries into target. When both sides hold an
// object under the same key the objects merge recursively; any other
// collision replaces the target entry. Source is never modified and
// shares no values with target afterwards.
func Merge(target, source *Value) error {
	if target == nil || target.kind != KindObject {
		got := KindNull
		if target != nil {
			got = target.kind
		}
		return &OperationError{Op: "merge", Want: KindObject, Got: got}
	}
	if source == nil || source.kind != KindObject {
		got := KindNull
		if source != nil {
			got = source.kind
		}
		return &OperationError{Op: "merge", Want: KindObject, Got: got}
	}
	mergeObjects(target, source)
	return nil
}

func mergeObjects(dst, src *Value) {
	for _, f := range src.fields {
		if existing, ok := dst.Get(f.Key); ok &&
			existing.kind == KindObject && f.Value != nil && f.Value.kind == KindObject {
			mergeObjects(existing, f.Value)
			continue
		}
		if f.Value == nil {
			dst.Set(f.Key, Null())
			continue
		}
		dst.Set(f.Key, f.Value.Clone())
	}
}

// Validate walks the document and reports the first structural defect:
// an empty object key, a tabular array without headers, a row whose
// cell count disagrees with the headers, or a nil value slot.
func Validate(root *Value) error {
	return validateValue(root, "$")
}

func validateValue(v *Value, loc string) error {
	if v == nil {
		return &ValidationError{Location: loc, Message: "nil value slot"}
	}
	switch v.kind {
	case KindObject:
		for _, f := range v.fields {
			if f.Key == "" {
				return &ValidationError{Location: loc, Message: "empty object key"}
			}
			if err := validateValue(f.Value, loc+"."+f.Key); err != nil {
				return err
			}
		}
	case KindArray:
		for i, elem := range v.elems {
			if err := validateValue(elem, fmt.Sprintf("%s[%d]", loc, i)); err != nil {
				return err
			}
		}
	case KindTabular:
		if len(v.headers) == 0 {
			return &ValidationError{Location: loc, Message: "tabular array has no headers"}
		}
		for _, h := range v.headers {
			if h == "" {
				return &ValidationError{Location: loc, Message: "empty column header"}
			}
		}
		for i, row := range v.rows {
			if len(row) != len(v.headers) {
				return &ValidationError{
					Location: fmt.Sprintf("%s row %d", loc, i),
					Message:  fmt.Sprintf("row has %d cells, want %d", len(row), len(v.headers)),
				}
			}
			for j, cell := range row {
				if cell == nil {
					return &ValidationError{
						Location: fmt.Sprintf("%s row %d", loc, i),
						Message:  fmt.Sprintf("nil cell in column %q", v.headers[j]),
					}
				}
				switch cell.kind {
				case KindArray, KindObject, KindTabular:
					return &ValidationError{
						Location: fmt.Sprintf("%s row %d", loc, i),
						Message:  fmt.Sprintf("column %q holds a %s, rows carry scalars only", v.headers[j], cell.kind),
					}
				}
			}
		}
	}
	return nil
}
