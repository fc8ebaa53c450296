package toon

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// ToJSON renders v as compact JSON. Object entry order is preserved,
// tabular arrays come out as arrays of objects.
func ToJSON(v *Value) (string, error) {
	var sb strings.Builder
	if err := writeJSON(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeJSON(sb *strings.Builder, v *Value) error {
	if v == nil {
		sb.WriteString("null")
		return nil
	}
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.boolVal {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNumber:
		b, err := json.Marshal(v.numVal)
		if err != nil {
			return fmt.Errorf("toon: number %v has no JSON form: %w", v.numVal, err)
		}
		sb.Write(b)
	case KindString:
		b, err := json.Marshal(v.strVal)
		if err != nil {
			return err
		}
		sb.Write(b)
	case KindArray:
		sb.WriteByte('[')
		for i, elem := range v.elems {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeJSON(sb, elem); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case KindObject:
		sb.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			key, err := json.Marshal(f.Key)
			if err != nil {
				return err
			}
			sb.Write(key)
			sb.WriteByte(':')
			if err := writeJSON(sb, f.Value); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	case KindTabular:
		sb.WriteByte('[')
		for i, row := range v.rows {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('{')
			for j, cell := range row {
				if j > 0 {
					sb.WriteByte(',')
				}
				key, err := json.Marshal(v.headers[j])
				if err != nil {
					return err
				}
				sb.Write(key)
				sb.WriteByte(':')
				if err := writeJSON(sb, cell); err != nil {
					return err
				}
			}
			sb.WriteByte('}')
		}
		sb.WriteByte(']')
	}
	return nil
}

// FromJSON parses JSON into a value tree, keeping object entry order.
// Arrays of two or more same-shaped flat objects collapse into tabular
// arrays so the wire form stays compact.
func FromJSON(input string) (*Value, error) {
	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()
	v, err := readJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("toon: invalid json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("toon: invalid json: trailing data after value")
	}
	return v, nil
}

func readJSONValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, want string", keyTok)
				}
				val, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj.fields = append(obj.fields, Field{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := NewArray()
			for dec.More() {
				elem, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				arr.elems = append(arr.elems, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			if tab := inferTabular(arr); tab != nil {
				return tab, nil
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s out of range", t)
		}
		return Number(f), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

// inferTabular collapses arr into a tabular array when every element is
// a flat object with the same entry count as the first. Headers come
// from the first element; later elements contribute cells by position.
// Returns nil when the shape does not qualify.
func inferTabular(arr *Value) *Value {
	if len(arr.elems) < 2 {
		return nil
	}
	first := arr.elems[0]
	if first == nil || first.kind != KindObject || len(first.fields) == 0 {
		return nil
	}
	width := len(first.fields)
	for _, f := range first.fields {
		if !headerSafe(f.Key) {
			return nil
		}
	}
	for _, elem := range arr.elems {
		if elem == nil || elem.kind != KindObject || len(elem.fields) != width {
			return nil
		}
		for _, f := range elem.fields {
			if f.Value == nil {
				return nil
			}
			switch f.Value.kind {
			case KindArray, KindObject, KindTabular:
				return nil
			}
		}
	}
	headers := make([]string, width)
	for i, f := range first.fields {
		headers[i] = f.Key
	}
	tab := NewTabular(headers...)
	for _, elem := range arr.elems {
		row := make([]*Value, width)
		for i, f := range elem.fields {
			row[i] = f.Value
		}
		tab.rows = append(tab.rows, row)
	}
	return tab
}

// headerSafe reports whether a key survives the header line unquoted;
// headers have no quoted form, so unsafe keys block tabular inference.
func headerSafe(s string) bool {
	if s == "" {
		return false
	}
	if isSpaceByte(s[0]) || isSpaceByte(s[len(s)-1]) {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ',', ':', '{', '}', '[', ']', '\n', '\r':
			return false
		}
		if s[i] < 32 {
			return false
		}
	}
	return true
}

// TokenSavings sizes v under both wire forms. It returns the token
// estimates for the TOON and JSON renderings; the JSON figure uses the
// same four-characters-per-token heuristic as EstimateTokens.
func TokenSavings(v *Value) (toonTokens, jsonTokens int, err error) {
	jsonText, err := ToJSON(v)
	if err != nil {
		return 0, 0, err
	}
	return EstimateTokens(v), (len(jsonText) + 3) / 4, nil
}
