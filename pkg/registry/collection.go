package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// ArraySeparator joins array elements inside a carrier value. Elements must
// not contain it; Cast rejects any that do.
const ArraySeparator = "||;||"

func castArray(v any) (any, error) {
	var out []string
	switch x := v.(type) {
	case []string:
		out = make([]string, len(x))
		copy(out, x)
	case []any:
		out = make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, castError(types.TypeArray, v, "elements must be strings")
			}
			out = append(out, s)
		}
	case string:
		out = []string{x}
	default:
		return nil, castError(types.TypeArray, v, "")
	}
	if err := checkElements(out, v); err != nil {
		return nil, err
	}
	return out, nil
}

// checkElements rejects arrays whose serialized form would not split back
// into the same elements. With the array wrapped in separators, the only
// occurrences of the separator, overlapping ones included, must be the
// boundaries between elements. Partial separators at element edges fail
// this, and so do any contains lookups built on the wrapped form.
func checkElements(elems []string, orig any) error {
	for _, e := range elems {
		if strings.Contains(e, ArraySeparator) {
			return castError(types.TypeArray, orig, "element contains the separator "+ArraySeparator)
		}
	}
	if len(elems) == 1 && elems[0] == "" {
		return castError(types.TypeArray, orig, "a single empty element cannot be told apart from an empty array")
	}
	if len(elems) == 0 {
		return nil
	}
	wrapped := ArraySeparator + strings.Join(elems, ArraySeparator) + ArraySeparator
	if separatorCount(wrapped) != len(elems)+1 {
		return castError(types.TypeArray, orig, "element edges run into the separator "+ArraySeparator)
	}
	return nil
}

// separatorCount counts occurrences of ArraySeparator in s, overlaps included.
func separatorCount(s string) int {
	n := 0
	for i := 0; i+len(ArraySeparator) <= len(s); i++ {
		if s[i:i+len(ArraySeparator)] == ArraySeparator {
			n++
		}
	}
	return n
}

func serializeArray(v any) (string, error) {
	a, ok := v.([]string)
	if !ok {
		return "", serializeError(types.TypeArray, v)
	}
	return strings.Join(a, ArraySeparator), nil
}

func deserializeArray(s string) (any, error) {
	return SplitArray(s), nil
}

// SplitArray decodes a serialized array. The empty string is the empty array.
func SplitArray(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ArraySeparator)
}

// castHash normalizes v through JSON so that the cast value is exactly what
// a later deserialize produces.
func castHash(v any) (any, error) {
	var raw []byte
	switch x := v.(type) {
	case string:
		raw = []byte(x)
	case []byte:
		raw = x
	case json.RawMessage:
		raw = x
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return nil, castError(types.TypeHash, v, "expected a string-keyed map or a JSON object")
		}
		if rv.IsNil() {
			return map[string]any{}, nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, castError(types.TypeHash, v, err.Error())
		}
		raw = b
	}
	m, err := decodeObject(raw)
	if err != nil {
		return nil, castError(types.TypeHash, v, err.Error())
	}
	return m, nil
}

func serializeHash(v any) (string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", serializeError(types.TypeHash, v)
	}
	if m == nil {
		m = map[string]any{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func deserializeHash(s string) (any, error) {
	m, err := decodeObject([]byte(s))
	if err != nil {
		return nil, deserializeError(types.TypeHash, s, err)
	}
	return m, nil
}

var errNotObject = errors.New("not a JSON object")

func decodeObject(raw []byte) (map[string]any, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return nil, errNotObject
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
