package registry

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Operator sets shared by the built-in types.
var (
	textOps     = []types.Operator{types.OpEq, types.OpPresent}
	numericOps  = []types.Operator{types.OpLt, types.OpLte, types.OpEq, types.OpGte, types.OpGt, types.OpBetween, types.OpIn, types.OpPresent}
	flagOps     = []types.Operator{types.OpIs, types.OpIsNot, types.OpPresent}
	temporalOps = []types.Operator{types.OpBefore, types.OpEq, types.OpAfter, types.OpPresent}
	listOps     = []types.Operator{types.OpEq, types.OpContains, types.OpPresent}
	hashOps     = []types.Operator{types.OpPresent}
)

// Boolean flag characters stored in carriers.
const (
	FlagTrue  = "t"
	FlagFalse = "f"
)

func builtins() []Descriptor {
	return []Descriptor{
		{
			Type:        types.TypeString,
			GoType:      reflect.TypeOf(""),
			Empty:       func() any { return "" },
			Cast:        castString,
			Serialize:   serializeString,
			Deserialize: func(s string) (any, error) { return s, nil },
			IsEmpty:     func(v any) bool { s, _ := v.(string); return s == "" },
			Comparison:  types.CompareText,
			Operators:   textOps,
		},
		{
			Type:        types.TypeInteger,
			GoType:      reflect.TypeOf(int64(0)),
			Empty:       func() any { return int64(0) },
			Cast:        castInteger,
			Serialize:   serializeInteger,
			Deserialize: deserializeInteger,
			IsEmpty:     never,
			Comparison:  types.CompareInteger,
			Operators:   numericOps,
		},
		{
			Type:        types.TypeFloat,
			GoType:      reflect.TypeOf(float64(0)),
			Empty:       func() any { return float64(0) },
			Cast:        castFloat,
			Serialize:   serializeFloat,
			Deserialize: deserializeFloat,
			IsEmpty:     never,
			Comparison:  types.CompareFloat,
			Operators:   numericOps,
		},
		{
			Type:        types.TypeDecimal,
			GoType:      decimalType,
			Empty:       func() any { return zeroDecimal() },
			Cast:        castDecimal,
			Serialize:   serializeDecimal,
			Deserialize: deserializeDecimal,
			IsEmpty:     never,
			Comparison:  types.CompareDecimal,
			Operators:   numericOps,
		},
		{
			Type:        types.TypeBoolean,
			GoType:      reflect.TypeOf(false),
			Empty:       func() any { return false },
			Cast:        castBoolean,
			Serialize:   serializeBoolean,
			Deserialize: deserializeBoolean,
			IsEmpty:     func(v any) bool { b, _ := v.(bool); return !b },
			Comparison:  types.CompareFlag,
			Operators:   flagOps,
		},
		{
			Type:        types.TypeDate,
			GoType:      timeType,
			Empty:       func() any { return zeroTime() },
			Cast:        castDate,
			Serialize:   serializeDate,
			Deserialize: deserializeDate,
			IsEmpty:     isZeroTime,
			Comparison:  types.CompareDate,
			Operators:   temporalOps,
		},
		datetimeDescriptor(types.TypeDateTime),
		datetimeDescriptor(types.TypeTime),
		{
			Type:        types.TypeArray,
			GoType:      reflect.TypeOf([]string(nil)),
			Empty:       func() any { return []string{} },
			Cast:        castArray,
			Serialize:   serializeArray,
			Deserialize: deserializeArray,
			IsEmpty:     func(v any) bool { a, _ := v.([]string); return len(a) == 0 },
			Comparison:  types.CompareList,
			Operators:   listOps,
		},
		{
			Type:        types.TypeHash,
			GoType:      reflect.TypeOf(map[string]any(nil)),
			Empty:       func() any { return map[string]any{} },
			Cast:        castHash,
			Serialize:   serializeHash,
			Deserialize: deserializeHash,
			IsEmpty:     func(v any) bool { m, _ := v.(map[string]any); return len(m) == 0 },
			Comparison:  types.CompareNone,
			Operators:   hashOps,
		},
	}
}

func datetimeDescriptor(t types.DataType) Descriptor {
	return Descriptor{
		Type:        t,
		GoType:      timeType,
		Empty:       func() any { return zeroTime() },
		Cast:        castDateTime,
		Serialize:   serializeDateTime,
		Deserialize: deserializeDateTime,
		IsEmpty:     isZeroTime,
		Comparison:  types.CompareEpoch,
		Operators:   temporalOps,
	}
}

func never(any) bool { return false }

// castError reports v as not coercible to t.
func castError(t types.DataType, v any, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: %T %v to %s", types.ErrCast, v, v, t)
	}
	return fmt.Errorf("%w: %T %v to %s: %s", types.ErrCast, v, v, t, reason)
}

// deserializeError reports stored text s as malformed for t.
func deserializeError(t types.DataType, s string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %q as %s", types.ErrDeserialize, s, t)
	}
	return fmt.Errorf("%w: %q as %s: %v", types.ErrDeserialize, s, t, err)
}

// serializeError reports a value of the wrong Go type handed to Serialize.
func serializeError(t types.DataType, v any) error {
	return fmt.Errorf("serializing %T as %s: %w", v, t, types.ErrTypeMismatch)
}

func castString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		return nil, castError(types.TypeString, v, "")
	}
}

func serializeString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", serializeError(types.TypeString, v)
	}
	return s, nil
}

func castBoolean(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int:
		return intFlag(int64(x), v)
	case int8:
		return intFlag(int64(x), v)
	case int16:
		return intFlag(int64(x), v)
	case int32:
		return intFlag(int64(x), v)
	case int64:
		return intFlag(x, v)
	case uint:
		return uintFlag(uint64(x), v)
	case uint8:
		return intFlag(int64(x), v)
	case uint16:
		return intFlag(int64(x), v)
	case uint32:
		return intFlag(int64(x), v)
	case uint64:
		return uintFlag(x, v)
	case string:
		return parseFlagWord(x, v)
	case []byte:
		return parseFlagWord(string(x), v)
	default:
		return nil, castError(types.TypeBoolean, v, "")
	}
}

func intFlag(n int64, orig any) (any, error) {
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return nil, castError(types.TypeBoolean, orig, "only 0 and 1 are flags")
	}
}

func uintFlag(u uint64, orig any) (any, error) {
	if u > 1 {
		return nil, castError(types.TypeBoolean, orig, "only 0 and 1 are flags")
	}
	return intFlag(int64(u), orig)
}

func parseFlagWord(s string, orig any) (any, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "t", "true", "1", "y", "yes", "on":
		return true, nil
	case "f", "false", "0", "n", "no", "off":
		return false, nil
	default:
		return nil, castError(types.TypeBoolean, orig, "")
	}
}

func serializeBoolean(v any) (string, error) {
	b, ok := v.(bool)
	if !ok {
		return "", serializeError(types.TypeBoolean, v)
	}
	if b {
		return FlagTrue, nil
	}
	return FlagFalse, nil
}

func deserializeBoolean(s string) (any, error) {
	switch s {
	case FlagTrue:
		return true, nil
	case FlagFalse:
		return false, nil
	default:
		return nil, deserializeError(types.TypeBoolean, s, nil)
	}
}
