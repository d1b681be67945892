package registry

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

func zeroDecimal() decimal.Decimal { return decimal.Zero }

// float64 bounds of the int64 range; the upper one is exclusive.
const (
	minInt64Float = -9223372036854775808.0
	maxInt64Float = 9223372036854775808.0
)

func castInteger(v any) (any, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return uintToInt64(uint64(x), v)
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return uintToInt64(x, v)
	case float32:
		return floatToInt64(float64(x), v)
	case float64:
		return floatToInt64(x, v)
	case decimal.Decimal:
		if !x.IsInteger() {
			return nil, castError(types.TypeInteger, v, "fractional value")
		}
		if !x.BigInt().IsInt64() {
			return nil, castError(types.TypeInteger, v, "out of range")
		}
		return x.IntPart(), nil
	case json.Number:
		return parseInteger(string(x), v)
	case string:
		return parseInteger(x, v)
	case []byte:
		return parseInteger(string(x), v)
	default:
		return nil, castError(types.TypeInteger, v, "")
	}
}

func uintToInt64(u uint64, orig any) (any, error) {
	if u > math.MaxInt64 {
		return nil, castError(types.TypeInteger, orig, "out of range")
	}
	return int64(u), nil
}

func floatToInt64(f float64, orig any) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, castError(types.TypeInteger, orig, "not an integral number")
	}
	if f < minInt64Float || f >= maxInt64Float {
		return nil, castError(types.TypeInteger, orig, "out of range")
	}
	return int64(f), nil
}

func parseInteger(s string, orig any) (any, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, castError(types.TypeInteger, orig, "")
	}
	return n, nil
}

func serializeInteger(v any) (string, error) {
	n, ok := v.(int64)
	if !ok {
		return "", serializeError(types.TypeInteger, v)
	}
	return strconv.FormatInt(n, 10), nil
}

func deserializeInteger(s string) (any, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, deserializeError(types.TypeInteger, s, err)
	}
	return n, nil
}

func castFloat(v any) (any, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		// Keep the digits the float32 was written with, not its binary expansion.
		f, _ = strconv.ParseFloat(strconv.FormatFloat(float64(x), 'g', -1, 32), 64)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case decimal.Decimal:
		// Floats are approximate; the nearest float64 is the intended result.
		f, _ = x.Float64()
	case json.Number:
		return parseFloat(string(x), v)
	case string:
		return parseFloat(x, v)
	case []byte:
		return parseFloat(string(x), v)
	default:
		return nil, castError(types.TypeFloat, v, "")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, castError(types.TypeFloat, v, "not a finite number")
	}
	return f, nil
}

func parseFloat(s string, orig any) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, castError(types.TypeFloat, orig, "")
	}
	return f, nil
}

func serializeFloat(v any) (string, error) {
	f, ok := v.(float64)
	if !ok {
		return "", serializeError(types.TypeFloat, v)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func deserializeFloat(s string) (any, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, deserializeError(types.TypeFloat, s, err)
	}
	return f, nil
}

func castDecimal(v any) (any, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case *big.Int:
		if x == nil {
			return nil, castError(types.TypeDecimal, v, "")
		}
		return decimal.NewFromBigInt(x, 0), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int8:
		return decimal.NewFromInt(int64(x)), nil
	case int16:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(x)), 0), nil
	case uint8:
		return decimal.NewFromInt(int64(x)), nil
	case uint16:
		return decimal.NewFromInt(int64(x)), nil
	case uint32:
		return decimal.NewFromInt(int64(x)), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0), nil
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil, castError(types.TypeDecimal, v, "not a finite number")
		}
		return decimal.NewFromFloat32(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, castError(types.TypeDecimal, v, "not a finite number")
		}
		return decimal.NewFromFloat(x), nil
	case json.Number:
		return parseDecimal(string(x), v)
	case string:
		return parseDecimal(x, v)
	case []byte:
		return parseDecimal(string(x), v)
	default:
		return nil, castError(types.TypeDecimal, v, "")
	}
}

func parseDecimal(s string, orig any) (any, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, castError(types.TypeDecimal, orig, "")
	}
	return d, nil
}

// serializeDecimal writes every digit of d, keeping trailing fractional
// zeros so that the scale survives the round trip.
func serializeDecimal(v any) (string, error) {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return "", serializeError(types.TypeDecimal, v)
	}
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp), nil
	}
	return d.String(), nil
}

func deserializeDecimal(s string) (any, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, deserializeError(types.TypeDecimal, s, err)
	}
	return d, nil
}
