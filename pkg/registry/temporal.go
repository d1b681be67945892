package registry

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// DateLayout is the ISO-8601 calendar date format stored for date fields.
const DateLayout = "2006-01-02"

var timeType = reflect.TypeOf(time.Time{})

func zeroTime() time.Time { return time.Time{} }

func isZeroTime(v any) bool {
	t, _ := v.(time.Time)
	return t.IsZero()
}

// timestampLayouts are accepted when casting text to a datetime.
// Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// castDate keeps the calendar day of v as seen in v's own location.
func castDate(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return dateOf(x), nil
	case *time.Time:
		if x == nil {
			return nil, castError(types.TypeDate, v, "")
		}
		return dateOf(*x), nil
	case string:
		return parseDate(x, v)
	case []byte:
		return parseDate(string(x), v)
	default:
		return nil, castError(types.TypeDate, v, "")
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDate(s string, orig any) (any, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return dateOf(t), nil
	}
	return nil, castError(types.TypeDate, orig, "expected YYYY-MM-DD")
}

func serializeDate(v any) (string, error) {
	t, ok := v.(time.Time)
	if !ok {
		return "", serializeError(types.TypeDate, v)
	}
	return t.Format(DateLayout), nil
}

func deserializeDate(s string) (any, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, deserializeError(types.TypeDate, s, err)
	}
	return t, nil
}

// castDateTime normalizes to UTC at whole-second precision, the resolution
// of the stored epoch.
func castDateTime(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return epochTime(x), nil
	case *time.Time:
		if x == nil {
			return nil, castError(types.TypeDateTime, v, "")
		}
		return epochTime(*x), nil
	case int:
		return time.Unix(int64(x), 0).UTC(), nil
	case int32:
		return time.Unix(int64(x), 0).UTC(), nil
	case int64:
		return time.Unix(x, 0).UTC(), nil
	case string:
		return parseDateTime(x, v)
	case []byte:
		return parseDateTime(string(x), v)
	default:
		return nil, castError(types.TypeDateTime, v, "")
	}
}

func epochTime(t time.Time) time.Time {
	return time.Unix(t.Unix(), 0).UTC()
}

func parseDateTime(s string, orig any) (any, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return epochTime(t), nil
		}
	}
	return nil, castError(types.TypeDateTime, orig, "expected RFC3339 or epoch seconds")
}

func serializeDateTime(v any) (string, error) {
	t, ok := v.(time.Time)
	if !ok {
		return "", serializeError(types.TypeDateTime, v)
	}
	return strconv.FormatInt(t.Unix(), 10), nil
}

func deserializeDateTime(s string) (any, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, deserializeError(types.TypeDateTime, s, err)
	}
	return time.Unix(n, 0).UTC(), nil
}
