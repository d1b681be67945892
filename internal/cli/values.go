package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/satchel/pkg/predicate"
	"github.com/mesh-intelligence/satchel/pkg/schema"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// parseValue converts command-line text into a value the field's type
// casts. Arrays are a JSON list or comma-separated elements; every other
// type is cast from the text itself.
func parseValue(f *schema.Field, raw string) (any, error) {
	if f.Spec().DataType != types.TypeArray {
		return raw, nil
	}
	if strings.HasPrefix(strings.TrimSpace(raw), "[") {
		var elems []string
		if err := json.Unmarshal([]byte(raw), &elems); err != nil {
			return nil, fmt.Errorf("%s: %q is not a JSON list of strings: %w", f.Name(), raw, types.ErrCast)
		}
		return elems, nil
	}
	if raw == "" {
		return []string{}, nil
	}
	return strings.Split(raw, ","), nil
}

// parseAssignment splits "name=value".
func parseAssignment(arg string) (name, value string, err error) {
	name, value, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid assignment %q (expected field=value)", arg)
	}
	return name, value, nil
}

// buildPredicate turns a field name, an operator and its textual operands
// into a predicate. A single operand of between, in or contains may list its
// values separated by commas.
func buildPredicate(s *schema.Schema, field, op string, raw []string) (predicate.Predicate, error) {
	f, err := s.Field(field)
	if err != nil {
		return predicate.Predicate{}, err
	}
	operator := types.Operator(op)
	if len(raw) == 1 {
		switch operator {
		case types.OpBetween, types.OpIn, types.OpContains:
			raw = strings.Split(raw[0], ",")
		}
	}

	var vs []any
	switch operator {
	case types.OpBetween, types.OpIn, types.OpContains:
		for _, r := range raw {
			vs = append(vs, r)
		}
	default:
		if len(raw) > 0 {
			v, err := parseValue(f, strings.Join(raw, " "))
			if err != nil {
				return predicate.Predicate{}, err
			}
			vs = append(vs, v)
		}
	}
	return f.Where().Op(operator, vs...)
}

// parseWhere parses a --where flag of the form field:op[:value].
func parseWhere(s *schema.Schema, expr string) (predicate.Predicate, error) {
	parts := strings.SplitN(expr, ":", 3)
	if len(parts) < 2 {
		return predicate.Predicate{}, fmt.Errorf("invalid filter %q (expected field:op[:value]): %w", expr, types.ErrInvalidOperand)
	}
	var raw []string
	if len(parts) == 3 {
		raw = []string{parts[2]}
	}
	return buildPredicate(s, parts[0], parts[1], raw)
}

// formatValue renders a field value for text output.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		return strings.Join(x, ", ")
	case map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

// recordJSON projects rec for JSON output.
func recordJSON(s *schema.Schema, rec *types.Record) (map[string]any, error) {
	base := map[string]any{
		"id":         rec.RecordID,
		"created_at": rec.CreatedAt,
		"updated_at": rec.UpdatedAt,
	}
	return s.ProjectJSON(rec, base)
}

// presentFields returns the names of the fields stored on rec, in
// definition order.
func presentFields(s *schema.Schema, rec *types.Record) ([]string, error) {
	var out []string
	for _, f := range s.Fields() {
		ok, err := f.Present(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, f.Name())
		}
	}
	return out, nil
}
