package predicate

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/satchel/pkg/registry"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Predicate is one field comparison.
type Predicate struct {
	// Carrier is the carrier attribute, the column name in SQL.
	Carrier string

	// Key is the field's store key inside the carrier.
	Key string

	Op         types.Operator
	Comparison types.Comparison

	// Operands hold the serialized operands. For is and is not it holds the
	// flag a matching row stores; for contains, the queried elements.
	Operands []string

	values []any
	desc   registry.Descriptor
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s.%s %s %s", p.Carrier, p.Key, p.Op, strings.Join(p.Operands, ","))
}

// Match evaluates p against a carrier in memory, with the same semantics as
// the rendered SQL. A carrier without the key never matches, whatever the
// operator.
func (p Predicate) Match(c types.Carrier) (bool, error) {
	raw, ok := c.Lookup(p.Key)
	if p.Op == types.OpPresent {
		return ok, nil
	}
	if !ok {
		return false, nil
	}

	switch p.Op {
	case types.OpIs, types.OpIsNot:
		return raw == p.Operands[0], nil
	case types.OpContains:
		have := make(map[string]struct{})
		for _, e := range registry.SplitArray(raw) {
			have[e] = struct{}{}
		}
		for _, e := range p.Operands {
			if _, ok := have[e]; !ok {
				return false, nil
			}
		}
		return true, nil
	}

	if p.Comparison == types.CompareText || p.Comparison == types.CompareList {
		return raw == p.Operands[0], nil
	}

	stored, err := p.desc.Deserialize(raw)
	if err != nil {
		return false, fmt.Errorf("matching %s: %w", p.Key, err)
	}
	switch p.Op {
	case types.OpEq:
		return compare(stored, p.values[0]) == 0, nil
	case types.OpLt, types.OpBefore:
		return compare(stored, p.values[0]) < 0, nil
	case types.OpLte:
		return compare(stored, p.values[0]) <= 0, nil
	case types.OpGt, types.OpAfter:
		return compare(stored, p.values[0]) > 0, nil
	case types.OpGte:
		return compare(stored, p.values[0]) >= 0, nil
	case types.OpBetween:
		return compare(stored, p.values[0]) >= 0 && compare(stored, p.values[1]) <= 0, nil
	case types.OpIn:
		for _, v := range p.values {
			if compare(stored, v) == 0 {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("matching %s %s: %w", p.Key, p.Op, types.ErrUnsupportedOperator)
}

// MatchAll reports whether every predicate matches c.
func MatchAll(c types.Carrier, preds ...Predicate) (bool, error) {
	for _, p := range preds {
		ok, err := p.Match(c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// compare orders two values of the same built-in Go type. Other types fall
// back to their formatted text.
func compare(a, b any) int {
	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case decimal.Decimal:
		if y, ok := b.(decimal.Decimal); ok {
			return x.Cmp(y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
