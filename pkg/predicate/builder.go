package predicate

import (
	"fmt"

	"github.com/mesh-intelligence/satchel/pkg/registry"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Builder makes predicates for one field.
type Builder struct {
	carrier string
	key     string
	desc    registry.Descriptor
}

// For returns the builder for the field stored under key in carrier with
// the semantics of d.
func For(carrier, key string, d registry.Descriptor) Builder {
	return Builder{carrier: carrier, key: key, desc: d}
}

// Eq matches the stored value equal to v.
func (b Builder) Eq(v any) (Predicate, error) { return b.compare(types.OpEq, v) }

// Lt matches stored values less than v.
func (b Builder) Lt(v any) (Predicate, error) { return b.compare(types.OpLt, v) }

// Lte matches stored values less than or equal to v.
func (b Builder) Lte(v any) (Predicate, error) { return b.compare(types.OpLte, v) }

// Gt matches stored values greater than v.
func (b Builder) Gt(v any) (Predicate, error) { return b.compare(types.OpGt, v) }

// Gte matches stored values greater than or equal to v.
func (b Builder) Gte(v any) (Predicate, error) { return b.compare(types.OpGte, v) }

// Before matches dates and datetimes earlier than v.
func (b Builder) Before(v any) (Predicate, error) { return b.compare(types.OpBefore, v) }

// After matches dates and datetimes later than v.
func (b Builder) After(v any) (Predicate, error) { return b.compare(types.OpAfter, v) }

// Between matches stored values in the inclusive range [lo, hi].
func (b Builder) Between(lo, hi any) (Predicate, error) {
	return b.compare(types.OpBetween, lo, hi)
}

// In matches stored values equal to any of vs.
func (b Builder) In(vs ...any) (Predicate, error) {
	if len(vs) == 0 {
		return Predicate{}, fmt.Errorf("%s in: empty set: %w", b.key, types.ErrInvalidOperand)
	}
	return b.compare(types.OpIn, vs...)
}

// Is matches the stored flag v.
func (b Builder) Is(v any) (Predicate, error) { return b.flag(types.OpIs, v, false) }

// IsNot matches rows storing the opposite flag of v. Rows without the key
// match neither Is nor IsNot.
func (b Builder) IsNot(v any) (Predicate, error) { return b.flag(types.OpIsNot, v, true) }

// Contains matches arrays holding every element of v, in any order. v is a
// single element or a list of them.
func (b Builder) Contains(v any) (Predicate, error) {
	p, err := b.start(types.OpContains)
	if err != nil {
		return Predicate{}, err
	}
	cast, err := b.desc.Cast(v)
	if err != nil {
		return Predicate{}, fmt.Errorf("%s contains: %w", b.key, err)
	}
	elems, ok := cast.([]string)
	if !ok || len(elems) == 0 {
		return Predicate{}, fmt.Errorf("%s contains: no elements: %w", b.key, types.ErrInvalidOperand)
	}
	p.Operands = elems
	return p, nil
}

// Present matches rows whose carrier holds the key.
func (b Builder) Present() (Predicate, error) {
	return b.start(types.OpPresent)
}

// Op builds the predicate for op by name, the way a query parsed from text
// would. Operands are cast like for the dedicated methods.
func (b Builder) Op(op types.Operator, vs ...any) (Predicate, error) {
	want := func(n int) error {
		if len(vs) != n {
			return fmt.Errorf("%s %s: want %d operands, got %d: %w", b.key, op, n, len(vs), types.ErrInvalidOperand)
		}
		return nil
	}
	switch op {
	case types.OpPresent:
		if err := want(0); err != nil {
			return Predicate{}, err
		}
		return b.Present()
	case types.OpBetween:
		if err := want(2); err != nil {
			return Predicate{}, err
		}
		return b.Between(vs[0], vs[1])
	case types.OpIn:
		return b.In(vs...)
	case types.OpContains:
		if len(vs) == 1 {
			return b.Contains(vs[0])
		}
		return b.Contains(vs)
	case types.OpIs:
		if err := want(1); err != nil {
			return Predicate{}, err
		}
		return b.Is(vs[0])
	case types.OpIsNot:
		if err := want(1); err != nil {
			return Predicate{}, err
		}
		return b.IsNot(vs[0])
	case types.OpEq, types.OpLt, types.OpLte, types.OpGt, types.OpGte, types.OpBefore, types.OpAfter:
		if err := want(1); err != nil {
			return Predicate{}, err
		}
		return b.compare(op, vs[0])
	}
	return Predicate{}, fmt.Errorf("%s %s: %w", b.key, op, types.ErrUnsupportedOperator)
}

func (b Builder) start(op types.Operator) (Predicate, error) {
	if !b.desc.Supports(op) {
		return Predicate{}, fmt.Errorf("%s %s on %s: %w", b.key, op, b.desc.Type, types.ErrUnsupportedOperator)
	}
	return Predicate{
		Carrier:    b.carrier,
		Key:        b.key,
		Op:         op,
		Comparison: b.desc.Comparison,
		desc:       b.desc,
	}, nil
}

func (b Builder) compare(op types.Operator, vs ...any) (Predicate, error) {
	p, err := b.start(op)
	if err != nil {
		return Predicate{}, err
	}
	for _, v := range vs {
		cast, err := b.desc.Cast(v)
		if err != nil {
			return Predicate{}, fmt.Errorf("%s %s: %w", b.key, op, err)
		}
		s, err := b.desc.Serialize(cast)
		if err != nil {
			return Predicate{}, fmt.Errorf("%s %s: %w", b.key, op, err)
		}
		p.values = append(p.values, cast)
		p.Operands = append(p.Operands, s)
	}
	return p, nil
}

func (b Builder) flag(op types.Operator, v any, negate bool) (Predicate, error) {
	p, err := b.start(op)
	if err != nil {
		return Predicate{}, err
	}
	cast, err := b.desc.Cast(v)
	if err != nil {
		return Predicate{}, fmt.Errorf("%s %s: %w", b.key, op, err)
	}
	on, ok := cast.(bool)
	if !ok {
		return Predicate{}, fmt.Errorf("%s %s: %T is not a flag: %w", b.key, op, cast, types.ErrInvalidOperand)
	}
	if negate {
		on = !on
	}
	s, err := b.desc.Serialize(on)
	if err != nil {
		return Predicate{}, fmt.Errorf("%s %s: %w", b.key, op, err)
	}
	p.values = []any{on}
	p.Operands = []string{s}
	return p, nil
}
