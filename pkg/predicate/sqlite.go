package predicate

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/mesh-intelligence/satchel/pkg/registry"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// SQLite renders predicates against a carrier column holding a JSON object
// of strings. SQLite has no exact numeric type, so decimal fields compare
// as REAL.
var SQLite Dialect = sqlite{}

type sqlite struct{}

func (sqlite) Name() string { return "sqlite" }

func (sqlite) Placeholder(int) string { return "?" }

// JSONPath returns the SQLite JSON path selecting key in a carrier object.
func JSONPath(key string) string {
	return `$."` + key + `"`
}

func sqliteCast(c types.Comparison) string {
	switch c {
	case types.CompareInteger, types.CompareEpoch:
		return "INTEGER"
	case types.CompareFloat, types.CompareDecimal:
		return "REAL"
	}
	return ""
}

func (d sqlite) Write(w *Writer, p Predicate) error {
	if strings.Contains(p.Key, `"`) {
		return fmt.Errorf("store key %q cannot be addressed in a JSON path: %w", p.Key, types.ErrInvalidOperand)
	}
	col := pq.QuoteIdentifier(p.Carrier)
	if p.Op == types.OpPresent {
		w.WriteString("json_type(" + col + ", " + w.Param(JSONPath(p.Key)) + ") IS NOT NULL")
		return nil
	}
	value := func() string { return "json_extract(" + col + ", " + w.Param(JSONPath(p.Key)) + ")" }

	switch p.Op {
	case types.OpIs, types.OpIsNot:
		w.WriteString(value() + " = " + w.Param(p.Operands[0]))
		return nil
	case types.OpContains:
		// each element must appear between separators of the wrapped list
		sep := registry.ArraySeparator
		if len(p.Operands) > 1 {
			w.WriteByte('(')
		}
		for i, e := range p.Operands {
			if i > 0 {
				w.WriteString(" AND ")
			}
			w.WriteString("instr(" + w.Param(sep) + " || " + value() + " || " + w.Param(sep) + ", " + w.Param(sep+e+sep) + ") > 0")
		}
		if len(p.Operands) > 1 {
			w.WriteByte(')')
		}
		return nil
	}

	if p.Comparison.Numeric() {
		typ := sqliteCast(p.Comparison)
		stored := "CAST(" + value() + " AS " + typ + ")"
		operand := func(s string) string { return "CAST(" + w.Param(s) + " AS " + typ + ")" }
		switch p.Op {
		case types.OpBetween:
			w.WriteString(stored + " BETWEEN " + operand(p.Operands[0]) + " AND " + operand(p.Operands[1]))
			return nil
		case types.OpIn:
			w.WriteString(stored + " IN (")
			for i, s := range p.Operands {
				if i > 0 {
					w.WriteString(", ")
				}
				w.WriteString(operand(s))
			}
			w.WriteString(")")
			return nil
		}
		if op, ok := sqlOps[p.Op]; ok {
			w.WriteString(stored + " " + op + " " + operand(p.Operands[0]))
			return nil
		}
		return unsupported(d, p)
	}

	switch p.Comparison {
	case types.CompareText, types.CompareList, types.CompareDate:
		op, ok := sqlOps[p.Op]
		if p.Op == types.OpEq || (ok && p.Comparison == types.CompareDate) {
			w.WriteString(value() + " " + op + " " + w.Param(p.Operands[0]))
			return nil
		}
	}
	return unsupported(d, p)
}
