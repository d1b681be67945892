package predicate

import (
	"strconv"

	"github.com/lib/pq"

	"github.com/mesh-intelligence/satchel/pkg/registry"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Postgres renders predicates against an hstore carrier column.
var Postgres Dialect = postgres{}

type postgres struct{}

func (postgres) Name() string { return "postgres" }

func (postgres) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// pgCast maps a numeric comparison to the SQL type stored text is cast to.
func pgCast(c types.Comparison) string {
	switch c {
	case types.CompareInteger, types.CompareEpoch:
		return "bigint"
	case types.CompareFloat:
		return "double precision"
	case types.CompareDecimal:
		return "numeric"
	}
	return ""
}

// sqlOps maps comparison operators to their SQL spelling.
var sqlOps = map[types.Operator]string{
	types.OpEq:     "=",
	types.OpLt:     "<",
	types.OpLte:    "<=",
	types.OpGt:     ">",
	types.OpGte:    ">=",
	types.OpBefore: "<",
	types.OpAfter:  ">",
}

func (d postgres) Write(w *Writer, p Predicate) error {
	col := pq.QuoteIdentifier(p.Carrier)
	if p.Op == types.OpPresent {
		w.WriteString("exist(" + col + ", " + w.Param(p.Key) + "::text)")
		return nil
	}
	value := func() string { return "(" + col + " -> " + w.Param(p.Key) + "::text)" }

	switch p.Op {
	case types.OpIs, types.OpIsNot:
		w.WriteString(value() + " = " + w.Param(p.Operands[0]) + "::text")
		return nil
	case types.OpContains:
		w.WriteString("string_to_array(" + value() + ", " + w.Param(registry.ArraySeparator) + "::text)")
		w.WriteString(" @> CAST(" + w.Param(pq.Array(p.Operands)) + "::text AS text[])")
		return nil
	}

	if p.Comparison.Numeric() {
		typ := pgCast(p.Comparison)
		stored := "CAST(" + value() + " AS " + typ + ")"
		operand := func(s string) string { return "CAST(" + w.Param(s) + "::text AS " + typ + ")" }
		switch p.Op {
		case types.OpBetween:
			w.WriteString(stored + " BETWEEN " + operand(p.Operands[0]) + " AND " + operand(p.Operands[1]))
			return nil
		case types.OpIn:
			w.WriteString(stored + " = ANY(CAST(" + w.Param(pq.Array(p.Operands)) + "::text AS " + typ + "[]))")
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
		if p.Op == types.OpEq {
			// @> can use a GIN index on the column
			w.WriteString(col + " @> hstore(" + w.Param(p.Key) + "::text, " + w.Param(p.Operands[0]) + "::text)")
			return nil
		}
		if op, ok := sqlOps[p.Op]; ok && p.Comparison == types.CompareDate {
			w.WriteString(value() + " " + op + " " + w.Param(p.Operands[0]) + "::text")
			return nil
		}
	}
	return unsupported(d, p)
}
