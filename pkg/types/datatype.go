package types

// DataType names a logical data type. The set of built-in types is closed;
// custom types can be registered with a registry before fields use them.
type DataType string

// Built-in data types.
const (
	TypeString   DataType = "string"
	TypeInteger  DataType = "integer"
	TypeFloat    DataType = "float"
	TypeDecimal  DataType = "decimal"
	TypeBoolean  DataType = "boolean"
	TypeDate     DataType = "date"
	TypeDateTime DataType = "datetime"
	TypeTime     DataType = "time" // alias of datetime
	TypeArray    DataType = "array"
	TypeHash     DataType = "hash"
)

// BuiltinTypes lists the built-in data types in declaration order.
var BuiltinTypes = []DataType{
	TypeString,
	TypeInteger,
	TypeFloat,
	TypeDecimal,
	TypeBoolean,
	TypeDate,
	TypeDateTime,
	TypeTime,
	TypeArray,
	TypeHash,
}

// Operator names a field-level comparison.
type Operator string

// Predicate operators.
const (
	OpEq       Operator = "eq"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpBetween  Operator = "between"
	OpIn       Operator = "in"
	OpIs       Operator = "is"
	OpIsNot    Operator = "is_not"
	OpBefore   Operator = "before"
	OpAfter    Operator = "after"
	OpContains Operator = "contains"
	OpPresent  Operator = "present"
)

// Comparison says how stored text is compared at query time.
type Comparison int

const (
	CompareNone    Comparison = iota // no structured predicates
	CompareText                      // compare stored text as is
	CompareInteger                   // cast stored text to a 64-bit integer
	CompareFloat                     // cast stored text to a double
	CompareDecimal                   // cast stored text to an exact numeric
	CompareFlag                      // boolean flag characters
	CompareDate                      // ISO-8601 date text, ordered lexically
	CompareEpoch                     // integer epoch seconds
	CompareList                      // separator-joined list of strings
)

// Numeric reports whether stored values are cast to a number before comparison.
func (c Comparison) Numeric() bool {
	switch c {
	case CompareInteger, CompareFloat, CompareDecimal, CompareEpoch:
		return true
	default:
		return false
	}
}
