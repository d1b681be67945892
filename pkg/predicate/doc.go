// Package predicate builds query predicates over fields packed in a carrier.
//
// A Builder is obtained per field (see schema.Schema.Where) and returns
// Predicate values; Render turns predicates into a SQL fragment for one
// Dialect. Nothing here executes a query. Store keys and operands are always
// bound parameters.
//
// Because carriers store text, every comparison other than plain equality
// casts the stored text at query time: numbers to a numeric type, datetimes
// to epoch seconds. Array containment splits the stored value on the array
// separator and compares whole elements, so "tag1" never matches "tag10".
package predicate
