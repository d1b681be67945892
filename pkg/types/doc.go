// Package types defines the carrier, host and record types, the closed set of
// data types and predicate operators, store configuration, and the standard
// errors shared by every satchel package.
package types
