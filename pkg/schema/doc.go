// Package schema binds logical, typed fields to keys of a shared string
// carrier on a host record.
//
// A Schema is built once per host type with Define and never changes
// afterwards; Define on an existing schema returns a new one. Each Field
// reads and writes its value through the registry descriptor of its data
// type and derives its change state from the host's previous-carrier
// snapshot, so that many fields can share one carrier without leaking
// changes into each other.
package schema
