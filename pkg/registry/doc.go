// Package registry holds the type descriptors that define how each logical
// data type is cast from application values, serialized into carrier text,
// deserialized back, and compared by predicates.
//
// Type information is never stored in a carrier; every read re-applies the
// descriptor registered for the field's declared type, so descriptors are
// registered once and treated as read-only afterwards.
package registry
