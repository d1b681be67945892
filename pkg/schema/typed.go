package schema

import (
	"fmt"
	"reflect"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Typed is a Field whose values are statically typed as T.
type Typed[T any] struct {
	f *Field
}

// Bind returns the named field typed as T. T must be the Go type the
// field's descriptor produces (int64 for integer, []string for array and
// so on) or an interface that type implements.
func Bind[T any](s *Schema, name string) (Typed[T], error) {
	f, err := s.Field(name)
	if err != nil {
		return Typed[T]{}, err
	}
	want := reflect.TypeFor[T]()
	got := f.desc.GoType
	if got != want && !(want.Kind() == reflect.Interface && got.Implements(want)) {
		return Typed[T]{}, fmt.Errorf("binding %s (%s) as %s: %w", name, got, want, types.ErrTypeMismatch)
	}
	return Typed[T]{f: f}, nil
}

// MustBind is like Bind but panics on error. Use it for package-level
// accessors built from a schema known to be valid.
func MustBind[T any](s *Schema, name string) Typed[T] {
	t, err := Bind[T](s, name)
	if err != nil {
		panic(err)
	}
	return t
}

// Field returns the untyped field.
func (t Typed[T]) Field() *Field { return t.f }

// Get returns the field's value on h.
func (t Typed[T]) Get(h types.Host) (T, error) {
	return as[T](t.f.Get(h))
}

// Set stores v on h.
func (t Typed[T]) Set(h types.Host, v T) error {
	return t.f.Set(h, v)
}

// Was returns the field's value at the start of the change window.
func (t Typed[T]) Was(h types.Host) (T, error) {
	return as[T](t.f.Was(h))
}

// Changed reports whether the field changed in the current window.
func (t Typed[T]) Changed(h types.Host) bool { return t.f.Changed(h) }

// Revert restores the field's value from the start of the change window.
func (t Typed[T]) Revert(h types.Host) { t.f.Revert(h) }

func as[T any](v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("reading %T as %T: %w", v, zero, types.ErrTypeMismatch)
	}
	return out, nil
}
