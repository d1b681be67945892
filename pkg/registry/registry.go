package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Descriptor bundles the conversion and comparison semantics of one data type.
type Descriptor struct {
	// Type is the tag fields use to name this descriptor.
	Type types.DataType

	// GoType is the Go type of every value Cast and Deserialize return.
	GoType reflect.Type

	// Empty returns the canonical empty value, handed out for absent keys.
	// It must return a fresh value on every call.
	Empty func() any

	// Cast converts an application value to the canonical Go value.
	// Failures wrap types.ErrCast.
	Cast func(v any) (any, error)

	// Serialize renders a value returned by Cast as carrier text.
	Serialize func(v any) (string, error)

	// Deserialize parses carrier text. Failures wrap types.ErrDeserialize.
	Deserialize func(s string) (any, error)

	// IsEmpty reports whether a deserialized value counts as blank.
	IsEmpty func(v any) bool

	// Comparison selects how predicates compare stored text.
	Comparison types.Comparison

	// Operators lists the predicate operators the type supports.
	Operators []types.Operator
}

// Supports reports whether op is a valid predicate operator for the type.
func (d Descriptor) Supports(op types.Operator) bool {
	for _, o := range d.Operators {
		if o == op {
			return true
		}
	}
	return false
}

// RoundTrip serializes v and parses it back, the way a value travels through
// a persisted carrier.
func (d Descriptor) RoundTrip(v any) (any, error) {
	s, err := d.Serialize(v)
	if err != nil {
		return nil, err
	}
	return d.Deserialize(s)
}

func (d *Descriptor) validate() error {
	if d.Type == "" {
		return fmt.Errorf("registering descriptor: %w", types.ErrInvalidDataType)
	}
	if d.Cast == nil || d.Serialize == nil || d.Deserialize == nil {
		return fmt.Errorf("registering %s: cast, serialize and deserialize are required: %w",
			d.Type, types.ErrInvalidDataType)
	}
	if d.Empty == nil {
		if d.GoType == nil {
			return fmt.Errorf("registering %s: Empty or GoType is required: %w",
				d.Type, types.ErrInvalidDataType)
		}
		goType := d.GoType
		d.Empty = func() any { return reflect.Zero(goType).Interface() }
	}
	if d.GoType == nil {
		d.GoType = reflect.TypeOf(d.Empty())
	}
	if d.IsEmpty == nil {
		d.IsEmpty = func(v any) bool {
			return v == nil || reflect.ValueOf(v).IsZero()
		}
	}
	return nil
}

// Registry maps data type tags to descriptors. It is safe for concurrent use;
// in practice it is written while fields are defined and only read afterwards.
type Registry struct {
	mu    sync.RWMutex
	types map[types.DataType]Descriptor
	order []types.DataType
}

// Default is the shared registry holding the built-in types.
var Default = New()

// New returns a registry preloaded with the built-in types.
func New() *Registry {
	r := NewBare()
	for _, d := range builtins() {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// NewBare returns a registry with no types registered.
func NewBare() *Registry {
	return &Registry{types: make(map[types.DataType]Descriptor)}
}

// Register adds a descriptor. Returns ErrDuplicateType if the tag is taken.
func (r *Registry) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[d.Type]; ok {
		return fmt.Errorf("registering %s: %w", d.Type, types.ErrDuplicateType)
	}
	r.types[d.Type] = d
	r.order = append(r.order, d.Type)
	return nil
}

// Lookup returns the descriptor for t or ErrUnknownType.
func (r *Registry) Lookup(t types.DataType) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.types[t]
	if !ok {
		return Descriptor{}, fmt.Errorf("looking up %q: %w", t, types.ErrUnknownType)
	}
	return d, nil
}

// Has reports whether t is registered.
func (r *Registry) Has(t types.DataType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[t]
	return ok
}

// Types returns the registered tags in registration order.
func (r *Registry) Types() []types.DataType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.DataType, len(r.order))
	copy(out, r.order)
	return out
}
