package schema

import (
	"fmt"
	"sort"

	"github.com/mesh-intelligence/satchel/pkg/predicate"
	"github.com/mesh-intelligence/satchel/pkg/registry"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Schema is the set of fields declared for one host type. It is immutable
// and safe for concurrent use.
type Schema struct {
	reg    *registry.Registry
	fields map[string]*Field
	order  []string
}

// Define builds a schema holding the fields defs packed into carrier.
// A nil registry means registry.Default.
func Define(reg *registry.Registry, carrier string, defs ...Definition) (*Schema, error) {
	if reg == nil {
		reg = registry.Default
	}
	return (&Schema{reg: reg}).Define(carrier, defs...)
}

// Define returns a new schema extended with defs packed into carrier.
// The receiver is left unchanged. Defining a name that already exists
// replaces the earlier field, wherever it lived.
//
// Every definition is validated before the schema is built: an unknown data
// type fails with ErrInvalidDataType and no field of the call is defined.
func (s *Schema) Define(carrier string, defs ...Definition) (*Schema, error) {
	if !validIdent(carrier) {
		return nil, fmt.Errorf("defining carrier %q: %w", carrier, types.ErrInvalidName)
	}

	next := s.clone()
	for _, def := range defs {
		f, err := next.newField(carrier, def)
		if err != nil {
			return nil, err
		}
		if _, ok := next.fields[f.spec.Name]; !ok {
			next.order = append(next.order, f.spec.Name)
		}
		next.fields[f.spec.Name] = f
	}
	if err := next.checkStoreKeys(); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *Schema) clone() *Schema {
	out := &Schema{
		reg:    s.reg,
		fields: make(map[string]*Field, len(s.fields)),
		order:  make([]string, len(s.order)),
	}
	if out.reg == nil {
		out.reg = registry.Default
	}
	for name, f := range s.fields {
		out.fields[name] = f
	}
	copy(out.order, s.order)
	return out
}

func (s *Schema) newField(carrier string, def Definition) (*Field, error) {
	if !validIdent(def.Name) {
		return nil, fmt.Errorf("defining field %q: %w", def.Name, types.ErrInvalidName)
	}
	dt := def.DataType
	if dt == "" {
		dt = types.TypeString
	}
	desc, err := s.reg.Lookup(dt)
	if err != nil {
		return nil, fmt.Errorf("defining field %s as %q: %w", def.Name, dt, types.ErrInvalidDataType)
	}
	key := def.StoreKey
	if key == "" {
		key = def.Name
	}
	return &Field{
		spec: FieldSpec{Name: def.Name, Carrier: carrier, DataType: dt, StoreKey: key},
		desc: desc,
	}, nil
}

func (s *Schema) checkStoreKeys() error {
	type slot struct{ carrier, key string }
	seen := make(map[slot]string, len(s.fields))
	for _, name := range s.order {
		spec := s.fields[name].spec
		k := slot{spec.Carrier, spec.StoreKey}
		if other, ok := seen[k]; ok {
			return fmt.Errorf("defining field %s: key %q of carrier %s is used by %s: %w",
				name, spec.StoreKey, spec.Carrier, other, types.ErrDuplicateStoreKey)
		}
		seen[k] = name
	}
	return nil
}

// Registry returns the registry the schema resolves data types with.
func (s *Schema) Registry() *registry.Registry {
	return s.reg
}

// Field returns the named field or ErrFieldNotFound.
func (s *Schema) Field(name string) (*Field, error) {
	f, ok := s.fields[name]
	if !ok {
		return nil, fmt.Errorf("field %q: %w", name, types.ErrFieldNotFound)
	}
	return f, nil
}

// Fields returns every field in definition order.
func (s *Schema) Fields() []*Field {
	out := make([]*Field, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.fields[name])
	}
	return out
}

// Specs returns the metadata of every field in definition order.
func (s *Schema) Specs() []FieldSpec {
	out := make([]FieldSpec, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.fields[name].spec)
	}
	return out
}

// Carriers returns the distinct carrier names used by the schema, sorted.
func (s *Schema) Carriers() []string {
	set := make(map[string]struct{})
	for _, f := range s.fields {
		set[f.spec.Carrier] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Get reads the named field from h.
func (s *Schema) Get(h types.Host, name string) (any, error) {
	f, err := s.Field(name)
	if err != nil {
		return nil, err
	}
	return f.Get(h)
}

// Set writes the named field on h.
func (s *Schema) Set(h types.Host, name string, v any) error {
	f, err := s.Field(name)
	if err != nil {
		return err
	}
	return f.Set(h, v)
}

// Values reads every field of h, keyed by field name. Absent fields hold
// their type's empty value.
func (s *Schema) Values(h types.Host) (map[string]any, error) {
	out := make(map[string]any, len(s.order))
	for _, name := range s.order {
		v, err := s.fields[name].Get(h)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// Where returns the predicate builder for the named field.
func (s *Schema) Where(name string) (predicate.Builder, error) {
	f, err := s.Field(name)
	if err != nil {
		return predicate.Builder{}, err
	}
	return f.Where(), nil
}
