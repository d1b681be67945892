package schema

import (
	"fmt"

	"github.com/mesh-intelligence/satchel/pkg/predicate"
	"github.com/mesh-intelligence/satchel/pkg/registry"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Field is one logical field bound to a key of a carrier. All operations
// take the host holding the carrier; a Field keeps no per-host state.
type Field struct {
	spec FieldSpec
	desc registry.Descriptor
}

// Spec returns the field's metadata.
func (f *Field) Spec() FieldSpec { return f.spec }

// Name returns the logical field name.
func (f *Field) Name() string { return f.spec.Name }

// Descriptor returns the descriptor of the field's data type.
func (f *Field) Descriptor() registry.Descriptor { return f.desc }

// Get returns the field's value on h. An absent key yields the empty value
// of the field's type; stored text that does not parse fails with
// ErrDeserialize.
func (f *Field) Get(h types.Host) (any, error) {
	raw, ok := h.Carrier(f.spec.Carrier).Lookup(f.spec.StoreKey)
	if !ok {
		return f.desc.Empty(), nil
	}
	return f.decode(raw)
}

func (f *Field) decode(raw string) (any, error) {
	v, err := f.desc.Deserialize(raw)
	if err != nil {
		return nil, fmt.Errorf("reading field %s: %w", f.spec.Name, err)
	}
	return v, nil
}

// Set casts v to the field's type and stores it on h. The host receives a
// new carrier holding every other key unchanged; the previous carrier is
// never modified. A nil v removes the key.
func (f *Field) Set(h types.Host, v any) error {
	cur := h.Carrier(f.spec.Carrier)
	if v == nil {
		f.assign(h, cur.Without(f.spec.StoreKey))
		return nil
	}
	raw, err := f.Serialize(v)
	if err != nil {
		return err
	}
	f.assign(h, cur.With(f.spec.StoreKey, raw))
	return nil
}

// Serialize casts v to the field's type and returns its carrier text.
func (f *Field) Serialize(v any) (string, error) {
	cast, err := f.desc.Cast(v)
	if err != nil {
		return "", fmt.Errorf("setting field %s: %w", f.spec.Name, err)
	}
	raw, err := f.desc.Serialize(cast)
	if err != nil {
		return "", fmt.Errorf("setting field %s: %w", f.spec.Name, err)
	}
	return raw, nil
}

// assign marks the carrier dirty before replacing it, so the host captures
// the previous value even if it cannot tell the new carrier apart.
func (f *Field) assign(h types.Host, next types.Carrier) {
	h.MarkCarrierDirty(f.spec.Carrier)
	h.SetCarrier(f.spec.Carrier, next)
}

// Present reports whether the key is stored on h with a non-empty value.
func (f *Field) Present(h types.Host) (bool, error) {
	raw, ok := h.Carrier(f.spec.Carrier).Lookup(f.spec.StoreKey)
	if !ok {
		return false, nil
	}
	v, err := f.decode(raw)
	if err != nil {
		return false, err
	}
	return !f.desc.IsEmpty(v), nil
}

// Changed reports whether the field's stored text differs from the one at
// the start of the host's change window.
func (f *Field) Changed(h types.Host) bool {
	return f.snapshot(h).Changed(f.spec.StoreKey)
}

// Was returns the field's value at the start of the host's change window.
func (f *Field) Was(h types.Host) (any, error) {
	raw, ok := h.PreviousCarrier(f.spec.Carrier).Lookup(f.spec.StoreKey)
	if !ok {
		return f.desc.Empty(), nil
	}
	return f.decode(raw)
}

// Change returns the field's previous and current values. Changed is false
// when the stored text is the same on both sides.
func (f *Field) Change(h types.Host) (Change, error) {
	c := Change{Field: f.spec.Name, Changed: f.Changed(h)}
	var err error
	if c.Was, err = f.Was(h); err != nil {
		return Change{}, err
	}
	if c.Now, err = f.Get(h); err != nil {
		return Change{}, err
	}
	return c, nil
}

// Revert restores the field's stored text from the start of the change
// window, leaving every other key of the current carrier as it is.
func (f *Field) Revert(h types.Host) {
	snap := f.snapshot(h)
	if !snap.Changed(f.spec.StoreKey) {
		return
	}
	f.assign(h, snap.Reverted(f.spec.StoreKey))
}

// WillChange marks the field's carrier dirty ahead of an in-place change.
func (f *Field) WillChange(h types.Host) {
	h.MarkCarrierDirty(f.spec.Carrier)
}

func (f *Field) snapshot(h types.Host) Snapshot {
	return SnapshotOf(h, f.spec.Carrier)
}

// Where returns the predicate builder for the field.
func (f *Field) Where() predicate.Builder {
	return predicate.For(f.spec.Carrier, f.spec.StoreKey, f.desc)
}
