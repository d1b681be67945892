package schema

import (
	"sort"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Snapshot is a carrier's value at the start of the host's change window
// and its value now. Both sides are read-only.
type Snapshot struct {
	Previous types.Carrier
	Current  types.Carrier
}

// SnapshotOf takes the snapshot of the named carrier on h.
func SnapshotOf(h types.Host, carrier string) Snapshot {
	return Snapshot{
		Previous: h.PreviousCarrier(carrier),
		Current:  h.Carrier(carrier),
	}
}

// Changed reports whether key differs between the two sides. A key absent
// on both sides has not changed; a key added or removed has.
func (s Snapshot) Changed(key string) bool {
	was, hadWas := s.Previous.Lookup(key)
	now, hasNow := s.Current.Lookup(key)
	if hadWas != hasNow {
		return true
	}
	return was != now
}

// ChangedKeys returns every key that differs between the two sides, sorted.
func (s Snapshot) ChangedKeys() []string {
	var keys []string
	for k := range s.Current {
		if s.Changed(k) {
			keys = append(keys, k)
		}
	}
	for k := range s.Previous {
		if _, ok := s.Current[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Reverted returns a copy of Current with key restored to its previous text,
// or removed when it was previously absent.
func (s Snapshot) Reverted(key string) types.Carrier {
	if was, ok := s.Previous.Lookup(key); ok {
		return s.Current.With(key, was)
	}
	return s.Current.Without(key)
}

// Change describes one field across a change window.
type Change struct {
	Field   string `json:"field"`
	Was     any    `json:"was"`
	Now     any    `json:"now"`
	Changed bool   `json:"changed"`
}

// Changes returns the changes of every field whose stored text differs on h,
// in definition order.
func (s *Schema) Changes(h types.Host) ([]Change, error) {
	var out []Change
	for _, f := range s.Fields() {
		if !f.Changed(h) {
			continue
		}
		c, err := f.Change(h)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ChangedFields returns the names of the fields changed on h, in definition
// order.
func (s *Schema) ChangedFields(h types.Host) []string {
	var out []string
	for _, f := range s.Fields() {
		if f.Changed(h) {
			out = append(out, f.spec.Name)
		}
	}
	return out
}
