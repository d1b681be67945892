package types

import (
	"sort"
	"time"
)

// Record is a reference Host: an identified row holding named carriers with
// a will-change style change window. The first mutation of a carrier inside a
// window captures the carrier's previous value; Commit closes the window.
//
// Record is not safe for concurrent mutation.
type Record struct {
	RecordID  string             `json:"record_id"`
	Carriers  map[string]Carrier `json:"carriers"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`

	previous map[string]Carrier
}

var _ Host = (*Record)(nil)

// NewRecord returns an empty record with the given ID.
func NewRecord(id string) *Record {
	return &Record{
		RecordID: id,
		Carriers: make(map[string]Carrier),
	}
}

// Carrier returns the current value of the named carrier.
func (r *Record) Carrier(name string) Carrier {
	if r.Carriers == nil {
		return nil
	}
	return r.Carriers[name]
}

// SetCarrier replaces the named carrier, opening the change window for it
// when needed.
func (r *Record) SetCarrier(name string, c Carrier) {
	r.capture(name)
	if r.Carriers == nil {
		r.Carriers = make(map[string]Carrier)
	}
	r.Carriers[name] = c
	r.UpdatedAt = time.Now().UTC()
}

// MarkCarrierDirty opens the change window for the named carrier.
// Idempotent: the snapshot taken by the first call is kept.
func (r *Record) MarkCarrierDirty(name string) {
	r.capture(name)
}

// PreviousCarrier returns the snapshot taken when the named carrier first
// changed in the current window, or the current carrier when it has not.
func (r *Record) PreviousCarrier(name string) Carrier {
	if prev, ok := r.previous[name]; ok {
		return prev
	}
	return r.Carrier(name)
}

// capture stores the current carrier as the previous value unless the
// window for name is already open. Setters never mutate a carrier in place,
// so keeping the reference is enough.
func (r *Record) capture(name string) {
	if r.previous == nil {
		r.previous = make(map[string]Carrier)
	}
	if _, ok := r.previous[name]; ok {
		return
	}
	r.previous[name] = r.Carrier(name)
}

// Dirty reports whether any carrier has been marked or replaced since the
// last Commit or Reload.
func (r *Record) Dirty() bool {
	return len(r.previous) > 0
}

// DirtyCarriers returns the names of carriers touched in the current window,
// sorted.
func (r *Record) DirtyCarriers() []string {
	names := make([]string, 0, len(r.previous))
	for name := range r.previous {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Commit accepts all pending changes and closes the change window.
func (r *Record) Commit() {
	r.previous = nil
}

// Rollback restores every carrier touched in the current window and closes it.
func (r *Record) Rollback() {
	for name, prev := range r.previous {
		if prev == nil {
			delete(r.Carriers, name)
			continue
		}
		r.Carriers[name] = prev
	}
	r.previous = nil
}

// Reload replaces all carriers with freshly loaded values and discards the
// change window.
func (r *Record) Reload(carriers map[string]Carrier) {
	r.Carriers = make(map[string]Carrier, len(carriers))
	for name, c := range carriers {
		r.Carriers[name] = c
	}
	r.previous = nil
}
