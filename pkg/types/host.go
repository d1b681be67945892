package types

// Host is the record that owns one or more carriers. Satchel never persists
// anything itself; it reads and replaces carriers through this contract and
// relies on the host's own change window for previous values.
type Host interface {
	// Carrier returns the current value of the named carrier. A missing
	// carrier is returned as nil.
	Carrier(name string) Carrier

	// SetCarrier replaces the named carrier with c.
	SetCarrier(name string, c Carrier)

	// MarkCarrierDirty flags the named carrier as changed regardless of
	// whether the host would detect the change itself.
	MarkCarrierDirty(name string)

	// PreviousCarrier returns the carrier as it was at the start of the
	// current change window. Without pending changes it equals Carrier(name).
	PreviousCarrier(name string) Carrier
}
