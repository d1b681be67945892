package types

// Carrier is the composite string-keyed, string-valued attribute that stores
// every packed field of a host record. A nil Carrier is an empty carrier.
//
// Carriers are treated as values: the helpers below never mutate the
// receiver and always return a freshly allocated map, so a host can detect a
// change by identity as well as by content.
type Carrier map[string]string

// Lookup returns the raw value stored under key and whether it is present.
func (c Carrier) Lookup(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c[key]
	return v, ok
}

// Clone returns a copy of c. The copy of a nil carrier is an empty, non-nil map.
func (c Carrier) Clone() Carrier {
	out := make(Carrier, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	return out
}

// With returns a copy of c with key set to value.
func (c Carrier) With(key, value string) Carrier {
	out := c.Clone()
	out[key] = value
	return out
}

// Without returns a copy of c with key removed.
func (c Carrier) Without(key string) Carrier {
	out := c.Clone()
	delete(out, key)
	return out
}

// Equal reports whether c and o hold the same keys and values.
// Nil and empty carriers are equal.
func (c Carrier) Equal(o Carrier) bool {
	if len(c) != len(o) {
		return false
	}
	for k, v := range c {
		ov, ok := o[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}
