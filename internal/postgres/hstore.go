package postgres

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq/hstore"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// encodeCarrier renders c in hstore text form.
func encodeCarrier(c types.Carrier) (string, error) {
	h := hstore.Hstore{Map: make(map[string]sql.NullString, len(c))}
	for k, v := range c {
		h.Map[k] = sql.NullString{String: v, Valid: true}
	}
	v, err := h.Value()
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case []byte:
		return string(x), nil
	case string:
		return x, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unexpected hstore value %T", v)
	}
}

// decodeCarrier parses hstore text. Keys holding SQL NULL are dropped: a
// carrier stores strings only.
func decodeCarrier(s string) (types.Carrier, error) {
	var h hstore.Hstore
	if err := h.Scan([]byte(s)); err != nil {
		return nil, err
	}
	c := make(types.Carrier, len(h.Map))
	for k, v := range h.Map {
		if v.Valid {
			c[k] = v.String
		}
	}
	return c, nil
}
