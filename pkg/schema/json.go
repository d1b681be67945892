package schema

import (
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// ProjectJSON returns a copy of base prepared for an external JSON
// representation of h: the raw carrier entries are dropped and each field's
// value is set under its own name.
func (s *Schema) ProjectJSON(h types.Host, base map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(base)+len(s.order))
	for k, v := range base {
		out[k] = v
	}
	for _, c := range s.Carriers() {
		delete(out, c)
	}
	for _, f := range s.Fields() {
		v, err := f.Get(h)
		if err != nil {
			return nil, err
		}
		out[f.spec.Name] = v
	}
	return out, nil
}
