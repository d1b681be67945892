package types

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mapIdentity(c Carrier) uintptr {
	return reflect.ValueOf(c).Pointer()
}

func TestCarrierWithLeavesReceiverUntouched(t *testing.T) {
	orig := Carrier{"color": "green", "price": "10"}

	next := orig.With("price", "20")

	assert.Equal(t, Carrier{"color": "green", "price": "10"}, orig)
	assert.Equal(t, Carrier{"color": "green", "price": "20"}, next)
	assert.NotEqual(t, mapIdentity(orig), mapIdentity(next))
}

func TestCarrierWithout(t *testing.T) {
	orig := Carrier{"color": "green", "price": "10"}

	next := orig.Without("color")

	assert.Equal(t, Carrier{"price": "10"}, next)
	assert.Len(t, orig, 2)
}

func TestCarrierNil(t *testing.T) {
	var c Carrier

	v, ok := c.Lookup("price")
	assert.False(t, ok)
	assert.Empty(t, v)

	next := c.With("price", "1")
	assert.Equal(t, Carrier{"price": "1"}, next)
	assert.NotNil(t, c.Clone())
}

func TestCarrierEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Carrier
		want bool
	}{
		{"nil and empty", nil, Carrier{}, true},
		{"same content", Carrier{"a": "1"}, Carrier{"a": "1"}, true},
		{"different value", Carrier{"a": "1"}, Carrier{"a": "2"}, false},
		{"different key", Carrier{"a": "1"}, Carrier{"b": "1"}, false},
		{"different size", Carrier{"a": "1"}, Carrier{"a": "1", "b": "2"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}
