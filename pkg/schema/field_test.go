package schema

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/satchel/pkg/registry"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// countingHost records the calls a field makes on its host.
type countingHost struct {
	*types.Record
	calls []string
}

func (h *countingHost) SetCarrier(name string, c types.Carrier) {
	h.calls = append(h.calls, "set")
	h.Record.SetCarrier(name, c)
}

func (h *countingHost) MarkCarrierDirty(name string) {
	h.calls = append(h.calls, "mark")
	h.Record.MarkCarrierDirty(name)
}

func field(t *testing.T, s *Schema, name string) *Field {
	t.Helper()
	f, err := s.Field(name)
	require.NoError(t, err)
	return f
}

func loaded(carrier types.Carrier) *types.Record {
	rec := types.NewRecord("r")
	rec.Reload(map[string]types.Carrier{"options": carrier})
	return rec
}

func TestGetAbsentReturnsEmpty(t *testing.T) {
	s, err := Define(registry.New(), "options",
		Definition{Name: "s", DataType: types.TypeString},
		Definition{Name: "i", DataType: types.TypeInteger},
		Definition{Name: "f", DataType: types.TypeFloat},
		Definition{Name: "d", DataType: types.TypeDecimal},
		Definition{Name: "b", DataType: types.TypeBoolean},
		Definition{Name: "day", DataType: types.TypeDate},
		Definition{Name: "at", DataType: types.TypeDateTime},
		Definition{Name: "a", DataType: types.TypeArray},
		Definition{Name: "h", DataType: types.TypeHash},
	)
	require.NoError(t, err)

	want := map[string]any{
		"s": "", "i": int64(0), "f": float64(0), "b": false,
		"day": time.Time{}, "at": time.Time{}, "a": []string{}, "h": map[string]any{},
	}
	for _, rec := range []*types.Record{types.NewRecord("nil carrier"), loaded(types.Carrier{})} {
		for name, w := range want {
			v, err := field(t, s, name).Get(rec)
			require.NoError(t, err, name)
			assert.Equal(t, w, v, name)
		}
		v, err := field(t, s, "d").Get(rec)
		require.NoError(t, err)
		assert.True(t, v.(decimal.Decimal).IsZero())
	}
}

func TestGetMalformed(t *testing.T) {
	s := productSchema(t)
	rec := loaded(types.Carrier{"price": "ten"})
	_, err := field(t, s, "price").Get(rec)
	assert.ErrorIs(t, err, types.ErrDeserialize)
}

func TestSetIsNonDestructive(t *testing.T) {
	s := productSchema(t)
	rec := loaded(types.Carrier{"color": "green", "price": "10"})

	require.NoError(t, field(t, s, "price").Set(rec, 20))
	assert.Equal(t, types.Carrier{"color": "green", "price": "20"}, rec.Carrier("options"))
}

func TestSetCopyOnWrite(t *testing.T) {
	s := productSchema(t)
	before := types.Carrier{"color": "green", "price": "10"}
	rec := loaded(before)

	id := func(c types.Carrier) uintptr { return reflect.ValueOf(c).Pointer() }

	prev := rec.Carrier("options")
	for _, v := range []any{"green", "red", nil} {
		require.NoError(t, field(t, s, "color").Set(rec, v))
		cur := rec.Carrier("options")
		assert.NotEqual(t, id(prev), id(cur), "setting %v must assign a new carrier", v)
		prev = cur
	}
	assert.Equal(t, types.Carrier{"color": "green", "price": "10"}, before, "the loaded carrier is never mutated")
}

func TestSetMarksDirtyBeforeAssigning(t *testing.T) {
	s := productSchema(t)
	h := &countingHost{Record: loaded(types.Carrier{"color": "green"})}

	require.NoError(t, field(t, s, "color").Set(h, "green"))
	assert.Equal(t, []string{"mark", "set"}, h.calls)
	assert.True(t, h.Dirty(), "the carrier is dirty even when the value did not change")
	assert.False(t, field(t, s, "color").Changed(h))
}

func TestSetNilRemovesKey(t *testing.T) {
	s := productSchema(t)
	rec := loaded(types.Carrier{"color": "green", "price": "10"})

	require.NoError(t, field(t, s, "price").Set(rec, nil))
	assert.Equal(t, types.Carrier{"color": "green"}, rec.Carrier("options"))
}

func TestSetCastError(t *testing.T) {
	s := productSchema(t)
	h := &countingHost{Record: loaded(types.Carrier{"price": "10"})}

	err := field(t, s, "price").Set(h, "ten")
	assert.ErrorIs(t, err, types.ErrCast)
	assert.Empty(t, h.calls, "a failed cast leaves the host untouched")
	assert.Equal(t, types.Carrier{"price": "10"}, h.Carrier("options"))
}

func TestSetRejectsAmbiguousArray(t *testing.T) {
	s := productSchema(t)
	rec := loaded(types.Carrier{"tags": "c"})
	tags := field(t, s, "tags")

	err := tags.Set(rec, []string{"a||;", "||b"})
	assert.ErrorIs(t, err, types.ErrCast)
	assert.Equal(t, types.Carrier{"tags": "c"}, rec.Carrier("options"))

	p, err := tags.Where().Contains("a")
	require.NoError(t, err)
	got, err := p.Match(rec.Carrier("options"))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestPresent(t *testing.T) {
	s, err := Define(registry.New(), "options",
		Definition{Name: "color"},
		Definition{Name: "price", DataType: types.TypeInteger},
		Definition{Name: "active", DataType: types.TypeBoolean},
		Definition{Name: "tags", DataType: types.TypeArray},
	)
	require.NoError(t, err)

	tests := []struct {
		name    string
		field   string
		carrier types.Carrier
		want    bool
	}{
		{"absent", "color", types.Carrier{}, false},
		{"empty string", "color", types.Carrier{"color": ""}, false},
		{"string", "color", types.Carrier{"color": "red"}, true},
		{"zero number", "price", types.Carrier{"price": "0"}, true},
		{"false flag", "active", types.Carrier{"active": "f"}, false},
		{"true flag", "active", types.Carrier{"active": "t"}, true},
		{"empty array", "tags", types.Carrier{"tags": ""}, false},
		{"array", "tags", types.Carrier{"tags": "a"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := field(t, s, tt.field).Present(loaded(tt.carrier))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = field(t, s, "price").Present(loaded(types.Carrier{"price": "x"}))
	assert.ErrorIs(t, err, types.ErrDeserialize)
}

func TestSerializeRoundTripsEveryType(t *testing.T) {
	s, err := Define(registry.New(), "options",
		Definition{Name: "cost", DataType: types.TypeDecimal},
		Definition{Name: "seen", DataType: types.TypeDateTime},
		Definition{Name: "meta", DataType: types.TypeHash},
		Definition{Name: "weight", DataType: types.TypeFloat},
	)
	require.NoError(t, err)
	rec := types.NewRecord("r")

	require.NoError(t, s.Set(rec, "cost", "0.30"))
	require.NoError(t, s.Set(rec, "seen", time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))
	require.NoError(t, s.Set(rec, "meta", map[string]any{"k": "v"}))
	require.NoError(t, s.Set(rec, "weight", 0.1))
	assert.Equal(t, types.Carrier{
		"cost":   "0.30",
		"seen":   "1714550400",
		"meta":   `{"k":"v"}`,
		"weight": "0.1",
	}, rec.Carrier("options"))

	cost, err := s.Get(rec, "cost")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.3").Equal(cost.(decimal.Decimal)))
}

func TestEndToEnd(t *testing.T) {
	s := productSchema(t)
	rec := types.NewRecord("r")

	require.NoError(t, s.Set(rec, "color", "blue"))
	require.NoError(t, s.Set(rec, "price", 10))
	require.NoError(t, s.Set(rec, "tags", []string{"a", "b"}))

	raw, err := json.Marshal(rec.Carrier("options"))
	require.NoError(t, err)

	var stored types.Carrier
	require.NoError(t, json.Unmarshal(raw, &stored))
	reloaded := loaded(stored)

	vals, err := s.Values(reloaded)
	require.NoError(t, err)
	assert.Equal(t, "blue", vals["color"])
	assert.Equal(t, int64(10), vals["price"])
	assert.Equal(t, []string{"a", "b"}, vals["tags"])
}
