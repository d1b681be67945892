package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/satchel/pkg/registry"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

func productSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := Define(registry.New(), "options",
		Definition{Name: "color", DataType: types.TypeString},
		Definition{Name: "price", DataType: types.TypeInteger},
		Definition{Name: "tags", DataType: types.TypeArray},
	)
	require.NoError(t, err)
	return s
}

func TestDefine(t *testing.T) {
	s, err := Define(nil, "options",
		Definition{Name: "color"},
		Definition{Name: "price", DataType: types.TypeInteger, StoreKey: "p"},
	)
	require.NoError(t, err)
	assert.Same(t, registry.Default, s.Registry())

	assert.Equal(t, []FieldSpec{
		{Name: "color", Carrier: "options", DataType: types.TypeString, StoreKey: "color"},
		{Name: "price", Carrier: "options", DataType: types.TypeInteger, StoreKey: "p"},
	}, s.Specs())
	assert.Equal(t, []string{"options"}, s.Carriers())
}

func TestDefineErrors(t *testing.T) {
	tests := []struct {
		name    string
		carrier string
		defs    []Definition
		want    error
	}{
		{"unknown type", "options", []Definition{{Name: "foo", DataType: "baz"}}, types.ErrInvalidDataType},
		{"empty name", "options", []Definition{{Name: ""}}, types.ErrInvalidName},
		{"bad name", "options", []Definition{{Name: "has space"}}, types.ErrInvalidName},
		{"bad carrier", "", []Definition{{Name: "color"}}, types.ErrInvalidName},
		{
			"duplicate store key", "options",
			[]Definition{{Name: "a", StoreKey: "k"}, {Name: "b", StoreKey: "k"}},
			types.ErrDuplicateStoreKey,
		},
		{
			"store key shadows a name", "options",
			[]Definition{{Name: "a"}, {Name: "b", StoreKey: "a"}},
			types.ErrDuplicateStoreKey,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Define(registry.New(), tt.carrier, tt.defs...)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, s)
		})
	}
}

func TestInvalidTypeDefinesNothing(t *testing.T) {
	base := productSchema(t)
	_, err := base.Define("options", Definition{Name: "size"}, Definition{Name: "foo", DataType: "baz"})
	require.ErrorIs(t, err, types.ErrInvalidDataType)

	_, err = base.Field("size")
	assert.ErrorIs(t, err, types.ErrFieldNotFound)
	_, err = base.Field("foo")
	assert.ErrorIs(t, err, types.ErrFieldNotFound)
}

func TestDefineLeavesReceiverUnchanged(t *testing.T) {
	base := productSchema(t)
	ext, err := base.Define("extras", Definition{Name: "note"})
	require.NoError(t, err)

	_, err = base.Field("note")
	assert.ErrorIs(t, err, types.ErrFieldNotFound)
	f, err := ext.Field("note")
	require.NoError(t, err)
	assert.Equal(t, "extras", f.Spec().Carrier)
	assert.Equal(t, []string{"extras", "options"}, ext.Carriers())
	assert.Len(t, ext.Fields(), 4)
}

func TestRedefineLastWriteWins(t *testing.T) {
	base := productSchema(t)
	s, err := base.Define("options", Definition{Name: "price", DataType: types.TypeDecimal, StoreKey: "cost"})
	require.NoError(t, err)

	f, err := s.Field("price")
	require.NoError(t, err)
	assert.Equal(t, FieldSpec{Name: "price", Carrier: "options", DataType: types.TypeDecimal, StoreKey: "cost"}, f.Spec())

	names := make([]string, 0)
	for _, f := range s.Fields() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"color", "price", "tags"}, names, "a redefined field keeps its position")

	// the old spec's store key is free again
	s, err = s.Define("options", Definition{Name: "legacy_price", DataType: types.TypeInteger, StoreKey: "price"})
	require.NoError(t, err)
	assert.Len(t, s.Fields(), 4)
}

func TestRedefineMovesFieldBetweenCarriers(t *testing.T) {
	base := productSchema(t)
	s, err := base.Define("extras", Definition{Name: "color"})
	require.NoError(t, err)

	f, err := s.Field("color")
	require.NoError(t, err)
	assert.Equal(t, "extras", f.Spec().Carrier)

	rec := types.NewRecord("r")
	require.NoError(t, s.Set(rec, "color", "red"))
	assert.Nil(t, rec.Carrier("options"))
	assert.Equal(t, types.Carrier{"color": "red"}, rec.Carrier("extras"))
}

func TestCustomType(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(registry.Descriptor{
		Type:        "upper",
		Empty:       func() any { return "" },
		Cast:        func(v any) (any, error) { s, _ := v.(string); return s, nil },
		Serialize:   func(v any) (string, error) { return v.(string), nil },
		Deserialize: func(s string) (any, error) { return s, nil },
	}))

	s, err := Define(reg, "options", Definition{Name: "code", DataType: "upper"})
	require.NoError(t, err)

	_, err = Define(registry.New(), "options", Definition{Name: "code", DataType: "upper"})
	assert.ErrorIs(t, err, types.ErrInvalidDataType, "types are per registry")

	rec := types.NewRecord("r")
	require.NoError(t, s.Set(rec, "code", "AB"))
	v, err := s.Get(rec, "code")
	require.NoError(t, err)
	assert.Equal(t, "AB", v)
}

func TestIndexer(t *testing.T) {
	s := productSchema(t)
	rec := types.NewRecord("r")

	require.NoError(t, s.Set(rec, "price", "42"))
	v, err := s.Get(rec, "price")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	_, err = s.Get(rec, "missing")
	assert.ErrorIs(t, err, types.ErrFieldNotFound)
	assert.ErrorIs(t, s.Set(rec, "missing", 1), types.ErrFieldNotFound)

	vals, err := s.Values(rec)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"color": "", "price": int64(42), "tags": []string{}}, vals)
}

func TestWhere(t *testing.T) {
	s := productSchema(t)
	b, err := s.Where("price")
	require.NoError(t, err)

	p, err := b.Lt(10)
	require.NoError(t, err)
	assert.Equal(t, "options", p.Carrier)
	assert.Equal(t, "price", p.Key)
	assert.Equal(t, []string{"10"}, p.Operands)

	_, err = s.Where("missing")
	assert.ErrorIs(t, err, types.ErrFieldNotFound)
}

func TestWhereUsesStoreKey(t *testing.T) {
	s, err := Define(registry.New(), "options", Definition{Name: "tags", DataType: types.TypeArray, StoreKey: "t"})
	require.NoError(t, err)
	b, err := s.Where("tags")
	require.NoError(t, err)
	p, err := b.Contains("x")
	require.NoError(t, err)
	assert.Equal(t, "t", p.Key)
}
