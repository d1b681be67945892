package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/satchel/pkg/predicate"
	"github.com/mesh-intelligence/satchel/pkg/schema"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

func TestRecordCRUD(t *testing.T) {
	ctx := context.Background()
	b := attached(t, types.Config{})
	s := b.schema

	rec := types.NewRecord("")
	require.NoError(t, s.Set(rec, "color", "blue"))
	require.NoError(t, s.Set(rec, "price", 10))
	require.NoError(t, s.Set(rec, "tags", []string{"a", "b"}))
	require.True(t, rec.Dirty())

	require.NoError(t, b.Save(ctx, rec))
	require.NotEmpty(t, rec.RecordID, "Save assigns an ID")
	assert.False(t, rec.Dirty(), "Save commits the change window")

	got, err := b.Get(ctx, rec.RecordID)
	require.NoError(t, err)
	vals, err := s.Values(got)
	require.NoError(t, err)
	assert.Equal(t, "blue", vals["color"])
	assert.Equal(t, int64(10), vals["price"])
	assert.Equal(t, []string{"a", "b"}, vals["tags"])
	assert.False(t, got.Dirty())
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, s.Set(got, "price", 12))
	require.NoError(t, b.Save(ctx, got))
	again, err := b.Get(ctx, rec.RecordID)
	require.NoError(t, err)
	price, err := s.Get(again, "price")
	require.NoError(t, err)
	assert.Equal(t, int64(12), price)
	assert.True(t, again.CreatedAt.Equal(rec.CreatedAt), "updates keep created_at")

	require.NoError(t, b.Delete(ctx, rec.RecordID))
	_, err = b.Get(ctx, rec.RecordID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, b.Delete(ctx, rec.RecordID), types.ErrNotFound)
}

func TestRecordErrors(t *testing.T) {
	ctx := context.Background()
	b := attached(t, types.Config{})

	_, err := b.Get(ctx, "")
	assert.ErrorIs(t, err, types.ErrInvalidID)
	assert.ErrorIs(t, b.Delete(ctx, ""), types.ErrInvalidID)
	_, err = b.Get(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

// seed saves one record per carrier and returns their IDs in order.
func seed(t *testing.T, b *Backend, carriers ...types.Carrier) []string {
	t.Helper()
	ids := make([]string, 0, len(carriers))
	for _, c := range carriers {
		rec := types.NewRecord("")
		rec.SetCarrier("options", c)
		require.NoError(t, b.Save(context.Background(), rec))
		ids = append(ids, rec.RecordID)
	}
	return ids
}

func where(t *testing.T, s *schema.Schema, field string, op types.Operator, vs ...any) predicate.Predicate {
	t.Helper()
	bld, err := s.Where(field)
	require.NoError(t, err)
	p, err := bld.Op(op, vs...)
	require.NoError(t, err)
	return p
}

func fetchIDs(t *testing.T, b *Backend, preds ...predicate.Predicate) []string {
	t.Helper()
	recs, err := b.Fetch(context.Background(), preds...)
	require.NoError(t, err)
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.RecordID)
	}
	return ids
}

func TestFetchArrayContainment(t *testing.T) {
	b := attached(t, types.Config{})
	s := b.schema
	ids := seed(t, b,
		types.Carrier{"tags": "tag1||;||tag2||;||tag3"},
		types.Carrier{"tags": "tag2"},
		types.Carrier{"tags": "tag10"},
		types.Carrier{"tags": ""},
		types.Carrier{"color": "red"},
	)

	assert.Equal(t, []string{ids[0], ids[1]}, fetchIDs(t, b, where(t, s, "tags", types.OpContains, "tag2")))
	assert.Equal(t, []string{ids[0]}, fetchIDs(t, b, where(t, s, "tags", types.OpContains, "tag2", "tag3")))
	assert.Equal(t, []string{ids[0]}, fetchIDs(t, b, where(t, s, "tags", types.OpContains, "tag1")), "tag1 must not match tag10")
	assert.Equal(t, []string{ids[2]}, fetchIDs(t, b, where(t, s, "tags", types.OpEq, "tag10")))
	assert.Equal(t, ids[:4], fetchIDs(t, b, where(t, s, "tags", types.OpPresent)))
}

func TestFetchMatchesInMemorySemantics(t *testing.T) {
	b := attached(t, types.Config{})
	s := b.schema
	seeds := []types.Carrier{
		{"color": "blue", "price": "9", "weight": "1.5", "cost": "19.90", "active": "t", "due": "2024-02-29", "seen": "1700000000"},
		{"color": "green", "price": "10", "weight": "2", "cost": "5.00", "active": "f", "due": "2024-03-01", "seen": "1700000100"},
		{"color": "blue", "price": "100", "weight": "0.25", "cost": "100", "due": "2023-12-31", "seen": "1600000000"},
		{"tags": "x"},
	}
	seed(t, b, seeds...)

	tests := []struct {
		name  string
		preds []predicate.Predicate
		want  int
	}{
		{"integer lt is numeric", []predicate.Predicate{where(t, s, "price", types.OpLt, 10)}, 1},
		{"integer gte", []predicate.Predicate{where(t, s, "price", types.OpGte, 10)}, 2},
		{"integer between", []predicate.Predicate{where(t, s, "price", types.OpBetween, 9, 10)}, 2},
		{"integer in", []predicate.Predicate{where(t, s, "price", types.OpIn, 9, 100)}, 2},
		{"float gt", []predicate.Predicate{where(t, s, "weight", types.OpGt, 1)}, 2},
		{"decimal lte", []predicate.Predicate{where(t, s, "cost", types.OpLte, "19.9")}, 2},
		{"string eq", []predicate.Predicate{where(t, s, "color", types.OpEq, "blue")}, 2},
		{"boolean is", []predicate.Predicate{where(t, s, "active", types.OpIs, true)}, 1},
		{"boolean is not", []predicate.Predicate{where(t, s, "active", types.OpIsNot, true)}, 1},
		{"date before", []predicate.Predicate{where(t, s, "due", types.OpBefore, "2024-03-01")}, 2},
		{"date eq", []predicate.Predicate{where(t, s, "due", types.OpEq, "2024-03-01")}, 1},
		{"datetime after", []predicate.Predicate{where(t, s, "seen", types.OpAfter, time.Unix(1650000000, 0))}, 2},
		{"hash present", []predicate.Predicate{where(t, s, "meta", types.OpPresent)}, 0},
		{"joined with and", []predicate.Predicate{
			where(t, s, "color", types.OpEq, "blue"),
			where(t, s, "price", types.OpLt, 50),
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fetchIDs(t, b, tt.preds...)
			assert.Len(t, got, tt.want)

			matched := 0
			for _, c := range seeds {
				ok, err := predicate.MatchAll(c, tt.preds...)
				require.NoError(t, err)
				if ok {
					matched++
				}
			}
			assert.Equal(t, matched, len(got), "SQL and Match disagree")
		})
	}
}

func TestFetchAll(t *testing.T) {
	b := attached(t, types.Config{})
	ids := seed(t, b, types.Carrier{"color": "a"}, types.Carrier{"color": "b"})
	assert.ElementsMatch(t, ids, fetchIDs(t, b))
}
