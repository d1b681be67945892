package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

func TestTableDDL(t *testing.T) {
	stmts := tableDDL("records", []string{"options", "flags"})
	require.Len(t, stmts, 6)
	assert.Equal(t, "CREATE EXTENSION IF NOT EXISTS hstore", stmts[0])
	assert.Contains(t, stmts[1], `CREATE TABLE IF NOT EXISTS "records"`)
	assert.Contains(t, stmts[1], `"options" hstore NOT NULL DEFAULT ''::hstore`)
	assert.Contains(t, stmts[1], `"flags" hstore NOT NULL DEFAULT ''::hstore`)
	assert.Equal(t, `ALTER TABLE "records" ADD COLUMN IF NOT EXISTS "options" hstore NOT NULL DEFAULT ''::hstore`, stmts[2])
	assert.Equal(t, `CREATE INDEX IF NOT EXISTS "records_options_gin" ON "records" USING gin ("options")`, stmts[3])
	assert.Contains(t, stmts[5], `"records_flags_gin"`)
}

func TestUpsertSQL(t *testing.T) {
	got := upsertSQL("records", []string{"options", "flags"})
	want := `INSERT INTO "records" (record_id, "options", "flags", created_at, updated_at) ` +
		`VALUES ($1, CAST($2::text AS hstore), CAST($3::text AS hstore), $4, $5) ` +
		`ON CONFLICT (record_id) DO UPDATE SET "options" = EXCLUDED."options", "flags" = EXCLUDED."flags", updated_at = EXCLUDED.updated_at`
	assert.Equal(t, want, got)
}

func TestSelectColumns(t *testing.T) {
	got := selectColumns([]string{"options"})
	assert.Equal(t, `record_id, COALESCE(CAST("options" AS text), ''), created_at, updated_at`, got)
}

func TestQuotedTableName(t *testing.T) {
	stmts := tableDDL(`odd"name`, nil)
	require.Len(t, stmts, 2)
	assert.True(t, strings.Contains(stmts[1], `"odd""name"`), stmts[1])
}

func TestCarrierCodec(t *testing.T) {
	cases := []types.Carrier{
		{},
		{"color": "blue"},
		{"a": "1", "b": "with space", "c": `quote " and \ slash`, "d": ""},
		{"tags": "x||;||y", "=>": "arrow"},
	}
	for _, c := range cases {
		text, err := encodeCarrier(c)
		require.NoError(t, err)
		back, err := decodeCarrier(text)
		require.NoError(t, err)
		assert.True(t, c.Equal(back), "round trip of %v gave %v via %q", c, back, text)
	}
}

func TestEncodeNilCarrier(t *testing.T) {
	text, err := encodeCarrier(nil)
	require.NoError(t, err)
	back, err := decodeCarrier(text)
	require.NoError(t, err)
	assert.Empty(t, back)
}

func TestDecodeDropsNull(t *testing.T) {
	c, err := decodeCarrier(`"a"=>"1", "b"=>NULL`)
	require.NoError(t, err)
	assert.Equal(t, types.Carrier{"a": "1"}, c)
}
