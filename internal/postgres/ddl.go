package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// tableDDL returns the statements that create the record table, add any
// carrier column the table lacks and index every carrier for containment.
func tableDDL(table string, carriers []string) []string {
	qt := pq.QuoteIdentifier(table)

	var cols strings.Builder
	cols.WriteString("CREATE TABLE IF NOT EXISTS " + qt + " (\n")
	cols.WriteString("  record_id text PRIMARY KEY,\n")
	for _, c := range carriers {
		cols.WriteString("  " + pq.QuoteIdentifier(c) + " hstore NOT NULL DEFAULT ''::hstore,\n")
	}
	cols.WriteString("  created_at timestamptz NOT NULL DEFAULT now(),\n")
	cols.WriteString("  updated_at timestamptz NOT NULL DEFAULT now()\n")
	cols.WriteString(")")

	stmts := []string{"CREATE EXTENSION IF NOT EXISTS hstore", cols.String()}
	for _, c := range carriers {
		qc := pq.QuoteIdentifier(c)
		stmts = append(stmts,
			"ALTER TABLE "+qt+" ADD COLUMN IF NOT EXISTS "+qc+" hstore NOT NULL DEFAULT ''::hstore",
			"CREATE INDEX IF NOT EXISTS "+pq.QuoteIdentifier(table+"_"+c+"_gin")+" ON "+qt+" USING gin ("+qc+")",
		)
	}
	return stmts
}

func ensureTable(ctx context.Context, db *sql.DB, table string, carriers []string) error {
	for _, stmt := range tableDDL(table, carriers) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// selectColumns lists the columns read back into a record, in scan order.
// Carriers are read as hstore text so that every driver returns a string.
func selectColumns(carriers []string) string {
	cols := make([]string, 0, len(carriers)+3)
	cols = append(cols, "record_id")
	for _, c := range carriers {
		cols = append(cols, "COALESCE(CAST("+pq.QuoteIdentifier(c)+" AS text), '')")
	}
	cols = append(cols, "created_at", "updated_at")
	return strings.Join(cols, ", ")
}

// upsertSQL inserts a record or replaces the carriers and updated_at of an
// existing one. Carrier parameters are hstore text.
func upsertSQL(table string, carriers []string) string {
	cols := []string{"record_id"}
	vals := []string{"$1"}
	var sets []string
	for i, c := range carriers {
		q := pq.QuoteIdentifier(c)
		cols = append(cols, q)
		vals = append(vals, "CAST($"+strconv.Itoa(i+2)+"::text AS hstore)")
		sets = append(sets, q+" = EXCLUDED."+q)
	}
	n := len(carriers) + 2
	cols = append(cols, "created_at", "updated_at")
	vals = append(vals, "$"+strconv.Itoa(n), "$"+strconv.Itoa(n+1))
	sets = append(sets, "updated_at = EXCLUDED.updated_at")

	return "INSERT INTO " + pq.QuoteIdentifier(table) + " (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.Join(vals, ", ") + ") ON CONFLICT (record_id) DO UPDATE SET " + strings.Join(sets, ", ")
}
