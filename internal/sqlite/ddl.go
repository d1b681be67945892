package sqlite

import (
	"strings"

	"github.com/lib/pq"
)

// createTableSQL returns the DDL of the record table: the ID, one JSON TEXT
// column per carrier and the timestamps.
func createTableSQL(table string, carriers []string) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS " + pq.QuoteIdentifier(table) + " (\n")
	sb.WriteString("    record_id TEXT PRIMARY KEY,\n")
	for _, c := range carriers {
		sb.WriteString("    " + pq.QuoteIdentifier(c) + " TEXT NOT NULL DEFAULT '{}',\n")
	}
	sb.WriteString("    created_at TEXT NOT NULL,\n")
	sb.WriteString("    updated_at TEXT NOT NULL\n")
	sb.WriteString(");")
	return sb.String()
}

// selectColumns lists the columns read back into a record, in scan order.
func selectColumns(carriers []string) string {
	cols := make([]string, 0, len(carriers)+3)
	cols = append(cols, "record_id")
	for _, c := range carriers {
		cols = append(cols, pq.QuoteIdentifier(c))
	}
	cols = append(cols, "created_at", "updated_at")
	return strings.Join(cols, ", ")
}

// upsertSQL inserts a record or replaces the carriers and updated_at of an
// existing one. created_at is never overwritten.
func upsertSQL(table string, carriers []string) string {
	cols := []string{"record_id"}
	var sets []string
	for _, c := range carriers {
		q := pq.QuoteIdentifier(c)
		cols = append(cols, q)
		sets = append(sets, q+" = excluded."+q)
	}
	cols = append(cols, "created_at", "updated_at")
	sets = append(sets, "updated_at = excluded.updated_at")

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return "INSERT INTO " + pq.QuoteIdentifier(table) + " (" + strings.Join(cols, ", ") + ") VALUES (" + marks + ")" +
		" ON CONFLICT(record_id) DO UPDATE SET " + strings.Join(sets, ", ")
}
