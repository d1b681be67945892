package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mesh-intelligence/satchel/pkg/predicate"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Get returns the record with the given ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if there is no such record.
func (b *Backend) Get(ctx context.Context, id string) (*types.Record, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	recs, err := b.queryRecords(ctx, "record_id = ?", []any{id})
	if err != nil {
		return nil, fmt.Errorf("getting record %s: %w", id, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("record %s: %w", id, types.ErrNotFound)
	}
	return recs[0], nil
}

// Save inserts or updates rec. A record without an ID gets a UUID v7.
// On success the record's change window is committed.
func (b *Backend) Save(ctx context.Context, rec *types.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	if rec.RecordID == "" {
		id, err := newRecordID()
		if err != nil {
			return err
		}
		rec.RecordID = id
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	args, err := b.rowArgs(rec)
	if err != nil {
		return err
	}
	if _, err := b.db.ExecContext(ctx, upsertSQL(b.table, b.carriers), args...); err != nil {
		return fmt.Errorf("saving record %s: %w", rec.RecordID, err)
	}
	if err := b.persist(ctx, "save", rec.RecordID); err != nil {
		return fmt.Errorf("persisting %s.jsonl: %w", b.table, err)
	}

	b.log.Debug("saved record", "id", rec.RecordID, "carriers", rec.DirtyCarriers())
	rec.Commit()
	return nil
}

// Delete removes the record with the given ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if there is no such record.
func (b *Backend) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	res, err := b.db.ExecContext(ctx, "DELETE FROM "+pq.QuoteIdentifier(b.table)+" WHERE record_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %s: %w", id, types.ErrNotFound)
	}
	if err := b.persist(ctx, "delete", id); err != nil {
		return fmt.Errorf("persisting %s.jsonl: %w", b.table, err)
	}

	b.log.Debug("deleted record", "id", id)
	return nil
}

// Fetch returns the records matching every predicate, ordered by ID.
// No predicates match all records.
func (b *Backend) Fetch(ctx context.Context, preds ...predicate.Predicate) ([]*types.Record, error) {
	frag, err := predicate.Render(predicate.SQLite, preds...)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	recs, err := b.queryRecords(ctx, frag.SQL, frag.Args)
	if err != nil {
		return nil, fmt.Errorf("fetching records: %w", err)
	}
	b.log.Debug("fetched records", "where", frag.SQL, "count", len(recs))
	return recs, nil
}

// rowArgs returns the upsert arguments of rec in column order.
func (b *Backend) rowArgs(rec *types.Record) ([]any, error) {
	args := make([]any, 0, len(b.carriers)+3)
	args = append(args, rec.RecordID)
	for _, name := range b.carriers {
		c := rec.Carrier(name)
		if c == nil {
			c = types.Carrier{}
		}
		raw, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encoding carrier %s: %w", name, err)
		}
		args = append(args, string(raw))
	}
	created, updated := rec.CreatedAt, rec.UpdatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	if updated.IsZero() {
		updated = created
	}
	args = append(args, created.Format(time.RFC3339Nano), updated.Format(time.RFC3339Nano))
	return args, nil
}

// queryRecords selects the records matching where, ordered by ID. An empty
// where selects every record.
func (b *Backend) queryRecords(ctx context.Context, where string, args []any) ([]*types.Record, error) {
	query := "SELECT " + selectColumns(b.carriers) + " FROM " + pq.QuoteIdentifier(b.table)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY record_id"

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*types.Record
	for rows.Next() {
		rec, err := b.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// scanRecord hydrates one row into a record with a closed change window.
func (b *Backend) scanRecord(rows *sql.Rows) (*types.Record, error) {
	var id, created, updated string
	raw := make([]string, len(b.carriers))
	dest := make([]any, 0, len(raw)+3)
	dest = append(dest, &id)
	for i := range raw {
		dest = append(dest, &raw[i])
	}
	dest = append(dest, &created, &updated)
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	carriers := make(map[string]types.Carrier, len(b.carriers))
	for i, name := range b.carriers {
		var c types.Carrier
		if err := json.Unmarshal([]byte(raw[i]), &c); err != nil {
			return nil, fmt.Errorf("decoding carrier %s of %s: %w", name, id, err)
		}
		carriers[name] = c
	}

	rec := types.NewRecord(id)
	rec.Reload(carriers)
	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parsing created_at of %s: %w", id, err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("parsing updated_at of %s: %w", id, err)
	}
	return rec, nil
}

