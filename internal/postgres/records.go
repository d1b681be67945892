package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
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

	recs, err := b.queryRecords(ctx, "record_id = $1", []any{id})
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
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating UUID v7: %w", err)
		}
		rec.RecordID = id.String()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	args := make([]any, 0, len(b.carriers)+3)
	args = append(args, rec.RecordID)
	for _, name := range b.carriers {
		text, err := encodeCarrier(rec.Carrier(name))
		if err != nil {
			return fmt.Errorf("encoding carrier %s: %w", name, err)
		}
		args = append(args, text)
	}
	args = append(args, rec.CreatedAt, rec.UpdatedAt)

	if _, err := b.db.ExecContext(ctx, upsertSQL(b.table, b.carriers), args...); err != nil {
		return fmt.Errorf("saving record %s: %w", rec.RecordID, err)
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

	res, err := b.db.ExecContext(ctx, "DELETE FROM "+pq.QuoteIdentifier(b.table)+" WHERE record_id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %s: %w", id, types.ErrNotFound)
	}
	b.log.Debug("deleted record", "id", id)
	return nil
}

// Fetch returns the records matching every predicate, ordered by ID.
// No predicates match all records.
func (b *Backend) Fetch(ctx context.Context, preds ...predicate.Predicate) ([]*types.Record, error) {
	frag, err := predicate.Render(predicate.Postgres, preds...)
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

func (b *Backend) scanRecord(rows *sql.Rows) (*types.Record, error) {
	var (
		id               string
		created, updated time.Time
	)
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
		c, err := decodeCarrier(raw[i])
		if err != nil {
			return nil, fmt.Errorf("decoding carrier %s of %s: %w", name, id, err)
		}
		carriers[name] = c
	}
	rec := types.NewRecord(id)
	rec.Reload(carriers)
	rec.CreatedAt = created.UTC()
	rec.UpdatedAt = updated.UTC()
	return rec, nil
}
