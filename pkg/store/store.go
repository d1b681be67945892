// Package store opens a record store for a schema. The backend is chosen by
// Config.Backend and lives in internal/sqlite or internal/postgres; callers
// only see the Store interface.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/satchel/internal/postgres"
	"github.com/mesh-intelligence/satchel/internal/sqlite"
	"github.com/mesh-intelligence/satchel/pkg/predicate"
	"github.com/mesh-intelligence/satchel/pkg/schema"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Store persists types.Record values whose carriers follow one schema.
type Store interface {
	// Attach connects the store to its backend. Returns ErrAlreadyAttached
	// if called while attached.
	Attach(ctx context.Context) error

	// Detach releases backend resources. Idempotent. After Detach, record
	// operations return ErrStoreDetached.
	Detach() error

	// Get returns the record with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*types.Record, error)

	// Save inserts or updates rec and commits its change window. A record
	// without an ID is assigned one.
	Save(ctx context.Context, rec *types.Record) error

	// Delete removes the record with the given ID, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Fetch returns the records matching every predicate, ordered by ID.
	Fetch(ctx context.Context, preds ...predicate.Predicate) ([]*types.Record, error)
}

var (
	_ Store = (*sqlite.Backend)(nil)
	_ Store = (*postgres.Backend)(nil)
)

// Open returns a detached store for records of s. Call Attach before use.
// A nil logger means slog.Default().
//
// Example:
//
//	st, err := store.Open(types.Config{Backend: types.BackendSQLite, DataDir: ".satchel"}, s, nil)
//	if err != nil { ... }
//	if err := st.Attach(ctx); err != nil { ... }
//	defer st.Detach()
func Open(cfg types.Config, s *schema.Schema, logger *slog.Logger) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if s == nil {
		return nil, fmt.Errorf("open store: %w", types.ErrSchemaRequired)
	}
	switch cfg.Backend {
	case types.BackendPostgres:
		return postgres.NewBackend(cfg, s, logger), nil
	default:
		return sqlite.NewBackend(cfg, s, logger), nil
	}
}
