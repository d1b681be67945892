// Package postgres implements the Postgres record store. Each schema
// carrier is an hstore column, queried with the predicate.Postgres dialect.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/mesh-intelligence/satchel/pkg/schema"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Backend stores records in a Postgres table.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	schema   *schema.Schema
	log      *slog.Logger
	db       *sql.DB
	ownsDB   bool
	table    string
	carriers []string
}

// NewBackend returns a detached backend for records of s. The connection is
// opened on Attach with the configured driver: lib/pq ("postgres") or pgx
// ("pgx"). A nil logger means slog.Default().
func NewBackend(config types.Config, s *schema.Schema, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		config:   config,
		schema:   s,
		log:      logger.With("backend", types.BackendPostgres),
		table:    config.TableName(),
		carriers: s.Carriers(),
	}
}

// NewBackendWithDB is like NewBackend but reuses an open database. Detach
// does not close it.
func NewBackendWithDB(db *sql.DB, config types.Config, s *schema.Schema, logger *slog.Logger) *Backend {
	b := NewBackend(config, s, logger)
	b.db = db
	return b
}

// Attach connects, creates the hstore extension and the record table when
// missing. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if b.db == nil {
		if err := b.config.Validate(); err != nil {
			return err
		}
		db, err := sql.Open(b.config.DriverName(), b.config.DSN)
		if err != nil {
			return fmt.Errorf("opening %s: %w", b.config.DriverName(), err)
		}
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
		b.db = db
		b.ownsDB = true
	}

	if err := b.db.PingContext(ctx); err != nil {
		b.closeOwned()
		return fmt.Errorf("connecting: %w", err)
	}
	if err := ensureTable(ctx, b.db, b.table, b.carriers); err != nil {
		b.closeOwned()
		return fmt.Errorf("ensuring table %s: %w", b.table, err)
	}

	b.attached = true
	b.log.Debug("attached", "driver", b.config.DriverName(), "table", b.table)
	return nil
}

// Detach closes the connection if the backend opened it. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	b.log.Debug("detached", "table", b.table)
	return b.closeOwned()
}

func (b *Backend) closeOwned() error {
	if !b.ownsDB || b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	b.ownsDB = false
	return err
}
