// Package sqlite implements the SQLite record store.
//
// Each schema carrier is one TEXT column holding a JSON object of strings,
// which the predicate.SQLite dialect reads with json_extract. A JSONL file
// in the data directory is the source of truth: the database is rebuilt
// from it on every Attach and the file is rewritten after writes, according
// to the configured sync strategy.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/satchel/pkg/schema"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// DatabaseFile is the SQLite file created in the data directory.
const DatabaseFile = "satchel.db"

// Backend stores records in SQLite with a JSONL file as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	schema   *schema.Schema
	log      *slog.Logger
	db       *sql.DB
	table    string
	carriers []string

	syncStrategy  string
	batchSize     int
	batchInterval time.Duration
	pendingWrites []pendingWrite
	batchTimer    *time.Timer
	batchMu       sync.Mutex
}

// pendingWrite is a write not yet persisted to the JSONL file. Used by the
// on_close and batch sync strategies.
type pendingWrite struct {
	operation string // "save" or "delete"
	recordID  string
}

// NewBackend returns a detached backend for records of s. A nil logger
// means slog.Default().
func NewBackend(config types.Config, s *schema.Schema, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		config:   config,
		schema:   s,
		log:      logger.With("backend", types.BackendSQLite),
		table:    config.TableName(),
		carriers: s.Carriers(),
	}
}

// Attach creates the data directory, rebuilds the database from the JSONL
// file and starts the batch timer when needed.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := b.config.Validate(); err != nil {
		return err
	}

	dataDir := b.config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	// The database is rebuilt from JSONL on every attach.
	dbPath := filepath.Join(dataDir, DatabaseFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createTableSQL(b.table, b.carriers)); err != nil {
		db.Close()
		return fmt.Errorf("creating table %s: %w", b.table, err)
	}
	b.db = db

	b.syncStrategy = b.config.Sync.StrategyName()
	b.batchSize = b.config.Sync.Size()
	b.batchInterval = time.Duration(b.config.Sync.Interval()) * time.Second
	b.pendingWrites = nil

	if err := b.initJSONL(dataDir); err != nil {
		db.Close()
		return err
	}
	n, err := b.loadJSONL(ctx, dataDir)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	if b.syncStrategy == types.SyncBatch && b.batchInterval > 0 {
		b.startBatchTimer()
	}
	b.config.DataDir = dataDir
	b.attached = true
	b.log.Debug("attached", "path", dbPath, "table", b.table, "records", n, "sync", b.syncStrategy)
	return nil
}

// Detach flushes pending writes and closes the database. After Detach, all
// operations return ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.stopBatchTimer()
	if err := b.flushPendingWritesLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	b.log.Debug("detached", "table", b.table)
	return nil
}

// newRecordID generates a UUID v7 record ID.
func newRecordID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating UUID v7: %w", err)
	}
	return id.String(), nil
}
