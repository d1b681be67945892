package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// persist writes the JSONL file now or queues the write, depending on the
// sync strategy. The caller must hold b.mu.
func (b *Backend) persist(ctx context.Context, operation, id string) error {
	if b.shouldPersistImmediately() {
		return b.persistJSONL(ctx)
	}
	b.queueWrite(operation, id)
	return nil
}

// shouldPersistImmediately returns true for the "immediate" strategy, false
// for "on_close" and "batch".
func (b *Backend) shouldPersistImmediately() bool {
	return b.syncStrategy == "" || b.syncStrategy == types.SyncImmediate
}

// queueWrite adds a write to the pending queue and flushes it when a batch
// is full. The caller must hold b.mu.
func (b *Backend) queueWrite(operation, id string) {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	b.pendingWrites = append(b.pendingWrites, pendingWrite{operation: operation, recordID: id})
	if b.syncStrategy == types.SyncBatch && b.batchSize > 0 && len(b.pendingWrites) >= b.batchSize {
		if err := b.flushPendingWritesBatchLocked(); err != nil {
			b.log.Error("batch flush failed", "error", err)
		}
	}
}

// flushPendingWritesLocked persists all pending writes.
// The caller must hold b.mu.
func (b *Backend) flushPendingWritesLocked() error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	return b.flushPendingWritesBatchLocked()
}

// flushPendingWritesBatchLocked rewrites the JSONL file once for all pending
// writes. The caller must hold b.batchMu. On failure the queue is kept, so
// the next flush retries.
func (b *Backend) flushPendingWritesBatchLocked() error {
	if len(b.pendingWrites) == 0 {
		return nil
	}
	if err := b.persistJSONL(context.Background()); err != nil {
		last := b.pendingWrites[len(b.pendingWrites)-1]
		return fmt.Errorf("flush %d writes (last %s %s): %w", len(b.pendingWrites), last.operation, last.recordID, err)
	}
	b.log.Debug("flushed pending writes", "count", len(b.pendingWrites))
	b.pendingWrites = nil
	return nil
}

// startBatchTimer starts the interval timer of the batch strategy.
func (b *Backend) startBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		return
	}
	b.batchTimer = time.AfterFunc(b.batchInterval, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.attached {
			return
		}

		if err := b.flushPendingWritesLocked(); err != nil {
			b.log.Error("interval flush failed", "error", err)
		}

		b.batchMu.Lock()
		if b.batchTimer != nil && b.attached {
			b.batchTimer.Reset(b.batchInterval)
		}
		b.batchMu.Unlock()
	})
}

// stopBatchTimer stops the interval timer if running.
func (b *Backend) stopBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		b.batchTimer.Stop()
		b.batchTimer = nil
	}
}
