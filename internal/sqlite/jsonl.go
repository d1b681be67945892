package sqlite

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// jsonlPath returns the JSONL file of the record table.
func (b *Backend) jsonlPath(dataDir string) string {
	return filepath.Join(dataDir, b.table+".jsonl")
}

// initJSONL creates an empty JSONL file when none exists.
func (b *Backend) initJSONL(dataDir string) error {
	path := b.jsonlPath(dataDir)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return nil
}

// loadJSONL inserts every record of the JSONL file into the fresh table and
// returns how many were loaded. Lines that do not decode to a record with an
// ID are skipped; a later line for the same ID replaces an earlier one.
func (b *Backend) loadJSONL(ctx context.Context, dataDir string) (int, error) {
	lines, err := readJSONL(b.jsonlPath(dataDir))
	if err != nil {
		return 0, err
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	n := 0
	for _, line := range lines {
		var rec types.Record
		if err := json.Unmarshal(line, &rec); err != nil || rec.RecordID == "" {
			b.log.Warn("skipping JSONL line", "table", b.table, "error", err)
			continue
		}
		args, err := b.rowArgs(&rec)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, upsertSQL(b.table, b.carriers), args...); err != nil {
			return 0, fmt.Errorf("loading record %s: %w", rec.RecordID, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load: %w", err)
	}
	return n, nil
}

// persistJSONL rewrites the JSONL file from the table.
func (b *Backend) persistJSONL(ctx context.Context) error {
	recs, err := b.queryRecords(ctx, "", nil)
	if err != nil {
		return err
	}
	lines := make([]json.RawMessage, 0, len(recs))
	for _, rec := range recs {
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding record %s: %w", rec.RecordID, err)
		}
		lines = append(lines, line)
	}
	return writeJSONL(b.jsonlPath(b.config.DataDir), lines)
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically replaces path with records, one per line, using the
// temp-file, fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", step, err)
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail("writing record", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
