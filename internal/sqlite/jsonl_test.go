package sqlite

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

func TestJSONLInitializedEmpty(t *testing.T) {
	b := attached(t, types.Config{})

	info, err := os.Stat(b.jsonlPath(b.config.DataDir))
	if err != nil {
		t.Fatalf("stat records.jsonl: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty file, got %d bytes", info.Size())
	}
}

func TestRecordPersistedToJSONL(t *testing.T) {
	ctx := context.Background()
	b := attached(t, types.Config{})

	rec := types.NewRecord("")
	if err := b.schema.Set(rec, "color", "Test Color"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := b.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := b.Save(ctx, rec); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	data, err := os.ReadFile(b.jsonlPath(b.config.DataDir))
	if err != nil {
		t.Fatalf("read records.jsonl: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line in JSONL, got %d", len(lines))
	}

	var got types.Record
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("decode line: %v", err)
	}
	if got.RecordID != rec.RecordID {
		t.Errorf("record_id = %q, want %q", got.RecordID, rec.RecordID)
	}
	if v := got.Carriers["options"]["color"]; v != "Test Color" {
		t.Errorf("options.color = %q, want %q", v, "Test Color")
	}
}

func TestDeletePersistedToJSONL(t *testing.T) {
	ctx := context.Background()
	b := attached(t, types.Config{})

	rec := types.NewRecord("")
	if err := b.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := b.Delete(ctx, rec.RecordID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	data, err := os.ReadFile(b.jsonlPath(b.config.DataDir))
	if err != nil {
		t.Fatalf("read records.jsonl: %v", err)
	}
	if len(strings.TrimSpace(string(data))) != 0 {
		t.Errorf("expected empty JSONL after delete, got %q", data)
	}
}

func TestDataPersistsAcrossAttach(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}
	s := productSchema(t)

	b := NewBackend(cfg, s, nil)
	if err := b.Attach(ctx); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	rec := types.NewRecord("")
	if err := s.Set(rec, "tags", []string{"tag1", "tag2"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := b.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}

	b2 := NewBackend(cfg, s, nil)
	if err := b2.Attach(ctx); err != nil {
		t.Fatalf("re-Attach failed: %v", err)
	}
	defer b2.Detach()

	got, err := b2.Get(ctx, rec.RecordID)
	if err != nil {
		t.Fatalf("Get after re-Attach failed: %v", err)
	}
	tags, err := s.Get(got, "tags")
	if err != nil {
		t.Fatalf("reading tags: %v", err)
	}
	if want := []string{"tag1", "tag2"}; strings.Join(tags.([]string), ",") != strings.Join(want, ",") {
		t.Errorf("tags = %v, want %v", tags, want)
	}
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	content := `{"record_id":"r1","carriers":{"options":{"color":"red"}},"created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}
not json at all
{"carriers":{"options":{"color":"no id"}}}

{"record_id":"r2","carriers":{"options":{"price":"5"}},"created_at":"2024-01-02T00:00:00Z","updated_at":"2024-01-02T00:00:00Z"}
`
	if err := os.WriteFile(filepath.Join(dir, "records.jsonl"), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	b := attached(t, types.Config{DataDir: dir})
	recs, err := b.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].RecordID != "r1" || recs[1].RecordID != "r2" {
		t.Errorf("unexpected IDs %s, %s", recs[0].RecordID, recs[1].RecordID)
	}
}

func TestWriteJSONLAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")
	lines := []json.RawMessage{json.RawMessage(`{"a":1}`), json.RawMessage(`{"b":2}`)}

	if err := writeJSONL(path, lines); err != nil {
		t.Fatalf("writeJSONL failed: %v", err)
	}
	got, err := readJSONL(path)
	if err != nil {
		t.Fatalf("readJSONL failed: %v", err)
	}
	if len(got) != 2 || string(got[1]) != `{"b":2}` {
		t.Errorf("round trip mismatch: %s", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only out.jsonl in dir, found %d entries", len(entries))
	}
}
