package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "mysql", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "sqlite with empty DataDir is valid at config level",
			config:  Config{Backend: "sqlite", DataDir: ""},
			wantErr: nil,
		},
		{
			name:    "postgres without dsn returns ErrDSNEmpty",
			config:  Config{Backend: "postgres"},
			wantErr: ErrDSNEmpty,
		},
		{
			name:    "postgres with unknown driver returns ErrDriverUnknown",
			config:  Config{Backend: "postgres", DSN: "postgres://localhost/db", Driver: "odbc"},
			wantErr: ErrDriverUnknown,
		},
		{
			name:    "sqlite with unknown sync strategy",
			config:  Config{Backend: "sqlite", Sync: SyncConfig{Strategy: "eventually"}},
			wantErr: ErrSyncStrategyUnknown,
		},
		{
			name:    "sqlite with negative batch size",
			config:  Config{Backend: "sqlite", Sync: SyncConfig{Strategy: SyncBatch, BatchSize: -1}},
			wantErr: ErrBatchSizeInvalid,
		},
		{
			name:    "sqlite with negative batch interval",
			config:  Config{Backend: "sqlite", Sync: SyncConfig{Strategy: SyncBatch, BatchInterval: -5}},
			wantErr: ErrBatchIntervalInvalid,
		},
		{
			name:    "sqlite with on_close strategy",
			config:  Config{Backend: "sqlite", Sync: SyncConfig{Strategy: SyncOnClose}},
			wantErr: nil,
		},
		{
			name:    "postgres with pgx driver",
			config:  Config{Backend: "postgres", DSN: "postgres://localhost/db", Driver: DriverPGX},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	if got := c.TableName(); got != DefaultTable {
		t.Errorf("TableName() = %q, want %q", got, DefaultTable)
	}
	if got := c.DriverName(); got != DriverPQ {
		t.Errorf("DriverName() = %q, want %q", got, DriverPQ)
	}
	c = Config{Table: "products", Driver: DriverPGX}
	if got := c.TableName(); got != "products" {
		t.Errorf("TableName() = %q, want products", got)
	}
	if got := c.DriverName(); got != DriverPGX {
		t.Errorf("DriverName() = %q, want %q", got, DriverPGX)
	}
}

func TestSyncConfigDefaults(t *testing.T) {
	var s SyncConfig
	if got := s.StrategyName(); got != SyncImmediate {
		t.Errorf("StrategyName() = %q, want %q", got, SyncImmediate)
	}
	if got := s.Size(); got != DefaultBatchSize {
		t.Errorf("Size() = %d, want %d", got, DefaultBatchSize)
	}
	if got := s.Interval(); got != DefaultBatchInterval {
		t.Errorf("Interval() = %d, want %d", got, DefaultBatchInterval)
	}
}
