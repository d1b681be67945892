package types

import "errors"

// Config holds backend selection and parameters for a record store.
type Config struct {
	Backend    string `json:"backend" yaml:"backend"`
	DataDir    string `json:"data_dir" yaml:"data_dir"`
	DSN        string `json:"dsn" yaml:"dsn"`
	Driver     string `json:"driver" yaml:"driver"`
	Table      string `json:"table" yaml:"table"`
	SchemaFile string `json:"schema_file" yaml:"schema_file"`

	// Sync controls when the SQLite backend rewrites its JSONL file.
	Sync SyncConfig `json:"sync" yaml:"sync"`
}

// SyncConfig selects the JSONL persistence strategy of the SQLite backend.
type SyncConfig struct {
	Strategy      string `json:"strategy" yaml:"strategy"`
	BatchSize     int    `json:"batch_size" yaml:"batch_size"`
	BatchInterval int    `json:"batch_interval" yaml:"batch_interval"` // seconds
}

// Sync strategies.
const (
	SyncImmediate = "immediate"
	SyncOnClose   = "on_close"
	SyncBatch     = "batch"
)

// Batch defaults used when SyncConfig leaves them unset.
const (
	DefaultBatchSize     = 100
	DefaultBatchInterval = 5
)

// StrategyName returns the configured strategy or SyncImmediate.
func (s SyncConfig) StrategyName() string {
	if s.Strategy == "" {
		return SyncImmediate
	}
	return s.Strategy
}

// Size returns the batch size or DefaultBatchSize.
func (s SyncConfig) Size() int {
	if s.BatchSize == 0 {
		return DefaultBatchSize
	}
	return s.BatchSize
}

// Interval returns the batch interval in seconds or DefaultBatchInterval.
func (s SyncConfig) Interval() int {
	if s.BatchInterval == 0 {
		return DefaultBatchInterval
	}
	return s.BatchInterval
}

// Validate checks the strategy name and batch parameters.
func (s SyncConfig) Validate() error {
	switch s.StrategyName() {
	case SyncImmediate, SyncOnClose, SyncBatch:
	default:
		return ErrSyncStrategyUnknown
	}
	if s.BatchSize < 0 {
		return ErrBatchSizeInvalid
	}
	if s.BatchInterval < 0 {
		return ErrBatchIntervalInvalid
	}
	return nil
}

// Supported backend names.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Supported Postgres drivers.
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// DefaultTable is the record table used when Config.Table is empty.
const DefaultTable = "records"

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDriverUnknown  = errors.New("unknown postgres driver")
	ErrDSNEmpty       = errors.New("postgres backend requires a dsn")

	ErrSyncStrategyUnknown  = errors.New("unknown sync strategy")
	ErrBatchSizeInvalid     = errors.New("batch size must be positive")
	ErrBatchIntervalInvalid = errors.New("batch interval must be positive")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite:   true,
	BackendPostgres: true,
}

// Validate checks that the Config is well-formed and returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendSQLite {
		return c.Sync.Validate()
	}
	if c.Backend == BackendPostgres {
		if c.DSN == "" {
			return ErrDSNEmpty
		}
		switch c.Driver {
		case "", DriverPQ, DriverPGX:
		default:
			return ErrDriverUnknown
		}
	}
	return nil
}

// TableName returns the configured record table or DefaultTable.
func (c Config) TableName() string {
	if c.Table == "" {
		return DefaultTable
	}
	return c.Table
}

// DriverName returns the configured Postgres driver, defaulting to lib/pq.
func (c Config) DriverName() string {
	if c.Driver == "" {
		return DriverPQ
	}
	return c.Driver
}
