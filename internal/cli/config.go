package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/satchel/internal/paths"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyDSN           = "dsn"
	cfgKeyDriver        = "driver"
	cfgKeyTable         = "table"
	cfgKeySchemaFile    = "schema_file"
	cfgKeySyncStrategy  = "sync.strategy"
	cfgKeySyncBatchSize = "sync.batch_size"
	cfgKeySyncInterval  = "sync.batch_interval"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# satchel configuration

# Record store: sqlite or postgres.
backend: sqlite

# SQLite data directory (optional; overridable by --data-dir).
# data_dir:

# Postgres connection, used when backend is postgres.
# dsn: postgres://localhost/satchel?sslmode=disable
# driver: postgres   # or pgx

# Record table name.
table: records

# Field definitions, relative to this directory.
schema_file: schema.yaml

# When the SQLite backend rewrites records.jsonl: immediate, on_close or batch.
sync:
  strategy: immediate
  # batch_size: 100
  # batch_interval: 5
`

// defaultSchemaYAML is written to schema.yaml by init.
const defaultSchemaYAML = `# Fields packed into carrier columns. Each carrier maps field names to a
# data type (string, integer, float, decimal, boolean, date, datetime,
# array, hash) or to {data_type: ..., store_key: ...}.
carriers:
  attributes:
    name: string
`

// loadConfig reads config.yaml from configDir using Viper, creating the
// directory and a default config.yaml on first run. A missing config.yaml is
// not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeIfMissing(paths.ConfigFile(configDir), defaultConfigYAML); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyTable, types.DefaultTable)
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// storeConfig builds the store configuration. The data directory follows
// --data-dir > data_dir > SATCHEL_DATA_DIR > $(CWD)/.satchel-db.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.config.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	schemaFile, err := paths.ResolveSchemaFile(a.flags.schemaFile, a.configDir, a.config.GetString(cfgKeySchemaFile))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve schema file: %w", err)
	}
	cfg := types.Config{
		Backend:    a.config.GetString(cfgKeyBackend),
		DataDir:    dataDir,
		DSN:        a.config.GetString(cfgKeyDSN),
		Driver:     a.config.GetString(cfgKeyDriver),
		Table:      a.config.GetString(cfgKeyTable),
		SchemaFile: schemaFile,
		Sync: types.SyncConfig{
			Strategy:      a.config.GetString(cfgKeySyncStrategy),
			BatchSize:     a.config.GetInt(cfgKeySyncBatchSize),
			BatchInterval: a.config.GetInt(cfgKeySyncInterval),
		},
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config.yaml: %w", err)
	}
	return cfg, nil
}

// writeIfMissing creates path with content unless it already exists.
func writeIfMissing(path, content string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
