// Package paths resolves where satchel keeps its configuration, its schema
// file and its data.
//
// Every location is the head of a chain: command-line flag, environment
// variable, config.yaml value, then a default. The first non-empty link wins
// and is returned as an absolute path.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultDataDirName is the data directory created in the working directory.
const DefaultDataDirName = ".satchel-db"

// File names inside the configuration directory.
const (
	ConfigFileName = "config.yaml"
	SchemaFileName = "schema.yaml"
)

// Environment variable overrides.
const (
	EnvConfigDir  = "SATCHEL_CONFIG_DIR"
	EnvDataDir    = "SATCHEL_DATA_DIR"
	EnvSchemaFile = "SATCHEL_SCHEMA_FILE"
)

// link is one candidate in a resolution chain. A relative value is taken
// from base, or from the working directory when base is empty.
type link struct {
	value string
	base  string
}

func fromCWD(v string) link { return link{value: v} }

func fromEnv(name string) link { return link{value: os.Getenv(name)} }

// resolve returns the first non-empty link as an absolute path, or the
// fallback when the chain is empty.
func resolve(fallback func() (string, error), chain ...link) (string, error) {
	for _, l := range chain {
		if l.value == "" {
			continue
		}
		if l.base != "" && !filepath.IsAbs(l.value) {
			return filepath.Abs(filepath.Join(l.base, l.value))
		}
		return filepath.Abs(l.value)
	}
	return fallback()
}

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/satchel (fallback ~/.config/satchel)
// macOS:   ~/Library/Application Support/satchel
// Windows: %APPDATA%/satchel
func DefaultConfigDir() (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "satchel"), nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "satchel"), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "satchel"), nil
}

// defaultDataDir is $(CWD)/.satchel-db, next to the project whose records it holds.
func defaultDataDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ResolveConfigDir follows --config-dir > SATCHEL_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	return resolve(DefaultConfigDir, fromCWD(flag), fromEnv(EnvConfigDir))
}

// ResolveDataDir follows --data-dir > data_dir > SATCHEL_DATA_DIR > $(CWD)/.satchel-db.
// The data_dir value is relative to the working directory.
func ResolveDataDir(flag, configValue string) (string, error) {
	return resolve(defaultDataDir, fromCWD(flag), fromCWD(configValue), fromEnv(EnvDataDir))
}

// ResolveSchemaFile follows --schema > SATCHEL_SCHEMA_FILE > schema_file >
// configDir/schema.yaml. A relative schema_file is taken from configDir, so a
// config directory can be moved together with its schema.
func ResolveSchemaFile(flag, configDir, configValue string) (string, error) {
	inConfigDir := func() (string, error) {
		return filepath.Abs(filepath.Join(configDir, SchemaFileName))
	}
	return resolve(inConfigDir,
		fromCWD(flag),
		fromEnv(EnvSchemaFile),
		link{value: configValue, base: configDir},
	)
}

// ConfigFile returns the config.yaml path inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}
