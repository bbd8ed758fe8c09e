// Package config provides configuration management for gncat.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Database: host, port, user, password, database, ssl_mode, batch_size
//   - Log: level, format, destination
//   - Import: default_code, default_gazetteer, keep_cache
//   - Sync: workers, index_batch_size, schedule, merge_override
//   - Metrics: addr
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use GNCAT_ prefix with underscores for nesting:
//
//	GNCAT_DATABASE_HOST=localhost
//	GNCAT_DATABASE_PORT=5432
//	GNCAT_SYNC_WORKERS=4
//	GNCAT_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete gncat configuration.
type Config struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Import contains dataset-wide interpretation settings.
	Import ImportConfig `mapstructure:"import" yaml:"import"`

	// Sync contains sector synchronization settings.
	Sync SyncConfig `mapstructure:"sync" yaml:"sync"`

	// Metrics contains settings of the prometheus endpoint.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for record
	// interpretation. Default value is set according to the number of
	// available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize defines the number of records written per batch when a
	// dataset partition is persisted.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// ImportConfig contains dataset-wide settings used by the record
// interpreter.
type ImportConfig struct {
	// DefaultCode is the nomenclatural code used when a record does not
	// provide one. Valid values: "botanical", "zoological", "bacterial",
	// "virus", "unknown".
	DefaultCode string `mapstructure:"default_code" yaml:"default_code"`

	// DefaultGazetteer is used for distribution areas without an explicit
	// gazetteer prefix. Valid values: "text", "iso", "tdwg", "fao",
	// "longhurst", "mrgid", "iho".
	DefaultGazetteer string `mapstructure:"default_gazetteer" yaml:"default_gazetteer"`

	// KeepCache keeps downloaded and extracted archives in the cache
	// directory after an import.
	KeepCache bool `mapstructure:"keep_cache" yaml:"keep_cache"`
}

// SyncConfig contains sector synchronization settings.
type SyncConfig struct {
	// Workers is the maximum number of sectors synchronized in parallel.
	Workers int `mapstructure:"workers" yaml:"workers"`

	// IndexBatchSize is the number of usages sent to the search index in
	// one upsert or delete call.
	IndexBatchSize int `mapstructure:"index_batch_size" yaml:"index_batch_size"`

	// Schedule is a cron specification used by the watch command.
	Schedule string `mapstructure:"schedule" yaml:"schedule"`

	// MergeOverride determines which fields of a subject usage a MERGE
	// decision is allowed to replace. Valid values: "all", "names",
	// "status".
	MergeOverride string `mapstructure:"merge_override" yaml:"merge_override"`
}

// MetricsConfig contains settings of the metrics endpoint.
type MetricsConfig struct {
	// Addr is the listen address of the prometheus endpoint used by the
	// watch command, for example ":9090".
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "gncat",
			SSLMode:   "disable",
			BatchSize: 50_000,
		},
		Import: ImportConfig{
			DefaultCode:      "zoological",
			DefaultGazetteer: "text",
		},
		Sync: SyncConfig{
			Workers:        2,
			IndexBatchSize: 1_000,
			Schedule:       "@daily",
			MergeOverride:  "all",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
