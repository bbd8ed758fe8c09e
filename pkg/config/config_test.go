package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gnames/gncat/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "gncat"),
		},
		{
			msg: "cache dir",
			fn:  config.CacheDir,
			res: filepath.Join(tempHome, ".cache", "gncat"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "gncat", "logs"),
		},
		{
			msg: "sources file",
			fn:  config.SourcesFilePath,
			res: filepath.Join(tempHome, ".config", "gncat", "sources.yaml"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()

	t.Run("creates valid default config", func(t *testing.T) {
		require.NotNil(t, cfg)

		// Database defaults
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "gncat", cfg.Database.Database)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 50_000, cfg.Database.BatchSize)

		// Import defaults
		assert.Equal(t, "zoological", cfg.Import.DefaultCode)
		assert.Equal(t, "text", cfg.Import.DefaultGazetteer)
		assert.False(t, cfg.Import.KeepCache)

		// Sync defaults
		assert.Equal(t, 2, cfg.Sync.Workers)
		assert.Equal(t, 1_000, cfg.Sync.IndexBatchSize)
		assert.Equal(t, "@daily", cfg.Sync.Schedule)
		assert.Equal(t, "all", cfg.Sync.MergeOverride)

		// Log defaults
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "file", cfg.Log.Destination)

		assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
	})
}

func TestOptionDatabaseHost(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "sets valid host",
			input:    "db.example.com",
			expected: "db.example.com",
		},
		{
			name:     "trims whitespace",
			input:    "  db.example.com  ",
			expected: "db.example.com",
		},
		{
			name:     "ignores empty string",
			input:    "",
			expected: "localhost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptDatabaseHost(tt.input)})
			assert.Equal(t, tt.expected, cfg.Database.Host)
		})
	}
}

func TestOptionImportDefaultCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sets botanical", "botanical", "botanical"},
		{"normalizes case", "  Bacterial ", "bacterial"},
		{"ignores unknown value", "cultivars", "zoological"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptImportDefaultCode(tt.input)})
			assert.Equal(t, tt.expected, cfg.Import.DefaultCode)
		})
	}
}

func TestOptionImportDefaultGazetteer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sets tdwg", "tdwg", "tdwg"},
		{"sets iso", "ISO", "iso"},
		{"ignores unknown value", "geonames", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptImportDefaultGazetteer(tt.input)})
			assert.Equal(t, tt.expected, cfg.Import.DefaultGazetteer)
		})
	}
}

func TestOptionSync(t *testing.T) {
	t.Run("workers", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{config.OptSyncWorkers(8)})
		assert.Equal(t, 8, cfg.Sync.Workers)

		cfg.Update([]config.Option{config.OptSyncWorkers(0)})
		assert.Equal(t, 8, cfg.Sync.Workers)
	})

	t.Run("merge override", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{config.OptSyncMergeOverride("Names")})
		assert.Equal(t, "names", cfg.Sync.MergeOverride)

		cfg.Update([]config.Option{config.OptSyncMergeOverride("authors")})
		assert.Equal(t, "names", cfg.Sync.MergeOverride)
	})

	t.Run("schedule", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{config.OptSyncSchedule("0 3 * * *")})
		assert.Equal(t, "0 3 * * *", cfg.Sync.Schedule)

		cfg.Update([]config.Option{config.OptSyncSchedule(" ")})
		assert.Equal(t, "0 3 * * *", cfg.Sync.Schedule)
	})
}

func TestOptionLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sets debug", "debug", "debug"},
		{"normalizes case", "WARN", "warn"},
		{"ignores invalid", "trace", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptLogLevel(tt.input)})
			assert.Equal(t, tt.expected, cfg.Log.Level)
		})
	}
}

func TestToOptions(t *testing.T) {
	src := config.New()
	src.Update([]config.Option{
		config.OptDatabaseHost("db.example.com"),
		config.OptDatabaseBatchSize(10),
		config.OptImportDefaultCode("botanical"),
		config.OptImportKeepCache(true),
		config.OptSyncWorkers(5),
		config.OptSyncIndexBatchSize(20),
		config.OptMetricsAddr(":9999"),
		config.OptJobsNumber(3),
		config.OptHomeDir("/tmp/home"),
	})

	dst := config.New()
	dst.Update(src.ToOptions())

	assert.Equal(t, "db.example.com", dst.Database.Host)
	assert.Equal(t, 10, dst.Database.BatchSize)
	assert.Equal(t, "botanical", dst.Import.DefaultCode)
	assert.True(t, dst.Import.KeepCache)
	assert.Equal(t, 5, dst.Sync.Workers)
	assert.Equal(t, 20, dst.Sync.IndexBatchSize)
	assert.Equal(t, ":9999", dst.Metrics.Addr)
	assert.Equal(t, 3, dst.JobsNumber)
	assert.Empty(t, dst.HomeDir, "HomeDir is runtime-only")
}
