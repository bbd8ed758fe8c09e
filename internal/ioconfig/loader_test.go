package ioconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gncat/internal/ioconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `database:
  host: db.example.org
  port: 5433
sync:
  workers: 4
  merge_override: names
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	tests := []struct {
		msg     string
		path    string
		env     map[string]string
		host    string
		port    int
		workers int
		policy  string
	}{
		{"file", path, nil, "db.example.org", 5433, 4, "names"},
		{"missing file", filepath.Join(dir, "none.yaml"), nil,
			"localhost", 5432, 2, "all"},
		{"env wins", path,
			map[string]string{
				"GNCAT_DATABASE_HOST": "pg",
				"GNCAT_SYNC_WORKERS":  "8",
			},
			"pg", 5433, 8, "names"},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			for k, val := range v.env {
				t.Setenv(k, val)
			}
			cfg, err := ioconfig.Load(v.path)
			require.NoError(t, err)
			assert.Equal(t, v.host, cfg.Database.Host)
			assert.Equal(t, v.port, cfg.Database.Port)
			assert.Equal(t, v.workers, cfg.Sync.Workers)
			assert.Equal(t, v.policy, cfg.Sync.MergeOverride)
		})
	}
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [\n"), 0644))
	_, err := ioconfig.Load(path)
	assert.Error(t, err)
}
