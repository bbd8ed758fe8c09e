// Package iotesting provides shared utilities for integration tests.
package iotesting

import (
	"os"

	"github.com/gnames/gncat/internal/ioconfig"
	"github.com/gnames/gncat/pkg/config"
)

// TestDatabaseName is the database used by all integration tests. It
// keeps tests away from production databases.
const TestDatabaseName = "gncat_test"

// GetTestConfig loads the standard configuration (config file of the
// user and GNCAT_ environment variables) and forces the database name
// to TestDatabaseName.
func GetTestConfig() *config.Config {
	cfg := config.New()
	if home, err := os.UserHomeDir(); err == nil {
		path := config.ConfigFilePath(home)
		if loaded, err := ioconfig.Load(path); err == nil {
			cfg = loaded
		}
	}
	cfg.Database.Database = TestDatabaseName
	return cfg
}

// GetTestDatabaseConfig returns only the database part of GetTestConfig.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := GetTestConfig()
	return &cfg.Database
}
