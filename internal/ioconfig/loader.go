// Package ioconfig reads configuration from the config file and
// GNCAT_ environment variables.
package ioconfig

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/gnames/gncat/internal/iofs"
	"github.com/gnames/gncat/pkg/config"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override
// settings of the config file.
const EnvPrefix = "GNCAT"

// Load reads the config file at path and environment variables and
// returns a default Config updated with the persistent fields found.
// A missing config file is not an error, in that case only environment
// variables are used.
func Load(path string) (*config.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	bindEnvVars(v)

	err := v.ReadInConfig()
	if err != nil && !isNotExist(err) {
		return nil, iofs.ReadFileError(path, err)
	}

	var loaded config.Config
	if err = v.Unmarshal(&loaded); err != nil {
		return nil, iofs.ReadFileError(path, err)
	}

	res := config.New()
	res.Update(loaded.ToOptions())
	return res, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
}

// bindEnvVars binds allowed environment variables explicitly. They match
// the fields of config.ToOptions.
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	keys := []string{
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.database",
		"database.ssl_mode",
		"database.batch_size",

		"import.default_code",
		"import.default_gazetteer",
		"import.keep_cache",

		"sync.workers",
		"sync.index_batch_size",
		"sync.schedule",
		"sync.merge_override",

		"metrics.addr",

		"log.level",
		"log.format",
		"log.destination",

		"jobs_number",
	}
	for _, k := range keys {
		env := strings.ToUpper(strings.ReplaceAll(k, ".", "_"))
		_ = v.BindEnv(k, EnvPrefix+"_"+env)
	}
}
