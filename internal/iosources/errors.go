package iosources

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gncat/pkg/errcode"
)

// SourcesConfigError creates an error for when sources.yaml
// cannot be loaded.
func SourcesConfigError(path string, err error) error {
	msg := `Cannot load sources configuration

<em>Configuration file:</em> %s

<em>Possible causes:</em>
  - File does not exist
  - Invalid YAML format
  - Sectors or decisions refer to unknown datasets

<em>How to fix:</em>
  1. Check if file exists: <em>ls -l %s</em>
  2. Validate YAML syntax
  3. Recreate the example: remove the file and run <em>gncat</em>`

	vars := []any{path, path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.SourcesConfigError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: load %s: %w", fn, path, err),
	}
}

// SourcesSaveError creates an error for when an entry of sources.yaml
// cannot be stored in the database.
func SourcesSaveError(section string, key any, err error) error {
	msg := "Cannot save %s <em>%v</em>"
	vars := []any{section, key}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.SourcesSaveError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: save %s %v: %w", fn, section, key, err),
	}
}
