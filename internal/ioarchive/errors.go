package ioarchive

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gncat/pkg/errcode"
)

func FetchError(path string, err error) error {
	msg := `Cannot fetch archive <em>%s</em>

<em>How to fix:</em>
  1. Check that the path or URL exists
  2. Supported formats are .sql, .sqlite and their .zip versions`
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.ArchiveFetchError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: fetch %s: %w", fn, path, err),
	}
}

func OpenError(path string, err error) error {
	msg := "Cannot open SQLite database <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.ArchiveOpenError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: open %s: %w", fn, path, err),
	}
}

func ReadError(table string, err error) error {
	msg := "Cannot read archive table <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.ArchiveReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: read %s: %w", fn, table, err),
	}
}
