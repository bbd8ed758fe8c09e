package iooptimize

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gncat/pkg/errcode"
)

// NotConnectedError is returned when the operator has no pool.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Database connection lost",
		Err:  errors.New("pool is nil"),
	}
}

// OrphanRemovalError is returned when orphans of a table cannot be
// deleted.
func OrphanRemovalError(table string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()

	return &gn.Error{
		Code: errcode.OptimizeOrphanError,
		Msg:  "Failed to remove orphans from <em>%s</em>",
		Vars: []any{table},
		Err:  fmt.Errorf("from %s: delete %s: %w", fn, table, err),
	}
}

// VacuumError is returned when VACUUM ANALYZE of a table fails.
func VacuumError(table string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()

	return &gn.Error{
		Code: errcode.OptimizeVacuumError,
		Msg:  "Failed to run VACUUM ANALYZE on <em>%s</em>",
		Vars: []any{table},
		Err:  fmt.Errorf("from %s: vacuum %s: %w", fn, table, err),
	}
}
