package sector

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gncat/pkg/errcode"
)

func SectorNotFoundError(key int, err error) error {
	msg := "Sector <em>%d</em> does not exist"
	vars := []any{key}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.SectorNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot load sector %d: %w", fn, key, err),
	}
}

func RootMissingError(key int, role, id string, dataset int, err error) error {
	msg := "Sector <em>%d</em> is broken: %s root <em>%s</em> " +
		"is missing in dataset %d"
	vars := []any{key, role, id, dataset}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.SectorRootMissingError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: %s root %q of sector %d: %w",
			fn, role, id, key, err),
	}
}

func StateError(key int, from, to State) error {
	msg := "Sector <em>%d</em> cannot move from %s to %s"
	vars := []any{key, from, to}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.SectorStateError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: illegal transition %s -> %s",
			fn, from, to),
	}
}

func RepositoryError(key int, err error) error {
	msg := "Cannot save sync state of sector <em>%d</em>"
	vars := []any{key}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.SectorRepositoryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: sector %d: %w", fn, key, err),
	}
}

func StoreError(key int, id string, err error) error {
	msg := "Cannot write usage <em>%s</em> of sector <em>%d</em>"
	vars := []any{id, key}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.StoreWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: usage %q: %w", fn, id, err),
	}
}
