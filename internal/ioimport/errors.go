package ioimport

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gncat/pkg/errcode"
)

func DatasetBusyError(datasetKey int, err error) error {
	msg := `Dataset <em>%d</em> is used by a running sector sync

<em>How to fix:</em>
  1. Wait until the sync finishes
  2. Or cancel it with Ctrl-C in the 'gncat sync' session`
	vars := []any{datasetKey}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.ImportDatasetBusyError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: dataset %d: %w", fn, datasetKey, err),
	}
}

func DatasetError(datasetKey int, err error) error {
	msg := "Cannot read or update metadata of dataset <em>%d</em>"
	vars := []any{datasetKey}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.ImportDatasetError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: dataset %d: %w", fn, datasetKey, err),
	}
}

func InterpretError(path string, err error) error {
	msg := "Cannot read records of <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.ImportInterpretError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: records of %s: %w", fn, path, err),
	}
}

func PersistError(datasetKey int, err error) error {
	msg := `Cannot write dataset <em>%d</em>, previous data are kept

<em>How to fix:</em>
  1. Run 'gncat migrate' if tables are missing
  2. Check the log for duplicate or invalid records`
	vars := []any{datasetKey}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.ImportPersistError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: persist dataset %d: %w", fn, datasetKey, err),
	}
}
