package coord

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gncat/pkg/errcode"
)

var (
	// ErrDatasetBusy means a sector sync uses the dataset.
	ErrDatasetBusy = errors.New("dataset is used by a sector sync")

	// ErrDatasetLocked means the dataset is being reimported.
	ErrDatasetLocked = errors.New("dataset is locked by an import")
)

// IsDatasetBusy checks if err reports a dataset used by a sync.
func IsDatasetBusy(err error) bool {
	return is(err, ErrDatasetBusy)
}

// IsDatasetLocked checks if err reports a dataset locked by an import.
func IsDatasetLocked(err error) bool {
	return is(err, ErrDatasetLocked)
}

func is(err, target error) bool {
	var gnErr *gn.Error
	if errors.As(err, &gnErr) {
		return errors.Is(gnErr.Err, target)
	}
	return errors.Is(err, target)
}

func DatasetBusyError(datasetKey int) error {
	msg := "Dataset <em>%d</em> is used by a running sector sync, " +
		"try again later"
	vars := []any{datasetKey}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.CoordDatasetBusyError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: dataset %d: %w",
			fn, datasetKey, ErrDatasetBusy),
	}
}

func DatasetLockedError(datasetKey, sectorKey int) error {
	msg := "Sector <em>%d</em> cannot sync while dataset <em>%d</em> " +
		"is being imported"
	vars := []any{sectorKey, datasetKey}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.CoordDatasetLockedError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: sector %d, dataset %d: %w",
			fn, sectorKey, datasetKey, ErrDatasetLocked),
	}
}
