package iostore

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"github.com/gnames/gn"
	"github.com/gnames/gncat/pkg/errcode"
	"github.com/gnames/gncat/pkg/store"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

func NotConnectedError() error {
	msg := "Store operation attempted without database connection"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: %w", fn, errors.New("not connected")),
	}
}

func QueryError(table string, datasetKey int, err error) error {
	msg := "Cannot read <em>%s</em> of dataset %d"
	vars := []any{table, datasetKey}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.StoreQueryError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: query %s of dataset %d: %w",
			fn, table, datasetKey, err),
	}
}

// WriteError reports a failed write. Unique violations are returned as
// store.ConflictError so callers can tell them apart.
func WriteError(table, key string, datasetKey int, err error) error {
	if isUniqueViolation(err) {
		return &store.ConflictError{Table: table, Key: key, Err: err}
	}

	msg := "Cannot write <em>%s</em> of dataset %d"
	vars := []any{table, datasetKey}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.StoreWriteError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: write %s %q of dataset %d: %w",
			fn, table, key, datasetKey, err),
	}
}

func PartitionError(table string, datasetKey int, err error) error {
	if isUniqueViolation(err) {
		return &store.ConflictError{Table: table, Key: "dataset " +
			strconv.Itoa(datasetKey), Err: err}
	}

	msg := `Cannot replace partition of <em>%s</em> for dataset %d

<em>How to fix:</em>
  1. Make sure no other import of the dataset is running
  2. Run 'gncat migrate' if tables are missing`
	vars := []any{table, datasetKey}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.StorePartitionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: partition %s of dataset %d: %w",
			fn, table, datasetKey, err),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
