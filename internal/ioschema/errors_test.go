package ioschema

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gncat/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	cause := errors.New("permission denied")
	tests := []struct {
		msg  string
		err  error
		code gn.ErrorCode
		vars int
	}{
		{"gorm", GORMConnectionError(cause), errcode.SchemaGORMConnectionError, 0},
		{"create", CreateSchemaError(cause), errcode.SchemaCreateError, 0},
		{"migrate", MigrateSchemaError(cause), errcode.SchemaMigrateError, 0},
		{"partition", PartitionTableError("name", cause), errcode.SchemaPartitionError, 1},
		{"collation", CollationError("name", "canonical", cause), errcode.SchemaCollationError, 2},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			var gnErr *gn.Error
			require.True(t, errors.As(v.err, &gnErr))
			assert.Equal(t, v.code, gnErr.Code)
			assert.NotEmpty(t, gnErr.Msg)
			assert.Len(t, gnErr.Vars, v.vars)
			assert.ErrorIs(t, gnErr.Err, cause)
		})
	}

	var gnErr *gn.Error
	require.True(t, errors.As(NotConnectedError(), &gnErr))
	assert.Equal(t, errcode.DBNotConnectedError, gnErr.Code)
}
