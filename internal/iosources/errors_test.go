package iosources_test

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gncat/internal/iosources"
	"github.com/gnames/gncat/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	orig := errors.New("boom")
	tests := []struct {
		msg  string
		err  error
		code gn.ErrorCode
		vars int
	}{
		{"config", iosources.SourcesConfigError("/test/sources.yaml", orig),
			errcode.SourcesConfigError, 2},
		{"save", iosources.SourcesSaveError("sector", 5, orig),
			errcode.SourcesSaveError, 2},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			var gnErr *gn.Error
			require.True(t, errors.As(v.err, &gnErr))
			assert.Equal(t, v.code, gnErr.Code)
			assert.NotEmpty(t, gnErr.Msg)
			assert.Len(t, gnErr.Vars, v.vars)
			assert.ErrorIs(t, gnErr.Err, orig)
		})
	}
}
