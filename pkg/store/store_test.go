package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gnames/gncat/pkg/store"
	"github.com/stretchr/testify/assert"
)

func TestConflictError(t *testing.T) {
	cause := errors.New("duplicate key value")
	err := fmt.Errorf("writing usage: %w",
		&store.ConflictError{Table: "name_usage", Key: "t1", Err: cause})

	assert.True(t, store.IsConflict(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "name_usage")
	assert.False(t, store.IsConflict(store.ErrNotFound))
}
