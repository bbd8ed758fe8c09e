package lifecycle_test

import (
	"testing"

	"github.com/gnames/gncat/internal/iodb"
	"github.com/gnames/gncat/internal/ioimport"
	"github.com/gnames/gncat/internal/iooptimize"
	"github.com/gnames/gncat/internal/ioschema"
	"github.com/gnames/gncat/internal/memstore"
	"github.com/gnames/gncat/pkg/config"
	"github.com/gnames/gncat/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
)

func TestContracts(t *testing.T) {
	op := iodb.NewPgxOperator()
	st := memstore.New()

	var mgr lifecycle.SchemaManager = ioschema.NewManager(op)
	var imp lifecycle.Importer = ioimport.New(config.New(), st, st)
	var opt lifecycle.Optimizer = iooptimize.New(op)

	assert.NotNil(t, mgr)
	assert.NotNil(t, imp)
	assert.NotNil(t, opt)
}
