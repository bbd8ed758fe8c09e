package sector_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/gnames/gncat/pkg/sector"
	"github.com/gnames/gncat/pkg/store"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintTree(t *testing.T) {
	ctx := context.Background()
	ms, idx := newFixture(t)
	runSync(t, newFactory(ms, idx), 1, nil)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)

	var buf bytes.Buffer
	err := sector.PrintTree(ctx, &buf, ms, draftKey, "cole")
	require.NoError(t, err)
	g.Assert(t, "coleoptera", buf.Bytes())

	buf.Reset()
	err = sector.PrintTree(ctx, &buf, ms, sourceKey, "t16")
	require.NoError(t, err)
	g.Assert(t, "coccinella", buf.Bytes())

	err = sector.PrintTree(ctx, &buf, ms, sourceKey, "t99")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
