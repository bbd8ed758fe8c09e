package coord_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gnames/gncat/internal/memstore"
	"github.com/gnames/gncat/pkg/coord"
	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	draftKey  = 3
	sourceKey = 11
)

// gate holds every usage lookup until it is opened.
type gate struct {
	*memstore.Store
	open    chan struct{}
	arrived chan string
}

func (g *gate) Usage(ctx context.Context, datasetKey int, id string) (*model.Usage, error) {
	select {
	case g.arrived <- id:
	default:
	}
	<-g.open
	return g.Store.Usage(ctx, datasetKey, id)
}

func (g *gate) wait(t *testing.T, n int) {
	t.Helper()
	for range n {
		select {
		case <-g.arrived:
		case <-time.After(5 * time.Second):
			t.Fatal("sync did not start")
		}
	}
}

type observer struct {
	mu       sync.Mutex
	active   int
	max      int
	finished map[int][]sector.State
}

func (o *observer) SyncStarted(int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active++
	o.max = max(o.max, o.active)
}

func (o *observer) SyncFinished(key int, st sector.State, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active--
	o.finished[key] = append(o.finished[key], st)
}

func (o *observer) QueueSize(int) {}

func usage(datasetKey int, id, parent, name string, rank model.Rank) *model.Usage {
	return &model.Usage{
		ID:         id,
		DatasetKey: datasetKey,
		Kind:       model.TaxonKind,
		Status:     model.StatusAccepted,
		ParentID:   parent,
		Name: model.Name{
			ID:             "n-" + id,
			DatasetKey:     datasetKey,
			ScientificName: name,
			Canonical:      name,
			Rank:           rank,
		},
	}
}

// setup creates two source genera, a draft root and sectors 1 and 2
// that attach the genera to the root.
func setup(t *testing.T, workers int) (*coord.Coordinator, *memstore.Store, *gate, *observer) {
	t.Helper()
	ctx := context.Background()
	ms := memstore.New()
	recs := []*model.Usage{
		usage(sourceKey, "g1", "", "Carabus", model.Genus),
		usage(sourceKey, "s1", "g1", "Carabus nemoralis", model.Species),
		usage(sourceKey, "s2", "g1", "Carabus auratus", model.Species),
		usage(sourceKey, "g2", "", "Cicindela", model.Genus),
		usage(sourceKey, "s3", "g2", "Cicindela hybrida", model.Species),
		usage(draftKey, "top", "", "Carabidae", model.Family),
	}
	for _, v := range recs {
		require.NoError(t, ms.CreateUsage(ctx, v, model.Attachments{}))
	}
	for i, id := range []string{"g1", "g2"} {
		require.NoError(t, ms.SaveSector(ctx, &sector.Sector{
			Key:               i + 1,
			SubjectDatasetKey: sourceKey,
			SubjectID:         id,
			TargetDatasetKey:  draftKey,
			TargetID:          "top",
			Mode:              sector.Attach,
		}))
	}

	g := &gate{
		Store:   ms,
		open:    make(chan struct{}),
		arrived: make(chan string, 100),
	}
	obs := &observer{finished: make(map[int][]sector.State)}
	f := sector.NewFactory(ms, g, memstore.NewIndex())
	c := coord.New(ctx, f, workers, obs)
	t.Cleanup(func() {
		select {
		case <-g.open:
		default:
			close(g.open)
		}
		c.Wait()
	})
	return c, ms, g, obs
}

func states(t *testing.T, ms *memstore.Store, key int) []sector.State {
	t.Helper()
	imps, err := ms.Imports(context.Background(), key)
	require.NoError(t, err)
	res := make([]sector.State, len(imps))
	for i, v := range imps {
		res[i] = v.State
	}
	return res
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	c, ms, g, obs := setup(t, 2)
	close(g.open)

	imp, err := c.Sync(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sector.Waiting, imp.State)
	assert.Equal(t, 1, imp.Attempt)
	assert.NotEmpty(t, imp.RunID)
	c.Wait()

	last, err := ms.LastImport(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sector.Finished, last.State)
	assert.Equal(t, 3, last.Counters.Copied.Taxa)
	assert.Equal(t, []sector.State{sector.Finished}, obs.finished[1])

	_, err = c.Sync(ctx, 42)
	assert.Error(t, err)

	imp, err = c.DeleteSector(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, imp.Attempt)
	c.Wait()
	_, err = ms.Sector(ctx, 1)
	assert.Error(t, err)
}

func TestQueue(t *testing.T) {
	ctx := context.Background()
	c, ms, g, _ := setup(t, 2)

	first, err := c.Sync(ctx, 1)
	require.NoError(t, err)
	g.wait(t, 1)

	second, err := c.Sync(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Attempt)

	// a request for a queued sector collapses into the queued attempt
	third, err := c.Sync(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, second.Attempt, third.Attempt)
	assert.Equal(t, second.RunID, third.RunID)

	_, err = c.DeleteSector(ctx, 1)
	assert.Error(t, err)

	st := c.Status()
	require.Len(t, st.Running, 1)
	require.Len(t, st.Queued, 1)
	assert.Equal(t, first.Attempt, st.Running[0].Attempt)
	assert.Equal(t, sector.Waiting, st.Queued[0].State)

	close(g.open)
	c.Wait()
	assert.Equal(t,
		[]sector.State{sector.Finished, sector.Finished}, states(t, ms, 1))

	st = c.Status()
	assert.Empty(t, st.Running)
	assert.Empty(t, st.Queued)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	c, ms, g, _ := setup(t, 2)

	_, err := c.Sync(ctx, 1)
	require.NoError(t, err)
	g.wait(t, 1)
	_, err = c.Sync(ctx, 1)
	require.NoError(t, err)

	assert.True(t, c.Cancel(1))
	assert.Empty(t, c.Status().Queued)

	close(g.open)
	c.Wait()
	assert.Equal(t,
		[]sector.State{sector.Canceled, sector.Canceled}, states(t, ms, 1))
	assert.False(t, c.Cancel(1))

	usages, err := ms.SectorUsages(ctx, draftKey, 1)
	require.NoError(t, err)
	assert.Empty(t, usages)
}

func TestLockDataset(t *testing.T) {
	ctx := context.Background()
	c, _, g, _ := setup(t, 2)

	_, err := c.Sync(ctx, 1)
	require.NoError(t, err)
	g.wait(t, 1)

	assert.True(t, c.IsBusy(draftKey))
	assert.True(t, c.IsBusy(sourceKey))
	assert.False(t, c.IsBusy(99))

	_, err = c.LockDataset(draftKey)
	assert.True(t, coord.IsDatasetBusy(err))

	close(g.open)
	c.Wait()
	assert.False(t, c.IsBusy(draftKey))

	unlock, err := c.LockDataset(sourceKey)
	require.NoError(t, err)

	_, err = c.LockDataset(sourceKey)
	assert.True(t, coord.IsDatasetLocked(err))
	_, err = c.Sync(ctx, 2)
	assert.True(t, coord.IsDatasetLocked(err))

	unlock()
	unlock()
	_, err = c.Sync(ctx, 2)
	require.NoError(t, err)
	c.Wait()
}

func TestWorkers(t *testing.T) {
	tests := []struct {
		msg     string
		workers int
		arrived int
		max     int
	}{
		{"one worker", 1, 1, 1},
		{"two workers", 2, 2, 2},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			ctx := context.Background()
			c, ms, g, obs := setup(t, v.workers)
			for _, key := range []int{1, 2} {
				_, err := c.Sync(ctx, key)
				require.NoError(t, err)
			}
			g.wait(t, v.arrived)
			close(g.open)
			c.Wait()

			assert.Equal(t, v.max, obs.max)
			for _, key := range []int{1, 2} {
				assert.Equal(t,
					[]sector.State{sector.Finished}, states(t, ms, key))
			}
		})
	}
}
