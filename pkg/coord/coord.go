// Package coord serializes sector syncs. Runs of the same sector never
// overlap, runs of different sectors share a limited number of workers,
// and datasets that are being reimported are kept away from syncs.
package coord

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gnames/gncat/pkg/sector"
	"github.com/gnames/gnfmt"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Token is a cooperative cancel flag shared with a running sync.
type Token struct {
	atomic.Bool
}

// Cancel asks the sync to stop at the next usage.
func (t *Token) Cancel() {
	t.Store(true)
}

// Canceled reports if Cancel was called.
func (t *Token) Canceled() bool {
	return t.Load()
}

// Observer receives coordinator events.
type Observer interface {
	SyncStarted(sectorKey int)
	SyncFinished(sectorKey int, state sector.State, d time.Duration)
	QueueSize(n int)
}

type nopObserver struct{}

func (nopObserver) SyncStarted(int)                                {}
func (nopObserver) SyncFinished(int, sector.State, time.Duration) {}
func (nopObserver) QueueSize(int)                                  {}

type job struct {
	key      int
	del      bool
	datasets []int
	sync     *sector.Synchronizer
	token    *Token
}

// Status lists attempts that are running or waiting.
type Status struct {
	Running []*sector.SectorImport `json:"running"`
	Queued  []*sector.SectorImport `json:"queued"`
}

// Coordinator runs sector syncs on a fixed number of workers.
type Coordinator struct {
	ctx     context.Context
	factory *sector.Factory
	sem     *semaphore.Weighted
	obs     Observer

	mu      sync.Mutex
	running map[int]*job
	queued  map[int]*job
	locked  map[int]bool
	wg      sync.WaitGroup
}

// New creates a Coordinator. Runs use ctx, canceling it cancels all of
// them. A nil observer is allowed.
func New(
	ctx context.Context,
	factory *sector.Factory,
	workers int,
	obs Observer,
) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Coordinator{
		ctx:     ctx,
		factory: factory,
		sem:     semaphore.NewWeighted(int64(workers)),
		obs:     obs,
		running: make(map[int]*job),
		queued:  make(map[int]*job),
		locked:  make(map[int]bool),
	}
}

// Sync schedules a sync of a sector and returns its attempt in WAITING
// state. If the sector is running already the request is queued, and a
// request for a sector with a queued sync returns that queued attempt.
func (c *Coordinator) Sync(ctx context.Context, sectorKey int) (*sector.SectorImport, error) {
	return c.submit(ctx, sectorKey, false)
}

// DeleteSector schedules removal of a sector and its copied usages.
func (c *Coordinator) DeleteSector(ctx context.Context, sectorKey int) (*sector.SectorImport, error) {
	return c.submit(ctx, sectorKey, true)
}

func (c *Coordinator) submit(
	ctx context.Context,
	sectorKey int,
	del bool,
) (*sector.SectorImport, error) {
	sec, err := c.factory.Repository().Sector(ctx, sectorKey)
	if err != nil {
		return nil, sector.SectorNotFoundError(sectorKey, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if q, ok := c.queued[sectorKey]; ok {
		if q.del != del {
			return nil, fmt.Errorf("sector %d has a different queued request",
				sectorKey)
		}
		return q.sync.Import(), nil
	}
	for _, ds := range sec.Datasets() {
		if c.locked[ds] {
			return nil, DatasetLockedError(ds, sectorKey)
		}
	}

	req := sector.Request{
		SectorKey: sectorKey,
		RunID:     uuid.NewString(),
		OnSuccess: onSuccess,
		OnError:   onError,
	}
	var s *sector.Synchronizer
	if del {
		s, err = c.factory.NewDelete(ctx, req)
	} else {
		s, err = c.factory.NewSync(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	j := &job{
		key:      sectorKey,
		del:      del,
		datasets: sec.Datasets(),
		sync:     s,
		token:    &Token{},
	}
	if _, ok := c.running[sectorKey]; ok {
		c.queued[sectorKey] = j
		c.obs.QueueSize(len(c.queued))
		slog.Info("Sector sync queued", "sector", sectorKey)
	} else {
		c.start(j)
	}
	return s.Import(), nil
}

func onSuccess(imp *sector.SectorImport) {
	slog.Info("Sector sync finished",
		"sector", imp.SectorKey,
		"attempt", imp.Attempt,
		"duration", gnfmt.TimeString(imp.Duration().Seconds()),
	)
}

func onError(imp *sector.SectorImport, err error) {
	slog.Error("Sector sync finished with error",
		"sector", imp.SectorKey,
		"attempt", imp.Attempt,
		"error", err,
	)
}

// start runs a job. It must be called with the lock held.
func (c *Coordinator) start(j *job) {
	c.running[j.key] = j
	c.wg.Add(1)
	go c.run(j)
}

func (c *Coordinator) run(j *job) {
	defer c.wg.Done()

	if err := c.sem.Acquire(c.ctx, 1); err != nil {
		// the coordinator is shutting down, the run cancels right away
		j.token.Cancel()
	} else {
		defer c.sem.Release(1)
	}

	c.obs.SyncStarted(j.key)
	imp, _ := j.sync.Run(c.ctx, j.token)
	c.obs.SyncFinished(j.key, imp.State, imp.Duration())

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.running, j.key)
	if next, ok := c.queued[j.key]; ok {
		delete(c.queued, j.key)
		c.obs.QueueSize(len(c.queued))
		c.start(next)
	}
}

// Cancel stops the running and the queued attempt of a sector. It
// returns false if there was nothing to cancel.
func (c *Coordinator) Cancel(sectorKey int) bool {
	c.mu.Lock()
	r, running := c.running[sectorKey]
	q, queued := c.queued[sectorKey]
	if running {
		r.token.Cancel()
	}
	if queued {
		delete(c.queued, sectorKey)
		c.obs.QueueSize(len(c.queued))
	}
	c.mu.Unlock()

	if queued {
		if err := q.sync.Abort(context.WithoutCancel(c.ctx)); err != nil {
			slog.Error("Cannot cancel queued sync",
				"sector", sectorKey, "error", err)
		}
	}
	return running || queued
}

// CancelAll stops all running and queued attempts.
func (c *Coordinator) CancelAll() int {
	c.mu.Lock()
	keys := make(map[int]struct{}, len(c.running)+len(c.queued))
	for k := range c.running {
		keys[k] = struct{}{}
	}
	for k := range c.queued {
		keys[k] = struct{}{}
	}
	c.mu.Unlock()

	var res int
	for k := range keys {
		if c.Cancel(k) {
			res++
		}
	}
	return res
}

// Status returns snapshots of running and queued attempts ordered by
// sector key.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Running: snapshots(c.running),
		Queued:  snapshots(c.queued),
	}
}

func snapshots(jobs map[int]*job) []*sector.SectorImport {
	res := make([]*sector.SectorImport, 0, len(jobs))
	for _, v := range jobs {
		res = append(res, v.sync.Import())
	}
	slices.SortFunc(res, func(a, b *sector.SectorImport) int {
		return cmp.Compare(a.SectorKey, b.SectorKey)
	})
	return res
}

// IsBusy checks if a running or queued sync uses the dataset.
func (c *Coordinator) IsBusy(datasetKey int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isBusy(datasetKey)
}

func (c *Coordinator) isBusy(datasetKey int) bool {
	for _, jobs := range []map[int]*job{c.running, c.queued} {
		for _, j := range jobs {
			if slices.Contains(j.datasets, datasetKey) {
				return true
			}
		}
	}
	return false
}

// LockDataset keeps syncs away from a dataset during its reimport. It
// fails if a sync uses the dataset or the dataset is locked already.
// The returned function releases the lock.
func (c *Coordinator) LockDataset(datasetKey int) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked[datasetKey] {
		return nil, DatasetLockedError(datasetKey, 0)
	}
	if c.isBusy(datasetKey) {
		return nil, DatasetBusyError(datasetKey)
	}
	c.locked[datasetKey] = true

	var once sync.Once
	unlock := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.locked, datasetKey)
			c.mu.Unlock()
		})
	}
	return unlock, nil
}

// Wait blocks until all running and queued attempts are done.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
