package sector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gnames/gncat/pkg/dupes"
	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/store"
	"github.com/gnames/gnuuid"
)

var errCanceled = errors.New("sync canceled")

// TargetID returns the stable ID of a target usage copied from a subject
// usage by a sector.
func TargetID(sectorKey int, subjectID string) string {
	return gnuuid.New(fmt.Sprintf("%d:%s", sectorKey, subjectID)).String()
}

// Factory creates synchronizers that share storage and index.
type Factory struct {
	repo      Repository
	cls       store.Classification
	idx       Indexer
	batchSize int
	policy    OverridePolicy
}

// Option configures a Factory.
type Option func(*Factory)

// OptIndexBatchSize sets how many usages go into one index call.
func OptIndexBatchSize(i int) Option {
	return func(f *Factory) {
		if i > 0 {
			f.batchSize = i
		}
	}
}

// OptOverridePolicy sets which fields update decisions may replace.
func OptOverridePolicy(p OverridePolicy) Option {
	return func(f *Factory) {
		f.policy = p
	}
}

// NewFactory creates a Factory. The indexer may be nil.
func NewFactory(
	repo Repository,
	cls store.Classification,
	idx Indexer,
	opts ...Option,
) *Factory {
	res := &Factory{
		repo:      repo,
		cls:       cls,
		idx:       idx,
		batchSize: 1_000,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Repository returns the sector repository of the factory.
func (f *Factory) Repository() Repository {
	return f.repo
}

// Request describes a sync or delete run of a sector.
type Request struct {
	SectorKey int
	RunID     string

	// OnSuccess is called after a run reached FINISHED.
	OnSuccess func(*SectorImport)
	// OnError is called after a run reached FAILED.
	OnError func(*SectorImport, error)
}

// NewSync registers a new attempt in WAITING state and returns its
// synchronizer.
func (f *Factory) NewSync(ctx context.Context, req Request) (*Synchronizer, error) {
	return f.newRun(ctx, req, false)
}

// NewDelete registers an attempt that removes the copy of a sector from
// its target and then deletes the sector itself.
func (f *Factory) NewDelete(ctx context.Context, req Request) (*Synchronizer, error) {
	return f.newRun(ctx, req, true)
}

func (f *Factory) newRun(
	ctx context.Context,
	req Request,
	del bool,
) (*Synchronizer, error) {
	sec, err := f.repo.Sector(ctx, req.SectorKey)
	if err != nil {
		return nil, SectorNotFoundError(req.SectorKey, err)
	}

	imp := &SectorImport{
		SectorKey: sec.Key,
		RunID:     req.RunID,
		State:     Waiting,
	}
	if err = f.repo.CreateImport(ctx, imp); err != nil {
		return nil, RepositoryError(sec.Key, err)
	}
	if err = f.repo.SetSyncAttempt(ctx, sec.Key, imp.Attempt); err != nil {
		return nil, RepositoryError(sec.Key, err)
	}
	sec.SyncAttempt = imp.Attempt

	res := &Synchronizer{
		f:         f,
		sector:    sec,
		del:       del,
		onSuccess: req.OnSuccess,
		onError:   req.OnError,
		imp:       imp,
	}
	return res, nil
}

// Synchronizer runs one attempt of a sector sync.
type Synchronizer struct {
	f         *Factory
	sector    *Sector
	del       bool
	onSuccess func(*SectorImport)
	onError   func(*SectorImport, error)

	mu  sync.Mutex
	imp *SectorImport

	// state of the run, used by the running goroutine only
	root      *model.Usage
	prev      map[string]*model.Usage
	keep      map[string]string
	changes   []change
	touched   map[string]*model.Usage
	deleted   []string
	decisions map[string]Decision
	union     *dupes.Index
	indexed   map[string]bool
}

type change struct {
	usage *model.Usage
	att   model.Attachments
}

// Sector returns a copy of the synchronized sector.
func (s *Synchronizer) Sector() Sector {
	return *s.sector
}

// IsDelete is true for runs that remove a sector.
func (s *Synchronizer) IsDelete() bool {
	return s.del
}

// Import returns a snapshot of the current attempt.
func (s *Synchronizer) Import() *SectorImport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imp.Clone()
}

func (s *Synchronizer) update(fn func(*SectorImport)) {
	s.mu.Lock()
	fn(s.imp)
	s.mu.Unlock()
}

// Run executes the attempt: PREPARING, COPYING, RELINKING, INDEXING and
// finally FINISHED, FAILED or CANCELED. The canceler is polled between
// usages. A canceled run returns the import without an error.
func (s *Synchronizer) Run(ctx context.Context, c Canceler) (*SectorImport, error) {
	if c == nil {
		c = neverCanceled{}
	}
	s.mu.Lock()
	st := s.imp.State
	if st == Waiting {
		s.imp.StartedAt = time.Now()
	}
	s.mu.Unlock()
	if st != Waiting {
		return s.Import(), StateError(s.sector.Key, st, Preparing)
	}

	err := s.execute(ctx, c)
	switch {
	case errors.Is(err, errCanceled):
		s.finish(ctx, Canceled)
		return s.Import(), nil
	case err != nil:
		s.fail(ctx, err)
		return s.Import(), err
	}

	// the data is complete at this point, only the final state is lost
	if err = s.finish(ctx, Finished); err != nil {
		return s.Import(), err
	}
	if s.onSuccess != nil {
		s.onSuccess(s.Import())
	}
	return s.Import(), nil
}

// Abort cancels an attempt that is still WAITING.
func (s *Synchronizer) Abort(ctx context.Context) error {
	s.mu.Lock()
	st := s.imp.State
	s.mu.Unlock()
	if st != Waiting {
		return StateError(s.sector.Key, st, Canceled)
	}
	return s.transition(ctx, Canceled)
}

func (s *Synchronizer) execute(ctx context.Context, c Canceler) error {
	var err error
	if err = s.transition(ctx, Preparing); err != nil {
		return err
	}
	if err = s.prepare(ctx); err != nil {
		return err
	}

	if err = s.transition(ctx, Copying); err != nil {
		return err
	}
	if !s.del {
		if err = s.copyTree(ctx, c); err != nil {
			return err
		}
	}

	if err = s.transition(ctx, Relinking); err != nil {
		return err
	}
	if err = s.relink(ctx, c); err != nil {
		return err
	}

	if err = s.transition(ctx, Indexing); err != nil {
		return err
	}
	s.reindex(ctx)

	if s.del {
		if err = s.f.repo.DeleteSector(ctx, s.sector.Key); err != nil {
			return RepositoryError(s.sector.Key, err)
		}
	}
	return nil
}

func (s *Synchronizer) transition(ctx context.Context, to State) error {
	s.mu.Lock()
	from := s.imp.State
	if !CanTransition(from, to) {
		s.mu.Unlock()
		return StateError(s.sector.Key, from, to)
	}
	s.imp.State = to
	if to.IsTerminal() {
		s.imp.FinishedAt = time.Now()
	}
	snap := s.imp.Clone()
	s.mu.Unlock()

	slog.Info("Sector sync state",
		"sector", snap.SectorKey,
		"attempt", snap.Attempt,
		"state", to.String(),
	)
	if err := s.f.repo.UpdateImport(ctx, snap); err != nil {
		return RepositoryError(s.sector.Key, err)
	}
	return nil
}

func (s *Synchronizer) finish(ctx context.Context, st State) error {
	ids, names := s.result()
	s.update(func(imp *SectorImport) {
		imp.UsageIDs = ids
		imp.Names = names
	})
	err := s.transition(context.WithoutCancel(ctx), st)
	if err != nil {
		slog.Error("Cannot save sync state",
			"sector", s.sector.Key, "state", st.String(), "error", err)
	}
	return err
}

func (s *Synchronizer) fail(ctx context.Context, err error) {
	s.update(func(imp *SectorImport) {
		imp.Error = err.Error()
	})
	slog.Error("Sector sync failed", "sector", s.sector.Key, "error", err)

	terr := s.transition(context.WithoutCancel(ctx), Failed)
	if terr != nil {
		slog.Error("Cannot save sync state",
			"sector", s.sector.Key, "state", Failed.String(), "error", terr)
	}
	if s.onError != nil {
		s.onError(s.Import(), err)
	}
}

func (s *Synchronizer) warn(msg string, args ...any) {
	w := fmt.Sprintf(msg, args...)
	slog.Warn("Sector sync warning", "sector", s.sector.Key, "warning", w)
	s.update(func(imp *SectorImport) {
		imp.Warnings = append(imp.Warnings, w)
	})
}

func canceled(ctx context.Context, c Canceler) bool {
	return c.Canceled() || ctx.Err() != nil
}

func (s *Synchronizer) prepare(ctx context.Context) error {
	sec := s.sector
	cls := s.f.cls

	if !s.del {
		_, err := cls.Usage(ctx, sec.TargetDatasetKey, sec.TargetID)
		if err != nil {
			return s.rootMissing(ctx, "target", sec.TargetID, sec.TargetDatasetKey, err)
		}
		root, err := cls.Usage(ctx, sec.SubjectDatasetKey, sec.SubjectID)
		if err != nil {
			return s.rootMissing(ctx, "subject", sec.SubjectID, sec.SubjectDatasetKey, err)
		}
		if !root.IsTaxon() {
			err = fmt.Errorf("usage is a %s: %w", root.Kind, store.ErrNotFound)
			return s.rootMissing(ctx, "subject", sec.SubjectID, sec.SubjectDatasetKey, err)
		}
		s.root = root

		if sec.Broken {
			if err = s.f.repo.SetBroken(ctx, sec.Key, false); err != nil {
				return RepositoryError(sec.Key, err)
			}
			sec.Broken = false
		}
	}

	prev, err := cls.SectorUsages(ctx, sec.TargetDatasetKey, sec.Key)
	if err != nil {
		return StoreError(sec.Key, sec.TargetID, err)
	}
	s.prev = make(map[string]*model.Usage, len(prev))
	for _, v := range prev {
		s.prev[v.ID] = v
	}
	s.keep = make(map[string]string, len(prev))
	s.touched = make(map[string]*model.Usage)

	if s.del {
		return nil
	}

	switch sec.Mode {
	case Merge:
		ds, err := s.f.repo.Decisions(ctx, sec.SubjectDatasetKey)
		if err != nil {
			return RepositoryError(sec.Key, err)
		}
		s.decisions = make(map[string]Decision, len(ds))
		for _, v := range ds {
			s.decisions[v.SubjectID] = v
		}
	case Union:
		s.union = dupes.NewIndex(dupes.Options{
			Mode:      dupes.Fuzzy,
			RankAware: true,
		})
		s.indexed = make(map[string]bool)
	}
	return nil
}

func (s *Synchronizer) rootMissing(
	ctx context.Context,
	role, id string,
	datasetKey int,
	err error,
) error {
	if !errors.Is(err, store.ErrNotFound) {
		return StoreError(s.sector.Key, id, err)
	}
	if berr := s.f.repo.SetBroken(ctx, s.sector.Key, true); berr != nil {
		slog.Error("Cannot mark sector broken",
			"sector", s.sector.Key, "error", berr)
	}
	s.sector.Broken = true
	return RootMissingError(s.sector.Key, role, id, datasetKey, err)
}
