// Package ioimport implements the lifecycle.Importer. It reads an SFGA
// archive, interprets its records concurrently, assembles them in the
// staging graph and replaces the partition of the dataset.
package ioimport

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gncat/internal/ioarchive"
	"github.com/gnames/gncat/pkg/config"
	"github.com/gnames/gncat/pkg/dupes"
	"github.com/gnames/gncat/pkg/graph"
	"github.com/gnames/gncat/pkg/interpret"
	"github.com/gnames/gncat/pkg/lifecycle"
	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/parserpool"
	"github.com/gnames/gncat/pkg/persist"
	"github.com/gnames/gncat/pkg/store"
	"github.com/gnames/gnfmt"
	"golang.org/x/sync/errgroup"
)

// Source is an opened archive.
type Source interface {
	// Records sends all records to ch and closes it.
	Records(ctx context.Context, ch chan<- model.VerbatimRecord) error
	// Count is the number of usage records.
	Count(ctx context.Context) (int, error)
	Close() error
}

// Opener opens an archive by its path or URL.
type Opener func(ctx context.Context, path string) (Source, error)

// Locker keeps sector syncs away from a dataset while it is reimported.
type Locker interface {
	LockDataset(datasetKey int) (func(), error)
}

type importer struct {
	cfg      *config.Config
	parts    store.Partitions
	datasets store.Datasets
	locker   Locker
	open     Opener
	bar      bool
}

// Option configures the importer.
type Option func(*importer)

// OptLocker sets the lock holder, usually the sync coordinator.
func OptLocker(l Locker) Option {
	return func(im *importer) {
		im.locker = l
	}
}

// OptOpener replaces the default archive opener.
func OptOpener(o Opener) Option {
	return func(im *importer) {
		im.open = o
	}
}

// OptProgressBar shows or hides the progress bar of the persist phase.
func OptProgressBar(b bool) Option {
	return func(im *importer) {
		im.bar = b
	}
}

// New creates an Importer.
func New(
	cfg *config.Config,
	parts store.Partitions,
	datasets store.Datasets,
	opts ...Option,
) lifecycle.Importer {
	res := &importer{
		cfg:      cfg,
		parts:    parts,
		datasets: datasets,
		bar:      true,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// cacheDir is the directory an archive of a dataset is unpacked into.
func (im *importer) cacheDir(datasetKey int) string {
	return filepath.Join(
		config.CacheDir(im.cfg.HomeDir), "sfga", strconv.Itoa(datasetKey),
	)
}

// Import replaces the partition of a dataset with the content of an
// archive. The previous partition stays visible until the new one is
// committed.
func (im *importer) Import(
	ctx context.Context,
	datasetKey int,
	path string,
) (*lifecycle.ImportResult, error) {
	start := time.Now()
	if im.locker != nil {
		unlock, err := im.locker.LockDataset(datasetKey)
		if err != nil {
			return nil, DatasetBusyError(datasetKey, err)
		}
		defer unlock()
	}

	ds, err := im.datasets.Dataset(ctx, datasetKey)
	if errors.Is(err, store.ErrNotFound) {
		ds = &model.Dataset{Key: datasetKey, Kind: model.DatasetSource}
	} else if err != nil {
		return nil, DatasetError(datasetKey, err)
	}

	gn.Info("(1/5) reading and interpreting <em>%s</em>", filepath.Base(path))
	src, err := im.openSource(ctx, datasetKey, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		src.Close()
		if im.open == nil && !im.cfg.Import.KeepCache {
			_ = os.RemoveAll(im.cacheDir(datasetKey))
		}
	}()

	g, recNum, err := im.stage(ctx, src)
	if err != nil {
		return nil, InterpretError(path, err)
	}
	gn.Message("<em>Interpreted %s records</em>", humanize.Comma(int64(recNum)))

	gn.Info("(2/5) resolving graph...")
	g.Resolve()
	stats := g.Stats()
	slog.Info("Graph resolved", "dataset_key", datasetKey, "stats", stats)

	gn.Info("(3/5) flagging homonyms...")
	homonyms := flagHomonyms(g)
	gn.Message("<em>Found %s homonym groups</em>",
		humanize.Comma(int64(homonyms)))

	gn.Info("(4/5) persisting...")
	pres, err := im.persist(ctx, g, datasetKey, stats.Usages)
	if err != nil {
		return nil, PersistError(datasetKey, err)
	}

	gn.Info("(5/5) updating dataset metadata...")
	if ds.Archive == "" {
		ds.Archive = path
	}
	ds.ImportedAt = time.Now()
	ds.UsageCount = pres.Usages
	ds.NameCount = pres.Names
	if err = im.datasets.SaveDataset(ctx, ds); err != nil {
		return nil, DatasetError(datasetKey, err)
	}

	res := &lifecycle.ImportResult{
		DatasetKey: datasetKey,
		Records:    recNum,
		Usages:     pres.Usages,
		Names:      pres.Names,
		Homonyms:   homonyms,
		Stats:      stats,
		Duration:   time.Since(start),
	}
	slog.Info("Dataset imported",
		"dataset_key", datasetKey,
		"records", recNum,
		"usages", pres.Usages,
		"names", pres.Names,
		"references", pres.References,
		"attachments", pres.Attachments,
		"homonyms", homonyms,
		"duration", gnfmt.TimeString(res.Duration.Seconds()),
	)
	return res, nil
}

func (im *importer) openSource(
	ctx context.Context,
	datasetKey int,
	path string,
) (Source, error) {
	if im.open != nil {
		return im.open(ctx, path)
	}
	dir := im.cacheDir(datasetKey)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, ioarchive.FetchError(path, err)
	}
	return ioarchive.Open(ctx, path, dir)
}

// staged is an interpreted record waiting to enter the graph.
type staged struct {
	seq     int
	usageID string
	usage   *model.Usage
	ref     *model.Reference
	att     *model.Attachments
}

// stage interprets records with a pool of workers and adds them to a new
// graph in archive order.
func (im *importer) stage(
	ctx context.Context,
	src Source,
) (*graph.Store, int, error) {
	jobs := max(im.cfg.JobsNumber, 1)
	pool := parserpool.NewPool(jobs)
	defer pool.Close()

	code, _ := model.CodeFromString(im.cfg.Import.DefaultCode)
	gaz, _ := model.GazetteerFromString(im.cfg.Import.DefaultGazetteer)
	it := interpret.New(
		interpret.NewGNParser(pool),
		interpret.Settings{Code: code, Gazetteer: gaz},
	)

	chIn := make(chan model.VerbatimRecord)
	chOut := make(chan staged)
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return src.Records(ctx, chIn)
	})

	var workers errgroup.Group
	for range jobs {
		workers.Go(func() error {
			return interpretWorker(ctx, it, chIn, chOut)
		})
	}
	eg.Go(func() error {
		defer close(chOut)
		return workers.Wait()
	})

	var items []staged
	var recNum int
	eg.Go(func() error {
		for v := range chOut {
			recNum++
			if v.seq >= 0 {
				items = append(items, v)
			}
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}

	slices.SortFunc(items, func(a, b staged) int {
		return cmp.Compare(a.seq, b.seq)
	})
	g := graph.New()
	for _, v := range items {
		switch {
		case v.ref != nil:
			g.AddReference(*v.ref)
		case v.usage != nil:
			g.Add(*v.usage)
		case v.att != nil:
			g.Attach(v.usageID, *v.att)
		}
	}
	return g, recNum, nil
}

// interpretWorker converts records until chIn is closed. Records that
// cannot be interpreted are sent with a negative seq, so they are still
// counted.
func interpretWorker(
	ctx context.Context,
	it *interpret.Interpreter,
	chIn <-chan model.VerbatimRecord,
	chOut chan<- staged,
) error {
	for rec := range chIn {
		res, ok := interpretRecord(it, rec)
		if !ok {
			res = staged{seq: -1}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chOut <- res:
		}
	}
	return nil
}

func interpretRecord(
	it *interpret.Interpreter,
	rec model.VerbatimRecord,
) (staged, bool) {
	res := staged{seq: rec.Seq()}
	switch rec.Type() {
	case model.ReferenceRecord:
		ref, issues, ok := it.Reference(rec)
		if !ok {
			return res, false
		}
		if !issues.IsEmpty() {
			slog.Debug("Reference issues", "id", ref.ID, "issues", issues.String())
		}
		res.ref = &ref
		return res, true
	case model.TaxonRecord, model.SynonymRecord, model.NameRecord:
		u, ok := it.Usage(rec)
		if !ok {
			return res, false
		}
		res.usage = &u
		return res, true
	}

	res.usageID = interpret.UsageID(rec)
	if res.usageID == "" {
		slog.Debug("Extension record without usage ID", "record", rec.Key())
		return res, false
	}
	var att model.Attachments
	var ok bool
	switch rec.Type() {
	case model.VernacularRecord:
		var v model.VernacularName
		if v, ok = it.Vernacular(rec); ok {
			att.Vernaculars = []model.VernacularName{v}
		}
	case model.DistributionRecord:
		var d model.Distribution
		if d, ok = it.Distribution(rec); ok {
			att.Distributions = []model.Distribution{d}
		}
	case model.MediaRecord:
		var m model.Media
		if m, ok = it.Media(rec); ok {
			att.Media = []model.Media{m}
		}
	case model.DescriptionRecord:
		var d model.Description
		if d, ok = it.Description(rec); ok {
			att.Descriptions = []model.Description{d}
		}
	}
	if !ok {
		return res, false
	}
	res.att = &att
	return res, true
}

// flagHomonyms marks accepted taxa that share a name and rank with
// another accepted taxon of the dataset. It returns the number of groups.
func flagHomonyms(g *graph.Store) int {
	groups := dupes.Find(dupes.FromGraph(g), dupes.Options{
		Mode:      dupes.Fuzzy,
		RankAware: true,
		Kinds:     []model.Kind{model.TaxonKind},
	})
	for _, grp := range groups {
		for _, e := range grp.Members {
			n := g.Node(e.Handle)
			n.Usage.Issues = n.Usage.Issues.Add(model.Homonym)
		}
	}
	return len(groups)
}

func (im *importer) persist(
	ctx context.Context,
	g *graph.Store,
	datasetKey int,
	total int,
) (persist.Result, error) {
	var opts []persist.Option
	if im.bar && total > 0 {
		bar := pb.Full.Start(total)
		bar.Set("prefix", "Persisting usages: ")
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
		opts = append(opts, persist.OptProgress(func(n int) {
			bar.SetCurrent(int64(n))
		}))
	}
	p := persist.New(im.parts, im.cfg.Database.BatchSize, opts...)
	return p.Persist(ctx, g, datasetKey)
}
