/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gncat/internal/iometrics"
	"github.com/gnames/gncat/internal/iosources"
	"github.com/gnames/gncat/pkg/coord"
	"github.com/gnames/gncat/pkg/lifecycle"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/gnames/gncat/pkg/sources"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// getWatchCmd returns the watch command.
func getWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reimport datasets and resync sectors on a schedule",
		Long: `Watch runs until it is interrupted and keeps catalogues up to date.

Scheduled jobs:
  - datasets with 'schedule' and 'archive' in sources.yaml are reimported,
    then sectors using them as subject are synchronized
  - all sectors are synchronized on 'sync.schedule' of config.yaml

Prometheus metrics of syncs are served at /metrics on 'metrics.addr',
running and queued syncs are listed as JSON at /status.
Interrupting the command cancels running syncs.

Examples:
  gncat watch
  GNCAT_SYNC_SCHEDULE="@hourly" gncat watch`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			err := runWatch()
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
}

// watchJob is a scheduled reimport of a dataset, or a sync of all
// sectors when datasetKey is zero.
type watchJob struct {
	spec       string
	datasetKey int
	archive    string
}

// watchJobs lists jobs for datasets with a schedule and, with a non-empty
// syncSpec, a job that synchronizes all sectors.
func watchJobs(sc *sources.SourcesConfig, syncSpec string) []watchJob {
	var res []watchJob
	for _, d := range sc.Datasets {
		if d.Schedule == "" || d.Archive == "" {
			continue
		}
		res = append(res, watchJob{
			spec:       d.Schedule,
			datasetKey: d.Key,
			archive:    d.Archive,
		})
	}
	if syncSpec != "" {
		res = append(res, watchJob{spec: syncSpec})
	}
	return res
}

func runWatch() error {
	sc, err := iosources.New(cfg).Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	obs := iometrics.New()
	c := a.coordinator(context.Background(), obs)
	if cfg.Metrics.Addr != "" {
		srv := obs.Serve(cfg.Metrics.Addr, func() any { return c.Status() })
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
		gn.Info("Metrics are served at <em>%s/metrics</em>", cfg.Metrics.Addr)
	}

	w := &watcher{
		repo:  a.repo,
		imp:   a.importer(c),
		coord: c,
	}

	sched := cron.New(
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)
	for _, j := range watchJobs(sc, cfg.Sync.Schedule) {
		if _, err = sched.AddFunc(j.spec, w.job(ctx, j)); err != nil {
			gn.Warn("Cannot schedule <em>%s</em>: %s", j.spec, err)
			continue
		}
		if j.datasetKey == 0 {
			gn.Info("Sectors are synchronized <em>%s</em>", j.spec)
		} else {
			gn.Info("Dataset <em>%d</em> is reimported <em>%s</em>",
				j.datasetKey, j.spec)
		}
	}
	if len(sched.Entries()) == 0 {
		gn.Warn("Nothing to schedule, see 'schedule' in sources.yaml " +
			"and 'sync.schedule' in config.yaml")
		return nil
	}

	sched.Start()
	<-ctx.Done()

	gn.Info("Stopping scheduler...")
	<-sched.Stop().Done()
	if n := c.CancelAll(); n > 0 {
		gn.Warn("Canceled <em>%d</em> syncs", n)
	}
	c.Wait()
	return nil
}

type watcher struct {
	repo  sector.Repository
	imp   lifecycle.Importer
	coord *coord.Coordinator
}

func (w *watcher) job(ctx context.Context, j watchJob) func() {
	return func() {
		if ctx.Err() != nil {
			return
		}
		if j.datasetKey == 0 {
			w.syncAll(ctx)
			return
		}
		w.reimport(ctx, j.datasetKey, j.archive)
	}
}

// reimport imports a dataset and synchronizes sectors that copy from it.
func (w *watcher) reimport(ctx context.Context, datasetKey int, archive string) {
	slog.Info("Scheduled import", "dataset_key", datasetKey, "archive", archive)
	if _, err := w.imp.Import(ctx, datasetKey, archive); err != nil {
		slog.Error("Scheduled import failed",
			"dataset_key", datasetKey, "error", err)
		return
	}
	w.sync(ctx, func(s *sector.Sector) bool {
		return s.SubjectDatasetKey == datasetKey
	})
}

func (w *watcher) syncAll(ctx context.Context) {
	w.sync(ctx, func(*sector.Sector) bool { return true })
}

func (w *watcher) sync(ctx context.Context, filter func(*sector.Sector) bool) {
	sectors, err := w.repo.Sectors(ctx)
	if err != nil {
		slog.Error("Cannot list sectors", "error", err)
		return
	}
	for _, s := range sectors {
		if !filter(s) {
			continue
		}
		if _, err = w.coord.Sync(ctx, s.Key); err != nil {
			slog.Error("Cannot schedule sync", "sector_key", s.Key, "error", err)
		}
	}
}

// cronLogger sends scheduler messages to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
