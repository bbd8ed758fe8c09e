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
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gncat/pkg/coord"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
)

// getSyncCmd returns the sync command.
func getSyncCmd() *cobra.Command {
	var (
		sectorKeys []int
		datasetKey int
		all        bool
	)

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize sectors with their source datasets",
		Long: `Sync copies subtrees of source datasets into managed catalogues.

Each sector is synchronized according to its mode:
  - attach: copies the subject subtree under the target usage
  - union: adds only names missing under the target usage
  - merge: unions names and applies editorial decisions

Syncs run on 'sync.workers' workers. Sectors that share a dataset with
a running sync wait in the queue. Interrupting the command (Ctrl-C)
cancels running syncs and waits for them to roll back.

Examples:
  gncat sync -s 1,2,3
  gncat sync --dataset 3
  gncat sync --all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runSync(cmd, sectorKeys, datasetKey, all)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	syncCmd.Flags().IntSliceVarP(&sectorKeys, "sectors", "s", nil,
		"keys of sectors to synchronize")
	syncCmd.Flags().IntVar(&datasetKey, "dataset", 0,
		"synchronize all sectors targeting a catalogue")
	syncCmd.Flags().BoolVarP(&all, "all", "a", false,
		"synchronize all sectors")
	syncCmd.MarkFlagsMutuallyExclusive("sectors", "dataset", "all")
	syncCmd.MarkFlagsOneRequired("sectors", "dataset", "all")

	return syncCmd
}

func runSync(
	cmd *cobra.Command,
	sectorKeys []int,
	datasetKey int,
	all bool,
) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	keys, err := selectSectors(ctx, a.repo, sectorKeys, datasetKey, all)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		gn.Warn("No sectors to synchronize")
		return nil
	}

	c := a.coordinator(ctx, logObserver{})
	stop := cancelOnSignal(c, keys)
	defer stop()

	gn.Info("Synchronizing <em>%d</em> sectors", len(keys))
	for _, k := range keys {
		if _, err = c.Sync(ctx, k); err != nil {
			gn.PrintErrorMessage(err)
		}
	}
	c.Wait()

	return printImports(ctx, cmd, a.repo, keys)
}

// selectSectors returns keys of sectors chosen by the flags of the sync
// command.
func selectSectors(
	ctx context.Context,
	repo sector.Repository,
	sectorKeys []int,
	datasetKey int,
	all bool,
) ([]int, error) {
	if len(sectorKeys) > 0 {
		return slices.Compact(slices.Sorted(slices.Values(sectorKeys))), nil
	}

	sectors, err := repo.Sectors(ctx)
	if err != nil {
		return nil, err
	}
	var res []int
	for _, s := range sectors {
		if all || s.TargetDatasetKey == datasetKey {
			res = append(res, s.Key)
		}
	}
	return res, nil
}

// cancelOnSignal cancels syncs of given sectors on SIGINT or SIGTERM.
// Canceled syncs roll back before Wait returns.
func cancelOnSignal(c *coord.Coordinator, keys []int) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-done:
		case sig := <-ch:
			gn.Warn("Got <em>%s</em>, canceling syncs...", sig)
			for _, k := range keys {
				c.Cancel(k)
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

func printImports(
	ctx context.Context,
	cmd *cobra.Command,
	repo sector.Repository,
	keys []int,
) error {
	for _, k := range keys {
		imp, err := repo.LastImport(ctx, k)
		if err != nil {
			gn.Warn("No import for sector <em>%d</em>", k)
			continue
		}
		if err = printJSON(cmd, imp); err != nil {
			return err
		}
	}
	return nil
}

// logObserver reports coordinator events to the terminal.
type logObserver struct{}

func (logObserver) SyncStarted(sectorKey int) {
	gn.Info("Sector <em>%d</em> started", sectorKey)
}

func (logObserver) SyncFinished(sectorKey int, st sector.State, d time.Duration) {
	msg := "Sector <em>%d</em> %s in <em>%s</em>"
	if st != sector.Finished {
		msg = "Sector <warn>%d</warn> %s in <em>%s</em>"
	}
	gn.Info(msg, sectorKey, st, gnfmt.TimeString(d.Seconds()))
}

func (logObserver) QueueSize(int) {}
