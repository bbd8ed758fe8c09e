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
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gncat/internal/iosources"
	"github.com/gnames/gncat/pkg/config"
	"github.com/gnames/gncat/pkg/sources"
	"github.com/spf13/cobra"
)

// getSourcesCmd returns the sources command with its subcommands.
func getSourcesCmd() *cobra.Command {
	sourcesCmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage datasets, sectors and decisions",
		Long: `Sources registers datasets, sectors and editorial decisions
declared in ~/.config/gncat/sources.yaml.

Examples:
  gncat sources load
  gncat sources load --filter managed
  gncat sources list`,
	}
	sourcesCmd.AddCommand(getSourcesLoadCmd(), getSourcesListCmd())
	return sourcesCmd
}

func getSourcesLoadCmd() *cobra.Command {
	var filter string

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Load sources.yaml into the database",
		Long: `Load validates sources.yaml and saves its datasets, sectors and
decisions. Import metadata of known datasets is kept.

The --filter flag restricts datasets. Sectors and decisions are saved
only when all datasets they refer to pass the filter.
  - "source" or "managed": datasets of that kind
  - "1,3,5": datasets with given keys
  - "180-208", "-10", "1000-": key ranges

Examples:
  gncat sources load
  gncat sources load --filter 1000-
  gncat sources load -f source`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runSourcesLoad(filter)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	loadCmd.Flags().StringVarP(&filter, "filter", "f", "",
		"datasets to load (kind, keys or ranges)")

	return loadCmd
}

func runSourcesLoad(filter string) error {
	gn.Info("Reading <em>%s</em>", config.SourcesFilePath(cfg.HomeDir))
	sc, err := iosources.New(cfg).Load()
	if err != nil {
		return err
	}

	datasets, warnings, err := sources.FilterDatasets(sc.Datasets, filter)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		gn.Warn("%s", w)
	}
	filterSources(sc, datasets)

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sum, err := iosources.Save(ctx, sc, a.repo, a.repo)
	if err != nil {
		return err
	}
	gn.Info("Saved <em>%d</em> datasets, <em>%d</em> sectors, <em>%d</em> decisions",
		sum.Datasets, sum.Sectors, sum.Decisions)
	return nil
}

// filterSources keeps only datasets given, and sectors and decisions
// that refer to them.
func filterSources(sc *sources.SourcesConfig, datasets []sources.DatasetConfig) {
	keys := make(map[int]bool)
	for _, d := range datasets {
		keys[d.Key] = true
	}
	sc.Datasets = datasets
	sc.Sectors = slices.DeleteFunc(sc.Sectors, func(s sources.SectorConfig) bool {
		return !keys[s.SubjectDataset] || !keys[s.TargetDataset]
	})
	sc.Decisions = slices.DeleteFunc(sc.Decisions, func(d sources.DecisionConfig) bool {
		return !keys[d.Dataset]
	})
}

func getSourcesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List datasets known to the database",
		Long: `List prints datasets with their kind, usage counts and the time of
the last import.

Examples:
  gncat sources list`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runSourcesList(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
}

func runSourcesList(cmd *cobra.Command) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	datasets, err := a.repo.Datasets(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, d := range datasets {
		imported := "never"
		if !d.ImportedAt.IsZero() {
			imported = humanize.Time(d.ImportedAt)
		}
		fmt.Fprintf(out, "%6d  %-8s %10s usages  imported %-16s %s\n",
			d.Key, d.Kind, humanize.Comma(int64(d.UsageCount)), imported, d.Title)
	}
	return nil
}
