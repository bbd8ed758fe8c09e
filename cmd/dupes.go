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

	"github.com/gnames/gn"
	"github.com/gnames/gncat/pkg/dupes"
	"github.com/gnames/gncat/pkg/model"
	"github.com/spf13/cobra"
)

// getDupesCmd returns the dupes command.
func getDupesCmd() *cobra.Command {
	var (
		datasetKey int
		mode       string
		minSize    int
		rankAware  bool
		codeAware  bool
		accepted   bool
		sectorKey  int
	)

	dupesCmd := &cobra.Command{
		Use:   "dupes",
		Short: "Find duplicate names in a dataset",
		Long: `Dupes groups usages of a dataset that share a name and prints the
groups as JSON, the largest groups first.

Modes:
  - fuzzy: normalized canonical names (default)
  - exact: canonical names together with authorship

Examples:
  gncat dupes -d 3
  gncat dupes -d 3 --mode exact --rank
  gncat dupes -d 3 --accepted --min 3
  gncat dupes -d 3 --sector 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, ok := dupes.ModeFromString(mode)
			if !ok {
				return fmt.Errorf("invalid mode '%s': must be 'exact' or 'fuzzy'", mode)
			}
			opts := dupes.Options{
				Mode:      m,
				MinSize:   minSize,
				RankAware: rankAware,
				CodeAware: codeAware,
			}
			if accepted {
				opts.Kinds = []model.Kind{model.TaxonKind}
			}
			if cmd.Flags().Changed("sector") {
				opts.SectorKey = &sectorKey
			}
			return withApp(func(ctx context.Context, a *app) error {
				return runDupes(ctx, cmd, a, datasetKey, opts)
			})
		},
	}

	dupesCmd.Flags().IntVarP(&datasetKey, "dataset", "d", 0, "dataset key")
	dupesCmd.Flags().StringVarP(&mode, "mode", "m", "fuzzy",
		"matching mode: exact or fuzzy")
	dupesCmd.Flags().IntVar(&minSize, "min", 2, "minimal size of a group")
	dupesCmd.Flags().BoolVar(&rankAware, "rank", false,
		"names of different ranks are not duplicates")
	dupesCmd.Flags().BoolVar(&codeAware, "code", false,
		"names of different codes are not duplicates")
	dupesCmd.Flags().BoolVar(&accepted, "accepted", false,
		"compare accepted taxa only")
	dupesCmd.Flags().IntVar(&sectorKey, "sector", 0,
		"compare usages of a sector only")
	_ = dupesCmd.MarkFlagRequired("dataset")

	return dupesCmd
}

func runDupes(
	ctx context.Context,
	cmd *cobra.Command,
	a *app,
	datasetKey int,
	opts dupes.Options,
) error {
	usages, err := a.store.ListUsages(ctx, datasetKey)
	if err != nil {
		return err
	}
	groups := dupes.Find(dupes.FromUsages(usages), opts)
	gn.Info("Found <em>%d</em> groups among <em>%d</em> usages",
		len(groups), len(usages))
	return printJSON(cmd, groups)
}
