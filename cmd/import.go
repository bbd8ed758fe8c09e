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

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gncat/pkg/sources"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
)

// getImportCmd returns the import command.
func getImportCmd() *cobra.Command {
	var datasetKey int

	importCmd := &cobra.Command{
		Use:   "import [flags] PATH",
		Short: "Import a dataset from an SFGA archive",
		Long: `Import replaces a dataset partition with the content of an SFGA archive.

This command:
  1. Downloads or opens the SFGA archive (local path or URL)
  2. Interprets records concurrently with gnparser
  3. Assembles usages in a staging graph and resolves parents
  4. Flags homonyms among accepted taxa
  5. Copies the dataset into a new partition and swaps it in

The previous partition stays visible until the new one is committed.
A dataset used by a running sector sync is not imported.

When --dataset is not given, the key is taken from the beginning of the
archive file name, for example 1001_worms_2025-10-03.sqlite.zip.

Examples:
  gncat import -d 1001 ~/sfga/worms.sqlite.zip
  gncat import 1001_worms_2025-10-03.sqlite.zip
  gncat import -d 3 https://example.org/sfga/3.sql.zip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runImport(cmd, args[0], datasetKey)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	importCmd.Flags().IntVarP(&datasetKey, "dataset", "d", 0,
		"dataset key (default: from archive file name)")

	return importCmd
}

func runImport(cmd *cobra.Command, path string, datasetKey int) error {
	if !cmd.Flags().Changed("dataset") {
		meta := sources.ParseArchiveName(path)
		if meta.Key == 0 {
			return fmt.Errorf("cannot get dataset key from '%s', use --dataset", path)
		}
		datasetKey = meta.Key
	}

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.importer(nil).Import(ctx, datasetKey, path)
	if err != nil {
		return err
	}

	gn.Info(`Dataset <em>%d</em> imported in <em>%s</em>:
   usages: <em>%s</em>, names: <em>%s</em>, homonym groups: <em>%s</em>`,
		res.DatasetKey,
		gnfmt.TimeString(res.Duration.Seconds()),
		humanize.Comma(int64(res.Usages)),
		humanize.Comma(int64(res.Names)),
		humanize.Comma(int64(res.Homonyms)),
	)
	return nil
}
