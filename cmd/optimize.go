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

	"github.com/gnames/gn"
	"github.com/gnames/gncat/internal/iooptimize"
	"github.com/spf13/cobra"
)

// getOptimizeCmd returns the optimize command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getOptimizeCmd() *cobra.Command {
	var datasetKeys []int

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "Remove orphans and refresh statistics",
		Long: `Optimize cleans up dataset tables after imports and sector syncs.

This command:
  1. Removes names that are not used by any usage
  2. Removes vernaculars, distributions, media and descriptions
     of usages that do not exist anymore
  3. Runs VACUUM ANALYZE on dataset tables

Usages are never changed. Run it when no sync is running.

Examples:
  gncat optimize
  gncat optimize -d 3,1000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runOptimize(datasetKeys)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	optimizeCmd.Flags().IntSliceVarP(&datasetKeys, "datasets", "d", nil,
		"datasets to clean up (empty = all)")

	return optimizeCmd
}

func runOptimize(datasetKeys []int) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	opt := iooptimize.New(a.op)
	if _, err = opt.Optimize(ctx, datasetKeys...); err != nil {
		return err
	}
	gn.Info("Optimization complete")
	return nil
}
