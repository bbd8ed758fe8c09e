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
	"github.com/gnames/gncat/pkg/sector"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
)

// getSectorCmd returns the sector command with its subcommands.
func getSectorCmd() *cobra.Command {
	sectorCmd := &cobra.Command{
		Use:   "sector",
		Short: "Inspect and delete sectors",
		Long: `Sector shows sectors, their copied trees and sync attempts.

Examples:
  gncat sector list
  gncat sector tree 5
  gncat sector diff 5 1 2
  gncat sector imports 5
  gncat sector delete 5`,
	}
	sectorCmd.AddCommand(
		getSectorListCmd(),
		getSectorTreeCmd(),
		getSectorDiffCmd(),
		getSectorImportsCmd(),
		getSectorDeleteCmd(),
	)
	return sectorCmd
}

// withApp opens the database for a subcommand and reports errors.
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer a.Close()

	if err = fn(ctx, a); err != nil {
		gn.PrintErrorMessage(err)
	}
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := gnfmt.GNjson{Pretty: true}
	res, err := enc.Encode(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(res))
	return nil
}

func getSectorListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				sectors, err := a.repo.Sectors(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, s := range sectors {
					broken := ""
					if s.Broken {
						broken = " BROKEN"
					}
					fmt.Fprintf(out, "%6d  %-6s %d:%s -> %d:%s  attempt %d%s\n",
						s.Key, s.Mode, s.SubjectDatasetKey, s.SubjectID,
						s.TargetDatasetKey, s.TargetID, s.SyncAttempt, broken)
				}
				return nil
			})
		},
	}
}

func getSectorTreeCmd() *cobra.Command {
	var subject bool

	treeCmd := &cobra.Command{
		Use:   "tree KEY",
		Short: "Print the tree under the target of a sector",
		Long: `Tree prints the classification under the target usage of a sector,
two spaces per level. Synonyms are prefixed with an asterisk.

Use --subject to print the subject subtree of the source dataset instead.

Examples:
  gncat sector tree 5
  gncat sector tree 5 --subject`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := keyArgs(args)
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				s, err := a.repo.Sector(ctx, keys[0])
				if err != nil {
					return err
				}
				ds, id := s.TargetDatasetKey, s.TargetID
				if subject {
					ds, id = s.SubjectDatasetKey, s.SubjectID
				}
				return sector.PrintTree(ctx, cmd.OutOrStdout(), a.store, ds, id)
			})
		},
	}

	treeCmd.Flags().BoolVar(&subject, "subject", false,
		"print the subject subtree of the source dataset")

	return treeCmd
}

func getSectorDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff KEY ATTEMPT1 ATTEMPT2",
		Short: "Compare names of two sync attempts",
		Long: `Diff prints names deleted and inserted between two sync attempts
of a sector as JSON.

Examples:
  gncat sector diff 5 1 2`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := keyArgs(args)
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				imp1, err := a.repo.Import(ctx, keys[0], keys[1])
				if err != nil {
					return err
				}
				imp2, err := a.repo.Import(ctx, keys[0], keys[2])
				if err != nil {
					return err
				}
				return printJSON(cmd, sector.NamesDiff(imp1, imp2))
			})
		},
	}
}

func getSectorImportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "imports KEY",
		Short: "List sync attempts of a sector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := keyArgs(args)
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				imps, err := a.repo.Imports(ctx, keys[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, imps)
			})
		},
	}
}

func getSectorDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY",
		Short: "Delete a sector and its copied usages",
		Long: `Delete removes usages copied by a sector from the catalogue and then
the sector itself. Usages of other sectors placed under them are kept.

Examples:
  gncat sector delete 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := keyArgs(args)
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				c := a.coordinator(ctx, logObserver{})
				if _, err := c.DeleteSector(ctx, keys[0]); err != nil {
					return err
				}
				c.Wait()
				return printImports(ctx, cmd, a.repo, keys)
			})
		},
	}
}
