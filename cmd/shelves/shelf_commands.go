package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shelves/internal/actions"
	"shelves/internal/library"
	"shelves/internal/shelf"
)

func newShelfCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newListCommand(ctx),
		newAddCommand(ctx),
		newRemoveCommand(ctx),
		newDefaultCommand(ctx),
		newImportCommand(ctx),
		newPruneCommand(ctx),
		newClassifyCommand(ctx),
	}
}

type shelfRow struct {
	Name     string `json:"name"`
	Default  bool   `json:"default"`
	Workflow string `json:"workflow,omitempty"`
	Files    int    `json:"files"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known shelves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				counts, err := a.catalog.ShelfCounts(runCtx)
				if err != nil {
					return err
				}
				wf := a.engine.Config()
				def := a.registry.Default()

				var rows []shelfRow
				for _, name := range a.registry.List() {
					row := shelfRow{Name: name, Default: shelf.SameName(name, def), Files: countFor(counts, name)}
					if wf.Enabled {
						switch {
						case shelf.SameName(name, wf.Stage1):
							row.Workflow = "stage 1"
						case shelf.SameName(name, wf.Stage2):
							row.Workflow = "stage 2"
						}
					}
					rows = append(rows, row)
				}
				if jsonOut {
					return writeJSON(cmd, rows)
				}

				table := make([][]string, 0, len(rows))
				for _, row := range rows {
					table = append(table, []string{row.Name, yesNo(row.Default), row.Workflow, strconv.Itoa(row.Files)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Shelf", "Default", "Workflow", "Files"},
					table,
					3,
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func countFor(counts map[string]int, name string) int {
	total := 0
	for tag, n := range counts {
		if tag != "" && shelf.SameName(tag, name) {
			total += n
		}
	}
	return total
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>...",
		Short: "Register shelves",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				return a.runRegistryCommand(runCtx, cmd.OutOrStdout(), actions.AddShelf(args...))
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>...",
		Aliases: []string{"rm"},
		Short:   "Unregister shelves (the default shelf cannot be removed)",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				return a.runRegistryCommand(runCtx, cmd.OutOrStdout(), actions.RemoveShelf(args...))
			})
		},
	}
}

func newDefaultCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "default [name]",
		Short: "Show or change the default shelf",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				if len(args) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), a.registry.Default())
					return nil
				}
				return a.runRegistryCommand(runCtx, cmd.OutOrStdout(), actions.SetDefault(args[0]))
			})
		},
	}
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var libraryDir string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Register top-level library folders that look like shelves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				dirs, err := library.TopLevelDirs(a.libraryRoot(libraryDir))
				if err != nil {
					return err
				}
				return a.runRegistryCommand(runCtx, cmd.OutOrStdout(), actions.ScanDirectory(dirs))
			})
		},
	}
	cmd.Flags().StringVar(&libraryDir, "library", "", "Library root (defaults to paths.library_dir)")
	return cmd
}

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var libraryDir string
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Unregister shelves whose folder no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				dirs, err := library.TopLevelDirs(a.libraryRoot(libraryDir))
				if err != nil {
					return err
				}
				return a.runRegistryCommand(runCtx, cmd.OutOrStdout(), actions.PruneMissing(dirs))
			})
		},
	}
	cmd.Flags().StringVar(&libraryDir, "library", "", "Library root (defaults to paths.library_dir)")
	return cmd
}

type classifyRow struct {
	Name      string `json:"name"`
	Verdict   string `json:"verdict"`
	Shelf     string `json:"shelf"`
	Heuristic string `json:"heuristic,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "classify <folder>...",
		Short: "Show how folder names would be classified",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(_ context.Context, a *app) error {
				snapshot := a.registry.Snapshot()
				colorize := !jsonOut && shouldColorize(cmd.OutOrStdout())

				rows := make([]classifyRow, 0, len(args))
				table := make([][]string, 0, len(args))
				for _, name := range args {
					verdict := a.classifier.Classify(name, snapshot)
					row := classifyRow{
						Name:      name,
						Verdict:   verdict.Kind.String(),
						Shelf:     verdict.Shelf,
						Heuristic: verdict.Heuristic,
						Reason:    verdict.Reason,
					}
					rows = append(rows, row)
					table = append(table, []string{name, verdictLabel(verdict.Kind, colorize), verdict.Shelf, verdict.Reason})
				}
				if jsonOut {
					return writeJSON(cmd, rows)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Folder", "Verdict", "Shelf", "Reason"},
					table,
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func (a *app) libraryRoot(override string) string {
	if strings.TrimSpace(override) == "" {
		return a.cfg.Paths.LibraryDir
	}
	if expanded, err := absPaths([]string{override}); err == nil {
		return expanded[0]
	}
	return override
}

// runRegistryCommand executes cmd, saves the settings on change, and prints
// the outcome. Item rejections make the command fail after everything else
// was applied, except for imports where skipped folders are expected.
func (a *app) runRegistryCommand(ctx context.Context, out io.Writer, cmd actions.Command) error {
	res, err := a.dispatcher.Execute(ctx, cmd)
	if err != nil {
		return err
	}
	if err := a.persist(ctx); err != nil {
		return err
	}
	printResult(out, res)
	if len(res.Rejected) > 0 && cmd.Kind != actions.KindScanDirectory {
		return fmt.Errorf("%d of the requested shelves were rejected", len(res.Rejected))
	}
	return nil
}

func printResult(out io.Writer, res actions.Result) {
	for _, name := range res.Added {
		fmt.Fprintf(out, "Added shelf %s\n", name)
	}
	for _, name := range res.Removed {
		fmt.Fprintf(out, "Removed shelf %s\n", name)
	}
	if res.DefaultChanged {
		fmt.Fprintf(out, "Default shelf is now %s\n", res.Shelf)
	}
	for _, rejection := range res.Rejected {
		fmt.Fprintf(out, "Rejected %s: %s\n", rejection.Name, rejection.Reason)
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
	if res.Updated > 0 || res.Skipped > 0 {
		fmt.Fprintf(out, "Updated %d file(s), skipped %d\n", res.Updated, res.Skipped)
	}
	if !res.Changed() && len(res.Rejected) == 0 && len(res.Warnings) == 0 && res.Updated == 0 && res.Skipped == 0 {
		fmt.Fprintln(out, "Nothing to change")
	}
}
