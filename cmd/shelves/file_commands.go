package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"shelves/internal/actions"
	"shelves/internal/catalog"
	"shelves/internal/library"
	"shelves/internal/logging"
	"shelves/internal/resolve"
	"shelves/internal/script"
	"shelves/internal/services"
	"shelves/internal/tags"
)

func newFileCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newScanCommand(ctx),
		newTagCommand(ctx),
		newSetShelfCommand(ctx),
		newDetermineCommand(ctx),
		newEffectiveCommand(ctx),
		newFilesCommand(ctx),
	}
}

type scanReport struct {
	ID      string   `json:"id"`
	Root    string   `json:"root"`
	Files   int      `json:"files"`
	Tagged  int      `json:"tagged"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Learned []string `json:"learned,omitempty"`
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var libraryDir string
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Assign shelves to every audio file in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				report, err := a.scanLibrary(runCtx, a.libraryRoot(libraryDir), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, report)
				}
				printScanReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&libraryDir, "library", "", "Library root (defaults to paths.library_dir)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

// scanLibrary runs the load pass over every audio file under root, then
// settles each album on its winning shelf and records the scan.
func (a *app) scanLibrary(ctx context.Context, root string, progressOut io.Writer) (scanReport, error) {
	files, err := library.AudioFiles(ctx, root, a.cfg.Scan.Extensions)
	if err != nil {
		return scanReport{}, err
	}
	scan, err := a.catalog.BeginScan(ctx, root)
	if err != nil {
		return scanReport{}, err
	}
	ctx = services.WithRequestID(ctx, scan.ID)
	ctx = services.WithOperation(ctx, "scan")
	logger := logging.WithContext(ctx, a.logger)
	logger.Info("scan started",
		logging.String(logging.FieldPath, root),
		logging.Int("files", len(files)),
	)

	// The processor resolves against its own root; a --library override
	// needs a processor bound to that folder.
	processor := a.processor
	if root != processor.Root() {
		processor = a.processorFor(root)
	}
	before := a.registry.List()

	var (
		mu      sync.Mutex
		loaded  = make(map[string]*tags.Metadata, len(files))
		skipped int
	)
	scanner := library.NewScanner(a.cfg.Scan.Workers, a.logger)
	if bar := newProgress(progressOut, len(files), "scanning"); bar != nil {
		scanner.OnProgress(func(int) { _ = bar.Add(1) })
		defer func() { _ = bar.Finish() }()
	}

	summary, runErr := scanner.Run(ctx, files, func(fileCtx context.Context, path string) error {
		md, err := a.catalog.Metadata(fileCtx, path)
		if err != nil {
			return err
		}
		if processor.ProcessLoadedFile(fileCtx, path, md) == "" {
			mu.Lock()
			skipped++
			mu.Unlock()
			return nil
		}
		if err := a.catalog.SaveTags(fileCtx, path, md.Map()); err != nil {
			return err
		}
		mu.Lock()
		loaded[path] = md
		mu.Unlock()
		return nil
	})

	tagged := 0
	if runErr == nil {
		paths := make([]string, 0, len(loaded))
		for path := range loaded {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			md := loaded[path]
			previous := md.GetTag(tags.KeyShelf)
			if _, ok := processor.ApplyAlbumShelf(md); ok && md.GetTag(tags.KeyShelf) != previous {
				if err := a.catalog.SaveTags(ctx, path, md.Map()); err != nil {
					summary.Failed = append(summary.Failed, library.FileError{Path: path, Err: err})
					continue
				}
			}
			tagged++
		}
	}

	scan.Files = len(files)
	scan.Tagged = tagged
	scan.Skipped = skipped
	scan.Failed = len(summary.Failed)
	if err := a.catalog.FinishScan(context.WithoutCancel(ctx), scan); err != nil {
		logger.Warn("record scan", logging.Error(err))
	}
	if err := a.persist(context.WithoutCancel(ctx)); err != nil {
		return scanReport{}, err
	}
	if runErr != nil {
		return scanReport{}, services.Wrap(services.ErrTransient, "scan", "run", "scan interrupted", runErr)
	}

	report := scanReport{
		ID:      scan.ID,
		Root:    root,
		Files:   scan.Files,
		Tagged:  scan.Tagged,
		Skipped: scan.Skipped,
		Failed:  scan.Failed,
		Learned: learnedShelves(before, a.registry.List()),
	}
	logger.Info("scan finished",
		logging.Int("tagged", report.Tagged),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Int("learned", len(report.Learned)),
	)
	return report, nil
}

func learnedShelves(before, after []string) []string {
	seen := make(map[string]struct{}, len(before))
	for _, name := range before {
		seen[name] = struct{}{}
	}
	var learned []string
	for _, name := range after {
		if _, ok := seen[name]; !ok {
			learned = append(learned, name)
		}
	}
	return learned
}

func printScanReport(out io.Writer, report scanReport) {
	rows := [][]string{
		{"Files", strconv.Itoa(report.Files)},
		{"Tagged", strconv.Itoa(report.Tagged)},
		{"Skipped (no release id)", strconv.Itoa(report.Skipped)},
		{"Failed", strconv.Itoa(report.Failed)},
	}
	if len(report.Learned) > 0 {
		rows = append(rows, []string{"Learned shelves", strings.Join(report.Learned, ", ")})
	}
	fmt.Fprintln(out, renderTable([]string{"Scan", report.ID}, rows, 1))
}

func newTagCommand(ctx *commandContext) *cobra.Command {
	var albumID string
	var shelfTag string
	cmd := &cobra.Command{
		Use:   "tag <path>",
		Short: "Record tags for a file in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("album-id") && !cmd.Flags().Changed("shelf") {
				return errors.New("nothing to tag: pass --album-id and/or --shelf")
			}
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				paths, err := absPaths(args)
				if err != nil {
					return err
				}
				path := paths[0]
				if cmd.Flags().Changed("album-id") {
					if err := a.catalog.SetTag(runCtx, path, tags.KeyAlbumID, strings.TrimSpace(albumID)); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("shelf") {
					if err := a.catalog.SetTag(runCtx, path, tags.KeyShelf, strings.TrimSpace(shelfTag)); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tagged %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&albumID, "album-id", "", "Release identifier (empty clears it)")
	cmd.Flags().StringVar(&shelfTag, "shelf", "", "Raw shelf tag value (empty clears it)")
	return cmd
}

func newSetShelfCommand(ctx *commandContext) *cobra.Command {
	var addIfMissing bool
	var manual bool
	cmd := &cobra.Command{
		Use:   "set-shelf <shelf> <path>...",
		Short: "Put files on a shelf",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				targets, err := a.loadTargets(runCtx, args[1:])
				if err != nil {
					return err
				}
				command := actions.SetShelfName(args[0], addIfMissing, targets...)
				command.Manual = manual
				res, err := a.dispatcher.Execute(runCtx, command)
				if err != nil {
					return err
				}
				if err := a.saveTargets(runCtx, targets); err != nil {
					return err
				}
				if err := a.persist(runCtx); err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&addIfMissing, "add", false, "Register the shelf when it is unknown")
	cmd.Flags().BoolVar(&manual, "manual", false, "Mark the tag as set by hand so scans keep it")
	return cmd
}

func newDetermineCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "determine <path>...",
		Short: "Re-derive the shelf of files from their folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				targets, err := a.loadTargets(runCtx, args)
				if err != nil {
					return err
				}
				res, err := a.dispatcher.Execute(runCtx, actions.DetermineShelf(targets...))
				if err != nil {
					return err
				}
				if err := a.saveTargets(runCtx, targets); err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
}

type effectiveRow struct {
	Path      string `json:"path"`
	Shelf     string `json:"shelf"`
	Effective string `json:"effective"`
	Target    string `json:"target,omitempty"`
}

func newEffectiveCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "effective <path>...",
		Short: "Show the shelf files will be saved under",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				paths, err := absPaths(args)
				if err != nil {
					return err
				}
				rows := make([]effectiveRow, 0, len(paths))
				for _, path := range paths {
					md, err := a.catalog.Metadata(runCtx, path)
					if err != nil {
						return err
					}
					row := effectiveRow{
						Path:      path,
						Shelf:     tags.ShelfFromTag(md.GetTag(tags.KeyShelf)),
						Effective: a.processor.EffectiveShelf(md),
					}
					if row.Effective != "" {
						row.Target = script.Path(a.engine, md, relativeRest(a.processor.Root(), path))
					}
					rows = append(rows, row)
				}
				if jsonOut {
					return writeJSON(cmd, rows)
				}
				table := make([][]string, 0, len(rows))
				for _, row := range rows {
					table = append(table, []string{row.Path, row.Shelf, row.Effective, row.Target})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"File", "Shelf", "Effective", "Target"}, table))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

// relativeRest is the part of path below its shelf folder, or its base name
// when path is not inside a shelf.
func relativeRest(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	parts := strings.SplitN(filepath.ToSlash(rel), "/", 2)
	if len(parts) < 2 {
		return parts[0]
	}
	return parts[1]
}

type fileRow struct {
	Path    string `json:"path"`
	Shelf   string `json:"shelf"`
	AlbumID string `json:"album_id,omitempty"`
	Manual  bool   `json:"manual,omitempty"`
}

func newFilesCommand(ctx *commandContext) *cobra.Command {
	var shelfFilter string
	var prefix string
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List catalogued files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				filter := catalog.ListFilter{Shelf: strings.TrimSpace(shelfFilter)}
				if strings.TrimSpace(prefix) != "" {
					expanded, err := absPaths([]string{prefix})
					if err != nil {
						return err
					}
					filter.PathPrefix = expanded[0]
				}
				files, err := a.catalog.List(runCtx, filter)
				if err != nil {
					return err
				}
				rows := make([]fileRow, 0, len(files))
				for _, f := range files {
					name, manual := tags.ParseShelfTag(f.Shelf())
					rows = append(rows, fileRow{Path: f.Path, Shelf: name, AlbumID: f.AlbumID(), Manual: manual})
				}
				if jsonOut {
					return writeJSON(cmd, rows)
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No files")
					return nil
				}
				table := make([][]string, 0, len(rows))
				for _, row := range rows {
					table = append(table, []string{row.Path, row.Shelf, row.AlbumID, yesNo(row.Manual)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"File", "Shelf", "Release", "Manual"}, table))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&shelfFilter, "shelf", "", "Only files on this shelf")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only files under this path")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

// processorFor builds a processor for a library root other than the
// configured one, sharing the registry and workflow.
func (a *app) processorFor(root string) *resolve.Processor {
	return resolve.NewProcessor(a.processor.Pipeline(), a.processor.Votes(), a.engine, root, a.logger)
}

func (a *app) loadTargets(ctx context.Context, args []string) ([]actions.Target, error) {
	paths, err := absPaths(args)
	if err != nil {
		return nil, err
	}
	targets := make([]actions.Target, 0, len(paths))
	for _, path := range paths {
		md, err := a.catalog.Metadata(ctx, path)
		if err != nil {
			return nil, err
		}
		targets = append(targets, actions.Target{Path: path, Tags: md})
	}
	return targets, nil
}

func (a *app) saveTargets(ctx context.Context, targets []actions.Target) error {
	for _, target := range targets {
		md, ok := target.Tags.(*tags.Metadata)
		if !ok {
			continue
		}
		if err := a.catalog.SaveTags(ctx, target.Path, md.Map()); err != nil {
			return err
		}
		a.processor.ProcessSavedFile(ctx, md)
	}
	return nil
}
