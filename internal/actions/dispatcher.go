package actions

import (
	"context"
	"fmt"
	"log/slog"

	"shelves/internal/logging"
	"shelves/internal/resolve"
	"shelves/internal/services"
	"shelves/internal/shelf"
	"shelves/internal/tags"
	"shelves/internal/workflow"
)

// Dispatcher executes commands against one library.
type Dispatcher struct {
	processor *resolve.Processor
	engine    *workflow.Engine
	logger    *slog.Logger
}

// NewDispatcher binds a dispatcher to processor. engine supplies the
// workflow stages checked before removals; nil means no workflow.
func NewDispatcher(processor *resolve.Processor, engine *workflow.Engine, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		processor: processor,
		engine:    engine,
		logger:    logging.NewComponentLogger(logger, "actions"),
	}
}

// Execute runs cmd. Item-level rejections are recorded in the Result; the
// error is reserved for commands refused as a whole, an unknown Kind, or a
// cancelled context.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) (Result, error) {
	ctx = services.WithOperation(ctx, string(cmd.Kind))
	logger := logging.WithContext(ctx, d.logger)

	var (
		res Result
		err error
	)
	switch cmd.Kind {
	case KindAddShelf:
		res, err = d.addShelves(ctx, cmd.Names)
	case KindRemoveShelf:
		res, err = d.removeShelves(ctx, cmd.Names)
	case KindSetDefault:
		res, err = d.setDefault(cmd.Names)
	case KindSetShelfName:
		res, err = d.setShelfName(ctx, cmd)
	case KindScanDirectory:
		res, err = d.scanDirectory(ctx, cmd.Directories)
	case KindPruneMissing:
		res, err = d.pruneMissing(cmd.Directories)
	case KindDetermineShelf:
		res, err = d.determineShelf(ctx, cmd.Targets)
	default:
		return Result{Kind: cmd.Kind}, services.Wrap(services.ErrValidation, "actions", "execute",
			fmt.Sprintf("unknown command %q", cmd.Kind), nil)
	}
	res.Kind = cmd.Kind

	if err != nil {
		if services.IsRejection(err) {
			logger.Info("command rejected", logging.Error(err))
		} else {
			logger.Error("command failed", logging.Error(err))
		}
		return res, err
	}
	logger.Info("command completed",
		logging.Int("added", len(res.Added)),
		logging.Int("removed", len(res.Removed)),
		logging.Int("rejected", len(res.Rejected)),
		logging.Int("updated", res.Updated),
		logging.Int("skipped", res.Skipped),
	)
	for _, warning := range res.Warnings {
		logging.WarnWithContext(logger, warning, "command_warning",
			logging.String(logging.FieldErrorHint, "review the shelf settings"),
			logging.String(logging.FieldImpact, "command applied with warnings"),
		)
	}
	return res, nil
}

func (d *Dispatcher) registry() *shelf.Registry {
	return d.processor.Pipeline().Registry()
}

func (d *Dispatcher) workflowConfig() workflow.Config {
	if d.engine == nil {
		return workflow.Config{}
	}
	return d.engine.Config()
}

func (d *Dispatcher) addShelves(ctx context.Context, names []string) (Result, error) {
	var res Result
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return res, cancelled("add shelf", err)
		}
		warning, err := shelf.ValidateName(name)
		if err != nil {
			res.reject(name, err)
			continue
		}
		added, err := d.registry().Add(name)
		if err != nil {
			res.reject(name, err)
			continue
		}
		if !added {
			res.warn("shelf %q already exists", shelf.Normalize(name))
			continue
		}
		res.Added = append(res.Added, shelf.Normalize(name))
		if warning != "" {
			res.warn("%s: %s", shelf.Normalize(name), warning)
		}
	}
	return res, nil
}

func (d *Dispatcher) removeShelves(ctx context.Context, names []string) (Result, error) {
	var res Result
	wf := d.workflowConfig()
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return res, cancelled("remove shelf", err)
		}
		canonical, known := d.registry().Lookup(name)
		removed, err := d.registry().Remove(name)
		if err != nil {
			res.reject(name, err)
			continue
		}
		if !removed {
			if !known {
				res.reject(name, services.Wrap(services.ErrNotFound, "actions", "remove shelf",
					fmt.Sprintf("%q is not a known shelf", shelf.Normalize(name)), nil))
			}
			continue
		}
		res.Removed = append(res.Removed, canonical)
		if wf.IsStage(canonical) {
			res.warn("removed shelf %q is a workflow stage; update the workflow settings", canonical)
		}
	}
	return res, nil
}

func (d *Dispatcher) setDefault(names []string) (Result, error) {
	var res Result
	if len(names) == 0 {
		return res, services.Wrap(services.ErrValidation, "actions", "set default", "no shelf given", nil)
	}
	if err := d.registry().SetDefault(names[0]); err != nil {
		return res, err
	}
	res.Shelf = d.registry().Default()
	res.DefaultChanged = true
	return res, nil
}

func (d *Dispatcher) setShelfName(ctx context.Context, cmd Command) (Result, error) {
	var res Result
	warning, err := shelf.ValidateName(cmd.Shelf)
	if err != nil {
		return res, err
	}
	name, known := d.registry().Lookup(cmd.Shelf)
	if !known {
		if !cmd.AddIfMissing {
			return res, services.Wrap(services.ErrNotFound, "actions", "set shelf name",
				fmt.Sprintf("%q is not a known shelf; add it first", shelf.Normalize(cmd.Shelf)), nil)
		}
		name = shelf.Normalize(cmd.Shelf)
		added, err := d.registry().Add(name)
		if err != nil {
			return res, err
		}
		if added {
			res.Added = append(res.Added, name)
		} else if canonical, ok := d.registry().Lookup(name); ok {
			name = canonical
		}
	}
	if warning != "" {
		res.warn("%s: %s", name, warning)
	}
	res.Shelf = name

	value := tags.FormatShelfTag(name, cmd.Manual)
	albums := make(map[string]int)
	for _, target := range cmd.Targets {
		if err := ctx.Err(); err != nil {
			return res, cancelled("set shelf name", err)
		}
		if target.Tags == nil {
			res.Skipped++
			continue
		}
		target.Tags.SetTag(tags.KeyShelf, value)
		res.Updated++
		if id := tags.AlbumID(target.Tags); id != "" {
			albums[id]++
		}
	}

	votes := d.processor.Votes()
	for id, count := range albums {
		votes.Clear(id)
		for range count {
			votes.Cast(id, name)
		}
	}
	return res, nil
}

func (d *Dispatcher) scanDirectory(ctx context.Context, directories []string) (Result, error) {
	var res Result
	classifier := d.processor.Pipeline().Classifier()
	for _, dir := range directories {
		if err := ctx.Err(); err != nil {
			return res, cancelled("scan directory", err)
		}
		verdict := classifier.Classify(dir, d.registry().Snapshot())
		switch verdict.Kind {
		case shelf.VerdictKnown:
			continue
		case shelf.VerdictRejectedSuspicious:
			res.Rejected = append(res.Rejected, Rejection{Name: dir, Reason: verdict.Reason})
			continue
		}
		added, err := d.registry().Add(verdict.Shelf)
		if err != nil {
			res.reject(dir, err)
			continue
		}
		if added {
			res.Added = append(res.Added, verdict.Shelf)
		}
	}
	return res, nil
}

func (d *Dispatcher) pruneMissing(directories []string) (Result, error) {
	var res Result
	present := make(map[string]struct{}, len(directories))
	for _, dir := range directories {
		if key := shelf.Key(dir); key != "" {
			present[key] = struct{}{}
		}
	}
	res.Removed = d.registry().Prune(func(name string) bool {
		_, ok := present[shelf.Key(name)]
		return ok
	})
	wf := d.workflowConfig()
	for _, name := range res.Removed {
		if wf.IsStage(name) {
			res.warn("pruned shelf %q is a workflow stage; update the workflow settings", name)
		}
	}
	return res, nil
}

func (d *Dispatcher) determineShelf(ctx context.Context, targets []Target) (Result, error) {
	var res Result
	type assignment struct {
		albumID string
		shelf   string
	}
	var assigned []assignment
	albums := make(map[string]struct{})
	pipeline := d.processor.Pipeline()

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return res, cancelled("determine shelf", err)
		}
		albumID := tags.AlbumID(target.Tags)
		if albumID == "" {
			res.Skipped++
			continue
		}
		name, _ := pipeline.DetermineShelfFromStorageLocation(target.Path, d.processor.Root())
		if name == "" {
			res.Skipped++
			continue
		}
		target.Tags.SetTag(tags.KeyShelf, name)
		res.Updated++
		albums[albumID] = struct{}{}
		assigned = append(assigned, assignment{albumID: albumID, shelf: name})
	}

	votes := d.processor.Votes()
	for id := range albums {
		votes.Clear(id)
	}
	for _, a := range assigned {
		votes.Cast(a.albumID, a.shelf)
	}
	return res, nil
}

func cancelled(operation string, err error) error {
	return services.Wrap(services.ErrTransient, "actions", operation, "cancelled", err)
}
