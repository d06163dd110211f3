package main

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"shelves/internal/actions"
	"shelves/internal/catalog"
	"shelves/internal/config"
	"shelves/internal/logging"
	"shelves/internal/resolve"
	"shelves/internal/services"
	"shelves/internal/settings"
	"shelves/internal/shelf"
	"shelves/internal/workflow"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
				cfg.Logging.Level = level
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// app is the wired object graph for one command invocation.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	settings   *settings.FileStore
	registry   *shelf.Registry
	engine     *workflow.Engine
	classifier *shelf.Classifier
	processor  *resolve.Processor
	dispatcher *actions.Dispatcher
	catalog    *catalog.Store
	// saved is the registry state last read from or written to disk.
	saved settings.Settings
}

func (c *commandContext) withApp(cmd *cobra.Command, fn func(context.Context, *app) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logPath := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
	now := time.Now()
	archived, rotateErr := logging.RotateIfLarger(logPath, logging.DefaultRotateBytes, now)
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if rotateErr != nil {
		logging.WarnWithContext(logger, "log rotation failed", "log_rotation_failed",
			logging.String(logging.FieldPath, logPath),
			logging.Error(rotateErr),
			logging.String(logging.FieldErrorHint, "check log_dir permissions"),
			logging.String(logging.FieldImpact, "shelves.log keeps growing"),
		)
	} else if archived != "" {
		logger.Debug("log rotated", logging.String(logging.FieldPath, archived))
	}
	logging.PruneArchives(logger, logPath, cfg.Logging.RetentionDays, now)

	store := settings.NewFileStore(cfg.SettingsPath(), logger)
	saved, err := store.Load(ctx)
	switch {
	case errors.Is(err, services.ErrNotFound):
		saved = seedSettings(cfg)
		logger.Debug("no saved settings; using configured seed", logging.String(logging.FieldPath, store.Path()))
	case err != nil:
		return nil, err
	}

	registry, err := shelf.NewRegistry(saved.Default, saved.Shelves, logger)
	if err != nil {
		return nil, err
	}
	engine := workflow.NewEngine(saved.Workflow, logger)
	classifier := shelf.NewClassifier(classifierPolicy(cfg))
	pipeline := resolve.NewPipeline(registry, classifier, logger)
	processor := resolve.NewProcessor(pipeline, resolve.NewVotes(logger), engine, cfg.Paths.LibraryDir, logger)

	cat, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		settings:   store,
		registry:   registry,
		engine:     engine,
		classifier: classifier,
		processor:  processor,
		dispatcher: actions.NewDispatcher(processor, engine, logger),
		catalog:    cat,
		saved:      settings.Capture(registry, engine),
	}, nil
}

func (a *app) close() {
	if err := a.catalog.Close(); err != nil {
		a.logger.Warn("close catalog", logging.Error(err))
	}
}

// persist writes this run's registry and workflow changes back to the
// settings file. The changes are merged into what is on disk under the file
// lock, and the merged result is loaded back into the registry and engine.
func (a *app) persist(ctx context.Context) error {
	local := settings.Capture(a.registry, a.engine)
	if sameSettings(local, a.saved) {
		return nil
	}
	var merged settings.Settings
	err := a.settings.Update(ctx, func(stored *settings.Settings) error {
		merged = settings.Merge(*stored, a.saved, local)
		*stored = merged
		return nil
	})
	if err != nil {
		return err
	}
	if err := merged.Apply(a.registry, a.engine); err != nil {
		return err
	}
	a.saved = settings.Capture(a.registry, a.engine)
	return nil
}

func sameSettings(a, b settings.Settings) bool {
	return a.Default == b.Default && a.Workflow == b.Workflow && slices.Equal(a.Shelves, b.Shelves)
}

func seedSettings(cfg *config.Config) settings.Settings {
	return settings.Settings{
		Version: settings.CurrentVersion,
		Default: cfg.Shelves.Default,
		Shelves: append([]string(nil), cfg.Shelves.Seed...),
		Workflow: workflow.Config{
			Enabled: cfg.Workflow.Enabled,
			Stage1:  cfg.Workflow.Stage1,
			Stage2:  cfg.Workflow.Stage2,
		},
	}
}

func classifierPolicy(cfg *config.Config) shelf.Policy {
	return shelf.Policy{
		MaxNameLength:   cfg.Classifier.MaxNameLength,
		MaxWordCount:    cfg.Classifier.MaxWordCount,
		AlbumIndicators: append([]string(nil), cfg.Classifier.AlbumIndicators...),
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// absPaths expands every argument to an absolute, cleaned path.
func absPaths(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		p, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
