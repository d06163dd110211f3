package workflow

import (
	"log/slog"
	"strings"
	"sync/atomic"

	"shelves/internal/logging"
)

// Engine maps a file's stored shelf to the shelf it should be saved under.
// It is safe for concurrent use.
type Engine struct {
	cfg    atomic.Pointer[Config]
	logger *slog.Logger
}

// NewEngine returns an engine using cfg. An invalid cfg is stored as given;
// ResolveEffectiveShelf treats equal stages as a no-op.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	e := &Engine{logger: logging.NewComponentLogger(logger, "workflow")}
	e.Set(cfg)
	return e
}

// Config returns the active configuration.
func (e *Engine) Config() Config {
	return *e.cfg.Load()
}

// Set replaces the active configuration atomically.
func (e *Engine) Set(cfg Config) {
	n := cfg.Normalized()
	e.cfg.Store(&n)
	if n.Enabled && strings.EqualFold(n.Stage1, n.Stage2) {
		logging.WarnWithContext(e.logger, "workflow stages are identical", "workflow_misconfigured",
			logging.String("stage_1", n.Stage1),
			logging.String("stage_2", n.Stage2),
			logging.String(logging.FieldErrorHint, "choose two different shelves for the workflow stages"),
			logging.String(logging.FieldImpact, "no shelf transition is applied"),
		)
	}
}

// ResolveEffectiveShelf returns stage 2 when the workflow is enabled and tag
// names stage 1, ignoring case. Every other input comes back unchanged, and
// an empty or blank tag always yields "".
func (e *Engine) ResolveEffectiveShelf(tag string) string {
	if strings.TrimSpace(tag) == "" {
		return ""
	}
	cfg := e.cfg.Load()
	if !cfg.Enabled || cfg.Stage1 == "" || cfg.Stage2 == "" {
		return tag
	}
	if strings.EqualFold(cfg.Stage1, cfg.Stage2) {
		return tag
	}
	if strings.EqualFold(strings.TrimSpace(tag), cfg.Stage1) {
		return cfg.Stage2
	}
	return tag
}
