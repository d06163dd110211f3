package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"shelves/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Scan.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWorkflow enables the stage1 -> stage2 transition.
func WithWorkflow(stage1, stage2 string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.Enabled = true
		b.cfg.Workflow.Stage1 = stage1
		b.cfg.Workflow.Stage2 = stage2
	}
}

// WithSeedShelves replaces the default shelf and seed list.
func WithSeedShelves(defaultShelf string, seed ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Shelves.Default = defaultShelf
		b.cfg.Shelves.Seed = seed
	}
}

// WithLibrary creates the library directory with the given relative files.
func WithLibrary(files ...string) ConfigOption {
	return func(b *configBuilder) {
		if err := os.MkdirAll(b.cfg.Paths.LibraryDir, 0o755); err != nil {
			b.t.Fatalf("mkdir library: %v", err)
		}
		WriteTracks(b.t, b.cfg.Paths.LibraryDir, files...)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
