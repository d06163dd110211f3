package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"shelves/internal/config"
	"shelves/internal/services"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SHELVES_LIBRARY_DIR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Paths.LibraryDir != filepath.Join(tempHome, "Music") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	wantState := filepath.Join(tempHome, ".local", "share", "shelves")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Shelves.Default != "Standard" {
		t.Fatalf("unexpected default shelf: %q", cfg.Shelves.Default)
	}
	if strings.Join(cfg.Shelves.Seed, ",") != "Standard,Incoming" {
		t.Fatalf("unexpected seed: %v", cfg.Shelves.Seed)
	}
	if cfg.Workflow.Enabled {
		t.Fatal("expected workflow disabled by default")
	}
	if cfg.Classifier.MaxNameLength != 30 || cfg.Classifier.MaxWordCount != 3 {
		t.Fatalf("unexpected classifier thresholds: %+v", cfg.Classifier)
	}
	if cfg.SettingsPath() != filepath.Join(wantState, "settings.toml") {
		t.Fatalf("unexpected settings path: %q", cfg.SettingsPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "shelves.toml")

	type payload struct {
		Paths struct {
			LibraryDir string `toml:"library_dir"`
		} `toml:"paths"`
		Workflow struct {
			Enabled bool   `toml:"enabled"`
			Stage1  string `toml:"stage_1"`
			Stage2  string `toml:"stage_2"`
		} `toml:"workflow"`
		Classifier struct {
			AlbumIndicators []string `toml:"album_indicators"`
		} `toml:"classifier"`
	}
	custom := payload{}
	custom.Paths.LibraryDir = filepath.Join(tempDir, "library")
	custom.Workflow.Enabled = true
	custom.Workflow.Stage1 = " Inbox "
	custom.Workflow.Stage2 = "Archive"
	custom.Classifier.AlbumIndicators = []string{"Vol.", "DISC", "disc", " "}

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SHELVES_LIBRARY_DIR", "/ignored/because/file/sets/it")

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.LibraryDir != filepath.Join(tempDir, "library") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	if cfg.Workflow.Stage1 != "Inbox" || cfg.Workflow.Stage2 != "Archive" {
		t.Fatalf("unexpected workflow: %+v", cfg.Workflow)
	}
	if got := strings.Join(cfg.Classifier.AlbumIndicators, ","); got != "vol,disc" {
		t.Fatalf("unexpected normalized indicators: %q", got)
	}
	if cfg.Scan.Workers != config.Default().Scan.Workers {
		t.Fatalf("expected default workers, got %d", cfg.Scan.Workers)
	}
}

func TestLoadUsesLibraryDirFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	libraryDir := filepath.Join(t.TempDir(), "Music")
	t.Setenv("SHELVES_LIBRARY_DIR", libraryDir)

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.LibraryDir != libraryDir {
		t.Fatalf("expected env library dir %q, got %q", libraryDir, cfg.Paths.LibraryDir)
	}
}

func TestValidateRejectsSelfTransition(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LibraryDir = "/music"
	cfg.Workflow.Enabled = true
	cfg.Workflow.Stage1 = "Incoming"
	cfg.Workflow.Stage2 = "incoming"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
}

func TestValidateIgnoresDisabledWorkflow(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LibraryDir = "/music"
	cfg.Workflow.Stage1 = "Same"
	cfg.Workflow.Stage2 = "Same"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled workflow to pass validation: %v", err)
	}
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LibraryDir = "/music"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Shelves.Default != "Standard" {
		t.Fatalf("unexpected default shelf from sample: %q", cfg.Shelves.Default)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/Music")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "Music") {
		t.Fatalf("unexpected expansion: %q", got)
	}
}
