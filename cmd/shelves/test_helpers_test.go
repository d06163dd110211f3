package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shelves/internal/config"
	"shelves/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	library    string
}

func setupCLITestEnv(t *testing.T, files ...string) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithLibrary(files...))
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(homeDir, ".config", "shelves", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, library: cfg.Paths.LibraryDir}
}

func (e *cliTestEnv) path(rel string) string {
	return filepath.Join(e.library, filepath.FromSlash(rel))
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// mustRun runs the CLI and fails the test on error.
func (e *cliTestEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := runCLI(t, args, e.configPath)
	if err != nil {
		t.Fatalf("shelves %s: %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), err, out, stderr)
	}
	return out
}

func (e *cliTestEnv) runJSON(t *testing.T, target any, args ...string) {
	t.Helper()
	out := e.mustRun(t, append(args, "--json")...)
	if err := json.Unmarshal([]byte(out), target); err != nil {
		t.Fatalf("decode %s output: %v\n%s", strings.Join(args, " "), err, out)
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nlibrary_dir = %q\nstate_dir = %q\nlog_dir = %q\n\n[scan]\nworkers = %d\n\n[logging]\nlevel = \"error\"\n",
		cfg.Paths.LibraryDir,
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Scan.Workers,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
