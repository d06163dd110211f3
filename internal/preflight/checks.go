package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"shelves/internal/catalog"
	"shelves/internal/services"
	"shelves/internal/settings"
	"shelves/internal/shelf"
	"shelves/internal/workflow"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSettings loads the saved shelf settings. A missing file passes; the
// configured seed is used until the first change is saved. The loaded
// settings are returned when the file was readable.
func CheckSettings(ctx context.Context, path string) (Result, *settings.Settings) {
	const name = "Shelf settings"
	store := settings.NewFileStore(path, nil)
	saved, err := store.Load(ctx)
	switch {
	case errors.Is(err, services.ErrNotFound):
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not saved yet; using configured seed)", path)}, nil
	case err != nil:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}, nil
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%d shelves, default %s)", path, len(saved.Shelves), saved.Default),
	}, &saved
}

// CheckWorkflowStages verifies that both stage shelves are registered.
// Unregistered stages still work but files never reach them through a scan.
func CheckWorkflowStages(cfg workflow.Config, shelves []string) Result {
	const name = "Workflow stages"
	var missing []string
	for _, stage := range []string{cfg.Stage1, cfg.Stage2} {
		found := false
		for _, known := range shelves {
			if shelf.SameName(stage, known) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, stage)
		}
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: "not registered: " + strings.Join(missing, ", ")}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s -> %s", cfg.Stage1, cfg.Stage2)}
}

// CheckCatalog opens the tag catalog and reports how many files it tracks.
func CheckCatalog(ctx context.Context, path string) Result {
	const name = "Catalog"
	store, err := catalog.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	counts, err := store.ShelfCounts(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d files)", path, total)}
}
