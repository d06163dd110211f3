package preflight

import (
	"context"

	"shelves/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// RunAll executes every check for cfg. Stage shelves are only checked when
// the workflow is enabled in the saved settings.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	settingsResult, saved := CheckSettings(ctx, cfg.SettingsPath())
	results = append(results, settingsResult)
	if saved != nil && saved.Workflow.Enabled {
		results = append(results, CheckWorkflowStages(saved.Workflow, saved.Shelves))
	}

	results = append(results, CheckCatalog(ctx, cfg.CatalogPath()))
	return results
}
