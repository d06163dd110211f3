package settings

import (
	"errors"
	"fmt"

	"shelves/internal/services"
	"shelves/internal/shelf"
	"shelves/internal/workflow"
)

// CurrentVersion is the settings file format version.
const CurrentVersion = 1

// Settings is the persisted shelf state.
type Settings struct {
	Version  int             `toml:"version"`
	Default  string          `toml:"default_shelf"`
	Shelves  []string        `toml:"shelves"`
	Workflow workflow.Config `toml:"workflow"`
}

// Validate checks the settings before they are saved. Invalid shelf names
// and an inconsistent workflow are rejected.
func (s Settings) Validate() error {
	if _, err := shelf.ValidateName(s.Default); err != nil {
		return services.Wrap(services.ErrValidation, "settings", "validate", "default shelf", err)
	}
	var errs []error
	for _, name := range s.Shelves {
		if _, err := shelf.ValidateName(name); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return services.Wrap(services.ErrValidation, "settings", "validate", "shelf list", err)
	}
	return s.Workflow.Validate()
}

// Capture reads the current state of registry and engine.
func Capture(registry *shelf.Registry, engine *workflow.Engine) Settings {
	s := Settings{
		Version: CurrentVersion,
		Default: registry.Default(),
		Shelves: registry.List(),
	}
	if engine != nil {
		s.Workflow = engine.Config()
	}
	return s
}

// Apply loads s into registry and engine. The registry is left untouched
// when s is invalid.
func (s Settings) Apply(registry *shelf.Registry, engine *workflow.Engine) error {
	if err := registry.Replace(s.Default, s.Shelves); err != nil {
		return fmt.Errorf("apply settings: %w", err)
	}
	if engine != nil {
		engine.Set(s.Workflow)
	}
	return nil
}

// Merge replays the changes local made relative to base onto stored, the
// settings read back from disk. Shelves added or removed since base, and a
// changed default or workflow, win; everything else keeps the stored value,
// so shelves registered by another process survive. A stored record without
// a default (no file yet) yields local.
func Merge(stored, base, local Settings) Settings {
	if shelf.Normalize(stored.Default) == "" {
		return clone(local)
	}

	merged := Settings{Version: CurrentVersion, Default: stored.Default, Workflow: stored.Workflow}
	if local.Default != base.Default {
		merged.Default = local.Default
	}
	if local.Workflow != base.Workflow {
		merged.Workflow = local.Workflow
	}

	inBase := keySet(base.Shelves)
	inLocal := keySet(local.Shelves)
	defaultKey := shelf.Key(merged.Default)
	seen := make(map[string]bool, len(stored.Shelves)+len(local.Shelves))
	for _, name := range stored.Shelves {
		key := shelf.Key(name)
		if seen[key] {
			continue
		}
		if inBase[key] && !inLocal[key] && key != defaultKey {
			continue
		}
		seen[key] = true
		merged.Shelves = append(merged.Shelves, name)
	}
	for _, name := range local.Shelves {
		key := shelf.Key(name)
		if seen[key] || inBase[key] {
			continue
		}
		seen[key] = true
		merged.Shelves = append(merged.Shelves, name)
	}
	if !seen[defaultKey] {
		merged.Shelves = append([]string{merged.Default}, merged.Shelves...)
	}
	return merged
}

func keySet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[shelf.Key(name)] = true
	}
	return set
}

func clone(s Settings) Settings {
	s.Version = CurrentVersion
	s.Shelves = append([]string(nil), s.Shelves...)
	return s
}
