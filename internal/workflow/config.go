package workflow

import (
	"fmt"
	"strings"

	"shelves/internal/services"
)

// Config is the workflow record persisted with the shelf settings.
type Config struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Stage1  string `toml:"stage_1" json:"stage_1"`
	Stage2  string `toml:"stage_2" json:"stage_2"`
}

// Normalized trims both stage names.
func (c Config) Normalized() Config {
	c.Stage1 = strings.TrimSpace(c.Stage1)
	c.Stage2 = strings.TrimSpace(c.Stage2)
	return c
}

// Validate rejects an enabled workflow whose stages are missing or equal.
// A disabled workflow is always valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	n := c.Normalized()
	if n.Stage1 == "" || n.Stage2 == "" {
		return services.Wrap(services.ErrConfiguration, "workflow", "validate",
			"stage_1 and stage_2 must both be set when the workflow is enabled", nil)
	}
	if strings.EqualFold(n.Stage1, n.Stage2) {
		return services.Wrap(services.ErrConfiguration, "workflow", "validate",
			fmt.Sprintf("stage_1 and stage_2 are both %q", n.Stage1), nil)
	}
	return nil
}

// IsStage reports whether name is one of the configured stage shelves,
// ignoring case. Disabled workflows have no stages.
func (c Config) IsStage(name string) bool {
	if !c.Enabled {
		return false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	n := c.Normalized()
	return strings.EqualFold(name, n.Stage1) || strings.EqualFold(name, n.Stage2)
}
