package config

import (
	"errors"
	"fmt"
	"strings"

	"shelves/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateShelves(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set (or export SHELVES_LIBRARY_DIR)")
	}
	return nil
}

func (c *Config) validateShelves() error {
	if c.Shelves.Default == "" {
		return errors.New("shelves.default must be set")
	}
	if strings.ContainsAny(c.Shelves.Default, `/\`) {
		return fmt.Errorf("shelves.default %q must not contain path separators", c.Shelves.Default)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if !c.Workflow.Enabled {
		return nil
	}
	if c.Workflow.Stage1 == "" || c.Workflow.Stage2 == "" {
		return services.Wrap(services.ErrConfiguration, "config", "validate workflow",
			"workflow.stage_1 and workflow.stage_2 must be set when workflow.enabled is true", nil)
	}
	if strings.EqualFold(c.Workflow.Stage1, c.Workflow.Stage2) {
		return services.Wrap(services.ErrConfiguration, "config", "validate workflow",
			fmt.Sprintf("workflow.stage_1 and workflow.stage_2 are both %q; a transition onto itself does nothing", c.Workflow.Stage1), nil)
	}
	return nil
}

func (c *Config) validateClassifier() error {
	if c.Classifier.MaxNameLength < 0 {
		return errors.New("classifier.max_name_length must be positive")
	}
	if c.Classifier.MaxWordCount < 0 {
		return errors.New("classifier.max_word_count must be positive")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Workers < 0 {
		return errors.New("scan.workers must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
