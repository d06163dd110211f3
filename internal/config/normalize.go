package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeShelves()
	c.normalizeWorkflow()
	c.normalizeClassifier()
	c.normalizeScan()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if !c.libraryDirSet {
		if value, ok := os.LookupEnv("SHELVES_LIBRARY_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.LibraryDir = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Paths.LibraryDir, err = expandPath(strings.TrimSpace(c.Paths.LibraryDir)); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeShelves() {
	c.Shelves.Default = strings.TrimSpace(c.Shelves.Default)
	seed := make([]string, 0, len(c.Shelves.Seed))
	seen := make(map[string]struct{}, len(c.Shelves.Seed))
	for _, name := range c.Shelves.Seed {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		seed = append(seed, trimmed)
	}
	c.Shelves.Seed = seed
}

func (c *Config) normalizeWorkflow() {
	c.Workflow.Stage1 = strings.TrimSpace(c.Workflow.Stage1)
	c.Workflow.Stage2 = strings.TrimSpace(c.Workflow.Stage2)
}

func (c *Config) normalizeClassifier() {
	if c.Classifier.MaxNameLength == 0 {
		c.Classifier.MaxNameLength = defaultMaxNameLength
	}
	if c.Classifier.MaxWordCount == 0 {
		c.Classifier.MaxWordCount = defaultMaxWordCount
	}
	indicators := make([]string, 0, len(c.Classifier.AlbumIndicators))
	seen := make(map[string]struct{}, len(c.Classifier.AlbumIndicators))
	for _, token := range c.Classifier.AlbumIndicators {
		normalized := strings.ToLower(strings.TrimSpace(token))
		normalized = strings.TrimSuffix(normalized, ".")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		indicators = append(indicators, normalized)
	}
	c.Classifier.AlbumIndicators = indicators
}

func (c *Config) normalizeScan() {
	if c.Scan.Workers == 0 {
		c.Scan.Workers = defaultScanWorkers
	}
	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = append([]string(nil), defaultAudioExtensions...)
		return
	}
	exts := make([]string, 0, len(c.Scan.Extensions))
	seen := make(map[string]struct{}, len(c.Scan.Extensions))
	for _, ext := range c.Scan.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	c.Scan.Extensions = exts
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
