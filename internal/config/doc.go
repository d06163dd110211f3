// Package config loads, normalizes, and validates shelves configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the SHELVES_LIBRARY_DIR
// environment fallback. The Config type centralizes the library root, the
// seed shelf list, the workflow transition, and the classifier policy so the
// CLI and the core packages discover them in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
