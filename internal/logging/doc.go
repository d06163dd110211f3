// Package logging assembles structured slog loggers and attribute helpers used
// across the shelves packages.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so bulk scans can tag every log line with
// the correlation identifier and operation that produced it. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so classification
// warnings and registry events share one shape.
package logging
