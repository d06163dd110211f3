// Package services defines shared plumbing consumed by the shelf core, the
// action dispatcher, and the CLI host.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that classify failures as
//     user-facing rejections (validation, protected shelf, unknown shelf) or
//     operational faults.
//   - Context helpers that stamp correlation identifiers and component names
//     so bulk scans can be traced across worker goroutines.
//
// Use these helpers when wiring new operations so rejection reporting and
// observability stay uniform.
package services
