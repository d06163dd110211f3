// Package catalog is the CLI's tag store: a SQLite database recording each
// library file and its tags (shelf, release identifier) plus a history of
// bulk scans.
//
// Open applies the schema on first use and refuses databases written by a
// different schema version. Writes retry briefly on SQLITE_BUSY so several
// CLI invocations can share one catalog.
package catalog
