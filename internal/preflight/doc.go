// Package preflight provides readiness checks for the filesystem paths and
// state files shelves depends on.
//
// The CLI "shelves check" command runs RunAll and renders each Result. Checks
// never fail hard; a broken path or state file becomes a failed Result with a
// detail message so every problem is reported in one pass.
package preflight
