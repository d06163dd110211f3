// Package main hosts the shelves CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration once, restores the saved
// shelf settings, and surfaces the shelf operations: registry maintenance,
// library scans that tag files in the catalog, manual reassignment, and the
// workflow transition. Commands that change the registry save the settings
// before returning.
//
// Keep this package lean: add behaviour to the internal packages first, then
// surface it through dedicated commands or flags here.
package main
