// Package actions implements the named shelf operations as a tagged command
// set. A Command names its Kind and carries explicit parameters; Dispatcher
// executes it and returns a Result with the aggregate outcome, so bulk
// commands keep going past individual rejections.
//
// Dispatcher mutates the in-memory registry and file tags only. Callers
// persist settings when Result.Changed reports a registry change.
package actions
