// Package settings persists the user-editable shelf settings: the ordered
// shelf list, the default shelf and the workflow record.
//
// FileStore keeps them in a TOML file under the state directory. Writers take
// an exclusive flock on a sibling lock file and replace the file atomically,
// so a CLI invocation never reads a half-written file from another one.
package settings
