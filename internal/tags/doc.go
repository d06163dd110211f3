// Package tags defines the tag keys shelves reads and writes and the store
// abstraction a host exposes for a single file.
package tags
