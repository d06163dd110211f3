// Package library reads the on-disk layout of a music library: the
// top-level folders that act as shelves and the audio files below them.
// Scanner fans per-file work out to a bounded pool of workers.
package library
