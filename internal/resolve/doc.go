// Package resolve turns a file path into a shelf assignment.
//
// Pipeline combines the path segmenter, the classifier and the registry:
// plausible new shelf names are learned on the fly, suspicious ones fall
// back to the default shelf with a warning. Files without a release
// identifier never receive a shelf.
//
// Votes and Processor cover the per-album side: files of one release may sit
// in different folders, so every loaded file votes and the release takes the
// shelf with the most votes.
package resolve
