// Package shelf decides which top-level library partition ("shelf") a file
// belongs to.
//
// It owns three tightly coupled pieces:
//   - name rules: normalization, case-insensitive keys, and validation of
//     shelf names;
//   - the Registry: the ordered, case-insensitively unique set of known
//     shelves plus the default shelf, safe for concurrent use by scan workers
//     and settings edits;
//   - the Classifier: an ordered chain of suspicion heuristics that tells a
//     deliberate shelf folder apart from a misplaced "Artist - Album" folder.
//
// TopLevelSegment extracts the candidate folder name from a file path. The
// classifier always consults registry membership before any heuristic, so a
// shelf that was registered once is honoured forever after.
package shelf
