package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// placeholderAudio stands in for track content. Nothing in the library layer
// decodes audio, so any non-empty payload will do.
var placeholderAudio = []byte("ID3\x04\x00\x00")

// WriteTracks creates each slash-separated path under root with placeholder
// content and returns the absolute paths in the order given.
func WriteTracks(t testing.TB, root string, rels ...string) []string {
	t.Helper()

	paths := make([]string, 0, len(rels))
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, placeholderAudio, 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
		paths = append(paths, path)
	}
	return paths
}
