package shelf

import (
	"path/filepath"
	"strings"
)

// TopLevelSegment returns the first directory of filePath below libraryRoot.
// It returns "" when the file is outside the root or sits directly in it.
// Both paths are cleaned lexically; no filesystem access happens here.
func TopLevelSegment(filePath, libraryRoot string) string {
	if strings.TrimSpace(filePath) == "" || strings.TrimSpace(libraryRoot) == "" {
		return ""
	}
	rel, err := filepath.Rel(filepath.Clean(libraryRoot), filepath.Clean(filePath))
	if err != nil {
		return ""
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) <= 1 {
		return ""
	}
	return parts[0]
}
