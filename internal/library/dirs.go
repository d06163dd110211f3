package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"shelves/internal/services"
)

// TopLevelDirs returns the names of the directories directly below root in
// name order. Hidden directories are skipped.
func TopLevelDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "library", "list dirs",
				fmt.Sprintf("library root %s does not exist", root), err)
		}
		return nil, fmt.Errorf("read library root: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// AudioFiles walks root and returns every file whose extension is in exts,
// sorted by path. Hidden files and directories are skipped. Matching
// ignores case; exts entries carry their leading dot.
func AudioFiles(ctx context.Context, root string, exts []string) ([]string, error) {
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "library", "walk",
				fmt.Sprintf("library root %s does not exist", root), err)
		}
		return nil, fmt.Errorf("walk library: %w", err)
	}
	slices.Sort(files)
	return files, nil
}
