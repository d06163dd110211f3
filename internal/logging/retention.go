package logging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultRotateBytes is the size at which shelves.log is moved aside.
const DefaultRotateBytes int64 = 10 << 20

const archiveStamp = "20060102-150405"

// ArchiveName is the name a rotated copy of logPath gets at now:
// shelves.log becomes shelves-20260102-150405.log.
func ArchiveName(logPath string, now time.Time) string {
	dir, base := filepath.Split(logPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+"-"+now.UTC().Format(archiveStamp)+ext)
}

// RotateIfLarger renames logPath to its archive name once it has reached
// limit bytes. It returns the archive path, or "" when nothing was rotated.
// A missing log file or a limit <= 0 rotates nothing.
func RotateIfLarger(logPath string, limit int64, now time.Time) (string, error) {
	if limit <= 0 {
		return "", nil
	}
	info, err := os.Stat(logPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < limit {
		return "", nil
	}
	archive := ArchiveName(logPath, now)
	if err := os.Rename(logPath, archive); err != nil {
		return "", fmt.Errorf("rotate log file: %w", err)
	}
	return archive, nil
}

// PruneArchives deletes rotated copies of logPath last modified more than
// retentionDays before now, and returns the deleted paths. The active log is
// never touched. A retentionDays value <= 0 disables pruning.
func PruneArchives(logger *slog.Logger, logPath string, retentionDays int, now time.Time) []string {
	if retentionDays <= 0 {
		return nil
	}
	dir, base := filepath.Split(logPath)
	ext := filepath.Ext(base)
	pattern := filepath.Join(dir, strings.TrimSuffix(base, ext)+"-*"+ext)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}

	cutoff := now.AddDate(0, 0, -retentionDays)
	var removed []string
	for _, path := range matches {
		if path == logPath {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log archive not removed", "log_retention_failed",
				String(FieldPath, path),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
				String(FieldImpact, "old log archive remains on disk"),
			)
			continue
		}
		removed = append(removed, path)
		if logger != nil {
			logger.Info("log archive pruned",
				String(FieldPath, path),
				String(FieldEventType, "log_pruned"),
			)
		}
	}
	return removed
}
