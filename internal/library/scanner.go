package library

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"shelves/internal/logging"
)

// FileFunc handles one file. Returning an error records the file as failed;
// the scan continues with the remaining files.
type FileFunc func(ctx context.Context, path string) error

// FileError is one failed file.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e FileError) Unwrap() error { return e.Err }

// Summary is the outcome of a scan.
type Summary struct {
	Processed int
	Failed    []FileError
}

// Err joins all per-file errors, or returns nil.
func (s Summary) Err() error {
	errs := make([]error, len(s.Failed))
	for i, fe := range s.Failed {
		errs[i] = fe
	}
	return errors.Join(errs...)
}

// Scanner runs a FileFunc over many files with bounded concurrency.
type Scanner struct {
	workers  int
	logger   *slog.Logger
	progress func(done int)
}

// NewScanner returns a scanner running at most workers files at once.
func NewScanner(workers int, logger *slog.Logger) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{workers: workers, logger: logging.NewComponentLogger(logger, "scanner")}
}

// OnProgress registers fn to be called after each file with the number of
// files finished so far. fn may be called from several goroutines.
func (s *Scanner) OnProgress(fn func(done int)) {
	s.progress = fn
}

// Run calls fn for each file. Per-file errors are collected into the
// Summary; the returned error is non-nil only when ctx ends the scan early.
func (s *Scanner) Run(ctx context.Context, files []string, fn FileFunc) (Summary, error) {
	var (
		mu      sync.Mutex
		failed  []FileError
		done    atomic.Int64
		summary Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fn(gctx, path); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				s.logger.Debug("file failed", logging.String(logging.FieldPath, path), logging.Error(err))
				mu.Lock()
				failed = append(failed, FileError{Path: path, Err: err})
				mu.Unlock()
			}
			n := done.Add(1)
			if s.progress != nil {
				s.progress(int(n))
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	summary.Processed = int(done.Load())
	summary.Failed = failed
	if len(failed) > 0 {
		logging.WarnWithContext(s.logger, "scan finished with failures", "scan_failures",
			logging.Int("failed", len(failed)),
			logging.Int("processed", summary.Processed),
			logging.String(logging.FieldErrorHint, "rerun with --log-level debug for per-file errors"),
			logging.String(logging.FieldImpact, "failed files keep their previous shelf"),
		)
	}
	return summary, err
}
