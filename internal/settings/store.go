package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"shelves/internal/fileutil"
	"shelves/internal/logging"
	"shelves/internal/services"
)

const lockRetryDelay = 25 * time.Millisecond

// FileStore reads and writes Settings as TOML.
type FileStore struct {
	path     string
	lockPath string
	mu       sync.Mutex
	logger   *slog.Logger
}

// NewFileStore returns a store for the settings file at path. The lock file
// lives next to it.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:     path,
		lockPath: path + ".lock",
		logger:   logging.NewComponentLogger(logger, "settings"),
	}
}

// Path returns the settings file location.
func (f *FileStore) Path() string { return f.path }

// Load reads the settings file. A missing file yields an error marked
// services.ErrNotFound so callers can seed defaults.
func (f *FileStore) Load(ctx context.Context) (Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lock, err := f.newLock()
	if err != nil {
		return Settings{}, err
	}
	if err := acquire(ctx, lock.TryRLockContext); err != nil {
		return Settings{}, err
	}
	defer func() { _ = lock.Unlock() }()

	return f.read()
}

// Update applies fn to the stored settings under one exclusive lock and writes
// the result back once it validates. fn sees the zero Settings when no file
// exists yet; an error from fn leaves the file untouched.
func (f *FileStore) Update(ctx context.Context, fn func(*Settings) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	lock, err := f.newLock()
	if err != nil {
		return err
	}
	if err := acquire(ctx, lock.TryLockContext); err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	current, err := f.read()
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		return err
	}
	if err := fn(&current); err != nil {
		return err
	}
	if err := current.Validate(); err != nil {
		return err
	}
	return f.write(current)
}

func (f *FileStore) read() (Settings, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Settings{}, services.Wrap(services.ErrNotFound, "settings", "load",
				fmt.Sprintf("no settings at %s", f.path), nil)
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	var s Settings
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, services.Wrap(services.ErrConfiguration, "settings", "load",
			fmt.Sprintf("parse %s", f.path), err)
	}
	if s.Version > CurrentVersion {
		return Settings{}, services.Wrap(services.ErrConfiguration, "settings", "load",
			fmt.Sprintf("settings version %d is newer than supported version %d", s.Version, CurrentVersion), nil)
	}
	return s, nil
}

func (f *FileStore) write(s Settings) error {
	s.Version = CurrentVersion
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := fileutil.WriteFileAtomic(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	f.logger.Debug("settings saved",
		logging.String(logging.FieldPath, f.path),
		logging.Int("shelves", len(s.Shelves)),
		logging.String("default_shelf", s.Default),
	)
	return nil
}

func (f *FileStore) newLock() (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(f.lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create settings directory: %w", err)
	}
	return flock.New(f.lockPath), nil
}

func acquire(ctx context.Context, try func(context.Context, time.Duration) (bool, error)) error {
	ok, err := try(ctx, lockRetryDelay)
	if err != nil {
		return services.Wrap(services.ErrTransient, "settings", "lock", "acquire settings lock", err)
	}
	if !ok {
		return services.Wrap(services.ErrTransient, "settings", "lock", "settings are locked by another process", nil)
	}
	return nil
}
