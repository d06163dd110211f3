package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"shelves/internal/services"
	"shelves/internal/tags"
)

// File is one catalogued library file.
type File struct {
	Path      string
	Tags      map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Shelf returns the stored shelf tag value.
func (f File) Shelf() string { return f.Tags[tags.KeyShelf] }

// AlbumID returns the stored release identifier.
func (f File) AlbumID() string { return f.Tags[tags.KeyAlbumID] }

// Metadata returns the file's tags as a tags.Store.
func (f File) Metadata() *tags.Metadata { return tags.NewMetadata(f.Tags) }

// ListFilter narrows List. Empty fields match everything.
type ListFilter struct {
	// Shelf matches the shelf tag without its manual marker, ignoring case.
	Shelf string
	// PathPrefix matches files below a directory.
	PathPrefix string
}

// Upsert records path, keeping existing tags.
func (s *Store) Upsert(ctx context.Context, path string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return upsertFile(ctx, tx, path, time.Now())
	})
}

// SaveTags records path and replaces all of its tags with values. Empty
// values are dropped.
func (s *Store) SaveTags(ctx context.Context, path string, values map[string]string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := upsertFile(ctx, tx, path, time.Now()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM file_tags WHERE path = ?", path); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		for _, key := range slices.Sorted(maps.Keys(values)) {
			value := values[key]
			if value == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO file_tags (path, key, value) VALUES (?, ?, ?)", path, key, value,
			); err != nil {
				return fmt.Errorf("insert tag %s: %w", key, err)
			}
		}
		return nil
	})
}

// SetTag records path and sets one tag. An empty value deletes the tag.
func (s *Store) SetTag(ctx context.Context, path, key, value string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := upsertFile(ctx, tx, path, time.Now()); err != nil {
			return err
		}
		if value == "" {
			_, err := tx.ExecContext(ctx, "DELETE FROM file_tags WHERE path = ? AND key = ?", path, key)
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO file_tags (path, key, value) VALUES (?, ?, ?)
             ON CONFLICT(path, key) DO UPDATE SET value = excluded.value`,
			path, key, value,
		)
		return err
	})
}

// Get returns the file at path, or an error marked services.ErrNotFound.
func (s *Store) Get(ctx context.Context, path string) (*File, error) {
	ctx = orBackground(ctx)
	var created, updated string
	err := s.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM files WHERE path = ?", path,
	).Scan(&created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "get", fmt.Sprintf("%s is not catalogued", path), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	file := &File{Path: path, CreatedAt: parseTime(created), UpdatedAt: parseTime(updated), Tags: map[string]string{}}

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM file_tags WHERE path = ?", path)
	if err != nil {
		return nil, fmt.Errorf("get tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		file.Tags[key] = value
	}
	return file, rows.Err()
}

// Metadata loads the tags of path. Unknown paths yield empty metadata.
func (s *Store) Metadata(ctx context.Context, path string) (*tags.Metadata, error) {
	file, err := s.Get(ctx, path)
	if errors.Is(err, services.ErrNotFound) {
		return tags.NewMetadata(nil), nil
	}
	if err != nil {
		return nil, err
	}
	return file.Metadata(), nil
}

// List returns catalogued files ordered by path.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]File, error) {
	ctx = orBackground(ctx)
	query := `SELECT f.path, f.created_at, f.updated_at, t.key, t.value
        FROM files f LEFT JOIN file_tags t ON t.path = f.path`
	var args []any
	if prefix := strings.TrimSpace(filter.PathPrefix); prefix != "" {
		query += " WHERE f.path = ? OR substr(f.path, 1, ?) = ?"
		dir := strings.TrimSuffix(prefix, "/") + "/"
		args = append(args, prefix, len(dir), dir)
	}
	query += " ORDER BY f.path, t.key"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var (
			path, created, updated string
			key, value             sql.NullString
		)
		if err := rows.Scan(&path, &created, &updated, &key, &value); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		if len(files) == 0 || files[len(files)-1].Path != path {
			files = append(files, File{
				Path:      path,
				CreatedAt: parseTime(created),
				UpdatedAt: parseTime(updated),
				Tags:      map[string]string{},
			})
		}
		if key.Valid {
			files[len(files)-1].Tags[key.String] = value.String
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if want := strings.TrimSpace(filter.Shelf); want != "" {
		filtered := files[:0]
		for _, f := range files {
			if strings.EqualFold(tags.ShelfFromTag(f.Shelf()), want) {
				filtered = append(filtered, f)
			}
		}
		files = filtered
	}
	return files, nil
}

// ShelfCounts returns the number of files per shelf tag, manual markers
// stripped. Files without a shelf are counted under "".
func (s *Store) ShelfCounts(ctx context.Context) (map[string]int, error) {
	ctx = orBackground(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(t.value, '') FROM files f
         LEFT JOIN file_tags t ON t.path = f.path AND t.key = ?`, tags.KeyShelf)
	if err != nil {
		return nil, fmt.Errorf("count shelves: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan shelf: %w", err)
		}
		counts[tags.ShelfFromTag(value)]++
	}
	return counts, rows.Err()
}

// Remove deletes path and its tags.
func (s *Store) Remove(ctx context.Context, path string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM files WHERE path = ?", path)
		return err
	})
}

func upsertFile(ctx context.Context, tx *sql.Tx, path string, now time.Time) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrValidation, "catalog", "upsert", "path cannot be empty", nil)
	}
	ts := formatTime(now)
	_, err := tx.ExecContext(ctx,
		`INSERT INTO files (path, created_at, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET updated_at = excluded.updated_at`,
		path, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("upsert file: %w", err)
	}
	return nil
}
