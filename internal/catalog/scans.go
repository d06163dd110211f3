package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Scan is one recorded bulk scan.
type Scan struct {
	ID         string
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time
	Files      int
	Tagged     int
	Skipped    int
	Failed     int
}

// Finished reports whether the scan completed.
func (s Scan) Finished() bool { return !s.FinishedAt.IsZero() }

// BeginScan records the start of a scan of root and returns it with a new id.
func (s *Store) BeginScan(ctx context.Context, root string) (Scan, error) {
	scan := Scan{ID: uuid.NewString(), Root: root, StartedAt: time.Now().UTC()}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO scans (id, root, started_at) VALUES (?, ?, ?)",
			scan.ID, scan.Root, formatTime(scan.StartedAt),
		)
		return err
	})
	if err != nil {
		return Scan{}, fmt.Errorf("begin scan: %w", err)
	}
	return scan, nil
}

// FinishScan stores the final counters of scan.
func (s *Store) FinishScan(ctx context.Context, scan Scan) error {
	if scan.FinishedAt.IsZero() {
		scan.FinishedAt = time.Now().UTC()
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE scans SET finished_at = ?, files = ?, tagged = ?, skipped = ?, failed = ?
             WHERE id = ?`,
			formatTime(scan.FinishedAt), scan.Files, scan.Tagged, scan.Skipped, scan.Failed, scan.ID,
		)
		return err
	})
}

// RecentScans returns up to limit scans, newest first.
func (s *Store) RecentScans(ctx context.Context, limit int) ([]Scan, error) {
	ctx = orBackground(ctx)
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, started_at, COALESCE(finished_at, ''), files, tagged, skipped, failed
         FROM scans ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var scans []Scan
	for rows.Next() {
		var (
			scan              Scan
			started, finished string
		)
		if err := rows.Scan(&scan.ID, &scan.Root, &started, &finished,
			&scan.Files, &scan.Tagged, &scan.Skipped, &scan.Failed); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		scan.StartedAt = parseTime(started)
		scan.FinishedAt = parseTime(finished)
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}
