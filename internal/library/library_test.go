package library_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"shelves/internal/library"
	"shelves/internal/services"
	"shelves/internal/testsupport"
)

func buildLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testsupport.WriteTracks(t, root,
		"Standard/Artist/Album/01.flac",
		"Standard/Artist/Album/02.MP3",
		"Standard/Artist/Album/cover.jpg",
		"Incoming/Other/01.ogg",
		".trash/old.mp3",
		"Standard/.hidden.mp3",
		"loose.mp3",
	)
	if err := os.MkdirAll(filepath.Join(root, "Empty Shelf"), 0o755); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestTopLevelDirs(t *testing.T) {
	root := buildLibrary(t)
	dirs, err := library.TopLevelDirs(root)
	if err != nil {
		t.Fatalf("TopLevelDirs: %v", err)
	}
	if got := strings.Join(dirs, ","); got != "Empty Shelf,Incoming,Standard" {
		t.Fatalf("unexpected dirs %q", got)
	}
	if _, err := library.TopLevelDirs(filepath.Join(root, "missing")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAudioFiles(t *testing.T) {
	root := buildLibrary(t)
	files, err := library.AudioFiles(context.Background(), root, []string{".mp3", ".flac", ".ogg"})
	if err != nil {
		t.Fatalf("AudioFiles: %v", err)
	}
	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatal(err)
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	want := []string{
		"Incoming/Other/01.ogg",
		"Standard/Artist/Album/01.flac",
		"Standard/Artist/Album/02.MP3",
		"loose.mp3",
	}
	if !slices.Equal(rel, want) {
		t.Fatalf("unexpected files %v", rel)
	}
}

func TestAudioFilesHonoursCancellation(t *testing.T) {
	root := buildLibrary(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := library.AudioFiles(ctx, root, []string{".mp3"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestScannerCollectsFailures(t *testing.T) {
	files := []string{"a", "b", "c", "d", "e"}
	scanner := library.NewScanner(2, nil)
	var progress atomic.Int64
	scanner.OnProgress(func(int) { progress.Add(1) })

	var active, peak atomic.Int64
	summary, err := scanner.Run(context.Background(), files, func(_ context.Context, path string) error {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer active.Add(-1)
		if path == "c" {
			return errors.New("unreadable")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != len(files) || progress.Load() != int64(len(files)) {
		t.Fatalf("unexpected summary %+v progress=%d", summary, progress.Load())
	}
	if len(summary.Failed) != 1 || summary.Failed[0].Path != "c" {
		t.Fatalf("unexpected failures %+v", summary.Failed)
	}
	if summary.Err() == nil || !strings.Contains(summary.Err().Error(), "c: unreadable") {
		t.Fatalf("unexpected joined error %v", summary.Err())
	}
	if peak.Load() > 2 {
		t.Fatalf("worker limit exceeded: %d", peak.Load())
	}
}

func TestScannerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	files := make([]string, 100)
	for i := range files {
		files[i] = "f"
	}
	var calls atomic.Int64
	summary, err := library.NewScanner(1, nil).Run(ctx, files, func(context.Context, string) error {
		if calls.Add(1) == 3 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if summary.Processed >= len(files) {
		t.Fatalf("scan did not stop early: %+v", summary)
	}
}

func TestSummaryErrNil(t *testing.T) {
	if (library.Summary{}).Err() != nil {
		t.Fatal("expected nil error for clean summary")
	}
}
