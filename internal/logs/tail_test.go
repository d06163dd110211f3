package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"shelves/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shelves.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	lines, offset, err := logs.Tail(path, 2, logs.Filter{})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if !slices.Equal(lines, []string{"b", "c"}) {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != int64(len("a\nb\nc\n")) {
		t.Fatalf("expected offset at end of file, got %d", offset)
	}

	all, _, err := logs.Tail(path, 0, logs.Filter{})
	if err != nil {
		t.Fatalf("tail all: %v", err)
	}
	if !slices.Equal(all, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected lines: %#v", all)
	}
}

func TestTailMissingFile(t *testing.T) {
	lines, offset, err := logs.Tail(filepath.Join(t.TempDir(), "missing.log"), 10, logs.Filter{})
	if err != nil || len(lines) != 0 || offset != 0 {
		t.Fatalf("expected empty result, got %v %d %v", lines, offset, err)
	}
}

func TestFilterMatchesBothFormats(t *testing.T) {
	console := "2026-01-02 10:00:00 WARN resolve: folder rejected as shelf event_type=shelf_rejected candidate=\"Wardruna - Runaljod\""
	jsonLine := `{"level":"WARN","msg":"folder rejected as shelf","event_type":"shelf_rejected"}`
	other := "2026-01-02 10:00:01 INFO resolve: learned shelf event_type=shelf_learned shelf=Soundtrack"

	f := logs.Filter{EventType: "shelf_rejected"}
	if !f.Match(console) || !f.Match(jsonLine) {
		t.Fatal("expected both formats to match")
	}
	if f.Match(other) {
		t.Fatal("unexpected match for another event")
	}
	if (logs.Filter{EventType: "shelf"}).Match(console) {
		t.Fatal("event type must match exactly")
	}
	if !(logs.Filter{Contains: "soundtrack"}).Match(other) {
		t.Fatal("contains should ignore case")
	}

	path := writeLog(t, console+"\n"+other+"\n"+jsonLine+"\n")
	lines, _, err := logs.Tail(path, 10, f)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if !slices.Equal(lines, []string{console, jsonLine}) {
		t.Fatalf("unexpected filtered lines: %#v", lines)
	}
}

func TestReadFromSkipsPartialLines(t *testing.T) {
	path := writeLog(t, "first\nsecond\npart")

	lines, offset, err := logs.ReadFrom(path, 0, logs.Filter{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !slices.Equal(lines, []string{"first", "second"}) {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != int64(len("first\nsecond\n")) {
		t.Fatalf("unexpected offset %d", offset)
	}

	lines, _, err = logs.ReadFrom(path, 1<<20, logs.Filter{})
	if err != nil {
		t.Fatalf("read past end: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected restart from the beginning, got %#v", lines)
	}
}

func TestFollowDeliversNewLines(t *testing.T) {
	path := writeLog(t, "start\n")
	_, offset, err := logs.Tail(path, 1, logs.Filter{})
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var (
		mu  sync.Mutex
		got []string
	)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 20*time.Millisecond, logs.Filter{}, func(lines []string) error {
			mu.Lock()
			got = append(got, lines...)
			mu.Unlock()
			cancel()
			return nil
		})
	}()

	time.Sleep(50 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("follow: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("follow did not return")
	}
	mu.Lock()
	defer mu.Unlock()
	if !slices.Equal(got, []string{"later"}) {
		t.Fatalf("unexpected followed lines: %#v", got)
	}
}
