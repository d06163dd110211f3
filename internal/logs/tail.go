package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const maxLineSize = 1024 * 1024

// Filter selects log lines. Empty fields match everything.
type Filter struct {
	EventType string
	Contains  string
}

// Match reports whether line passes f.
func (f Filter) Match(line string) bool {
	if text := strings.TrimSpace(f.Contains); text != "" && !strings.Contains(strings.ToLower(line), strings.ToLower(text)) {
		return false
	}
	event := strings.TrimSpace(f.EventType)
	if event == "" {
		return true
	}
	if strings.Contains(line, `"event_type":"`+event+`"`) {
		return true
	}
	for _, field := range strings.Fields(line) {
		if field == "event_type="+event {
			return true
		}
	}
	return false
}

func (f Filter) apply(lines []string) []string {
	if f == (Filter{}) {
		return lines
	}
	out := lines[:0]
	for _, line := range lines {
		if f.Match(line) {
			out = append(out, line)
		}
	}
	return out
}

// Tail returns up to limit matching lines from the end of path and the
// offset of the end of the file. A missing file yields no lines and offset 0.
// A limit <= 0 returns every matching line.
func Tail(path string, limit int, filter Filter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}

	var (
		ring  []string
		next  int
		count int
	)
	if limit > 0 {
		ring = make([]string, limit)
	}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if !filter.Match(line) {
			continue
		}
		if limit <= 0 {
			ring = append(ring, line)
			count++
			continue
		}
		ring[next] = line
		next = (next + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}
	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}

	if limit <= 0 || count < limit {
		return ring[:count], offset, nil
	}
	lines := make([]string, count)
	for i := range count {
		lines[i] = ring[(next+i)%limit]
	}
	return lines, offset, nil
}

// ReadFrom returns the complete lines written after offset and the offset
// after the last complete line. An offset past the end of the file (after
// rotation or truncation) restarts from the beginning.
func ReadFrom(path string, offset int64, filter Filter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReader(file)
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		lines = append(lines, strings.TrimRight(line, "\r\n"))
	}
	return filter.apply(lines), offset, nil
}

// Follow polls path every interval and passes new matching lines to fn until
// ctx ends or fn returns an error. It returns nil when ctx is cancelled.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, filter Filter, fn func([]string) error) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		lines, next, err := ReadFrom(path, offset, filter)
		if err != nil {
			return err
		}
		offset = next
		if len(lines) > 0 {
			if err := fn(lines); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
