package shelf_test

import (
	"path/filepath"
	"testing"

	"shelves/internal/shelf"
)

func TestTopLevelSegment(t *testing.T) {
	root := filepath.FromSlash("/home/listener/Music")
	cases := []struct {
		name string
		path string
		want string
	}{
		{"nested shelf", "/home/listener/Music/Standard/Artist/Album/track.mp3", "Standard"},
		{"artist album folder", "/home/listener/Music/Wardruna - Runaljod - Yggdrasil/track.mp3", "Wardruna - Runaljod - Yggdrasil"},
		{"file at root", "/home/listener/Music/track.mp3", ""},
		{"outside root", "/home/listener/Downloads/Standard/track.mp3", ""},
		{"sibling prefix", "/home/listener/Music2/Standard/track.mp3", ""},
		{"unclean path", "/home/listener/Music/./Incoming/../Incoming/a/track.flac", "Incoming"},
		{"root itself", "/home/listener/Music", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := shelf.TopLevelSegment(filepath.FromSlash(tc.path), root)
			if got != tc.want {
				t.Fatalf("TopLevelSegment(%q) = %q, want %q", tc.path, got, tc.want)
			}
		})
	}
}

func TestTopLevelSegmentTrailingSlashRoot(t *testing.T) {
	got := shelf.TopLevelSegment(filepath.FromSlash("/srv/music/Soundtrack/Album/01.flac"), filepath.FromSlash("/srv/music/"))
	if got != "Soundtrack" {
		t.Fatalf("unexpected segment %q", got)
	}
}
