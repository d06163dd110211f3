package tags_test

import (
	"testing"

	"shelves/internal/tags"
)

func TestParseShelfTag(t *testing.T) {
	cases := []struct {
		value      string
		wantName   string
		wantManual bool
	}{
		{"Standard", "Standard", false},
		{" Incoming ", "Incoming", false},
		{"Soundtrack; manual", "Soundtrack", true},
		{"Soundtrack ; manual", "Soundtrack", true},
		{"", "", false},
		{"; manual", "", true},
	}
	for _, tc := range cases {
		name, manual := tags.ParseShelfTag(tc.value)
		if name != tc.wantName || manual != tc.wantManual {
			t.Fatalf("ParseShelfTag(%q) = %q, %v", tc.value, name, manual)
		}
		if got := tags.ShelfFromTag(tc.value); got != tc.wantName {
			t.Fatalf("ShelfFromTag(%q) = %q", tc.value, got)
		}
	}
}

func TestFormatShelfTagRoundTrip(t *testing.T) {
	value := tags.FormatShelfTag("Soundtrack", true)
	if value != "Soundtrack; manual" {
		t.Fatalf("unexpected value %q", value)
	}
	if tags.FormatShelfTag("", true) != "" {
		t.Fatal("empty name should stay empty")
	}
}

func TestMetadata(t *testing.T) {
	md := tags.NewMetadata(map[string]string{tags.KeyAlbumID: " abc "})
	if !tags.HasAlbumID(md) || tags.AlbumID(md) != "abc" {
		t.Fatalf("unexpected album id %q", tags.AlbumID(md))
	}
	md.SetTag(tags.KeyShelf, "Standard")
	if md.GetTag(tags.KeyShelf) != "Standard" {
		t.Fatal("expected shelf tag")
	}
	snapshot := md.Map()
	md.SetTag(tags.KeyShelf, "")
	if md.GetTag(tags.KeyShelf) != "" {
		t.Fatal("expected empty value to delete the tag")
	}
	if snapshot[tags.KeyShelf] != "Standard" {
		t.Fatal("Map should return a copy")
	}

	var zero tags.Metadata
	zero.SetTag("k", "v")
	if zero.GetTag("k") != "v" {
		t.Fatal("zero Metadata should be usable")
	}
	if tags.HasAlbumID(nil) {
		t.Fatal("nil store has no album id")
	}
}
