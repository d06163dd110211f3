package resolve_test

import (
	"context"
	"testing"

	"shelves/internal/resolve"
	"shelves/internal/services"
	"shelves/internal/tags"
	"shelves/internal/workflow"
)

func newProcessor(t *testing.T) *resolve.Processor {
	t.Helper()
	engine := workflow.NewEngine(workflow.Config{Enabled: true, Stage1: "Incoming", Stage2: "Standard"}, nil)
	return resolve.NewProcessor(newPipeline(t, nil), nil, engine, musicRoot, nil)
}

func TestProcessLoadedFileTagsAndVotes(t *testing.T) {
	proc := newProcessor(t)
	ctx := services.WithRequestID(context.Background(), "scan-1")

	md := tags.NewMetadata(map[string]string{tags.KeyAlbumID: "album-1"})
	if got := proc.ProcessLoadedFile(ctx, musicRoot+"/Incoming/Artist/Album/01.flac", md); got != "Incoming" {
		t.Fatalf("unexpected shelf %q", got)
	}
	if md.GetTag(tags.KeyShelf) != "Incoming" {
		t.Fatalf("expected shelf tag, got %q", md.GetTag(tags.KeyShelf))
	}
	if winner, ok := proc.Votes().Winner("album-1"); !ok || winner != "Incoming" {
		t.Fatalf("unexpected winner %q %v", winner, ok)
	}
	if got := proc.EffectiveShelf(md); got != "Standard" {
		t.Fatalf("expected workflow transition, got %q", got)
	}
}

func TestProcessLoadedFileWithoutAlbumID(t *testing.T) {
	proc := newProcessor(t)
	md := tags.NewMetadata(nil)
	if got := proc.ProcessLoadedFile(context.Background(), musicRoot+"/Standard/Artist/Album/track.mp3", md); got != "" {
		t.Fatalf("unexpected shelf %q", got)
	}
	if md.GetTag(tags.KeyShelf) != "" {
		t.Fatal("shelf tag must stay unset")
	}
	if proc.Votes().Len() != 0 {
		t.Fatal("unexpected votes")
	}
}

func TestProcessLoadedFileKeepsManualShelf(t *testing.T) {
	proc := newProcessor(t)
	md := tags.NewMetadata(map[string]string{
		tags.KeyAlbumID: "album-1",
		tags.KeyShelf:   "Christmas; manual",
	})
	if got := proc.ProcessLoadedFile(context.Background(), musicRoot+"/Standard/Artist/track.mp3", md); got != "Christmas" {
		t.Fatalf("unexpected shelf %q", got)
	}
	if md.GetTag(tags.KeyShelf) != "Christmas; manual" {
		t.Fatalf("manual tag overwritten: %q", md.GetTag(tags.KeyShelf))
	}
}

func TestApplyAlbumShelfUsesWinner(t *testing.T) {
	proc := newProcessor(t)
	ctx := context.Background()
	for _, path := range []string{
		musicRoot + "/Standard/Artist/Album/01.mp3",
		musicRoot + "/Standard/Artist/Album/02.mp3",
		musicRoot + "/Incoming/Artist/Album/03.mp3",
	} {
		proc.ProcessLoadedFile(ctx, path, tags.NewMetadata(map[string]string{tags.KeyAlbumID: "album-1"}))
	}

	track := tags.NewMetadata(map[string]string{tags.KeyAlbumID: "album-1"})
	if got, ok := proc.ApplyAlbumShelf(track); !ok || got != "Standard" {
		t.Fatalf("unexpected album shelf %q %v", got, ok)
	}
	if track.GetTag(tags.KeyShelf) != "Standard" {
		t.Fatal("expected track tag to be set")
	}

	proc.ProcessSavedFile(ctx, track)
	if _, ok := proc.ApplyAlbumShelf(tags.NewMetadata(map[string]string{tags.KeyAlbumID: "album-1"})); ok {
		t.Fatal("expected votes to be cleared after save")
	}
}
