package catalog_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"shelves/internal/catalog"
	"shelves/internal/services"
	"shelves/internal/tags"
)

func openStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(filepath.Join(t.TempDir(), "state", "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveTagsAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	path := "/music/Standard/Artist/Album/01.flac"

	if err := store.SaveTags(ctx, path, map[string]string{
		tags.KeyShelf:   "Standard",
		tags.KeyAlbumID: "album-1",
		"comment":       "",
	}); err != nil {
		t.Fatalf("SaveTags: %v", err)
	}
	file, err := store.Get(ctx, path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if file.Shelf() != "Standard" || file.AlbumID() != "album-1" {
		t.Fatalf("unexpected tags %+v", file.Tags)
	}
	if _, ok := file.Tags["comment"]; ok {
		t.Fatal("empty values should not be stored")
	}
	if file.CreatedAt.IsZero() || file.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps")
	}

	if err := store.SaveTags(ctx, path, map[string]string{tags.KeyShelf: "Incoming"}); err != nil {
		t.Fatalf("SaveTags: %v", err)
	}
	file, err = store.Get(ctx, path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if file.AlbumID() != "" || file.Shelf() != "Incoming" {
		t.Fatalf("SaveTags should replace all tags, got %+v", file.Tags)
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	store := openStore(t)
	if _, err := store.Get(context.Background(), "/nope.mp3"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	md, err := store.Metadata(context.Background(), "/nope.mp3")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if len(md.Map()) != 0 {
		t.Fatal("expected empty metadata")
	}
}

func TestSetTag(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	path := "/music/a.mp3"
	if err := store.SetTag(ctx, path, tags.KeyAlbumID, "album-1"); err != nil {
		t.Fatalf("SetTag: %v", err)
	}
	if err := store.SetTag(ctx, path, tags.KeyAlbumID, "album-2"); err != nil {
		t.Fatalf("SetTag: %v", err)
	}
	md, err := store.Metadata(ctx, path)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if tags.AlbumID(md) != "album-2" {
		t.Fatalf("unexpected album id %q", tags.AlbumID(md))
	}
	if err := store.SetTag(ctx, path, tags.KeyAlbumID, ""); err != nil {
		t.Fatalf("SetTag: %v", err)
	}
	if md, _ := store.Metadata(ctx, path); tags.HasAlbumID(md) {
		t.Fatal("expected tag to be deleted")
	}
	if err := store.SetTag(ctx, " ", tags.KeyShelf, "x"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	fixtures := map[string]string{
		"/music/Standard/A/01.mp3":   "Standard",
		"/music/Standard/A/02.mp3":   "Standard",
		"/music/Incoming/B/01.mp3":   "Incoming; manual",
		"/music/Incomingx/C/01.mp3":  "",
		"/music/Soundtrack/D/01.mp3": "Soundtrack",
	}
	for path, shelfTag := range fixtures {
		if err := store.SaveTags(ctx, path, map[string]string{tags.KeyShelf: shelfTag}); err != nil {
			t.Fatalf("SaveTags: %v", err)
		}
	}

	all, err := store.List(ctx, catalog.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != len(fixtures) || all[0].Path != "/music/Incoming/B/01.mp3" {
		t.Fatalf("unexpected listing %+v", all)
	}

	incoming, err := store.List(ctx, catalog.ListFilter{Shelf: "incoming"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(incoming) != 1 || incoming[0].Path != "/music/Incoming/B/01.mp3" {
		t.Fatalf("unexpected shelf filter result %+v", incoming)
	}

	under, err := store.List(ctx, catalog.ListFilter{PathPrefix: "/music/Incoming"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(under) != 1 {
		t.Fatalf("prefix filter must not match sibling directories: %+v", under)
	}

	counts, err := store.ShelfCounts(ctx)
	if err != nil {
		t.Fatalf("ShelfCounts: %v", err)
	}
	if counts["Standard"] != 2 || counts["Incoming"] != 1 || counts[""] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestRemove(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if err := store.SaveTags(ctx, "/music/a.mp3", map[string]string{tags.KeyShelf: "Standard"}); err != nil {
		t.Fatalf("SaveTags: %v", err)
	}
	if err := store.Remove(ctx, "/music/a.mp3"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := store.Get(ctx, "/music/a.mp3"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	counts, err := store.ShelfCounts(ctx)
	if err != nil {
		t.Fatalf("ShelfCounts: %v", err)
	}
	if len(counts) != 0 {
		t.Fatalf("tags not cascaded: %v", counts)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.SetTag(context.Background(), "/music/a.mp3", tags.KeyShelf, "Standard"); err != nil {
		t.Fatalf("SetTag: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	file, err := reopened.Get(context.Background(), "/music/a.mp3")
	if err != nil || file.Shelf() != "Standard" {
		t.Fatalf("unexpected file %+v, %v", file, err)
	}
}

func TestOpenKeepsURIMetacharactersInPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "100% music?v=2#state")
	path := filepath.Join(dir, "catalog.db")
	store, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	if err := store.SetTag(context.Background(), "/music/a.mp3", tags.KeyShelf, "Standard"); err != nil {
		t.Fatalf("SetTag: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database at %s: %v", path, err)
	}
}

func TestOpenRejectsOtherCatalogVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set version: %v", err)
	}
	_ = db.Close()

	if _, err := catalog.Open(path); !errors.Is(err, catalog.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestConcurrentWrites(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := filepath.Join("/music/Standard", string(rune('a'+i))+".mp3")
			if err := store.SaveTags(ctx, path, map[string]string{tags.KeyShelf: "Standard"}); err != nil {
				t.Errorf("SaveTags: %v", err)
			}
		}(i)
	}
	wg.Wait()
	files, err := store.List(ctx, catalog.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 8 {
		t.Fatalf("expected 8 files, got %d", len(files))
	}
}

func TestScans(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	scan, err := store.BeginScan(ctx, "/music")
	if err != nil {
		t.Fatalf("BeginScan: %v", err)
	}
	if scan.ID == "" || scan.Finished() {
		t.Fatalf("unexpected scan %+v", scan)
	}
	scan.Files, scan.Tagged, scan.Skipped, scan.Failed = 10, 7, 2, 1
	if err := store.FinishScan(ctx, scan); err != nil {
		t.Fatalf("FinishScan: %v", err)
	}
	scans, err := store.RecentScans(ctx, 5)
	if err != nil {
		t.Fatalf("RecentScans: %v", err)
	}
	if len(scans) != 1 || scans[0].ID != scan.ID || !scans[0].Finished() || scans[0].Tagged != 7 {
		t.Fatalf("unexpected scans %+v", scans)
	}
}
