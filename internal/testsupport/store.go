package testsupport

import (
	"context"
	"testing"

	"shelves/internal/catalog"
	"shelves/internal/config"
	"shelves/internal/settings"
)

// MustOpenCatalog opens the catalog of cfg for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SetTags stores tags for path, failing the test on error.
func SetTags(t testing.TB, store *catalog.Store, path string, values map[string]string) {
	t.Helper()

	if err := store.SaveTags(context.Background(), path, values); err != nil {
		t.Fatalf("store.SaveTags: %v", err)
	}
}

// SaveSettings writes s as the settings file at path, replacing any content.
func SaveSettings(t testing.TB, path string, s settings.Settings) {
	t.Helper()

	err := settings.NewFileStore(path, nil).Update(context.Background(), func(stored *settings.Settings) error {
		*stored = s
		return nil
	})
	if err != nil {
		t.Fatalf("save settings: %v", err)
	}
}
