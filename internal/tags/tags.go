package tags

import (
	"maps"
	"strings"
	"sync"
)

const (
	// KeyShelf holds the shelf name of a file.
	KeyShelf = "shelf"
	// KeyAlbumID holds the release identifier used to group files into albums.
	KeyAlbumID = "musicbrainz_albumid"
)

// ManualSuffix marks a shelf tag that a user set by hand.
const ManualSuffix = "; manual"

// Store is the per-file tag map a host exposes. GetTag returns "" for
// missing keys.
type Store interface {
	GetTag(key string) string
	SetTag(key, value string)
}

// Metadata is an in-memory Store, safe for concurrent use.
type Metadata struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMetadata copies initial into a new Metadata.
func NewMetadata(initial map[string]string) *Metadata {
	m := &Metadata{values: make(map[string]string, len(initial))}
	maps.Copy(m.values, initial)
	return m
}

// GetTag returns the value for key.
func (m *Metadata) GetTag(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key]
}

// SetTag stores value under key. An empty value deletes the key.
func (m *Metadata) SetTag(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if value == "" {
		delete(m.values, key)
		return
	}
	m.values[key] = value
}

// Map returns a copy of all tags.
func (m *Metadata) Map() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values)
}

// AlbumID returns the trimmed album identifier of s.
func AlbumID(s Store) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s.GetTag(KeyAlbumID))
}

// HasAlbumID reports whether s carries an album identifier.
func HasAlbumID(s Store) bool {
	return AlbumID(s) != ""
}

// ShelfFromTag returns the shelf name stored in a tag value, without the
// manual marker.
func ShelfFromTag(value string) string {
	name, _ := ParseShelfTag(value)
	return name
}

// ParseShelfTag splits a tag value into the shelf name and whether it was
// marked as manually set.
func ParseShelfTag(value string) (name string, manual bool) {
	value = strings.TrimSpace(value)
	if before, ok := strings.CutSuffix(value, ManualSuffix); ok {
		return strings.TrimSpace(before), true
	}
	return value, false
}

// FormatShelfTag renders a shelf tag value.
func FormatShelfTag(name string, manual bool) string {
	name = strings.TrimSpace(name)
	if manual && name != "" {
		return name + ManualSuffix
	}
	return name
}
