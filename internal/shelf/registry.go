package shelf

import (
	"fmt"
	"log/slog"
	"sync"

	"shelves/internal/logging"
	"shelves/internal/services"
)

// Lookup is the read view of known shelves the classifier consults.
type Lookup interface {
	// Lookup returns the registered spelling of name when it is known.
	Lookup(name string) (string, bool)
	// Default returns the fallback shelf.
	Default() string
}

type entry struct {
	name string
	key  string
}

// Registry owns the ordered set of known shelves and the default shelf.
// All reads and mutations go through one RWMutex; List and Snapshot return
// copies, so callers never observe later mutations through them.
type Registry struct {
	mu         sync.RWMutex
	entries    []entry
	defaultKey string
	logger     *slog.Logger
}

// NewRegistry seeds a registry. Invalid names in known are skipped with a
// warning; an invalid default shelf is an error. The default shelf is
// prepended when known does not already contain it.
func NewRegistry(defaultShelf string, known []string, logger *slog.Logger) (*Registry, error) {
	r := &Registry{logger: logging.NewComponentLogger(logger, "registry")}
	if err := r.Replace(defaultShelf, known); err != nil {
		return nil, err
	}
	return r, nil
}

// Replace swaps the whole state, as when saved settings are reloaded.
func (r *Registry) Replace(defaultShelf string, known []string) error {
	def := Normalize(defaultShelf)
	if _, err := ValidateName(def); err != nil {
		return fmt.Errorf("default shelf: %w", err)
	}

	entries := make([]entry, 0, len(known)+1)
	var skipped []string
	for _, name := range known {
		normalized := Normalize(name)
		if _, err := ValidateName(normalized); err != nil {
			skipped = append(skipped, name)
			continue
		}
		if indexOf(entries, Key(normalized)) >= 0 {
			continue
		}
		entries = append(entries, entry{name: normalized, key: Key(normalized)})
	}
	defKey := Key(def)
	if indexOf(entries, defKey) < 0 {
		entries = append([]entry{{name: def, key: defKey}}, entries...)
	}

	r.mu.Lock()
	r.entries = entries
	r.defaultKey = defKey
	r.mu.Unlock()

	for _, name := range skipped {
		logging.WarnWithContext(r.logger, "ignoring invalid shelf name", "shelf_invalid",
			logging.String(logging.FieldShelf, name),
			logging.String(logging.FieldErrorHint, "rename the shelf folder or remove it from settings"),
			logging.String(logging.FieldImpact, "files in this folder fall back to the default shelf"),
		)
	}
	return nil
}

// Contains reports whether name is a known shelf, ignoring case.
func (r *Registry) Contains(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Lookup returns the registered spelling of name.
func (r *Registry) Lookup(name string) (string, bool) {
	key := Key(name)
	if key == "" {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx := indexOf(r.entries, key); idx >= 0 {
		return r.entries[idx].name, true
	}
	return "", false
}

// Default returns the fallback shelf.
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[indexOf(r.entries, r.defaultKey)].name
}

// Len returns the number of known shelves.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Add registers name and reports whether it was appended. Already known names
// return false with a nil error; invalid names return false with an error
// marked services.ErrValidation.
func (r *Registry) Add(name string) (bool, error) {
	normalized := Normalize(name)
	if _, err := ValidateName(normalized); err != nil {
		return false, err
	}
	key := Key(normalized)

	r.mu.Lock()
	if indexOf(r.entries, key) >= 0 {
		r.mu.Unlock()
		return false, nil
	}
	r.entries = append(r.entries, entry{name: normalized, key: key})
	r.mu.Unlock()

	r.logger.Debug("shelf added", logging.String(logging.FieldShelf, normalized))
	return true, nil
}

// Remove unregisters name. Removing the default shelf is refused with an
// error marked services.ErrProtected; unknown names return false, nil.
func (r *Registry) Remove(name string) (bool, error) {
	key := Key(name)
	if key == "" {
		return false, services.Wrap(services.ErrValidation, "registry", "remove", "shelf name cannot be empty", nil)
	}

	r.mu.Lock()
	if key == r.defaultKey {
		r.mu.Unlock()
		r.logger.Info("refusing to remove default shelf", logging.String(logging.FieldShelf, Normalize(name)))
		return false, services.Wrap(services.ErrProtected, "registry", "remove",
			fmt.Sprintf("%q is the default shelf; choose another default first", Normalize(name)), nil)
	}
	idx := indexOf(r.entries, key)
	if idx < 0 {
		r.mu.Unlock()
		return false, nil
	}
	removed := r.entries[idx].name
	r.entries = append(r.entries[:idx:idx], r.entries[idx+1:]...)
	r.mu.Unlock()

	r.logger.Debug("shelf removed", logging.String(logging.FieldShelf, removed))
	return true, nil
}

// List returns the known shelves in insertion order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.name
	}
	return out
}

// Prune removes every shelf for which keep returns false, except the default
// shelf, and returns the removed names in their former order. keep is called
// while the registry is locked and must not call back into it.
func (r *Registry) Prune(keep func(name string) bool) []string {
	if keep == nil {
		return nil
	}
	r.mu.Lock()
	kept := make([]entry, 0, len(r.entries))
	var removed []string
	for _, e := range r.entries {
		if e.key == r.defaultKey || keep(e.name) {
			kept = append(kept, e)
			continue
		}
		removed = append(removed, e.name)
	}
	r.entries = kept
	r.mu.Unlock()

	if len(removed) > 0 {
		r.logger.Info("pruned shelves", logging.Strings("removed", removed))
	}
	return removed
}

// SetDefault makes an already registered shelf the default.
func (r *Registry) SetDefault(name string) error {
	key := Key(name)
	if key == "" {
		return services.Wrap(services.ErrValidation, "registry", "set default", "shelf name cannot be empty", nil)
	}
	r.mu.Lock()
	idx := indexOf(r.entries, key)
	if idx < 0 {
		r.mu.Unlock()
		return services.Wrap(services.ErrNotFound, "registry", "set default",
			fmt.Sprintf("%q is not a known shelf; add it first", Normalize(name)), nil)
	}
	r.defaultKey = key
	chosen := r.entries[idx].name
	r.mu.Unlock()

	r.logger.Info("default shelf changed", logging.String(logging.FieldShelf, chosen))
	return nil
}

// Snapshot captures the current state as an immutable Lookup.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]entry, len(r.entries))
	copy(entries, r.entries)
	return Snapshot{entries: entries, defaultName: entries[indexOf(entries, r.defaultKey)].name}
}

// Snapshot is a point-in-time copy of a Registry. The zero value knows no
// shelves and has no default.
type Snapshot struct {
	entries     []entry
	defaultName string
}

// Lookup returns the registered spelling of name.
func (s Snapshot) Lookup(name string) (string, bool) {
	key := Key(name)
	if key == "" {
		return "", false
	}
	if idx := indexOf(s.entries, key); idx >= 0 {
		return s.entries[idx].name, true
	}
	return "", false
}

// Contains reports whether name was known when the snapshot was taken.
func (s Snapshot) Contains(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Default returns the fallback shelf at snapshot time.
func (s Snapshot) Default() string { return s.defaultName }

// List returns the shelves at snapshot time.
func (s Snapshot) List() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.name
	}
	return out
}

func indexOf(entries []entry, key string) int {
	for i, e := range entries {
		if e.key == key {
			return i
		}
	}
	return -1
}
