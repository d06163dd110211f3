package actions

import (
	"fmt"

	"shelves/internal/tags"
)

// Kind identifies a command.
type Kind string

const (
	KindAddShelf       Kind = "add_shelf"
	KindRemoveShelf    Kind = "remove_shelf"
	KindSetDefault     Kind = "set_default"
	KindSetShelfName   Kind = "set_shelf_name"
	KindScanDirectory  Kind = "scan_directory"
	KindPruneMissing   Kind = "prune_missing"
	KindDetermineShelf Kind = "determine_shelf"
)

// Kinds lists every command kind.
func Kinds() []Kind {
	return []Kind{
		KindAddShelf,
		KindRemoveShelf,
		KindSetDefault,
		KindSetShelfName,
		KindScanDirectory,
		KindPruneMissing,
		KindDetermineShelf,
	}
}

// Target is one selected file.
type Target struct {
	Path string
	Tags tags.Store
}

// Command is a tagged operation. Only the fields relevant to Kind are read.
type Command struct {
	Kind Kind
	// Names are the shelves for add, remove and set-default (first entry).
	Names []string
	// Shelf is the shelf chosen for SetShelfName.
	Shelf string
	// AddIfMissing registers an unknown Shelf instead of rejecting it.
	AddIfMissing bool
	// Manual marks tags written by SetShelfName as set by hand.
	Manual bool
	// Targets are the files for SetShelfName and DetermineShelf.
	Targets []Target
	// Directories are the top-level folder names for scan and prune.
	Directories []string
}

// AddShelf registers names.
func AddShelf(names ...string) Command {
	return Command{Kind: KindAddShelf, Names: names}
}

// RemoveShelf unregisters names.
func RemoveShelf(names ...string) Command {
	return Command{Kind: KindRemoveShelf, Names: names}
}

// SetDefault makes name the default shelf.
func SetDefault(name string) Command {
	return Command{Kind: KindSetDefault, Names: []string{name}}
}

// SetShelfName tags every target with shelfName.
func SetShelfName(shelfName string, addIfMissing bool, targets ...Target) Command {
	return Command{Kind: KindSetShelfName, Shelf: shelfName, AddIfMissing: addIfMissing, Targets: targets}
}

// ScanDirectory imports the plausible shelf names among directories.
func ScanDirectory(directories []string) Command {
	return Command{Kind: KindScanDirectory, Directories: directories}
}

// PruneMissing drops registered shelves not present in directories.
func PruneMissing(directories []string) Command {
	return Command{Kind: KindPruneMissing, Directories: directories}
}

// DetermineShelf re-derives each target's shelf from where it is stored.
func DetermineShelf(targets ...Target) Command {
	return Command{Kind: KindDetermineShelf, Targets: targets}
}

// Rejection is one refused item of a command.
type Rejection struct {
	Name   string
	Reason string
	Err    error
}

// Result is the aggregate outcome of a command.
type Result struct {
	Kind           Kind
	Added          []string
	Removed        []string
	Rejected       []Rejection
	Warnings       []string
	Shelf          string
	DefaultChanged bool
	// Updated counts targets whose shelf tag was written.
	Updated int
	// Skipped counts targets left alone, such as files without a release id.
	Skipped int
}

// Changed reports whether the registry changed and settings need saving.
func (r Result) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0 || r.DefaultChanged
}

func (r *Result) reject(name string, err error) {
	r.Rejected = append(r.Rejected, Rejection{Name: name, Reason: err.Error(), Err: err})
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
