// Package script provides the $shelf() naming function and the file-naming
// snippet that uses it.
package script

import (
	"shelves/internal/tags"
	"shelves/internal/workflow"
)

// FunctionName is the name hosts register Shelf under.
const FunctionName = "shelf"

// Shelf evaluates $shelf() for the file behind md: the stored shelf without
// its manual marker, passed through the workflow transition. It returns ""
// when no shelf is set.
func Shelf(engine *workflow.Engine, md tags.Store) string {
	if md == nil {
		return ""
	}
	name := tags.ShelfFromTag(md.GetTag(tags.KeyShelf))
	if name == "" {
		return ""
	}
	if engine == nil {
		return name
	}
	return engine.ResolveEffectiveShelf(name)
}

const renameSnippet = `$set(_shelffolder,$shelf())
$set(_shelffolder,$if($not($eq(%_shelffolder%,)),%_shelffolder%/))

%_shelffolder%
$if2(%albumartist%,%artist%)/%album%/%title%`

// RenameSnippet returns a file-naming script that prefixes paths with the
// effective shelf.
func RenameSnippet() string {
	return renameSnippet
}

// Path joins the effective shelf with rest the way RenameSnippet does: the
// shelf becomes the first path segment when set and is omitted otherwise.
func Path(engine *workflow.Engine, md tags.Store, rest string) string {
	if folder := Shelf(engine, md); folder != "" {
		return folder + "/" + rest
	}
	return rest
}
