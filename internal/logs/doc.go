// Package logs reads the shelves log file for the CLI "logs" command.
//
// Tail returns the last lines of the file together with the end offset, and
// Follow polls from an offset until the context ends. Filter narrows lines
// by event type or free text and understands both the console and the JSON
// log formats, so "shelves logs --event shelf_rejected" lists every folder
// that was refused as a shelf.
package logs
