package main

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"shelves/internal/shelf"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func verdictLabel(kind shelf.VerdictKind, colorize bool) string {
	label := kind.String()
	if !colorize {
		return label
	}
	switch kind {
	case shelf.VerdictKnown:
		return text.Colors{text.FgGreen}.Sprint(label)
	case shelf.VerdictAcceptedNew:
		return text.Colors{text.FgCyan}.Sprint(label)
	case shelf.VerdictRejectedSuspicious:
		return text.Colors{text.FgYellow}.Sprint(label)
	default:
		return label
	}
}

// newProgress returns a progress bar on w when w is a terminal, or nil.
func newProgress(w io.Writer, total int, description string) *progressbar.ProgressBar {
	if total <= 0 || !shouldColorize(w) {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
