// Package term provides terminal-size detection for progress-bar rendering.
package term

import (
	"os"

	"golang.org/x/term"
)

// GetSize returns the terminal dimensions (columns, lines), trying stdin,
// stdout, then stderr in turn before falling back to the given defaults —
// a CLI invoked with redirected stdout (e.g. piped to a file) still gets a
// usable size from stdin or stderr.
func GetSize(defaultCols, defaultLines int) (cols, lines int) {
	if width, height, err := term.GetSize(int(os.Stdin.Fd())); err == nil {
		return width, height
	}
	if width, height, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return width, height
	}
	if width, height, err := term.GetSize(int(os.Stderr.Fd())); err == nil {
		return width, height
	}
	return defaultCols, defaultLines
}
