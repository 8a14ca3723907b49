package mdv

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

const (
	// DefaultWidth is used when the terminal size cannot be queried.
	DefaultWidth = 80
	// DefaultMargin is the left and right padding of rendered blocks.
	DefaultMargin = 2
)

// TerminalWidth returns the column count of the terminal on fd, then
// $COLUMNS, then fallback.
func TerminalWidth(fd int, fallback int) int {
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

// AvailableColumns is the content width left after a margin on both sides.
// It is never below 1.
func AvailableColumns(width, margin int) int {
	if margin < 0 {
		margin = 0
	}
	if cols := width - 2*margin; cols > 0 {
		return cols
	}
	return 1
}
