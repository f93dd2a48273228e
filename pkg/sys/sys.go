// Package sys provide system utilities with the same API across OSes.
package sys

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsATTY determines whether the given file is a terminal.
func IsATTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Sizes used when a terminal reports zero rows or columns.
const (
	defaultRows = 24
	defaultCols = 80
)

// WinSize queries the size of the terminal referenced by the given file. It
// returns -1, -1 if the file is not a terminal.
func WinSize(file *os.File) (row, col int) { return winSize(file) }

// Lock places an exclusive advisory lock on the file, blocking until it is
// available.
func Lock(file *os.File) error { return lock(file) }

// Unlock removes a lock placed by Lock.
func Unlock(file *os.File) error { return unlock(file) }

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
