package sys

import (
	"os"

	"golang.org/x/sys/windows"
)

func winSize(file *os.File) (row, col int) {
	var info windows.ConsoleScreenBufferInfo
	err := windows.GetConsoleScreenBufferInfo(windows.Handle(file.Fd()), &info)
	if err != nil {
		return -1, -1
	}
	w := info.Window
	return orDefault(int(w.Bottom-w.Top), defaultRows), orDefault(int(w.Right-w.Left), defaultCols)
}

// Lock the whole file.
const lockLen = ^uint32(0)

func lock(file *os.File) error {
	var ol windows.Overlapped
	return windows.LockFileEx(windows.Handle(file.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK, 0, lockLen, lockLen, &ol)
}

func unlock(file *os.File) error {
	var ol windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(file.Fd()), 0, lockLen, lockLen, &ol)
}
