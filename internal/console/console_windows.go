//go:build windows

package console

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

var (
	kernel32         = windows.NewLazySystemDLL("kernel32.dll")
	procAllocConsole = kernel32.NewProc("AllocConsole")
	procFreeConsole  = kernel32.NewProc("FreeConsole")
)

// Attach allocates a console for the process and redirects stdout and
// stderr to it.
func Attach() error {
	if ret, _, err := procAllocConsole.Call(); ret == 0 {
		return fmt.Errorf("AllocConsole: %w", err)
	}

	out, err := os.OpenFile("CONOUT$", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("opening console output: %w", err)
	}
	os.Stdout = out
	os.Stderr = out
	return nil
}

// Detach frees the console allocated by Attach.
func Detach() {
	_, _, _ = procFreeConsole.Call()
}
