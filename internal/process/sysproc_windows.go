//go:build windows

package process

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// configureSysProcAttr gives the child its own console. Hidden children get
// the window created but never shown, the equivalent of
// STARTF_USESHOWWINDOW with SW_HIDE.
func configureSysProcAttr(cmd *exec.Cmd, hidden bool) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    hidden,
		CreationFlags: windows.CREATE_NEW_CONSOLE,
	}
}
