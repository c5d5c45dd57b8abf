//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr puts the child in its own process group so that a
// terminal signal aimed at the launcher is not delivered to it directly.
// Window visibility has no equivalent here.
func configureSysProcAttr(cmd *exec.Cmd, hidden bool) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
