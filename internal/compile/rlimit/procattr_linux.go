//go:build linux

package rlimit

import (
	"os/exec"
	"syscall"
)

// setProcAttr makes the kernel kill the child when the parent dies.
func setProcAttr(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Pdeathsig = syscall.SIGKILL
}
