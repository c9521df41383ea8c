//go:build unix && !linux

package rlimit

import "os/exec"

func setProcAttr(cmd *exec.Cmd) {}
