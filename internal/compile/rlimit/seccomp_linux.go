//go:build linux

package rlimit

import (
	"github.com/elastic/go-seccomp-bpf"
	"golang.org/x/sys/unix"
)

func actionErrno(errno uint32) seccomp.Action {
	return seccomp.Action(uint32(seccomp.ActionErrno)&^0xffff | (errno & 0xffff))
}

// NetworkFilterSupported reports whether Limits.DenyNetwork can be enforced.
func NetworkFilterSupported() bool { return true }

// denyNetwork installs a filter under which socket(2) fails with EACCES.
// The filter is inherited across the following exec.
func denyNetwork() error {
	return seccomp.LoadFilter(seccomp.Filter{
		NoNewPrivs: true,
		Flag:       seccomp.FilterFlagTSync,
		Policy: seccomp.Policy{
			DefaultAction: seccomp.ActionAllow,
			Syscalls: []seccomp.SyscallGroup{{
				Action: actionErrno(uint32(unix.EACCES)),
				Names:  []string{"socket"},
			}},
		},
	})
}
