//go:build unix && !linux

package rlimit

// NetworkFilterSupported reports whether Limits.DenyNetwork can be enforced.
func NetworkFilterSupported() bool { return false }

// denyNetwork is a no-op outside Linux: there is no seccomp to install.
func denyNetwork() error { return nil }
