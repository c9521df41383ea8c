//go:build !unix

package rlimit

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	"multicompile/pkg/utils/logger"

	"go.uber.org/zap"
)

var warnOnce sync.Once

// Supported reports whether limits are enforced by the kernel on this platform.
func Supported() bool { return false }

// Apply cannot install limits here and leaves cmd untouched. Memory and file
// size ceilings are not enforced at all on this platform; CPU time is
// approximated by Watch.
func (l *Limiter) Apply(ctx context.Context, limits Limits, cmd *exec.Cmd) error {
	if !limits.IsZero() {
		warnOnce.Do(func() {
			logger.Warn(ctx, "resource limits are not enforced on this platform")
		})
	}
	return cmd.Err
}

// Watch kills proc once CPUSeconds of wall-clock time elapsed. Wall time is
// never shorter than CPU time, so this only bounds the child loosely.
func (l *Limiter) Watch(ctx context.Context, limits Limits, proc *os.Process) (stop func()) {
	if limits.CPUSeconds == 0 || proc == nil {
		return func() {}
	}
	timer := time.AfterFunc(time.Duration(limits.CPUSeconds)*time.Second, func() {
		logger.Warn(ctx, "killing compiler after wall-clock limit", zap.Uint64("seconds", limits.CPUSeconds))
		_ = proc.Kill()
	})
	return func() { timer.Stop() }
}

// NetworkFilterSupported reports whether Limits.DenyNetwork can be enforced.
func NetworkFilterSupported() bool { return false }

// Init is a no-op on platforms without a helper.
func Init() {}
