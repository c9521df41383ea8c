//go:build unix

package rlimit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"multicompile/pkg/utils/logger"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Supported reports whether limits are enforced by the kernel on this platform.
func Supported() bool { return true }

// Apply rewrites cmd so that it starts through the helper, which installs
// limits and then execs the target binary with the argv it was given.
// Commands without limits are left untouched apart from process attributes.
func (l *Limiter) Apply(ctx context.Context, limits Limits, cmd *exec.Cmd) error {
	if cmd.Process != nil {
		return fmt.Errorf("apply limits: command already started")
	}
	if cmd.Err != nil {
		return cmd.Err
	}
	setProcAttr(cmd)
	if limits.IsZero() {
		return nil
	}

	helper, err := l.helper()
	if err != nil {
		return fmt.Errorf("resolve limiter helper: %w", err)
	}
	payload, err := encodeLimits(limits)
	if err != nil {
		return fmt.Errorf("encode limits: %w", err)
	}
	for _, r := range limits.RLimits() {
		logger.Debug(ctx, "setting resource limit",
			zap.String("resource", r.Resource.String()),
			zap.Uint64("soft", r.Soft),
			zap.Uint64("hard", r.Hard),
			zap.String("units", r.Resource.Units()))
	}

	args := make([]string, 0, len(cmd.Args)+3)
	args = append(args, helper, reexecArg, cmd.Path)
	args = append(args, cmd.Args...)
	cmd.Path = helper
	cmd.Args = args

	env := cmd.Env
	if env == nil {
		env = os.Environ()
	}
	cmd.Env = append(environWithout(env, specEnv), specEnv+"="+payload)
	return nil
}

// Watch is a no-op on Unix: the kernel enforces every limit.
func (l *Limiter) Watch(ctx context.Context, limits Limits, proc *os.Process) (stop func()) {
	return func() {}
}

// Init turns the running program into the limiter helper when it was started
// as one, and never returns in that case. Otherwise it returns immediately.
// Programs relying on the default helper must call it before anything else
// in main (and in TestMain).
func Init() {
	if len(os.Args) < 4 || os.Args[1] != reexecArg {
		return
	}
	os.Exit(runHelper(os.Args[2], os.Args[3:]))
}

// runHelper only returns when the hand-over to the target failed.
func runHelper(path string, argv []string) int {
	raw, ok := os.LookupEnv(specEnv)
	if !ok {
		return helperFail(helperFailureExit, "missing %s", specEnv)
	}
	limits, err := decodeLimits(raw)
	if err != nil {
		return helperFail(helperFailureExit, "decode limits: %v", err)
	}
	env := environWithout(os.Environ(), specEnv)

	if err := setRlimits(limits); err != nil {
		return helperFail(helperFailureExit, "%v", err)
	}
	if limits.DenyNetwork {
		if err := denyNetwork(); err != nil {
			return helperFail(helperFailureExit, "install seccomp filter: %v", err)
		}
	}

	err = unix.Exec(path, argv, env)
	if errors.Is(err, unix.ENOENT) {
		return helperFail(helperNotFoundExit, "exec %s: %v", path, err)
	}
	return helperFail(helperFailureExit, "exec %s: %v", path, err)
}

func helperFail(code int, format string, args ...interface{}) int {
	_, _ = fmt.Fprintf(os.Stderr, "rlimit helper: "+format+"\n", args...)
	return code
}

func setRlimits(limits Limits) error {
	for _, r := range limits.RLimits() {
		resource, name := unixResource(r.Resource)
		if err := unix.Setrlimit(resource, &unix.Rlimit{Cur: r.Soft, Max: r.Hard}); err != nil {
			return fmt.Errorf("set rlimit %s: %w", name, err)
		}
	}
	return nil
}

func unixResource(r Resource) (int, string) {
	switch r {
	case CPUTime:
		return unix.RLIMIT_CPU, "cpu"
	case FileSize:
		return unix.RLIMIT_FSIZE, "fsize"
	default:
		return unix.RLIMIT_AS, "as"
	}
}
