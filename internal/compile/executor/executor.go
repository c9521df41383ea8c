// Package executor runs one external compiler process per call: the input is
// handed over through a temp file, limits are applied before the compiler
// starts, and an unsuccessful exit is classified into a ProcessError.
package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"multicompile/internal/compile/rlimit"
	pkgerrors "multicompile/pkg/errors"
	"multicompile/pkg/utils/contextkey"
	"multicompile/pkg/utils/logger"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	DefaultStderrMaxBytes = 64 << 10

	inputPattern  = "multicompile-input-*.json"
	stdoutPattern = "multicompile-stdout-*"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config configures an Executor. Zero values select defaults.
type Config struct {
	Limiter        *rlimit.Limiter
	StderrMaxBytes int
	// TempDir holds input and stdout files. Empty means os.TempDir().
	TempDir    string
	Classifier Classifier
}

// Executor is safe for concurrent use; it holds no per-call state.
type Executor struct {
	limiter    *rlimit.Limiter
	stderrMax  int
	tempDir    string
	classifier Classifier
}

func New(cfg Config) *Executor {
	e := &Executor{
		limiter:    cfg.Limiter,
		stderrMax:  cfg.StderrMaxBytes,
		tempDir:    cfg.TempDir,
		classifier: cfg.Classifier,
	}
	if e.limiter == nil {
		e.limiter = rlimit.NewLimiter("")
	}
	if e.stderrMax <= 0 {
		e.stderrMax = DefaultStderrMaxBytes
	}
	if e.classifier == nil {
		e.classifier = DefaultClassifier()
	}
	return e
}

type runOptions struct {
	discardStdout bool
}

// RunOption customizes a single Run call.
type RunOption func(*runOptions)

// WithDiscardStdout sends the compiler's stdout to the null device; Run then
// returns an empty result on success.
func WithDiscardStdout() RunOption {
	return func(o *runOptions) { o.discardStdout = true }
}

// Run serializes payload to a temp file and runs
// `binaryPath <input> extraArgs...` under limits, returning its stdout.
//
// A started child is never cancelled: it runs until it exits or a limit
// kills it. ctx only carries log correlation fields.
func (e *Executor) Run(ctx context.Context, binaryPath string, payload any, extraArgs []string, limits rlimit.Limits, opts ...RunOption) ([]byte, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}
	ctx = context.WithValue(ctx, contextkey.Binary, binaryPath)

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.SerializationFailed)
	}

	inputPath, err := e.writeInput(data)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.IOFailed).WithDetail("phase", "write input")
	}
	defer removeFiles(ctx, inputPath)

	args := append([]string{inputPath}, extraArgs...)
	cmd := exec.Command(binaryPath, args...)

	var stdout *os.File
	if !o.discardStdout {
		stdout, err = os.CreateTemp(e.tempDir, stdoutPattern)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.IOFailed).WithDetail("phase", "create stdout file")
		}
		defer closeAndRemove(ctx, stdout)
		cmd.Stdout = stdout
	}
	stderr := newCappedBuffer(e.stderrMax)
	cmd.Stderr = stderr

	if err := e.limiter.Apply(ctx, limits, cmd); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.SpawnFailed).WithDetail("binary", binaryPath)
	}

	logger.Debug(ctx, "starting compiler", zap.Strings("args", args))
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.SpawnFailed).WithDetail("binary", binaryPath)
	}
	stop := e.limiter.Watch(ctx, limits, cmd.Process)
	waitErr := cmd.Wait()
	stop()
	elapsed := time.Since(start)

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return nil, pkgerrors.Wrap(waitErr, pkgerrors.IOFailed).WithDetail("phase", "wait")
	}
	if state := cmd.ProcessState; !state.Success() {
		perr := e.processError(state, stderr)
		logger.Warn(ctx, "compiler failed",
			zap.String("status", perr.Status),
			zap.Stringer("termination", perr.Termination),
			zap.Int("signal", perr.Signal),
			zap.Duration("elapsed", elapsed))
		return nil, pkgerrors.Wrap(perr, pkgerrors.CompilationFailed).WithDetail("binary", binaryPath)
	}

	if o.discardStdout {
		logger.Debug(ctx, "compiler finished", zap.Duration("elapsed", elapsed))
		return []byte{}, nil
	}
	out, err := os.ReadFile(stdout.Name())
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.IOFailed).WithDetail("phase", "read stdout")
	}
	logger.Debug(ctx, "compiler finished",
		zap.Duration("elapsed", elapsed),
		zap.Int("stdout_bytes", len(out)))
	return out, nil
}

func (e *Executor) processError(state *os.ProcessState, stderr *cappedBuffer) *ProcessError {
	c := e.classifier.Classify(state)
	return &ProcessError{
		Status:      state.String(),
		ExitCode:    state.ExitCode(),
		Signal:      c.Signal,
		Termination: c.Termination,
		Diagnosis:   c.Diagnosis,
		Stderr:      stderr.Text(),
	}
}

func (e *Executor) writeInput(data []byte) (path string, err error) {
	f, err := os.CreateTemp(e.tempDir, inputPattern)
	if err != nil {
		return "", err
	}
	if _, err = f.Write(data); err != nil {
		err = multierr.Combine(err, f.Close(), os.Remove(f.Name()))
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", multierr.Append(err, os.Remove(f.Name()))
	}
	return f.Name(), nil
}

// NewTempPath creates an empty, closed file for a compiler to write into and
// returns its path with a cleanup func that removes it.
func (e *Executor) NewTempPath(ctx context.Context, pattern string) (string, func(), error) {
	f, err := os.CreateTemp(e.tempDir, pattern)
	if err != nil {
		return "", nil, pkgerrors.Wrap(err, pkgerrors.IOFailed).WithDetail("phase", "create temp file")
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		removeFiles(ctx, path)
		return "", nil, pkgerrors.Wrap(err, pkgerrors.IOFailed).WithDetail("phase", "create temp file")
	}
	return path, func() { removeFiles(ctx, path) }, nil
}

// removeFiles never fails the call: leftovers are only reported.
func removeFiles(ctx context.Context, paths ...string) {
	var err error
	for _, p := range paths {
		if rmErr := os.Remove(p); rmErr != nil && !os.IsNotExist(rmErr) {
			err = multierr.Append(err, rmErr)
		}
	}
	if err != nil {
		logger.Warn(ctx, "failed to remove temp files", zap.Strings("paths", paths), zap.Error(err))
	}
}

func closeAndRemove(ctx context.Context, f *os.File) {
	err := f.Close()
	if rmErr := os.Remove(f.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
		err = multierr.Append(err, rmErr)
	}
	if err != nil {
		logger.Warn(ctx, "failed to remove temp file", zap.String("path", f.Name()), zap.Error(err))
	}
}
