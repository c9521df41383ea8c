// Package compiler turns Sierra contract classes into CASM bytecode or native
// AOT artifacts by running the pinned command line compilers.
package compiler

import (
	"context"
	"errors"
	"strconv"

	"multicompile/internal/compile/contract"
	"multicompile/internal/compile/executor"
	"multicompile/internal/compile/rlimit"
	pkgerrors "multicompile/pkg/errors"
	"multicompile/pkg/utils/contextkey"
	"multicompile/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	opCompileCasm   = "compile_casm"
	opCompileNative = "compile_native"

	nativeDestPattern = "multicompile-native-*"
)

// CasmCompiler compiles Sierra to CASM bytecode.
type CasmCompiler interface {
	Compile(ctx context.Context, class *contract.ContractClass) (*contract.CasmContractClass, error)
}

// NativeCompiler compiles Sierra to a native AOT artifact.
type NativeCompiler interface {
	CompileToNative(ctx context.Context, class *contract.ContractClass) (*contract.NativeExecutor, error)
	// PanicOnCompilationFailure reports whether a failed native compilation
	// panics instead of returning an error.
	PanicOnCompilationFailure() bool
}

var (
	_ CasmCompiler   = (*CommandLineCompiler)(nil)
	_ NativeCompiler = (*CommandLineCompiler)(nil)
)

// CommandLineCompiler runs one compiler process per call. Configuration and
// binary paths are fixed at construction, so it is safe for concurrent use.
type CommandLineCompiler struct {
	cfg         Config
	casmPath    string
	nativePath  string
	casmExtra   []string
	nativeExtra []string
	executor    *executor.Executor
}

// NewCommandLineCompiler validates cfg and resolves both binaries. The native
// binary is skipped when native compilation is disabled.
func NewCommandLineCompiler(cfg Config) (*CommandLineCompiler, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	casmExtra, err := splitFlags("casmExtraFlags", cfg.CasmExtraFlags)
	if err != nil {
		return nil, err
	}
	nativeExtra, err := splitFlags("nativeExtraFlags", cfg.NativeExtraFlags)
	if err != nil {
		return nil, err
	}

	dir, err := binaryDir(cfg.BinaryDir)
	if err != nil {
		return nil, err
	}
	casmPath, err := checkExecutable(BinaryPath(dir, SierraToCasmBinary))
	if err != nil {
		return nil, err
	}

	var nativePath string
	if cfg.EnableNative {
		nativePath = cfg.SierraToNativeCompilerPath
		if nativePath == "" {
			nativePath = BinaryPath(dir, SierraToNativeBinary)
		}
		if nativePath, err = checkExecutable(nativePath); err != nil {
			return nil, err
		}
	}

	if !rlimit.Supported() {
		logger.Warn(context.Background(), "resource limits are not enforced by the kernel on this platform")
	}

	return &CommandLineCompiler{
		cfg:         cfg,
		casmPath:    casmPath,
		nativePath:  nativePath,
		casmExtra:   casmExtra,
		nativeExtra: nativeExtra,
		executor: executor.New(executor.Config{
			Limiter:        rlimit.NewLimiter(cfg.LimiterHelperPath),
			StderrMaxBytes: cfg.StderrMaxBytes,
			TempDir:        cfg.TempDir,
		}),
	}, nil
}

// Config returns the effective configuration.
func (c *CommandLineCompiler) Config() Config {
	return c.cfg
}

// CasmPath returns the resolved Sierra to CASM compiler.
func (c *CommandLineCompiler) CasmPath() string {
	return c.casmPath
}

// NativePath returns the resolved native compiler, empty when disabled.
func (c *CommandLineCompiler) NativePath() string {
	return c.nativePath
}

func (c *CommandLineCompiler) PanicOnCompilationFailure() bool {
	return c.cfg.PanicOnCompilationFailure
}

func (c *CommandLineCompiler) casmArgs() []string {
	args := []string{
		"--add-pythonic-hints",
		"--max-bytecode-size", strconv.FormatUint(c.cfg.MaxCasmBytecodeSize, 10),
		"--allowed-libfuncs-list-name", c.cfg.AllowedLibfuncsListName,
	}
	return append(args, c.casmExtra...)
}

// casmLimits bounds only the output size; CPU and memory stay unlimited on
// this path.
func (c *CommandLineCompiler) casmLimits() rlimit.Limits {
	l := rlimit.New(nil, c.cfg.MaxFileSize, nil)
	l.DenyNetwork = c.cfg.DenyNetwork
	return l
}

func (c *CommandLineCompiler) nativeArgs(dest string) []string {
	args := []string{dest, "--opt-level", strconv.Itoa(int(c.cfg.OptimizationLevel))}
	return append(args, c.nativeExtra...)
}

func (c *CommandLineCompiler) nativeLimits() rlimit.Limits {
	l := rlimit.New(c.cfg.MaxCPUTime, c.cfg.MaxNativeBytecodeSize, c.cfg.MaxMemoryUsage)
	l.DenyNetwork = c.cfg.DenyNetwork
	return l
}

// Compile runs the CASM compiler and decodes its stdout.
func (c *CommandLineCompiler) Compile(ctx context.Context, class *contract.ContractClass) (*contract.CasmContractClass, error) {
	ctx = withInvocation(ctx, opCompileCasm)

	out, err := c.executor.Run(ctx, c.casmPath, class, c.casmArgs(), c.casmLimits())
	if err != nil {
		logger.Error(ctx, "casm compilation failed", zap.Error(err))
		return nil, err
	}
	casm, err := contract.DecodeCasm(out)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.DecodeFailed).WithDetail("binary", c.casmPath)
	}
	logger.Info(ctx, "casm compilation succeeded",
		zap.String("compiler_version", casm.CompilerVersion),
		zap.Int("bytecode_len", len(casm.Bytecode)))
	return casm, nil
}

// CompileToNative runs the native compiler with a fresh destination file and
// loads the artifact it wrote there. A failure panics instead of returning
// when PanicOnCompilationFailure is set; temp files are removed either way.
func (c *CommandLineCompiler) CompileToNative(ctx context.Context, class *contract.ContractClass) (*contract.NativeExecutor, error) {
	if !c.cfg.EnableNative {
		return nil, pkgerrors.New(pkgerrors.NativeDisabled)
	}
	ctx = withInvocation(ctx, opCompileNative)

	dest, cleanup, err := c.executor.NewTempPath(ctx, nativeDestPattern)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	native, err := c.compileToNative(ctx, class, dest)
	if err != nil {
		if c.cfg.PanicOnCompilationFailure {
			logger.Error(ctx, "native compilation failed, escalating", zap.Error(err))
			panic(err)
		}
		logger.Error(ctx, "native compilation failed", zap.Error(err))
		return nil, err
	}
	logger.Info(ctx, "native compilation succeeded",
		zap.String("format", string(native.Format)),
		zap.String("machine", native.Machine),
		zap.Int("size", native.Size()))
	return native, nil
}

func (c *CommandLineCompiler) compileToNative(ctx context.Context, class *contract.ContractClass, dest string) (*contract.NativeExecutor, error) {
	if _, err := c.executor.Run(ctx, c.nativePath, class, c.nativeArgs(dest), c.nativeLimits(), executor.WithDiscardStdout()); err != nil {
		return nil, err
	}
	native, err := contract.LoadNativeExecutor(dest)
	switch {
	case errors.Is(err, contract.ErrInvalidArtifact):
		return nil, pkgerrors.Wrap(err, pkgerrors.ArtifactInvalid).WithDetail("path", dest)
	case err != nil:
		return nil, pkgerrors.Wrap(err, pkgerrors.IOFailed).WithDetail("path", dest)
	case native == nil:
		return nil, pkgerrors.Internal("native compiler exited successfully but wrote no artifact").
			WithDetail("binary", c.nativePath).
			WithDetail("path", dest)
	}
	// Without RLIMIT_FSIZE the size ceiling is checked after the fact.
	if ceiling := c.cfg.MaxNativeBytecodeSize; ceiling != nil && *ceiling > 0 && uint64(native.Size()) > *ceiling {
		return nil, pkgerrors.Newf(pkgerrors.ArtifactTooLarge, "native artifact is %d bytes, limit %d", native.Size(), *ceiling)
	}
	return native, nil
}

func withInvocation(ctx context.Context, op string) context.Context {
	ctx = context.WithValue(ctx, contextkey.InvocationID, uuid.NewString())
	return context.WithValue(ctx, contextkey.Operation, op)
}
