// Command multicompile compiles a Sierra contract class to CASM or to a
// native artifact with the pinned command line compilers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"multicompile/internal/compile/compiler"
	"multicompile/internal/compile/rlimit"
	pkgerrors "multicompile/pkg/errors"
	"multicompile/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	targetCasm   = "casm"
	targetNative = "native"
)

func main() {
	// Must run first: the limiter re-executes this binary as its helper.
	rlimit.Init()
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to config file (defaults when empty)")
	target := flag.String("target", targetCasm, "Compilation target: casm or native")
	inPath := flag.String("in", stdio, "Sierra contract class JSON, .gz and .zst are decompressed")
	outPath := flag.String("out", stdio, "Artifact destination, .gz and .zst are compressed")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return pkgerrors.InvalidConfig.ExitCode()
	}
	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return pkgerrors.InvalidConfig.ExitCode()
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()
	if err := compile(ctx, appCfg.Compiler, *target, *inPath, *outPath); err != nil {
		logger.Error(ctx, "compile failed",
			zap.String("target", *target),
			zap.String("in", *inPath),
			zap.Int("code", int(pkgerrors.GetCode(err))),
			zap.Error(err))
		return pkgerrors.GetCode(err).ExitCode()
	}
	return 0
}

func compile(ctx context.Context, cfg compiler.Config, target, inPath, outPath string) error {
	if target != targetCasm && target != targetNative {
		return pkgerrors.Newf(pkgerrors.InvalidConfig, "unknown target %q, want %s or %s", target, targetCasm, targetNative)
	}
	if target == targetCasm {
		// the native binary is not needed, do not require it
		cfg.EnableNative = false
		cfg.SierraToNativeCompilerPath = ""
	}

	class, err := readContractClass(inPath)
	if err != nil {
		return err
	}
	c, err := compiler.NewCommandLineCompiler(cfg)
	if err != nil {
		return err
	}

	var data []byte
	switch target {
	case targetCasm:
		casm, err := c.Compile(ctx, class)
		if err != nil {
			return err
		}
		if data, err = casm.Marshal(); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.SerializationFailed)
		}
	case targetNative:
		native, err := c.CompileToNative(ctx, class)
		if err != nil {
			return err
		}
		data = native.Object
		logger.Info(ctx, "native artifact ready", zap.String("sha256", native.Digest))
	}

	if err := writeDocument(outPath, data); err != nil {
		return err
	}
	logger.Info(ctx, "artifact written", zap.String("out", outPath), zap.Int("bytes", len(data)))
	return nil
}
