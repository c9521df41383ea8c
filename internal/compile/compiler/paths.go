package compiler

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	pkgerrors "multicompile/pkg/errors"

	"github.com/google/shlex"
)

const (
	SierraToCasmBinary   = "starknet-sierra-compile"
	SierraToNativeBinary = "starknet-native-compile"

	// OutDirEnv names the build output directory holding both binaries.
	OutDirEnv = "MULTICOMPILE_OUT_DIR"
)

// BinaryPath returns the location of the named compiler inside dir.
func BinaryPath(dir, name string) string {
	return filepath.Join(dir, name)
}

// binaryDir picks the configured directory, then $MULTICOMPILE_OUT_DIR, then
// the directory of the running executable.
func binaryDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if dir := os.Getenv(OutDirEnv); dir != "" {
		return dir, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.IOFailed).WithDetail("phase", "resolve executable")
	}
	return filepath.Dir(exe), nil
}

// checkExecutable returns an absolute path to an existing executable file.
func checkExecutable(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.IOFailed).WithDetail("path", path)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", pkgerrors.Wrapf(err, pkgerrors.BinaryNotFound, "compiler binary %s", abs).WithDetail("path", abs)
	}
	if info.IsDir() {
		return "", pkgerrors.Newf(pkgerrors.BinaryNotFound, "compiler binary %s is a directory", abs).WithDetail("path", abs)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return "", pkgerrors.Newf(pkgerrors.BinaryNotFound, "compiler binary %s is not executable", abs).WithDetail("path", abs)
	}
	return abs, nil
}

// splitFlags parses a shell-quoted flag string from configuration.
func splitFlags(key, raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	fields, err := shlex.Split(raw)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, pkgerrors.InvalidConfig, "parse %s failed", key)
	}
	return fields, nil
}
