package compiler

import (
	"multicompile/internal/compile/executor"
	"multicompile/internal/compile/rlimit"
	pkgerrors "multicompile/pkg/errors"
)

const (
	DefaultMaxCasmBytecodeSize   = 80 * 1024
	DefaultMaxFileSize           = 15 * 1024 * 1024
	DefaultOptimizationLevel     = 2
	DefaultMaxCPUTime            = 20
	DefaultMaxMemoryUsage        = 5 * 1024 * 1024 * 1024
	DefaultMaxNativeBytecodeSize = 15 * 1024 * 1024
	DefaultStderrMaxBytes        = executor.DefaultStderrMaxBytes

	// AllowAllLibfuncs lets the CASM compiler accept every libfunc. It is
	// unsafe and kept only as the default for input compatibility; deployments
	// should configure a restricted list.
	AllowAllLibfuncs = "all"

	maxOptimizationLevel = 3
)

// Config holds compiler limits and binary locations. Sizes are bytes, CPU
// time is seconds.
//
// The process limits are pointers: nil takes the default, an explicit 0
// leaves that resource unlimited.
type Config struct {
	MaxCasmBytecodeSize        uint64  `yaml:"maxCasmBytecodeSize"`
	MaxFileSize                *uint64 `yaml:"maxFileSize"`
	OptimizationLevel          uint8   `yaml:"optimizationLevel"`
	MaxCPUTime                 *uint64 `yaml:"maxCpuTime"`
	MaxMemoryUsage             *uint64 `yaml:"maxMemoryUsage"`
	MaxNativeBytecodeSize      *uint64 `yaml:"maxNativeBytecodeSize"`
	SierraToNativeCompilerPath string  `yaml:"sierraToNativeCompilerPath"`
	PanicOnCompilationFailure  bool    `yaml:"panicOnCompilationFailure"`
	AllowedLibfuncsListName    string  `yaml:"allowedLibfuncsListName"`
	BinaryDir                  string  `yaml:"binaryDir"`
	EnableNative               bool    `yaml:"enableNative"`
	LimiterHelperPath          string  `yaml:"limiterHelperPath"`
	DenyNetwork                bool    `yaml:"denyNetwork"`
	StderrMaxBytes             int     `yaml:"stderrMaxBytes"`
	TempDir                    string  `yaml:"tempDir"`
	// Extra flags are shell-quoted and appended after the fixed ones.
	CasmExtraFlags   string `yaml:"casmExtraFlags"`
	NativeExtraFlags string `yaml:"nativeExtraFlags"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
// Decode YAML on top of it so that explicit zero values and false flags
// survive.
func DefaultConfig() Config {
	return Config{
		MaxCasmBytecodeSize:     DefaultMaxCasmBytecodeSize,
		MaxFileSize:             limit(DefaultMaxFileSize),
		OptimizationLevel:       DefaultOptimizationLevel,
		MaxCPUTime:              limit(DefaultMaxCPUTime),
		MaxMemoryUsage:          limit(DefaultMaxMemoryUsage),
		MaxNativeBytecodeSize:   limit(DefaultMaxNativeBytecodeSize),
		AllowedLibfuncsListName: AllowAllLibfuncs,
		EnableNative:            true,
		StderrMaxBytes:          DefaultStderrMaxBytes,
	}
}

func limit(v uint64) *uint64 { return &v }

// ApplyDefaults fills unset fields. Nil limits take the default while an
// explicit 0 stays unlimited. Booleans and the optimization level are left
// alone since their zero value is meaningful. MaxCasmBytecodeSize is passed
// to the compiler as an argument, so 0 there means unset.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.MaxCasmBytecodeSize == 0 {
		c.MaxCasmBytecodeSize = defaults.MaxCasmBytecodeSize
	}
	if c.MaxFileSize == nil {
		c.MaxFileSize = defaults.MaxFileSize
	}
	if c.MaxCPUTime == nil {
		c.MaxCPUTime = defaults.MaxCPUTime
	}
	if c.MaxMemoryUsage == nil {
		c.MaxMemoryUsage = defaults.MaxMemoryUsage
	}
	if c.MaxNativeBytecodeSize == nil {
		c.MaxNativeBytecodeSize = defaults.MaxNativeBytecodeSize
	}
	if c.AllowedLibfuncsListName == "" {
		c.AllowedLibfuncsListName = defaults.AllowedLibfuncsListName
	}
	if c.StderrMaxBytes <= 0 {
		c.StderrMaxBytes = defaults.StderrMaxBytes
	}
}

// Validate rejects values the compilers would refuse anyway.
func (c Config) Validate() error {
	if c.OptimizationLevel > maxOptimizationLevel {
		return pkgerrors.Newf(pkgerrors.InvalidConfig, "optimizationLevel %d out of range 0-%d", c.OptimizationLevel, maxOptimizationLevel)
	}
	if c.SierraToNativeCompilerPath != "" && !c.EnableNative {
		return pkgerrors.Newf(pkgerrors.InvalidConfig, "sierraToNativeCompilerPath set while enableNative is false")
	}
	if c.DenyNetwork && !rlimit.NetworkFilterSupported() {
		return pkgerrors.Newf(pkgerrors.NotSupported, "denyNetwork needs seccomp, which this platform lacks")
	}
	return nil
}
