package compiler

import (
	"path/filepath"
	"testing"

	"multicompile/internal/compile/rlimit"
	pkgerrors "multicompile/pkg/errors"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	got := DefaultConfig()
	want := Config{
		MaxCasmBytecodeSize:     81920,
		MaxFileSize:             limit(15728640),
		OptimizationLevel:       2,
		MaxCPUTime:              limit(20),
		MaxMemoryUsage:          limit(5368709120),
		MaxNativeBytecodeSize:   limit(15728640),
		AllowedLibfuncsListName: "all",
		EnableNative:            true,
		StderrMaxBytes:          65536,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DefaultConfig() mismatch (-want +got):\n%s", diff)
	}

	// Each call hands out its own limits.
	*got.MaxCPUTime = 1
	if *DefaultConfig().MaxCPUTime != DefaultMaxCPUTime {
		t.Error("DefaultConfig() shares limit pointers between calls")
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{MaxCPUTime: limit(5), MaxMemoryUsage: limit(0), OptimizationLevel: 0, AllowedLibfuncsListName: "audited"}
	cfg.ApplyDefaults()

	if *cfg.MaxCPUTime != 5 {
		t.Errorf("MaxCPUTime = %d, explicit value overwritten", *cfg.MaxCPUTime)
	}
	if *cfg.MaxMemoryUsage != 0 {
		t.Errorf("MaxMemoryUsage = %d, explicit zero overwritten", *cfg.MaxMemoryUsage)
	}
	if cfg.OptimizationLevel != 0 {
		t.Errorf("OptimizationLevel = %d, explicit zero overwritten", cfg.OptimizationLevel)
	}
	if cfg.AllowedLibfuncsListName != "audited" {
		t.Errorf("AllowedLibfuncsListName = %q", cfg.AllowedLibfuncsListName)
	}
	if *cfg.MaxFileSize != DefaultMaxFileSize || *cfg.MaxNativeBytecodeSize != DefaultMaxNativeBytecodeSize {
		t.Errorf("unset limits not defaulted: %d, %d", *cfg.MaxFileSize, *cfg.MaxNativeBytecodeSize)
	}
	if cfg.EnableNative {
		t.Error("ApplyDefaults must not flip booleans")
	}
}

func TestLimitsFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCPUTime = limit(0)
	cfg.MaxMemoryUsage = limit(0)
	cfg.DenyNetwork = true
	c := &CommandLineCompiler{cfg: cfg}

	wantCasm := rlimit.Limits{FileSizeBytes: DefaultMaxFileSize, DenyNetwork: true}
	if diff := cmp.Diff(wantCasm, c.casmLimits()); diff != "" {
		t.Errorf("casmLimits() mismatch (-want +got):\n%s", diff)
	}
	wantNative := rlimit.Limits{FileSizeBytes: DefaultMaxNativeBytecodeSize, DenyNetwork: true}
	if diff := cmp.Diff(wantNative, c.nativeLimits()); diff != "" {
		t.Errorf("nativeLimits() mismatch (-want +got):\n%s", diff)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   pkgerrors.ErrorCode
	}{
		{"defaults", func(*Config) {}, pkgerrors.Success},
		{"opt level 3", func(c *Config) { c.OptimizationLevel = 3 }, pkgerrors.Success},
		{"opt level 4", func(c *Config) { c.OptimizationLevel = 4 }, pkgerrors.InvalidConfig},
		{"override without native", func(c *Config) {
			c.EnableNative = false
			c.SierraToNativeCompilerPath = "/opt/native"
		}, pkgerrors.InvalidConfig},
		{"deny network", func(c *Config) { c.DenyNetwork = true }, denyNetworkCode()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == pkgerrors.Success {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !pkgerrors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want code %v", err, tt.want)
			}
		})
	}
}

func denyNetworkCode() pkgerrors.ErrorCode {
	if rlimit.NetworkFilterSupported() {
		return pkgerrors.Success
	}
	return pkgerrors.NotSupported
}

func TestBinaryPath(t *testing.T) {
	got := BinaryPath("/opt/out", SierraToCasmBinary)
	if want := filepath.Join("/opt/out", "starknet-sierra-compile"); got != want {
		t.Errorf("BinaryPath() = %q, want %q", got, want)
	}
}

func TestBinaryDir(t *testing.T) {
	t.Setenv(OutDirEnv, "/from/env")

	dir, err := binaryDir("/from/config")
	if err != nil || dir != "/from/config" {
		t.Errorf("configured dir: got %q, %v", dir, err)
	}
	dir, err = binaryDir("")
	if err != nil || dir != "/from/env" {
		t.Errorf("env dir: got %q, %v", dir, err)
	}

	t.Setenv(OutDirEnv, "")
	dir, err = binaryDir("")
	if err != nil || dir == "" {
		t.Errorf("executable dir: got %q, %v", dir, err)
	}
}

func TestSplitFlags(t *testing.T) {
	tests := []struct {
		raw     string
		want    []string
		wantErr bool
	}{
		{"", nil, false},
		{"   ", nil, false},
		{"--single-file", []string{"--single-file"}, false},
		{`--allowed-libfuncs-list-file '/etc/compiler/audited list.json'`, []string{"--allowed-libfuncs-list-file", "/etc/compiler/audited list.json"}, false},
		{`--flag "unterminated`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := splitFlags("casmExtraFlags", tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !pkgerrors.Is(err, pkgerrors.InvalidConfig) {
					t.Errorf("code = %v, want InvalidConfig", pkgerrors.GetCode(err))
				}
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("splitFlags() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
