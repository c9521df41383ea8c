// Package rlimit applies OS-enforced resource ceilings to a compiler
// subprocess before any of the compiler's own code runs.
//
// os/exec has no pre-exec hook, so on Unix the limiter re-executes a helper
// (the host program itself, see Init) which calls setrlimit on itself and
// then execs the real binary. Limits therefore survive into the compiler
// while the calling process keeps its own limits untouched.
package rlimit

import (
	"fmt"
	"os"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

const (
	reexecArg = "__multicompile_rlimit_exec"
	specEnv   = "MULTICOMPILE_RLIMIT_SPEC"

	// exit statuses reported by the helper when it cannot hand over to the target
	helperFailureExit  = 126
	helperNotFoundExit = 127
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Limits holds the optional ceilings for one child. A zero field means no
// limit is imposed and the environment's defaults apply.
type Limits struct {
	CPUSeconds    uint64 `json:"cpuSeconds,omitempty"`
	FileSizeBytes uint64 `json:"fileSizeBytes,omitempty"`
	MemoryBytes   uint64 `json:"memoryBytes,omitempty"`
	// DenyNetwork makes socket(2) fail with EACCES. Linux only.
	DenyNetwork bool `json:"denyNetwork,omitempty"`
}

// New builds Limits from optional values, nil meaning absent.
func New(cpuSeconds, fileSizeBytes, memoryBytes *uint64) Limits {
	var l Limits
	if cpuSeconds != nil {
		l.CPUSeconds = *cpuSeconds
	}
	if fileSizeBytes != nil {
		l.FileSizeBytes = *fileSizeBytes
	}
	if memoryBytes != nil {
		l.MemoryBytes = *memoryBytes
	}
	return l
}

// IsZero reports whether no limit at all is requested.
func (l Limits) IsZero() bool {
	return l == Limits{}
}

// Resource identifies a limited resource independently of the platform.
type Resource int

const (
	CPUTime Resource = iota
	FileSize
	AddressSpace
)

func (r Resource) String() string {
	switch r {
	case CPUTime:
		return "CPU time"
	case FileSize:
		return "file size"
	case AddressSpace:
		return "memory size"
	default:
		return fmt.Sprintf("resource(%d)", int(r))
	}
}

// Units returns the unit the resource is measured in.
func (r Resource) Units() string {
	if r == CPUTime {
		return "seconds"
	}
	return "bytes"
}

// RLimit is one ceiling as it will be installed in the child.
type RLimit struct {
	Resource Resource
	Soft     uint64
	Hard     uint64
}

func (r RLimit) String() string {
	return fmt.Sprintf("%s: soft %d %s, hard %d %s", r.Resource, r.Soft, r.Resource.Units(), r.Hard, r.Resource.Units())
}

// RLimits expands the present limits. Soft and hard values are equal, so a
// CPU overrun ends in SIGKILL rather than a catchable SIGXCPU.
func (l Limits) RLimits() []RLimit {
	var out []RLimit
	if l.CPUSeconds > 0 {
		out = append(out, RLimit{Resource: CPUTime, Soft: l.CPUSeconds, Hard: l.CPUSeconds})
	}
	if l.FileSizeBytes > 0 {
		out = append(out, RLimit{Resource: FileSize, Soft: l.FileSizeBytes, Hard: l.FileSizeBytes})
	}
	if l.MemoryBytes > 0 {
		out = append(out, RLimit{Resource: AddressSpace, Soft: l.MemoryBytes, Hard: l.MemoryBytes})
	}
	return out
}

// Limiter mutates not-yet-started commands. It is safe for concurrent use.
type Limiter struct {
	helperPath string

	once       sync.Once
	resolved   string
	resolveErr error
}

// NewLimiter returns a limiter using helperPath as the pre-exec helper. An
// empty path selects the running executable, which must call Init first
// thing in main.
func NewLimiter(helperPath string) *Limiter {
	return &Limiter{helperPath: helperPath}
}

func (l *Limiter) helper() (string, error) {
	l.once.Do(func() {
		if l.helperPath != "" {
			l.resolved = l.helperPath
			return
		}
		l.resolved, l.resolveErr = os.Executable()
	})
	return l.resolved, l.resolveErr
}

func encodeLimits(limits Limits) (string, error) {
	return json.MarshalToString(limits)
}

func decodeLimits(raw string) (Limits, error) {
	var limits Limits
	if err := json.UnmarshalFromString(raw, &limits); err != nil {
		return Limits{}, err
	}
	return limits, nil
}

// environWithout drops every entry for key.
func environWithout(env []string, key string) []string {
	prefix := key + "="
	out := make([]string, 0, len(env))
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			continue
		}
		out = append(out, kv)
	}
	return out
}
