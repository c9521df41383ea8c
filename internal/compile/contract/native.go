package contract

import (
	"bytes"
	"crypto/sha256"
	"debug/elf"
	"debug/macho"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ObjectFormat is the container format of a native artifact.
type ObjectFormat string

const (
	FormatELF   ObjectFormat = "elf"
	FormatMachO ObjectFormat = "macho"
)

// NativeExecutor is a handle to an ahead-of-time compiled contract. The
// object is copied into memory so the handle stays valid after the file it
// was loaded from is removed.
type NativeExecutor struct {
	Format  ObjectFormat
	Machine string
	Object  []byte
	Digest  string
}

// Size returns the object size in bytes.
func (n *NativeExecutor) Size() int {
	return len(n.Object)
}

// ErrInvalidArtifact marks a file that exists but is not a loadable object.
var ErrInvalidArtifact = errors.New("invalid native artifact")

// LoadNativeExecutor loads the artifact at path. It returns (nil, nil) when
// no artifact was written there (missing or empty file), and an error when a
// file exists but is not a shared object or cannot be read.
func LoadNativeExecutor(path string) (*NativeExecutor, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read native artifact: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	format, machine, err := inspectObject(data)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	return &NativeExecutor{
		Format:  format,
		Machine: machine,
		Object:  data,
		Digest:  hex.EncodeToString(sum[:]),
	}, nil
}

func inspectObject(data []byte) (ObjectFormat, string, error) {
	if bytes.HasPrefix(data, []byte(elf.ELFMAG)) {
		f, err := elf.NewFile(bytes.NewReader(data))
		if err != nil {
			return "", "", fmt.Errorf("%w: parse elf: %v", ErrInvalidArtifact, err)
		}
		defer f.Close()
		if f.Type != elf.ET_DYN && f.Type != elf.ET_EXEC {
			return "", "", fmt.Errorf("%w: elf type %s, want a shared object", ErrInvalidArtifact, f.Type)
		}
		return FormatELF, f.Machine.String(), nil
	}

	f, err := macho.NewFile(bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("%w: neither elf nor mach-o", ErrInvalidArtifact)
	}
	defer f.Close()
	if f.Type != macho.TypeDylib && f.Type != macho.TypeBundle && f.Type != macho.TypeExec {
		return "", "", fmt.Errorf("%w: mach-o type %s, want a dynamic library", ErrInvalidArtifact, f.Type)
	}
	return FormatMachO, f.Cpu.String(), nil
}
