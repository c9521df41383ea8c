// Command configgen writes a multicompile config file holding every default,
// ready to be edited per deployment.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"multicompile/internal/compile/compiler"
	"multicompile/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

type profile struct {
	Logger   logger.Config   `yaml:"logger"`
	Compiler compiler.Config `yaml:"compiler"`
}

func main() {
	output := flag.String("output", "configs/multicompile.yaml", "Path of the generated config")
	binaryDir := flag.String("binary-dir", "", "Directory holding the compiler binaries")
	force := flag.Bool("force", false, "Overwrite an existing file")
	flag.Parse()

	data, err := render(*binaryDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render config failed: %v\n", err)
		os.Exit(1)
	}
	if err := writeFile(*output, data, *force); err != nil {
		fmt.Fprintf(os.Stderr, "write config failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("generated %s\n", *output)
}

func render(binaryDir string) ([]byte, error) {
	p := profile{
		Logger:   logger.Config{Level: "info", Format: "console", OutputPath: "stderr"},
		Compiler: compiler.DefaultConfig(),
	}
	p.Compiler.BinaryDir = binaryDir

	var buf bytes.Buffer
	buf.WriteString("# allowedLibfuncsListName \"all\" accepts every libfunc and is unsafe, restrict it in production.\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use -force to overwrite", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
