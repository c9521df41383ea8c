package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"multicompile/internal/compile/compiler"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestRender(t *testing.T) {
	data, err := render("/opt/compilers")
	if err != nil {
		t.Fatalf("render() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "# allowedLibfuncsListName") {
		t.Errorf("missing unsafe default warning:\n%s", data)
	}

	var got profile
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("generated yaml does not parse: %v", err)
	}
	want := compiler.DefaultConfig()
	want.BinaryDir = "/opt/compilers"
	if diff := cmp.Diff(want, got.Compiler); diff != "" {
		t.Errorf("Compiler mismatch (-want +got):\n%s", diff)
	}
	if got.Logger.Level != "info" {
		t.Errorf("Logger.Level = %q", got.Logger.Level)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "multicompile.yaml")

	if err := writeFile(path, []byte("a: 1\n"), false); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := writeFile(path, []byte("a: 2\n"), false); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	if err := writeFile(path, []byte("a: 2\n"), true); err != nil {
		t.Fatalf("forced write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "a: 2\n" {
		t.Errorf("content = %q, %v", data, err)
	}
}
