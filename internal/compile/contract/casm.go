package contract

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// CasmEntryPoint binds a selector to a bytecode offset.
type CasmEntryPoint struct {
	Selector string   `json:"selector"`
	Offset   uint64   `json:"offset"`
	Builtins []string `json:"builtins"`
}

// CasmEntryPoints groups compiled entry points by type.
type CasmEntryPoints struct {
	External    []CasmEntryPoint `json:"EXTERNAL"`
	L1Handler   []CasmEntryPoint `json:"L1_HANDLER"`
	Constructor []CasmEntryPoint `json:"CONSTRUCTOR"`
}

// CasmContractClass is the bytecode artifact produced by the Sierra compiler.
type CasmContractClass struct {
	Prime                  string              `json:"prime"`
	CompilerVersion        string              `json:"compiler_version"`
	Bytecode               []string            `json:"bytecode"`
	BytecodeSegmentLengths jsoniter.RawMessage `json:"bytecode_segment_lengths,omitempty"`
	Hints                  jsoniter.RawMessage `json:"hints"`
	PythonicHints          jsoniter.RawMessage `json:"pythonic_hints,omitempty"`
	EntryPointsByType      CasmEntryPoints     `json:"entry_points_by_type"`
}

// DecodeCasm parses compiler output. Output that is valid JSON but lacks the
// fields every CASM class has is rejected as well.
func DecodeCasm(data []byte) (*CasmContractClass, error) {
	var casm CasmContractClass
	if err := json.Unmarshal(data, &casm); err != nil {
		return nil, err
	}
	if casm.Prime == "" {
		return nil, fmt.Errorf("casm class: missing prime")
	}
	if casm.Bytecode == nil {
		return nil, fmt.Errorf("casm class: missing bytecode")
	}
	return &casm, nil
}

// Marshal serializes the class.
func (c *CasmContractClass) Marshal() ([]byte, error) {
	return json.Marshal(c)
}
