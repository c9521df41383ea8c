// Package contract defines the documents exchanged with the external
// compilers: the Sierra contract class given as input and the CASM and
// native artifacts they produce.
package contract

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EntryPointType names a group of entry points.
type EntryPointType string

const (
	External    EntryPointType = "EXTERNAL"
	L1Handler   EntryPointType = "L1_HANDLER"
	Constructor EntryPointType = "CONSTRUCTOR"
)

// SierraEntryPoint binds a selector to a Sierra function index.
type SierraEntryPoint struct {
	Selector    string `json:"selector"`
	FunctionIdx uint64 `json:"function_idx"`
}

// SierraEntryPoints groups entry points by type.
type SierraEntryPoints struct {
	External    []SierraEntryPoint `json:"EXTERNAL"`
	L1Handler   []SierraEntryPoint `json:"L1_HANDLER"`
	Constructor []SierraEntryPoint `json:"CONSTRUCTOR"`
}

// MarshalJSON writes missing groups as empty arrays; compilers reject null.
func (e SierraEntryPoints) MarshalJSON() ([]byte, error) {
	type plain SierraEntryPoints
	p := plain(e)
	if p.External == nil {
		p.External = []SierraEntryPoint{}
	}
	if p.L1Handler == nil {
		p.L1Handler = []SierraEntryPoint{}
	}
	if p.Constructor == nil {
		p.Constructor = []SierraEntryPoint{}
	}
	return json.Marshal(p)
}

// ContractClass is a Sierra contract class, the compilers' input document.
// Debug info and ABI are carried opaquely.
type ContractClass struct {
	SierraProgram          []string            `json:"sierra_program"`
	SierraProgramDebugInfo jsoniter.RawMessage `json:"sierra_program_debug_info,omitempty"`
	ContractClassVersion   string              `json:"contract_class_version"`
	EntryPointsByType      SierraEntryPoints   `json:"entry_points_by_type"`
	ABI                    jsoniter.RawMessage `json:"abi,omitempty"`
}

// Marshal serializes the class as it is handed to a compiler.
func (c *ContractClass) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// DecodeContractClass reads a Sierra contract class document.
func DecodeContractClass(r io.Reader) (*ContractClass, error) {
	var class ContractClass
	if err := json.NewDecoder(r).Decode(&class); err != nil {
		return nil, err
	}
	return &class, nil
}
