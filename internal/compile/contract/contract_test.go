package contract_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"multicompile/internal/compile/contract"

	"github.com/google/go-cmp/cmp"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

func TestContractClassRoundTrip(t *testing.T) {
	class, err := contract.DecodeContractClass(bytes.NewReader(readFixture(t, "contract_class.json")))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if class.ContractClassVersion != "0.1.0" || len(class.SierraProgram) != 6 {
		t.Fatalf("unexpected class: %+v", class)
	}
	if got := class.EntryPointsByType.Constructor[0].FunctionIdx; got != 1 {
		t.Fatalf("constructor function_idx = %d", got)
	}

	data, err := class.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	again, err := contract.DecodeContractClass(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode again: %v", err)
	}
	if diff := cmp.Diff(class, again); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCasm(t *testing.T) {
	cases := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{name: "fixture", data: readFixture(t, "casm.json")},
		{name: "not_json", data: []byte("Segmentation fault"), wantErr: true},
		{name: "empty", data: nil, wantErr: true},
		{name: "missing_prime", data: []byte(`{"bytecode":[]}`), wantErr: true},
		{name: "missing_bytecode", data: []byte(`{"prime":"0x1"}`), wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			casm, err := contract.DecodeCasm(tc.data)
			if (err != nil) != tc.wantErr {
				t.Fatalf("DecodeCasm() err = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && len(casm.Bytecode) != 4 {
				t.Fatalf("bytecode = %v", casm.Bytecode)
			}
		})
	}
}

func TestDecodeContractClassKeepsABI(t *testing.T) {
	class, err := contract.DecodeContractClass(bytes.NewReader(readFixture(t, "contract_class.json")))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.HasPrefix(class.ABI, []byte(`[{"type":"function"`)) {
		t.Fatalf("abi = %s", class.ABI)
	}

	data, err := class.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(data, []byte(`"abi":[{"type":"function","name":"increase_balance"`)) {
		t.Errorf("abi not written as an array: %s", data)
	}
}

func TestContractClassMarshalShape(t *testing.T) {
	tests := []struct {
		name    string
		class   contract.ContractClass
		want    []string
		notWant []string
	}{
		{
			name:    "empty class",
			class:   contract.ContractClass{},
			want:    []string{`"EXTERNAL":[]`, `"L1_HANDLER":[]`, `"CONSTRUCTOR":[]`},
			notWant: []string{`"EXTERNAL":null`, `"L1_HANDLER":null`, `"CONSTRUCTOR":null`, `"abi"`, `"sierra_program_debug_info"`},
		},
		{
			name: "partial entry points",
			class: contract.ContractClass{
				SierraProgram: []string{"0x1"},
				EntryPointsByType: contract.SierraEntryPoints{
					External: []contract.SierraEntryPoint{{Selector: "0x2", FunctionIdx: 0}},
				},
				ABI: []byte(`[]`),
			},
			want:    []string{`"EXTERNAL":[{"selector":"0x2","function_idx":0}]`, `"L1_HANDLER":[]`, `"abi":[]`},
			notWant: []string{`null`, `"abi":"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.class.Marshal()
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			for _, w := range tt.want {
				if !bytes.Contains(data, []byte(w)) {
					t.Errorf("missing %s in %s", w, data)
				}
			}
			for _, n := range tt.notWant {
				if bytes.Contains(data, []byte(n)) {
					t.Errorf("unexpected %s in %s", n, data)
				}
			}
		})
	}
}
