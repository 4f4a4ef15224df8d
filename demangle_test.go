package demangle

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDemangleSymbolAsString(t *testing.T) {
	tests := []struct {
		mangled string
		want    string
	}{
		{"_TtC1M1T", "M.T"},
		{"_TC1M1T", "M.T"},
		{"_TtSi", "Swift.Int"},
		{"_TtSS", "Swift.String"},
		{"_TtSb", "Swift.Bool"},
		{"_TtBi64_", "Builtin.Int64"},
		{"_TtBf32_", "Builtin.Float32"},
		{"_TtBp", "Builtin.RawPointer"},
		{"_TtBo", "Builtin.NativeObject"},
		{"_TtFSiSS", "Swift.Int -> Swift.String"},
		{"_TtT_", "()"},
		{"_TtT3fooSi3barSS_", "(foo: Swift.Int, bar: Swift.String)"},
		{"_Ttt3fooSi_", "(foo: Swift.Int...)"},
		{"_TtRSi", "inout Swift.Int"},
		{"_TtMSi", "Swift.Int.metatype"},
		{"_TtXoC1M1C", "unowned M.C"},
		{"_TtXwC1M1C", "weak M.C"},
		{"_TtA3Si", "Swift.Int[3]"},
		{"_TtA1000000000Si", "Swift.Int[1000000000]"},
		{"_TtGSaSS_", "Swift.Array<Swift.String>"},
		{"_TtGSqSi_", "Swift.Optional<Swift.Int>"},
		{"_TtP1M1P_", "M.P"},
		{"_TtP1M1P1M1Q_", "protocol<M.P, M.Q>"},
		{"_TtT1aC1M1C1bS0__", "(a: M.C, b: M.C)"},
		{"_TtQq_Si", "(archetype 0 of Swift.Int)"},
		{"_TtU_.FQ_Q_", "<A> A -> A"},
		{"_TtUP1M1P_.Q_", "<A: M.P> A"},
		{"_TtU_.U_.TQ_Q0__", "<A> <B> (A, B)"},
		{"_TtC1MX9bcher-kva", "M.bücher"},
		{"_TF1M3fooFT_T_", "M.foo : () -> ()"},
		{"_Tv1M1gSi", "M.g : Swift.Int"},
		{"_TFC1M1Cg1xSi", "M.C.x.getter : Swift.Int"},
		{"_TFC1M1Cs1xSi", "M.C.x.setter : Swift.Int"},
		{"_TFC1M1Ca1xSi", "M.C.x.addressor : Swift.Int"},
		{"_TFC1M1CD", "M.C.__deallocating_destructor"},
		{"_TFC1M1Cd", "M.C.destructor"},
		{"_TFC1M1CCfMS0_S0_", "M.C.__allocating_init : M.C.metatype -> M.C"},
		{"_TFC1M1CcfMS0_S0_", "M.C.init : M.C.metatype -> M.C"},
		{"_TF1Moi1pFTSiSi_Si", "M.+ infix : (Swift.Int, Swift.Int) -> Swift.Int"},
		{"_TF1Mop1sFSiSi", "M.- prefix : Swift.Int -> Swift.Int"},
		{"_TMdSi", "direct type metadata for Swift.Int"},
		{"_TMiC1M1C", "indirect type metadata for M.C"},
		{"_TMPdC1M1C", "direct generic type metadata pattern for M.C"},
		{"_TMmC1M1C", "metaclass for M.C"},
		{"_TMnC1M1C", "nominal type descriptor for M.C"},
		{"_TwalSS", "allocateBuffer value witness for Swift.String"},
		{"_TwxxSi", "destroy value witness for Swift.Int"},
		{"_TWVSS", "value witness table for Swift.String"},
		{"_TWvdvC1M1C1xSi", "direct field offset for M.C.x : Swift.Int"},
		{"_TWoFC1M1Cg1xSi", "witness table offset for M.C.x.getter : Swift.Int"},
		{"_TWPC1M1C1M1P2Fo", "protocol witness table for M.C : M.P in Fo"},
		{"_TWZC1M1C1M1P2Fo", "lazy protocol witness table accessor for M.C : M.P in Fo"},
		{"_TWzC1M1C1M1P2Fo", "lazy protocol witness table template for M.C : M.P in Fo"},
		{"_TTWC1M1C1M1PS_FS2_3fooFT_T_", "protocol witness for M.P.foo : () -> () in conformance M.C : M.P in M"},
		{"_TToFC1M1Cg1xSi", "@objc M.C.x.getter : Swift.Int"},
		{"_TTbbT_T_", "bridge-to-block function for @objc_block () -> ()"},
	}
	for _, tc := range tests {
		t.Run(tc.mangled, func(t *testing.T) {
			got := DemangleSymbolAsString(tc.mangled, DefaultOptions())
			if got != tc.want {
				t.Fatalf("render mismatch: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDemangleFailure(t *testing.T) {
	tests := []string{
		"",
		"x",
		"_T",
		"_Tt",
		"_TC1M1",
		"_TtC1M1",
		"_TtC1M9ab",
		"_TtSiSS",
		"_TtGFSiSiSS_",
		"_TtS!",
		"_TtS9_",
		"_TwzzSi",
		"_TtC1MX20a-pp124498107776961m",
		"_TtA99999999999999999999Si",
		"_Tt" + strings.Repeat("M", 600) + "Si",
	}
	for _, mangled := range tests {
		t.Run(mangled, func(t *testing.T) {
			node := DemangleSymbolAsNode(mangled, DefaultOptions())
			if node == nil {
				t.Fatal("DemangleSymbolAsNode returned nil")
			}
			if node.Kind != KindFailure {
				t.Fatalf("expected Failure root, got %s", node.Kind)
			}
			if node.Text == "" {
				t.Fatal("Failure root carries no diagnostic")
			}
			if got := NodeToString(node, DefaultOptions()); got != failurePlaceholder {
				t.Fatalf("failure render mismatch: got %q, want %q", got, failurePlaceholder)
			}
		})
	}
}

func TestDemangleTreeShape(t *testing.T) {
	node := DemangleSymbolAsNode("_TtC1M1T", DefaultOptions())
	var sb strings.Builder
	DumpTree(&sb, node)
	want := strings.Join([]string{
		"- Type",
		"  - Class",
		"    - Module (M)",
		"    - Identifier (T)",
		"",
	}, "\n")
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestDemangleSubstitutionsAreIndependent(t *testing.T) {
	node := DemangleSymbolAsNode("_TtT1aC1M1C1bS0__", DefaultOptions())
	first := node.FirstChild().Child(0).Child(1).FirstChild()
	second := node.FirstChild().Child(1).Child(1).FirstChild()
	if first == second {
		t.Fatal("substitution reuse shared a node instead of cloning")
	}
}

func TestOptionSugar(t *testing.T) {
	opts := DefaultOptions()
	opts.SynthesizeSugarOnTypes = true
	tests := []struct {
		mangled string
		want    string
	}{
		{"_TtGSqSi_", "Swift.Int?"},
		{"_TtGSQSi_", "Swift.Int!"},
		{"_TtGSaSS_", "Swift.Array<Swift.String>"},
	}
	for _, tc := range tests {
		if got := DemangleSymbolAsString(tc.mangled, opts); got != tc.want {
			t.Fatalf("render mismatch for %q: got %q, want %q", tc.mangled, got, tc.want)
		}
	}
}

func TestOptionFieldOffsetType(t *testing.T) {
	const mangled = "_TWvdvC1M1C1xSi"
	withType := DemangleSymbolAsString(mangled, DefaultOptions())
	if want := "direct field offset for M.C.x : Swift.Int"; withType != want {
		t.Fatalf("render mismatch: got %q, want %q", withType, want)
	}
	opts := DefaultOptions()
	opts.DisplayTypeOfIVarFieldOffset = false
	withoutType := DemangleSymbolAsString(mangled, opts)
	if want := "direct field offset for M.C.x"; withoutType != want {
		t.Fatalf("render mismatch: got %q, want %q", withoutType, want)
	}
}

func TestDemangleDeterministic(t *testing.T) {
	const mangled = "_TFC1M1Cg1xSi"
	first := DemangleSymbolAsString(mangled, DefaultOptions())
	for i := 0; i < 3; i++ {
		if got := DemangleSymbolAsString(mangled, DefaultOptions()); got != first {
			t.Fatalf("nondeterministic render: got %q, want %q", got, first)
		}
	}
}

func TestDemangleBlob(t *testing.T) {
	tests := []struct {
		blob string
		want string
	}{
		{"ref to _TtC1M1T here", "ref to M.T here"},
		{"_TtSi and _TtSS", "Swift.Int and Swift.String"},
		{"broken _Txyz stays", "broken _Txyz stays"},
		{"no symbols at all", "no symbols at all"},
	}
	for _, tc := range tests {
		if got := DemangleBlob(tc.blob, DefaultOptions()); got != tc.want {
			t.Fatalf("blob mismatch: got %q, want %q", got, tc.want)
		}
	}
}
