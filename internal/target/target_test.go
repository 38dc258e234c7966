package target

import "testing"

func TestParseTripleCanonicalForms(t *testing.T) {
	cases := []struct {
		in       string
		arch     Arch
		os       OS
		ptrSize  int
		longSize int
	}{
		{"x86_64-linux", ArchX86_64, OSLinux, 8, 8},
		{"amd64-darwin", ArchX86_64, OSDarwin, 8, 8},
		{"arm64-darwin", ArchAArch64, OSDarwin, 8, 8},
		{"aarch64-linux", ArchAArch64, OSLinux, 8, 8},
		{"rv32i-linux", ArchRV32I, OSLinux, 4, 4},
		{"riscv32-linux", ArchRV32I, OSLinux, 4, 4},
		{"x86_64-unknown-linux-gnu", ArchX86_64, OSLinux, 8, 8},
		{"arm64-apple-macosx", ArchAArch64, OSDarwin, 8, 8},
	}
	for _, tc := range cases {
		d, err := ParseTriple(tc.in)
		if err != nil {
			t.Fatalf("ParseTriple(%q): %v", tc.in, err)
		}
		if d.Arch != tc.arch || d.OS != tc.os || d.PtrSize != tc.ptrSize || d.LongSize != tc.longSize {
			t.Fatalf("ParseTriple(%q) = %+v", tc.in, d)
		}
	}
}

func TestParseTripleRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "x86_64", "mips-linux", "x86_64-plan9", "rv32i-darwin"} {
		if _, err := ParseTriple(in); err == nil {
			t.Fatalf("ParseTriple(%q) accepted", in)
		}
	}
}

func TestTripleRoundTrips(t *testing.T) {
	for _, d := range []Descriptor{X86_64Linux(), X86_64Darwin(), AArch64Linux(), AArch64Darwin(), RV32ILinux()} {
		got, err := ParseTriple(d.Triple())
		if err != nil {
			t.Fatalf("ParseTriple(%q): %v", d.Triple(), err)
		}
		if got != d {
			t.Fatalf("round trip %q: got %+v, want %+v", d.Triple(), got, d)
		}
	}
}
