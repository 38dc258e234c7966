package target

import (
	"fmt"
	"strings"
)

// Arch is a supported instruction set.
type Arch int

const (
	ArchX86_64 Arch = iota
	ArchAArch64
	ArchRV32I
)

func (a Arch) String() string {
	switch a {
	case ArchX86_64:
		return "x86_64"
	case ArchAArch64:
		return "arm64"
	case ArchRV32I:
		return "rv32i"
	}
	return "unknown"
}

// OS is a supported host operating system.
type OS int

const (
	OSLinux OS = iota
	OSDarwin
)

func (o OS) String() string {
	switch o {
	case OSLinux:
		return "linux"
	case OSDarwin:
		return "darwin"
	}
	return "unknown"
}

// Descriptor describes a compilation target and its pointer properties.
// PtrSize and LongSize feed the type interner so `long` and pointer
// widths follow the target rather than the host.
type Descriptor struct {
	Arch     Arch
	OS       OS
	PtrSize  int // bytes
	LongSize int // bytes
}

// Triple renders the descriptor back to its canonical arch-os form.
func (d Descriptor) Triple() string {
	return d.Arch.String() + "-" + d.OS.String()
}

func X86_64Linux() Descriptor {
	return Descriptor{Arch: ArchX86_64, OS: OSLinux, PtrSize: 8, LongSize: 8}
}

func X86_64Darwin() Descriptor {
	return Descriptor{Arch: ArchX86_64, OS: OSDarwin, PtrSize: 8, LongSize: 8}
}

func AArch64Linux() Descriptor {
	return Descriptor{Arch: ArchAArch64, OS: OSLinux, PtrSize: 8, LongSize: 8}
}

func AArch64Darwin() Descriptor {
	return Descriptor{Arch: ArchAArch64, OS: OSDarwin, PtrSize: 8, LongSize: 8}
}

func RV32ILinux() Descriptor {
	return Descriptor{Arch: ArchRV32I, OS: OSLinux, PtrSize: 4, LongSize: 4}
}

// ParseTriple parses an "arch-os" triple such as "x86_64-linux" or
// "arm64-darwin". Vendor components ("x86_64-unknown-linux-gnu") are
// tolerated and ignored. Arch aliases: aarch64=arm64, amd64=x86_64,
// riscv32=rv32i. RV32I is 32-bit only and has no darwin port.
func ParseTriple(triple string) (Descriptor, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(triple)), "-")
	if len(parts) < 2 {
		return Descriptor{}, fmt.Errorf("malformed target triple %q: want arch-os", triple)
	}

	var arch Arch
	switch parts[0] {
	case "x86_64", "amd64":
		arch = ArchX86_64
	case "arm64", "aarch64":
		arch = ArchAArch64
	case "rv32i", "riscv32":
		arch = ArchRV32I
	default:
		return Descriptor{}, fmt.Errorf("unsupported target arch %q", parts[0])
	}

	var os OS
	found := false
	for _, p := range parts[1:] {
		switch p {
		case "linux":
			os, found = OSLinux, true
		case "darwin", "macos", "macosx":
			os, found = OSDarwin, true
		}
		if found {
			break
		}
	}
	if !found {
		return Descriptor{}, fmt.Errorf("unsupported target os in triple %q", triple)
	}

	if arch == ArchRV32I {
		if os != OSLinux {
			return Descriptor{}, fmt.Errorf("rv32i supports linux only, got %q", triple)
		}
		return RV32ILinux(), nil
	}

	d := Descriptor{Arch: arch, OS: os, PtrSize: 8, LongSize: 8}
	return d, nil
}
