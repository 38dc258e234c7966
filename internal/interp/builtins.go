package interp

import (
	"fmt"
	"io"
	"strings"

	"c11c/internal/types"
)

// callHost dispatches a call to a name with no defined body in the unit
// to a small fixed table of libc-shaped builtins. This interpreter has no
// linker, so anything outside this table is an undefined symbol rather
// than something a real linker would resolve.
func (m *machine) callHost(fr *frame, name string, args []Value, argTypes []types.TypeID) (Value, error) {
	switch name {
	case "putchar":
		b := byte(args[0].I)
		io.WriteString(m.rt.Stdout(), string([]byte{b}))
		return intValue(int64(b)), nil
	case "getchar":
		b, err := m.rt.Stdin().ReadByte()
		if err != nil {
			return intValue(-1), nil
		}
		return intValue(int64(b)), nil
	case "puts":
		s := m.readCString(args[0].asInt())
		n, _ := io.WriteString(m.rt.Stdout(), s+"\n")
		return intValue(int64(n)), nil
	case "printf":
		n := m.hostPrintf(args, argTypes)
		return intValue(int64(n)), nil
	case "exit", "_Exit":
		code := 0
		if len(args) > 0 {
			code = int(int32(args[0].asInt()))
		}
		return Value{}, &exitSignal{code: code}
	case "abort":
		return Value{}, &exitSignal{code: 134}
	default:
		return Value{}, trap(fr.fn.Name, TrapUndefinedSymbol, "call to undefined external function %q", name)
	}
}

func (m *machine) readCString(addr int64) string {
	var b strings.Builder
	for a := addr; a >= 0 && a < int64(len(m.mem)); a++ {
		c := m.mem[a]
		if c == 0 {
			break
		}
		b.WriteByte(c)
	}
	return b.String()
}

// hostPrintf implements the small subset of printf conversions a C11 test
// program typically needs: %d/%i/%u/%x/%X/%c/%s/%p/%f/%%. Field widths,
// flags, and precision are accepted in the format string but ignored —
// this is a demonstration sink for the `run` subcommand, not a libc.
func (m *machine) hostPrintf(args []Value, argTypes []types.TypeID) int {
	format := m.readCString(args[0].asInt())
	var out strings.Builder
	ai := 1
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			out.WriteByte(format[i])
			continue
		}
		j := i + 1
		for j < len(format) && strings.IndexByte("diouxXeEfFgGaAcspn%", format[j]) < 0 {
			j++
		}
		if j >= len(format) {
			break
		}
		spec := format[j]
		i = j
		m.printfConversion(&out, spec, args, argTypes, &ai)
	}
	s := out.String()
	io.WriteString(m.rt.Stdout(), s)
	return len(s)
}

func (m *machine) printfConversion(out *strings.Builder, spec byte, args []Value, argTypes []types.TypeID, ai *int) {
	nextWidth := func() uint32 {
		if *ai < len(argTypes) {
			return m.widthOf(argTypes[*ai])
		}
		return 4
	}
	switch spec {
	case '%':
		out.WriteByte('%')
	case 'd', 'i':
		if *ai < len(args) {
			fmt.Fprintf(out, "%d", signExtend(args[*ai].I, nextWidth()))
			*ai++
		}
	case 'u':
		if *ai < len(args) {
			fmt.Fprintf(out, "%d", maskUnsigned(args[*ai].I, nextWidth()))
			*ai++
		}
	case 'x':
		if *ai < len(args) {
			fmt.Fprintf(out, "%x", maskUnsigned(args[*ai].I, nextWidth()))
			*ai++
		}
	case 'X':
		if *ai < len(args) {
			fmt.Fprintf(out, "%X", maskUnsigned(args[*ai].I, nextWidth()))
			*ai++
		}
	case 'c':
		if *ai < len(args) {
			out.WriteByte(byte(args[*ai].I))
			*ai++
		}
	case 's':
		if *ai < len(args) {
			out.WriteString(m.readCString(args[*ai].asInt()))
			*ai++
		}
	case 'p':
		if *ai < len(args) {
			fmt.Fprintf(out, "0x%x", uint64(args[*ai].asInt()))
			*ai++
		}
	case 'f', 'F', 'e', 'E', 'g', 'G', 'a', 'A':
		if *ai < len(args) {
			fmt.Fprintf(out, "%f", args[*ai].F)
			*ai++
		}
	}
}
