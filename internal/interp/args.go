package interp

import "c11c/internal/ir"

// materializeArgv lays out a conventional argc/argv pair in the machine's
// flat memory for entryName's actual parameter count: zero parameters
// (plain `int main(void)`) get no arguments, one parameter gets argc
// alone, two or more get argc and argv.
func (m *machine) materializeArgv(fn *ir.Function, argv []string) []Value {
	if len(fn.Params) == 0 {
		return nil
	}
	all := append([]string{"a.out"}, argv...)
	ptrSize := m.ptrSize()

	strAddrs := make([]int64, len(all))
	for i, s := range all {
		a := m.alloc(int64(len(s) + 1))
		copy(m.mem[a:], s)
		strAddrs[i] = a
	}
	arr := m.alloc(int64(ptrSize) * int64(len(all)+1)) // +1 for the NULL terminator
	for i, a := range strAddrs {
		m.putInt(arr+int64(i)*int64(ptrSize), uint32(ptrSize), a)
	}

	args := []Value{intValue(int64(len(all)))}
	if len(fn.Params) > 1 {
		args = append(args, intValue(arr))
	}
	return args
}
