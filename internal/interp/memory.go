package interp

import (
	"encoding/binary"
	"math"

	"c11c/internal/ir"
	"c11c/internal/types"
)

// nullGuardSize keeps address 0 permanently unmapped so a null pointer
// dereference traps instead of aliasing a real object.
const nullGuardSize = 8

// machine holds one Run's flat simulated address space plus the static
// unit metadata every frame consults. Locals are allocated out of the same
// space as globals; nothing is ever reclaimed, matching the interpreter's
// scope of running one process from start to exit rather than modeling a
// real stack.
type machine struct {
	unit *ir.Unit
	tin  *types.Interner
	rt   Runtime

	mem []byte

	globalAddr       map[ir.GlobalID]int64
	addrToFunc       map[int64]*ir.Function
	addrToCalleeName map[int64]string
	opIndex          map[*ir.Function]map[ir.OpID]*ir.Op

	depth int
}

func newMachine(unit *ir.Unit, rt Runtime) *machine {
	if rt == nil {
		rt = NewDefaultRuntime()
	}
	m := &machine{
		unit:             unit,
		tin:              unit.Types,
		rt:               rt,
		mem:              make([]byte, nullGuardSize),
		globalAddr:       make(map[ir.GlobalID]int64),
		addrToFunc:       make(map[int64]*ir.Function),
		addrToCalleeName: make(map[int64]string),
		opIndex:          make(map[*ir.Function]map[ir.OpID]*ir.Op),
	}
	for _, g := range unit.Globals() {
		m.globalAddr[g.ID] = m.alloc(m.globalSize(g))
	}
	for _, g := range unit.Globals() {
		m.materializeGlobal(g)
	}
	return m
}

func (m *machine) ptrSize() int { return m.unit.Target.PtrSize }

func (m *machine) globalSize(g *ir.Global) int64 {
	if g.Kind == ir.GlobalFunc {
		return int64(m.ptrSize()) // an opaque token address, never dereferenced
	}
	return int64(m.tin.SizeOf(g.Type, m.ptrSize()))
}

func (m *machine) alloc(size int64) int64 {
	if size < 0 {
		size = 0
	}
	base := int64(len(m.mem))
	m.mem = append(m.mem, make([]byte, size)...)
	return base
}

func (m *machine) materializeGlobal(g *ir.Global) {
	addr := m.globalAddr[g.ID]
	if g.Kind == ir.GlobalFunc {
		m.addrToFunc[addr] = g.Func
		m.addrToCalleeName[addr] = g.Name
		return
	}
	if g.Kind == ir.GlobalString {
		copy(m.mem[addr:], g.StrData)
		return
	}
	if g.ZeroFill || g.DefState != ir.DefDefined {
		return
	}
	for _, entry := range g.Init {
		m.writeInitEntry(addr, entry)
	}
}

func (m *machine) writeInitEntry(base int64, entry ir.InitEntry) {
	off := base + int64(entry.Offset)
	width := m.tin.SizeOf(entry.Type, m.ptrSize())
	if width == 0 {
		width = uint32(m.ptrSize())
	}
	switch entry.Kind {
	case ir.InitEntryFloat:
		m.putFloat(off, width, entry.Float)
	case ir.InitEntryAddr:
		target := m.globalAddr[entry.Sym] + entry.Int
		m.putInt(off, uint32(m.ptrSize()), target)
	case ir.InitEntryString:
		copy(m.mem[off:], entry.Str)
	default:
		m.putInt(off, width, entry.Int)
	}
}

func (m *machine) putInt(addr int64, width uint32, v int64) {
	buf := m.mem[addr : addr+int64(width)]
	switch width {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(buf, uint64(v))
	default:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(v))
		copy(buf, tmp[:width])
	}
}

func (m *machine) putFloat(addr int64, width uint32, v float64) {
	if width == 4 {
		binary.LittleEndian.PutUint32(m.mem[addr:addr+4], math.Float32bits(float32(v)))
		return
	}
	binary.LittleEndian.PutUint64(m.mem[addr:addr+8], math.Float64bits(v))
}

func (m *machine) checkRange(fn string, addr int64, size uint32) error {
	if addr <= 0 || addr+int64(size) > int64(len(m.mem)) {
		return trap(fn, TrapOutOfBounds, "address %d (size %d) outside the simulated address space", addr, size)
	}
	return nil
}

// readValue loads a value of type t from addr, decoding it as a float or a
// zero-extended integer/pointer bit pattern; integers carry no sign of
// their own (sign-extension, where the source expression called for it,
// already happened at cast-selection time in the builder).
func (m *machine) readValue(fn string, addr int64, t types.TypeID) (Value, error) {
	width := m.tin.SizeOf(t, m.ptrSize())
	if width == 0 {
		width = uint32(m.ptrSize())
	}
	if err := m.checkRange(fn, addr, width); err != nil {
		return Value{}, err
	}
	buf := m.mem[addr : addr+int64(width)]
	ty, _ := m.tin.Lookup(t)
	if ty.Kind == types.KindPrimitive && ty.Prim.IsFloat() {
		if width == 4 {
			return Value{F: float64(math.Float32frombits(binary.LittleEndian.Uint32(buf)))}, nil
		}
		return Value{F: math.Float64frombits(binary.LittleEndian.Uint64(buf))}, nil
	}
	return Value{I: readUint(buf)}, nil
}

func (m *machine) writeValue(fn string, addr int64, t types.TypeID, v Value) error {
	width := m.tin.SizeOf(t, m.ptrSize())
	if width == 0 {
		width = uint32(m.ptrSize())
	}
	if err := m.checkRange(fn, addr, width); err != nil {
		return err
	}
	ty, _ := m.tin.Lookup(t)
	if ty.Kind == types.KindPrimitive && ty.Prim.IsFloat() {
		m.putFloat(addr, width, v.F)
		return nil
	}
	m.putInt(addr, width, int64(v.I))
	return nil
}

func readUint(buf []byte) uint64 {
	switch len(buf) {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf))
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf))
	default:
		var padded [8]byte
		copy(padded[:], buf)
		return binary.LittleEndian.Uint64(padded[:])
	}
}
