package interp

import "c11c/internal/ir"

// Bitfield reads/writes are always zero-extending: the minimal ast.Expr
// boundary has nowhere to record "this bitfield's declared type is
// signed" (the same signless-model gap DESIGN.md already documents for
// ordinary binary operators), so a signed bitfield read behaves as if it
// were declared unsigned. Acceptable for this interpreter's scope.
func (m *machine) execBitfieldLoad(fr *frame, op *ir.Op) (Value, error) {
	bf := op.Bitfield
	addr := fr.regs[bf.Addr].asInt()
	nbytes := uint32((int(bf.BitOffset) + int(bf.Width) + 7) / 8)
	raw, err := m.readRawBits(fr.fn.Name, addr, nbytes)
	if err != nil {
		return Value{}, err
	}
	mask := (uint64(1) << bf.Width) - 1
	return Value{I: (raw >> bf.BitOffset) & mask}, nil
}

func (m *machine) execBitfieldStore(fr *frame, op *ir.Op) error {
	bf := op.Bitfield
	addr := fr.regs[bf.Addr].asInt()
	nbytes := uint32((int(bf.BitOffset) + int(bf.Width) + 7) / 8)
	raw, err := m.readRawBits(fr.fn.Name, addr, nbytes)
	if err != nil {
		return err
	}
	mask := (uint64(1) << bf.Width) - 1
	raw = raw&^(mask<<bf.BitOffset) | ((fr.regs[bf.Value].I & mask) << bf.BitOffset)
	return m.writeRawBits(fr.fn.Name, addr, nbytes, raw)
}

func (m *machine) readRawBits(fn string, addr int64, nbytes uint32) (uint64, error) {
	if err := m.checkRange(fn, addr, nbytes); err != nil {
		return 0, err
	}
	return readUint(m.mem[addr : addr+int64(nbytes)]), nil
}

func (m *machine) writeRawBits(fn string, addr int64, nbytes uint32, v uint64) error {
	if err := m.checkRange(fn, addr, nbytes); err != nil {
		return err
	}
	m.putInt(addr, nbytes, int64(v))
	return nil
}
