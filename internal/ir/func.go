package ir

import "c11c/internal/types"

// FuncFlags records function-level properties the code generator needs.
type FuncFlags uint8

const (
	FuncFlagMakesCall FuncFlags = 1 << iota
	FuncFlagVariadic
)

// Function owns an ordered list of basic blocks plus its locals.
// Blocks are logically a doubly linked list; we back that with an
// arena-allocated slice indexed by BlockID and keep a Detached bit instead
// of physically unlinking; DetachedBlockID is the sentinel.
type Function struct {
	Name   string
	Type   types.TypeID // KindFunc
	Flags  FuncFlags
	Params []types.TypeID

	Locals []*Local
	Blocks []*Block

	Entry BlockID

	nextOpID int32
}

// NewFunction creates an empty function with no blocks; call NewBlock to
// populate it, starting with the entry block.
func NewFunction(name string, fnType types.TypeID, params []types.TypeID) *Function {
	return &Function{Name: name, Type: fnType, Params: params, Entry: NoBlockID}
}

// NewBlock appends and returns a fresh basic block.
func (f *Function) NewBlock() *Block {
	id := BlockID(len(f.Blocks))
	b := &Block{ID: id, Func: f}
	f.Blocks = append(f.Blocks, b)
	if f.Entry == NoBlockID {
		f.Entry = id
	}
	return b
}

// Block resolves a BlockID to its Block, or nil if out of range or detached.
func (f *Function) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(f.Blocks) {
		return nil
	}
	b := f.Blocks[id]
	if b.Detached {
		return nil
	}
	return b
}

// NewLocal allocates a fresh anonymous stack slot.
func (f *Function) NewLocal(t types.TypeID, flags LocalFlags, name string) *Local {
	l := &Local{ID: LocalID(len(f.Locals)), Type: t, Flags: flags, Name: name}
	f.Locals = append(f.Locals, l)
	return l
}

// Local resolves a LocalID.
func (f *Function) Local(id LocalID) *Local {
	if id < 0 || int(id) >= len(f.Locals) {
		return nil
	}
	return f.Locals[id]
}

// NewOp mints a fresh op with a function-unique id and no owning statement
// yet; callers append it to a Stmt via Stmt.Append.
func (f *Function) NewOp(kind OpKind, t types.TypeID) *Op {
	id := OpID(f.nextOpID)
	f.nextOpID++
	return &Op{ID: id, Kind: kind, Type: t}
}

// ForEachOp visits every op in every live block, in block/statement order.
func (f *Function) ForEachOp(visit func(*Op)) {
	for _, b := range f.Blocks {
		if b.Detached {
			continue
		}
		for _, s := range b.Stmts {
			for _, op := range s.Ops {
				visit(op)
			}
		}
	}
}

// ForEachPredecessor visits the live predecessor blocks of b.
func (f *Function) ForEachPredecessor(b *Block, visit func(*Block)) {
	for _, id := range b.Preds {
		if p := f.Block(id); p != nil {
			visit(p)
		}
	}
}
