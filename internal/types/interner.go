package types

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Builtins caches the TypeIDs of primitives every front end needs by name.
type Builtins struct {
	Void TypeID
	Bool TypeID // i1
	Char TypeID // i8
	Int  TypeID // i32
	Long TypeID // target-sized; see NewInterner
}

// Interner hands out structurally-stable TypeIDs: two calls to Intern with
// equal descriptors always return the same TypeID.
type Interner struct {
	entries  []Type
	index    map[string]TypeID
	builtins Builtins
	longPrim Prim
}

// NewInterner creates an Interner. longPrim selects the primitive backing
// "long" for the active target (PrimI64 on LP64, PrimI32 on ILP32).
func NewInterner(longPrim Prim) *Interner {
	in := &Interner{index: make(map[string]TypeID, 64), longPrim: longPrim}
	in.entries = append(in.entries, Type{Kind: KindInvalid}) // TypeID 0 reserved
	in.builtins.Void = in.Intern(Type{Kind: KindNone})
	in.builtins.Bool = in.Intern(Type{Kind: KindPrimitive, Prim: PrimI1})
	in.builtins.Char = in.Intern(Type{Kind: KindPrimitive, Prim: PrimI8})
	in.builtins.Int = in.Intern(Type{Kind: KindPrimitive, Prim: PrimI32})
	in.builtins.Long = in.Intern(Type{Kind: KindPrimitive, Prim: longPrim})
	return in
}

// Builtins returns the cached well-known primitive TypeIDs.
func (in *Interner) Builtins() Builtins { return in.builtins }

// Variadic returns the interned "..." marker type.
func (in *Interner) Variadic() TypeID { return in.Intern(Type{Kind: KindVariadic}) }

// Primitive interns a bare primitive type.
func (in *Interner) Primitive(p Prim) TypeID { return in.Intern(Type{Kind: KindPrimitive, Prim: p}) }

// Pointer interns a pointer-to-elem type.
func (in *Interner) Pointer(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindPointer, Elem: elem})
}

// Array interns an array of count elements (ArrayUnknownCount for "[]").
func (in *Interner) Array(elem TypeID, count uint32) TypeID {
	return in.Intern(Type{Kind: KindArray, Elem: elem, Count: count})
}

// Func interns a function signature.
func (in *Interner) Func(ret TypeID, params []TypeID, variadic bool) TypeID {
	flags := FuncFlags(0)
	if variadic {
		flags = FuncFlagVariadic
	}
	return in.Intern(Type{Kind: KindFunc, Ret: ret, Params: append([]TypeID(nil), params...), FuncFlag: flags})
}

// Struct interns a struct type by its ordered, already-laid-out fields.
func (in *Interner) Struct(tag string, fields []Field) TypeID {
	return in.Intern(Type{Kind: KindStruct, Tag: tag, Fields: append([]Field(nil), fields...)})
}

// Union interns a union type by its fields. Each field's Offset is kept
// as given; nothing here or in the initializer layout engine checks that
// it is 0.
func (in *Interner) Union(tag string, fields []Field) TypeID {
	return in.Intern(Type{Kind: KindUnion, Tag: tag, Fields: append([]Field(nil), fields...)})
}

// Intern returns the stable TypeID for t, minting a new one on first sight.
func (in *Interner) Intern(t Type) TypeID {
	key := fingerprint(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.entries))
	if err != nil {
		panic(fmt.Errorf("types: interner overflow: %w", err))
	}
	id := TypeID(n)
	in.entries = append(in.entries, t)
	in.index[key] = id
	return id
}

// Lookup resolves id back to its descriptor.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.entries) {
		return Type{}, false
	}
	return in.entries[id], true
}

// MustLookup resolves id, panicking on an invalid handle — builder code
// treats this as an internal invariant violation, not a user error.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("types: invalid TypeID %d", id))
	}
	return t
}

// Equal reports structural equality; since Intern dedups structurally this
// degrades to (but does not require) a == b.
func (in *Interner) Equal(a, b TypeID) bool {
	if a == b {
		return true
	}
	ta, aok := in.Lookup(a)
	tb, bok := in.Lookup(b)
	if !aok || !bok {
		return false
	}
	return fingerprint(ta) == fingerprint(tb)
}

func fingerprint(t Type) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(t.Kind)))
	b.WriteByte(':')
	switch t.Kind {
	case KindPrimitive:
		b.WriteString(strconv.Itoa(int(t.Prim)))
	case KindPointer:
		b.WriteString(strconv.FormatUint(uint64(t.Elem), 10))
	case KindArray:
		b.WriteString(strconv.FormatUint(uint64(t.Elem), 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatUint(uint64(t.Count), 10))
	case KindFunc:
		b.WriteString(strconv.FormatUint(uint64(t.Ret), 10))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(int(t.FuncFlag)))
		for _, p := range t.Params {
			b.WriteByte(',')
			b.WriteString(strconv.FormatUint(uint64(p), 10))
		}
	case KindStruct, KindUnion:
		for _, f := range t.Fields {
			b.WriteByte(';')
			b.WriteString(f.Name)
			b.WriteByte(':')
			b.WriteString(strconv.FormatUint(uint64(f.Type), 10))
			b.WriteByte('@')
			b.WriteString(strconv.Itoa(int(f.Offset)))
			if f.IsBitfield() {
				b.WriteByte('#')
				b.WriteString(strconv.Itoa(int(f.BitWidth)))
				b.WriteByte('+')
				b.WriteString(strconv.Itoa(int(f.BitOffset)))
			}
		}
	}
	return b.String()
}

// SizeOf returns the byte size of a type under the given pointer size. A
// struct's size is the end of its furthest field (at the Offset Fields
// records) and a union's is its largest field, each rounded up to the
// aggregate's alignment.
func (in *Interner) SizeOf(id TypeID, ptrSize int) uint32 {
	t, ok := in.Lookup(id)
	if !ok {
		return 0
	}
	switch t.Kind {
	case KindPrimitive:
		return primSize(t.Prim)
	case KindPointer, KindFunc:
		n, _ := safecast.Conv[uint32](ptrSize)
		return n
	case KindArray:
		if t.Count == ArrayUnknownCount {
			return 0
		}
		return t.Count * in.SizeOf(t.Elem, ptrSize)
	case KindStruct:
		var max uint32
		for _, f := range t.Fields {
			end := f.Offset + in.SizeOf(f.Type, ptrSize)
			if end > max {
				max = end
			}
		}
		return alignUp(max, in.AlignOf(id, ptrSize))
	case KindUnion:
		var max uint32
		for _, f := range t.Fields {
			if sz := in.SizeOf(f.Type, ptrSize); sz > max {
				max = sz
			}
		}
		return alignUp(max, in.AlignOf(id, ptrSize))
	default:
		return 0
	}
}

// AlignOf returns the alignment requirement of a type.
func (in *Interner) AlignOf(id TypeID, ptrSize int) uint32 {
	t, ok := in.Lookup(id)
	if !ok {
		return 1
	}
	switch t.Kind {
	case KindPrimitive:
		return primSize(t.Prim)
	case KindPointer, KindFunc:
		n, _ := safecast.Conv[uint32](ptrSize)
		return n
	case KindArray:
		return in.AlignOf(t.Elem, ptrSize)
	case KindStruct, KindUnion:
		var max uint32 = 1
		for _, f := range t.Fields {
			if a := in.AlignOf(f.Type, ptrSize); a > max {
				max = a
			}
		}
		return max
	default:
		return 1
	}
}

func primSize(p Prim) uint32 {
	switch p {
	case PrimI1, PrimI8:
		return 1
	case PrimI16, PrimF16:
		return 2
	case PrimI32, PrimF32:
		return 4
	case PrimI64, PrimF64:
		return 8
	case PrimI128:
		return 16
	default:
		return 0
	}
}

func alignUp(n, align uint32) uint32 {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// IsAggregate reports whether a value of type id is a struct/union/array —
// the class of types that never crosses a basic-block boundary as an
// SSA value (aggregates live in a local and travel by address).
func (in *Interner) IsAggregate(id TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	return t.Kind == KindStruct || t.Kind == KindUnion || t.Kind == KindArray
}

// IsScalar reports whether id is a primitive or pointer type.
func (in *Interner) IsScalar(id TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	return t.Kind == KindPrimitive || t.Kind == KindPointer
}
