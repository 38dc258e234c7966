// Package initlayout flattens a (possibly nested,
// possibly designated) brace initializer into a linear list of scalar
// leaf assignments against byte offsets of the aggregate being
// initialized. It supports struct, union, and array targets, anonymous
// nested-aggregate descent, and designators that reposition the
// flattening cursor mid-list.
//
// Locals and globals are laid out differently. A local aggregate
// initializer first gets a
// full memset-zero, then only the leaves the source actually wrote are
// stored — cheaper to build than proving which bytes are already zero.
// A global initializer instead produces one dense leaf per scalar member
// of the whole object, with unspecified elements resolved to their
// type's zero value, because globals are emitted as static data, not
// as a sequence of stores.
package initlayout

import (
	"fmt"

	"c11c/internal/ast"
	"c11c/internal/types"
)

// Leaf is one scalar element of a flattened initializer: the byte offset
// it lands at within the root aggregate, its scalar type, and the typed
// expression supplying its value.
type Leaf struct {
	Offset uint32
	Type   types.TypeID
	Expr   *ast.Expr
}

// cursor walks one aggregate level (struct/union field index, or array
// element index) as items are consumed, honoring designators.
type cursor struct {
	tin     *types.Interner
	ptrSize int
}

// FlattenLocal produces only the leaves the initializer explicitly
// supplies; the caller is responsible for emitting the zeroing memset
// first.
func FlattenLocal(tin *types.Interner, ptrSize int, t types.TypeID, item *ast.InitItem) ([]Leaf, error) {
	c := &cursor{tin: tin, ptrSize: ptrSize}
	var leaves []Leaf
	if err := c.flatten(t, 0, item, &leaves); err != nil {
		return nil, err
	}
	return leaves, nil
}

// FlattenGlobal produces a dense leaf list covering every scalar member
// of t: elements the initializer supplies get their expression; every
// other element gets a synthetic integer-zero literal expression of the
// element's type, so the emitter never has to special-case gaps.
func FlattenGlobal(tin *types.Interner, ptrSize int, t types.TypeID, item *ast.InitItem) ([]Leaf, error) {
	c := &cursor{tin: tin, ptrSize: ptrSize}
	var explicit []Leaf
	if item != nil {
		if err := c.flatten(t, 0, item, &explicit); err != nil {
			return nil, err
		}
	}
	byOffset := make(map[uint32]Leaf, len(explicit))
	for _, l := range explicit {
		byOffset[l.Offset] = l
	}
	var all []Leaf
	c.zeroFill(t, 0, byOffset, &all)
	return all, nil
}

// flatten consumes item against the aggregate or scalar type t rooted at
// baseOffset, appending leaves to *out.
func (c *cursor) flatten(t types.TypeID, baseOffset uint32, item *ast.InitItem, out *[]Leaf) error {
	if item == nil {
		return nil
	}
	ty := c.tin.MustLookup(t)

	if item.Scalar != nil {
		if ty.Kind == types.KindStruct || ty.Kind == types.KindUnion || ty.Kind == types.KindArray {
			// A scalar initializing an aggregate: only valid for the
			// "first member" brace-elision shortcut, which the type
			// checker is expected to have already resolved by handing
			// this package a fully-braced item. Treat it as an error
			// here rather than guessing.
			return fmt.Errorf("initlayout: scalar initializer given for aggregate type %s", ty.Kind)
		}
		*out = append(*out, Leaf{Offset: baseOffset, Type: t, Expr: item.Scalar})
		return nil
	}

	switch ty.Kind {
	case types.KindArray:
		return c.flattenArray(ty, baseOffset, item.List, out)
	case types.KindStruct:
		return c.flattenFields(ty.Fields, baseOffset, item.List, out, false)
	case types.KindUnion:
		return c.flattenFields(ty.Fields, baseOffset, item.List, out, true)
	default:
		// Braces around a scalar initializer (C11 6.7.9p11): { expr }.
		if len(item.List) == 1 && item.List[0].Scalar != nil &&
			item.List[0].Designator.FieldName == "" && item.List[0].Designator.Index == nil {
			*out = append(*out, Leaf{Offset: baseOffset, Type: t, Expr: item.List[0].Scalar})
			return nil
		}
		return fmt.Errorf("initlayout: brace list given for scalar type %s", ty.Kind)
	}
}

func (c *cursor) flattenArray(ty types.Type, baseOffset uint32, items []*ast.InitItem, out *[]Leaf) error {
	elemSize := c.tin.SizeOf(ty.Elem, c.ptrSize)
	idx := int64(0)
	for _, it := range items {
		if d := it.Designator.Index; d != nil {
			idx = *d
		}
		off := baseOffset + uint32(idx)*elemSize
		if err := c.flattenOrDescend(ty.Elem, off, it, out); err != nil {
			return err
		}
		idx++
	}
	return nil
}

func (c *cursor) flattenFields(fields []types.Field, baseOffset uint32, items []*ast.InitItem, out *[]Leaf, isUnion bool) error {
	idx := 0
	for _, it := range items {
		if name := it.Designator.FieldName; name != "" {
			found := -1
			for i, f := range fields {
				if f.Name == name {
					found = i
					break
				}
			}
			if found < 0 {
				return fmt.Errorf("initlayout: no member named %q", name)
			}
			idx = found
		}
		if idx >= len(fields) {
			if isUnion {
				break // a union takes exactly one initializer, already placed
			}
			return fmt.Errorf("initlayout: too many initializers for aggregate")
		}
		f := fields[idx]
		if err := c.flattenOrDescend(f.Type, baseOffset+f.Offset, it, out); err != nil {
			return err
		}
		idx++
		if isUnion {
			break
		}
	}
	return nil
}

// flattenOrDescend handles one element that may itself be a nested list
// (an explicit inner brace) or a bare scalar/nested-without-braces item;
// nested aggregates without their own braces reuse the parent list
// starting at this item, per C11 6.7.9's brace-elision rule — this
// package requires the caller (the type checker) to have already
// inserted the elided braces, so it only needs to recurse structurally.
func (c *cursor) flattenOrDescend(t types.TypeID, offset uint32, item *ast.InitItem, out *[]Leaf) error {
	return c.flatten(t, offset, item, out)
}

// zeroFill walks every scalar leaf of t, using explicit[offset] when
// present and a synthetic zero expression otherwise.
func (c *cursor) zeroFill(t types.TypeID, baseOffset uint32, explicit map[uint32]Leaf, out *[]Leaf) {
	ty := c.tin.MustLookup(t)
	switch ty.Kind {
	case types.KindArray:
		elemSize := c.tin.SizeOf(ty.Elem, c.ptrSize)
		if ty.Count == types.ArrayUnknownCount {
			return
		}
		for i := uint32(0); i < ty.Count; i++ {
			c.zeroFill(ty.Elem, baseOffset+i*elemSize, explicit, out)
		}
	case types.KindStruct:
		for _, f := range ty.Fields {
			c.zeroFill(f.Type, baseOffset+f.Offset, explicit, out)
		}
	case types.KindUnion:
		if len(ty.Fields) > 0 {
			c.zeroFill(ty.Fields[0].Type, baseOffset, explicit, out)
		}
	default:
		if l, ok := explicit[baseOffset]; ok {
			*out = append(*out, l)
			return
		}
		*out = append(*out, Leaf{Offset: baseOffset, Type: t, Expr: zeroExpr(t)})
	}
}

// zeroExpr synthesizes the zero-value literal expression for a scalar
// type, used to fill unspecified tail elements of a global initializer
// (C11 6.7.9p21).
func zeroExpr(t types.TypeID) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIntLit, IntVal: 0, ResultType: t}
}
