package irbuilder

import (
	"fmt"

	"c11c/internal/ast"
	"c11c/internal/diag"
	"c11c/internal/initlayout"
	"c11c/internal/ir"
	"c11c/internal/source"
)

// BuildUnit lowers every global and function of astUnit into unit,
// reusing one Builder (and so one string pool) across the whole
// translation unit. Each translation unit gets its own arena, unit,
// and variable tables; nothing is shared between units.
func BuildUnit(unit *ir.Unit, astUnit *ast.Unit, diags *diag.Bag) {
	for _, g := range astUnit.Globals {
		lowerGlobal(unit, g, diags)
	}
	// Every function is declared before any body is lowered, so a call to
	// a function defined later in the file still resolves through
	// lowerGlobalIdent instead of looking like an unresolved identifier.
	for _, fd := range astUnit.Funcs {
		unit.DeclareGlobal(fd.Name, ir.GlobalFunc, fd.Type, lowerLinkage(fd))
	}
	bd := New(unit, diags)
	for _, fd := range astUnit.Funcs {
		global, _ := unit.LookupGlobal(fd.Name)
		fn, err := bd.BuildFunction(fd)
		if err != nil {
			diags.Add(diag.New(diag.InternalInvariant, source.NoSpan, "%v", err))
			continue
		}
		global.Func = fn
		global.DefState = ir.DefDefined
	}
	unit.ResolveTentativeDefinitions()
}

func lowerLinkage(fd *ast.FuncDecl) ir.Linkage {
	return ir.LinkageExternal
}

func lowerGlobal(unit *ir.Unit, d *ast.VarDecl, diags *diag.Bag) {
	kind := ir.GlobalData
	linkage := globalLinkage(d.Linkage)
	g := unit.DeclareGlobal(d.Name, kind, d.Type, linkage)
	if d.Init == nil {
		if g.DefState == ir.DefUndefined {
			g.DefState = ir.DefTentative
		}
		return
	}
	leaves, err := initlayout.FlattenGlobal(unit.Types, unit.Target.PtrSize, d.Type, d.Init)
	if err != nil {
		diags.Add(diag.New(diag.InternalInvariant, source.NoSpan, "global initializer: %v", err))
		return
	}
	entries := make([]ir.InitEntry, 0, len(leaves))
	for _, leaf := range leaves {
		entries = append(entries, globalLeafToEntry(unit, leaf, diags))
	}
	g.Init = entries
	g.DefState = ir.DefDefined
}

// globalLeafToEntry folds one flattened initializer leaf into the dense
// entry form a global carries. The type checker has already reduced
// arbitrary constant expressions; what reaches here is the residual set:
// literals, addresses of other globals (directly, via &, or through
// array/function decay), and compound literals, which materialise as
// fresh anonymous internal globals.
func globalLeafToEntry(unit *ir.Unit, leaf initlayout.Leaf, diags *diag.Bag) ir.InitEntry {
	e := leaf.Expr
	for e.Kind == ast.ExprCast {
		e = e.X
	}
	switch e.Kind {
	case ast.ExprIntLit:
		return ir.InitEntry{Offset: leaf.Offset, Type: leaf.Type, Kind: ir.InitEntryInt, Int: e.IntVal}
	case ast.ExprFloatLit:
		return ir.InitEntry{Offset: leaf.Offset, Type: leaf.Type, Kind: ir.InitEntryFloat, Float: e.FloatVal}
	case ast.ExprStringLit:
		g := unit.InternString(e.StringVal)
		return ir.InitEntry{Offset: leaf.Offset, Type: leaf.Type, Kind: ir.InitEntryAddr, Sym: g.ID}
	case ast.ExprIdent:
		// A bare identifier can only reach a global initializer as an
		// address: a function designator or an array decaying to a
		// pointer to its first element.
		if g, ok := unit.LookupGlobal(e.Ident); ok {
			return ir.InitEntry{Offset: leaf.Offset, Type: leaf.Type, Kind: ir.InitEntryAddr, Sym: g.ID}
		}
	case ast.ExprUnary:
		if e.UnaryOp == ast.UnaryAddr {
			switch x := e.X; x.Kind {
			case ast.ExprIdent:
				if g, ok := unit.LookupGlobal(x.Ident); ok {
					return ir.InitEntry{Offset: leaf.Offset, Type: leaf.Type, Kind: ir.InitEntryAddr, Sym: g.ID}
				}
			case ast.ExprCompoundLiteral:
				if g := compoundLiteralGlobal(unit, x, diags); g != nil {
					return ir.InitEntry{Offset: leaf.Offset, Type: leaf.Type, Kind: ir.InitEntryAddr, Sym: g.ID}
				}
			}
		}
	case ast.ExprCompoundLiteral:
		if g := compoundLiteralGlobal(unit, e, diags); g != nil {
			return ir.InitEntry{Offset: leaf.Offset, Type: leaf.Type, Kind: ir.InitEntryAddr, Sym: g.ID}
		}
	}
	diags.Add(diag.New(diag.InternalInvariant, source.NoSpan,
		"global initializer leaf of kind %d did not fold to a constant", e.Kind))
	return ir.InitEntry{Offset: leaf.Offset, Type: leaf.Type, Kind: ir.InitEntryInt}
}

// compoundLiteralGlobal materialises a compound literal appearing in a
// global initializer as a fresh defined internal-linkage global, so its
// address is a link-time constant.
func compoundLiteralGlobal(unit *ir.Unit, e *ast.Expr, diags *diag.Bag) *ir.Global {
	name := fmt.Sprintf(".Lcl.%d", unit.Arena.NextID("compound-literal"))
	g := unit.DeclareGlobal(name, ir.GlobalData, e.ResultType, ir.LinkageInternal)
	leaves, err := initlayout.FlattenGlobal(unit.Types, unit.Target.PtrSize, e.ResultType, e.CompoundInit)
	if err != nil {
		diags.Add(diag.New(diag.InternalInvariant, source.NoSpan, "compound literal initializer: %v", err))
		return nil
	}
	entries := make([]ir.InitEntry, 0, len(leaves))
	for _, leaf := range leaves {
		entries = append(entries, globalLeafToEntry(unit, leaf, diags))
	}
	g.Init = entries
	g.DefState = ir.DefDefined
	return g
}

func globalLinkage(l ast.Linkage) ir.Linkage {
	switch l {
	case ast.LinkageInternal:
		return ir.LinkageInternal
	case ast.LinkageNone:
		return ir.LinkageNone
	default:
		return ir.LinkageExternal
	}
}
