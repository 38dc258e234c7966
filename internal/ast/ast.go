// Package ast is the typed-AST input boundary. It is deliberately
// small: a stand-in for the real preprocessor/lexer/parser/type-checker
// pipeline, an external collaborator with a fixed interface.
// Every node already carries its resolved type; the IR builder's job is
// only to lower this tree, never to infer or check types.
package ast

import (
	"c11c/internal/source"
	"c11c/internal/types"
)

// Scope identifies a lexical scope for variable-reference lookups.
// Scopes nest; 0 is reserved for file scope (where globals live).
type Scope uint32

// FileScope is the outermost scope, where global declarations resolve.
const FileScope Scope = 0

// Linkage mirrors ir.Linkage at the AST boundary so the builder does not
// need to import ir just to read a declaration's storage class.
type Linkage uint8

const (
	LinkageExternal Linkage = iota
	LinkageInternal
	LinkageNone
)

// VarDecl is a variable declaration, global or local.
type VarDecl struct {
	Name     string
	Type     types.TypeID
	Scope    Scope
	Span     source.Span
	Linkage  Linkage
	IsGlobal bool
	Init     *InitItem // nil for a declaration with no initializer
}

// Param is one function parameter.
type Param struct {
	Name string
	Type types.TypeID
	Span source.Span
}

// FuncDecl is a function definition (the builder never sees undefined
// prototypes; those are resolved entirely by the type checker).
type FuncDecl struct {
	Name     string
	Type     types.TypeID // KindFunc
	Params   []Param
	Variadic bool
	Body     *Stmt
	Span     source.Span
	IsMain   bool
}

// Unit is the root of one translation unit's typed AST.
type Unit struct {
	Globals []*VarDecl
	Funcs   []*FuncDecl
}

// ExprKind tags Expr's closed variant set.
type ExprKind uint8

const (
	ExprIntLit ExprKind = iota
	ExprFloatLit
	ExprStringLit
	ExprIdent
	ExprUnary
	ExprBinary
	ExprAssign
	ExprCompoundAssign
	ExprTernary
	ExprCall
	ExprMember // a.b or a->b, disambiguated by Arrow
	ExprIndex  // a[i]
	ExprCast
	ExprCompoundLiteral
	ExprComma
	ExprIncDec // ++/-- pre or post
)

// UnaryOp enumerates the unary operators a typed AST can carry.
type UnaryOp uint8

const (
	UnaryAddr  UnaryOp = iota // &
	UnaryDeref                // *
	UnaryPlus
	UnaryMinus
	UnaryBitNot
	UnaryLogicalNot
)

// BinaryOp enumerates binary operators; the checker has already resolved
// operand types, so the builder picks signed/unsigned/float variants from
// the operand type, not from this tag.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinLAnd // &&
	BinLOr  // ||
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

// Expr is a typed expression node. Every node carries ResultType, the
// type-checker's resolved type for the expression's r-value.
type Expr struct {
	Kind       ExprKind
	ResultType types.TypeID
	Span       source.Span

	IntVal    int64
	FloatVal  float64
	StringVal string

	Ident string
	Scope Scope

	UnaryOp UnaryOp
	X       *Expr

	BinOp BinaryOp
	L, R  *Expr

	// Assignment / compound assignment.
	Assignee *Expr
	Value    *Expr
	PreCast  *types.TypeID // optional cast applied to Value before the op
	PostCast *types.TypeID // optional cast applied to the result before store

	CondTrue, CondFalse *Expr // ExprTernary arms (Cond is X)
	TwoOperandForm      bool  // GNU `cond ?: false` shorthand

	Callee   *Expr
	Args     []*Expr
	Variadic bool

	Object    *Expr // ExprMember, ExprIndex base
	Arrow     bool  // ExprMember: a->b
	Field     string
	FieldIdx  int
	Bitfield  bool
	BitWidth  uint8
	BitOffset uint8
	Index     *Expr // ExprIndex

	CastType types.TypeID // ExprCast
	// CastSourceUnsigned records whether X's C type was unsigned. The IR's
	// integer types are signless (sign lives on the operation, e.g.
	// BinDivS/BinDivU), so cast selection needs this from the checker to
	// choose sign-extend vs zero-extend on a widening integer cast.
	CastSourceUnsigned bool

	CompoundInit *InitItem // ExprCompoundLiteral

	IncDecIsInc bool // ExprIncDec
	IncDecPost  bool
}

// InitDesignator repositions the flattening cursor for one initializer
// element.
type InitDesignator struct {
	FieldName string // struct/union member designator, "" if none
	Index     *int64 // array index designator, nil if none
}

// InitItem is one element of an initializer list: either a scalar
// expression or a nested brace-list, optionally preceded by a designator.
type InitItem struct {
	Designator InitDesignator
	Scalar     *Expr       // non-nil for a leaf initializer
	List       []*InitItem // non-nil for a nested { ... }
	Span       source.Span
}

// StmtKind tags Stmt's closed variant set.
type StmtKind uint8

const (
	StmtExpr StmtKind = iota
	StmtDecl
	StmtBlock
	StmtIf
	StmtWhile
	StmtDoWhile
	StmtFor
	StmtSwitch
	StmtCase
	StmtDefault
	StmtBreak
	StmtContinue
	StmtGoto
	StmtLabel
	StmtReturn
	StmtDefer
)

// Stmt is a typed statement node.
type Stmt struct {
	Kind StmtKind
	Span source.Span

	Expr  *Expr      // StmtExpr, StmtReturn (optional), StmtCase value
	Decls []*VarDecl // StmtDecl
	Body  []*Stmt    // StmtBlock

	Cond       *Expr // StmtIf/While/DoWhile/For/Switch
	Then, Else *Stmt // StmtIf
	Loop       *Stmt // StmtWhile/DoWhile/For body

	ForInit *Stmt // StmtFor init (decl or expr-stmt), nil if absent
	ForIter *Expr // StmtFor iteration expression, nil if absent

	SwitchBody *Stmt // StmtSwitch body (a StmtBlock of cases)

	Label string // StmtGoto, StmtLabel

	Defer *Stmt // StmtDefer: the deferred statement
}
