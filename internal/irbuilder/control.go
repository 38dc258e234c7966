package irbuilder

import (
	"c11c/internal/ast"
	"c11c/internal/ir"
)

// lowerStmt lowers one statement, possibly leaving bd.cur terminated (a
// return, goto, break, or continue) — callers that lower a statement
// list must stop emitting into a terminated block and instead open a
// fresh (generally unreachable, pruned later by cfg.Prune) one.
func (bd *Builder) lowerStmt(s *ast.Stmt) {
	if s == nil || bd.cur.Terminated() {
		return
	}
	switch s.Kind {
	case ast.StmtExpr:
		bd.lowerExpr(s.Expr)
	case ast.StmtDecl:
		bd.lowerDecls(s.Decls)
	case ast.StmtBlock:
		mark := len(bd.defers)
		for _, child := range s.Body {
			if bd.cur.Terminated() {
				break
			}
			bd.lowerStmt(child)
		}
		// Replay this block's defers on the normal fall-through exit; a
		// terminated block already ran them at its return/break/
		// continue/goto. Either way they are no longer pending.
		if !bd.cur.Terminated() {
			bd.runDefers(mark)
		}
		bd.defers = bd.defers[:mark]
	case ast.StmtIf:
		bd.lowerIf(s)
	case ast.StmtWhile:
		bd.lowerWhile(s)
	case ast.StmtDoWhile:
		bd.lowerDoWhile(s)
	case ast.StmtFor:
		bd.lowerFor(s)
	case ast.StmtSwitch:
		bd.lowerSwitch(s)
	case ast.StmtBreak:
		bd.lowerBreak()
	case ast.StmtContinue:
		bd.lowerContinue()
	case ast.StmtGoto:
		bd.runDefers(0)
		target := bd.labelBlock(s.Label)
		ir.MakeBranch(bd.cur, target)
	case ast.StmtLabel:
		bd.lowerLabel(s)
	case ast.StmtReturn:
		bd.lowerReturn(s)
	case ast.StmtDefer:
		bd.defers = append(bd.defers, s.Defer)
	default:
		bd.reportInternal(nil, "unhandled statement kind %d", s.Kind)
	}
}

func (bd *Builder) lowerDecls(decls []*ast.VarDecl) {
	for _, d := range decls {
		bd.lowerLocalDecl(d)
	}
}

func (bd *Builder) lowerLocalDecl(d *ast.VarDecl) {
	v := bd.vars.Declare(d.Name, d.Scope, false, d.Type)
	if !needsPromotion(d) {
		if d.Init != nil && d.Init.Scalar != nil {
			val := bd.coerce(bd.lowerExpr(d.Init.Scalar), d.Type)
			bd.vars.WriteVariable(v, bd.cur.ID, val.ID)
		} else {
			zero := bd.fn.NewOp(ir.OpConstZero, d.Type)
			bd.emit(zero)
			bd.vars.WriteVariable(v, bd.cur.ID, zero.ID)
		}
		return
	}
	local := bd.fn.NewLocal(d.Type, 0, d.Name)
	bd.vars.Promote(v, local.ID)
	bd.emitMemsetZero(local.ID, d.Type)
	if d.Init != nil {
		addr := bd.fn.NewOp(ir.OpAddrOf, bd.pointerType())
		addr.AddrOf = ir.AddrOf{Base: ir.AddrBaseLocal, Local: local.ID}
		bd.emit(addr)
		bd.flattenLocalInit(addr, d.Type, d.Init)
	}
}

// needsPromotion decides whether a declaration is memory-backed from the
// start: it is when its initializer is a non-empty brace list, which this
// minimal AST only gives aggregates (they can't live in one SSA value).
// A declaration without such an initializer is not promoted here; a
// scalar whose address is taken is promoted later, at the first `&x`
// (promoteToLocal in addr.go).
func needsPromotion(d *ast.VarDecl) bool {
	return d.Init != nil && d.Init.Scalar == nil && len(d.Init.List) > 0 && isAggregateInit(d.Init)
}

func isAggregateInit(item *ast.InitItem) bool {
	return item.Scalar == nil
}

func (bd *Builder) lowerIf(s *ast.Stmt) {
	cond := bd.toBool(bd.lowerExpr(s.Cond))
	thenB := bd.newBlock()
	var elseB *ir.Block
	if s.Else != nil {
		elseB = bd.newBlock()
	}
	joinB := bd.newBlock()
	if s.Else == nil {
		elseB = joinB
	}
	ir.MakeCondBranch(bd.cur, cond, thenB, elseB)
	bd.vars.SealBlock(thenB.ID)
	if s.Else != nil {
		bd.vars.SealBlock(elseB.ID)
	}

	bd.cur = thenB
	bd.lowerStmt(s.Then)
	if !bd.cur.Terminated() {
		ir.MakeBranch(bd.cur, joinB)
	}

	if s.Else != nil {
		bd.cur = elseB
		bd.lowerStmt(s.Else)
		if !bd.cur.Terminated() {
			ir.MakeBranch(bd.cur, joinB)
		}
	}

	bd.vars.SealBlock(joinB.ID)
	bd.cur = joinB
}

func (bd *Builder) lowerWhile(s *ast.Stmt) {
	headB := bd.newBlock()
	bodyB := bd.newBlock()
	exitB := bd.newBlock()

	ir.MakeBranch(bd.cur, headB)

	bd.cur = headB
	cond := bd.toBool(bd.lowerExpr(s.Cond))
	ir.MakeCondBranch(bd.cur, cond, bodyB, exitB)
	bd.vars.SealBlock(bodyB.ID)

	bd.loops = append(bd.loops, loopCtx{continueTarget: headB, breakTarget: exitB, deferMark: len(bd.defers)})
	bd.cur = bodyB
	bd.lowerStmt(s.Loop)
	if !bd.cur.Terminated() {
		ir.MakeBranch(bd.cur, headB)
	}
	bd.loops = bd.loops[:len(bd.loops)-1]

	bd.vars.SealBlock(headB.ID) // both entry and the body's back-edge are now known
	bd.vars.SealBlock(exitB.ID)
	bd.cur = exitB
}

func (bd *Builder) lowerDoWhile(s *ast.Stmt) {
	bodyB := bd.newBlock()
	condB := bd.newBlock()
	exitB := bd.newBlock()

	ir.MakeBranch(bd.cur, bodyB)

	bd.loops = append(bd.loops, loopCtx{continueTarget: condB, breakTarget: exitB, deferMark: len(bd.defers)})
	bd.cur = bodyB
	bd.lowerStmt(s.Loop)
	if !bd.cur.Terminated() {
		ir.MakeBranch(bd.cur, condB)
	}
	bd.loops = bd.loops[:len(bd.loops)-1]

	bd.cur = condB
	cond := bd.toBool(bd.lowerExpr(s.Cond))
	ir.MakeCondBranch(bd.cur, cond, bodyB, exitB)
	bd.vars.SealBlock(bodyB.ID) // entry and the back-edge are now known
	bd.vars.SealBlock(condB.ID)
	bd.vars.SealBlock(exitB.ID)
	bd.cur = exitB
}

func (bd *Builder) lowerFor(s *ast.Stmt) {
	if s.ForInit != nil {
		bd.lowerStmt(s.ForInit)
	}
	headB := bd.newBlock()
	bodyB := bd.newBlock()
	iterB := bd.newBlock()
	exitB := bd.newBlock()

	ir.MakeBranch(bd.cur, headB)

	bd.cur = headB
	if s.Cond != nil {
		cond := bd.toBool(bd.lowerExpr(s.Cond))
		ir.MakeCondBranch(bd.cur, cond, bodyB, exitB)
	} else {
		ir.MakeBranch(bd.cur, bodyB)
	}
	bd.vars.SealBlock(bodyB.ID)

	bd.loops = append(bd.loops, loopCtx{continueTarget: iterB, breakTarget: exitB, deferMark: len(bd.defers)})
	bd.cur = bodyB
	bd.lowerStmt(s.Loop)
	if !bd.cur.Terminated() {
		ir.MakeBranch(bd.cur, iterB)
	}
	bd.loops = bd.loops[:len(bd.loops)-1]
	bd.vars.SealBlock(iterB.ID)

	bd.cur = iterB
	if s.ForIter != nil {
		bd.lowerExpr(s.ForIter)
	}
	ir.MakeBranch(bd.cur, headB)

	bd.vars.SealBlock(headB.ID)
	bd.vars.SealBlock(exitB.ID)
	bd.cur = exitB
}

// lowerSwitch lowers a switch to OpSwitch plus one block per case body;
// fallthrough is expressed simply by not terminating a case block before
// the next one starts, matching the source's own fallthrough semantics.
func (bd *Builder) lowerSwitch(s *ast.Stmt) {
	value := bd.lowerExpr(s.Cond)

	var cases []ir.SwitchCase
	caseBlocks := make([]*ir.Block, 0)
	caseValues := make([]int64, 0)
	hasDefault := make([]bool, 0)

	for _, c := range s.SwitchBody.Body {
		b := bd.newBlock()
		caseBlocks = append(caseBlocks, b)
		switch c.Kind {
		case ast.StmtCase:
			caseValues = append(caseValues, c.Expr.IntVal)
			hasDefault = append(hasDefault, false)
		case ast.StmtDefault:
			caseValues = append(caseValues, 0)
			hasDefault = append(hasDefault, true)
		}
	}
	exitB := bd.newBlock()
	bd.loops = append(bd.loops, loopCtx{breakTarget: exitB, deferMark: len(bd.defers)})
	defaultB := exitB
	for i, b := range caseBlocks {
		if hasDefault[i] {
			defaultB = b
			continue
		}
		cases = append(cases, ir.SwitchCase{Value: caseValues[i], Target: b.ID})
	}

	switchBlock := bd.cur
	ir.MakeSwitch(switchBlock, value, cases, defaultB)

	for i, c := range s.SwitchBody.Body {
		bd.cur = caseBlocks[i]
		bd.vars.SealBlock(bd.cur.ID) // the previous case's fallthrough edge is wired by now
		for _, inner := range c.Body {
			if bd.cur.Terminated() {
				break
			}
			bd.lowerStmt(inner)
		}
		if !bd.cur.Terminated() {
			var next *ir.Block
			if i+1 < len(caseBlocks) {
				next = caseBlocks[i+1]
			} else {
				next = exitB
			}
			ir.MakeBranch(bd.cur, next)
		}
	}

	bd.loops = bd.loops[:len(bd.loops)-1]
	bd.vars.SealBlock(exitB.ID)
	bd.cur = exitB
}

func (bd *Builder) lowerBreak() {
	if len(bd.loops) == 0 {
		bd.reportInternal(nil, "break outside a loop or switch")
		return
	}
	ctx := bd.loops[len(bd.loops)-1]
	bd.runDefers(ctx.deferMark)
	ir.MakeBranch(bd.cur, ctx.breakTarget)
}

func (bd *Builder) lowerContinue() {
	for i := len(bd.loops) - 1; i >= 0; i-- {
		if bd.loops[i].continueTarget != nil {
			bd.runDefers(bd.loops[i].deferMark)
			ir.MakeBranch(bd.cur, bd.loops[i].continueTarget)
			return
		}
	}
	bd.reportInternal(nil, "continue outside a loop")
}

// runDefers replays defers pushed at or above mark in LIFO order without
// popping them: the branch being emitted leaves the deferring scopes, but
// the scopes themselves stay open for the paths that don't take it. The
// enclosing block pops its own slice of the stack when it closes.
func (bd *Builder) runDefers(mark int) {
	for i := len(bd.defers) - 1; i >= mark; i-- {
		bd.lowerStmt(bd.defers[i])
	}
}

func (bd *Builder) lowerLabel(s *ast.Stmt) {
	target := bd.labelBlock(s.Label)
	if !bd.cur.Terminated() {
		ir.MakeBranch(bd.cur, target)
	}
	bd.cur = target
}

// lowerReturn runs any pending defers (innermost first) before
// emitting the terminating ret.
func (bd *Builder) lowerReturn(s *ast.Stmt) {
	bd.runDefers(0)
	if s.Expr == nil {
		ir.MakeRet(bd.cur, nil)
		return
	}
	val := bd.lowerExpr(s.Expr)
	ir.MakeRet(bd.cur, val)
}
