package compiler

import (
	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
)

// lowerComponentBody implements the component/hook-specific half of step 7
// (spec §4.8): it allocates a context local, rewrites the parameter list
// from a destructured props pattern into useProp/propsRest reads, and
// makes sure popContext() runs on every path out of the body.
//
// This AST has no try/finally statement, so "every path out" is done the
// way a simple lowering pass can manage it without one: a popContext()
// call is inserted immediately before every `return` still in the
// component's own control flow (lowerStmt's SReturn case, gated by
// insertPopBeforeReturn), plus one trailing call appended after the body
// for an implicit fall-through. A component/hook that throws skips both,
// same as the synchronous, non-exception-aware transform this pipeline
// already is everywhere else.
func (c *compilation) lowerComponentBody(fn *ast.Fn) {
	loc := fnBodyLoc(fn)

	ctxRef := c.program.Symbols.NewSymbol("__fictCtx", loc)
	prevCtx, prevHasCtx, prevPop := c.ctxRef, c.hasCtxRef, c.insertPopBeforeReturn
	c.ctxRef = ctxRef
	c.hasCtxRef = true
	c.insertPopBeforeReturn = true

	paramStmts := c.lowerComponentParams(fn, loc)

	if fn.ExprBody != nil {
		fn.Body = []ast.Stmt{{Loc: fn.ExprBody.Loc, Data: &ast.SReturn{ValueOrNil: fn.ExprBody}}}
		fn.ExprBody = nil
	}

	body := c.lowerStmts(fn.Body)

	out := make([]ast.Stmt, 0, len(paramStmts)+len(body)+2)
	out = append(out, ast.ConstDecl(ctxRef, loc, c.callRuntime(loc, rtPushContext)))
	out = append(out, paramStmts...)
	out = append(out, body...)
	out = append(out, c.popContextStmt(loc))
	fn.Body = out

	c.ctxRef, c.hasCtxRef, c.insertPopBeforeReturn = prevCtx, prevHasCtx, prevPop
}

// lowerComponentParams rewrites a component/hook's single props parameter
// from a destructuring pattern into a synthetic `__props` parameter plus
// one useProp()-backed const per destructured name, and a propsRest()
// const for a rest element (spec §4.5, §4.8 item 4). A bare identifier
// parameter (`function Foo(props)`) is left untouched: its member reads
// are ordinary EDot expressions the lowering pass never needs to rewrite.
func (c *compilation) lowerComponentParams(fn *ast.Fn, loc logger.Loc) []ast.Stmt {
	if len(fn.Args) == 0 {
		return nil
	}
	arg := &fn.Args[0]
	pat, ok := arg.Binding.Data.(*ast.BObject)
	if !ok {
		return nil
	}

	propsRef := c.program.Symbols.NewSymbol("__props", loc)
	out := make([]ast.Stmt, 0, len(pat.Properties)+1)
	excluded := make([]ast.Expr, 0, len(pat.Properties))

	for _, p := range pat.Properties {
		excluded = append(excluded, ast.Str(p.KeyName, loc))
		ident, ok := p.Value.Data.(*ast.BIdentifier)
		if !ok {
			continue
		}
		getter := ast.Thunk(ast.Dot(ast.Ident(propsRef, loc), p.KeyName, p.Value.Loc))
		args := []ast.Expr{getter}
		if p.DefaultOrNil != nil {
			args = append(args, c.lowerExpr(*p.DefaultOrNil))
		}
		value := c.callRuntime(loc, rtUseProp, args...)
		out = append(out, ast.ConstDecl(ident.Ref, loc, value))
	}

	if pat.RestRef != nil {
		value := c.callRuntime(loc, rtPropsRest, append([]ast.Expr{ast.Ident(propsRef, loc)}, excluded...)...)
		out = append(out, ast.ConstDecl(*pat.RestRef, loc, value))
	}

	arg.Binding = ast.Binding{Loc: loc, Data: &ast.BIdentifier{Ref: propsRef}}
	return out
}

// fnBodyLoc returns a representative location for a function body, used
// to attribute the synthesized context/push/pop statements
// lowerComponentBody adds when there's no single natural source location
// for them.
func fnBodyLoc(fn *ast.Fn) logger.Loc {
	if len(fn.Body) > 0 {
		return fn.Body[0].Loc
	}
	if fn.ExprBody != nil {
		return fn.ExprBody.Loc
	}
	return logger.Loc{}
}
