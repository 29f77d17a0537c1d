package compiler

import (
	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
)

// lowerExpr is the expression half of step 7 (spec §4.5): it rewrites
// every reactive read into an accessor call and every reactive write
// into a setter call, recursing through every expression shape. Bindings
// were already resolved to a concrete classification by the scope,
// policy, and region passes, so this function never walks a scope chain
// -- it looks a Ref's Binding up directly and switches on Binding.Kind.
//
// It mutates in place wherever the node shape itself doesn't change
// (every struct field that holds an ast.Expr by value is reassigned
// through the pointer the type switch already holds) and only allocates
// a new Expr at leaves whose shape itself changes: an identifier
// becoming a call, an assignment becoming a setter call.
func (c *compilation) lowerExpr(e ast.Expr) ast.Expr {
	if e.Data == nil {
		return e
	}
	switch n := e.Data.(type) {
	case *ast.EIdentifier:
		return c.lowerIdentifierRead(n.Ref, e.Loc)

	case *ast.ENumber, *ast.EString, *ast.EBoolean, *ast.ENull, *ast.EUndefined, *ast.EThis:
		return e

	case *ast.EObject:
		for i := range n.Properties {
			p := &n.Properties[i]
			if p.IsComputed {
				p.Key = c.lowerExpr(p.Key)
			}
			before := p.Value
			p.Value = c.lowerExpr(p.Value)
			if p.IsShorthand && !sameShape(before, p.Value) {
				// `{ x }` where x is reactive can't stay shorthand once
				// its value becomes a call expression (spec §4.5).
				p.IsShorthand = false
			}
		}
		return e

	case *ast.EArray:
		for i := range n.Items {
			n.Items[i] = c.lowerExpr(n.Items[i])
		}
		return e

	case *ast.ESpread:
		n.Value = c.lowerExpr(n.Value)
		return e

	case *ast.EBinary:
		if n.Op.IsAssign() {
			return c.lowerAssign(n, e.Loc)
		}
		n.Left = c.lowerExpr(n.Left)
		n.Right = c.lowerExpr(n.Right)
		return e

	case *ast.EUnary:
		if n.Op.IsUpdate() {
			return c.lowerUpdate(n, e.Loc)
		}
		n.Value = c.lowerExpr(n.Value)
		return e

	case *ast.EDot:
		n.Target = c.lowerExpr(n.Target)
		return e

	case *ast.EIndex:
		n.Target = c.lowerExpr(n.Target)
		n.Index = c.lowerExpr(n.Index)
		return e

	case *ast.ECall:
		if ref, ok := ast.IsIdentifier(n.Target); ok && c.macros.kindOf(ref) == MacroEffect {
			return c.lowerEffectCall(n, e.Loc)
		}
		n.Target = c.lowerExpr(n.Target)
		for i := range n.Args {
			n.Args[i] = c.lowerExpr(n.Args[i])
		}
		return e

	case *ast.ENew:
		n.Target = c.lowerExpr(n.Target)
		for i := range n.Args {
			n.Args[i] = c.lowerExpr(n.Args[i])
		}
		return e

	case *ast.ECond:
		n.Test = c.lowerExpr(n.Test)
		n.Yes = c.lowerExpr(n.Yes)
		n.No = c.lowerExpr(n.No)
		return e

	case *ast.EAwait:
		n.Value = c.lowerExpr(n.Value)
		return e

	case *ast.ETemplate:
		for i := range n.Parts {
			n.Parts[i].Value = c.lowerExpr(n.Parts[i].Value)
		}
		return e

	case *ast.EUntrack:
		// Reads inside an explicit untrack() are never rewritten (spec
		// §4.4); the call itself is left for the runtime to execute.
		return ast.Call(c.untrackIdent(e.Loc), ast.Thunk(n.Value))

	case *ast.EArrow:
		c.lowerFn(&n.Fn)
		return e

	case *ast.EFunction:
		c.lowerFn(&n.Fn)
		return e

	case *ast.EJSXElement:
		return c.lowerJSX(e)

	case *ast.EJSXExprContainer:
		n.Value = c.lowerExpr(n.Value)
		return e

	default:
		return e
	}
}

// sameShape reports whether before and after are the same kind of node,
// used only to detect "did lowerExpr turn a bare identifier into a call"
// for the object-shorthand rule above.
func sameShape(before, after ast.Expr) bool {
	_, beforeIsID := before.Data.(*ast.EIdentifier)
	_, afterIsID := after.Data.(*ast.EIdentifier)
	return beforeIsID == afterIsID
}

// lowerIdentifierRead implements the read column of the spec §4.5 table.
// Store and prop-rest values are themselves live proxy objects at
// runtime (spec §6: "its result object's property reads behave like
// props"), so their own identifier reads pass through unchanged; only
// member access off them carries reactivity, which needs no rewriting
// here since the member read is a plain EDot/EIndex already.
func (c *compilation) lowerIdentifierRead(ref ast.Ref, loc logger.Loc) ast.Expr {
	b := c.bindings.get(ref)
	if b == nil {
		return ast.Ident(ref, loc)
	}
	switch b.Kind {
	case BindState, BindDerivedMemo, BindDerivedGetter, BindAlias, BindDestructuredStateAlias, BindProp:
		return ast.CallRef(ref, loc)
	default:
		return ast.Ident(ref, loc)
	}
}

// lowerAssign implements the write column of the spec §4.5 table: `x =
// expr` -> `x(expr')`, `x += e` -> `x(x() + e')`. Plain (non-reactive)
// assignment targets, including member expressions (`obj.x = …`, flagged
// separately by the direct-nested-mutation warning), keep their original
// shape; only the right-hand side is lowered.
func (c *compilation) lowerAssign(n *ast.EBinary, loc logger.Loc) ast.Expr {
	ref, isIdent := ast.IsIdentifier(n.Left)
	var b *Binding
	if isIdent {
		b = c.bindings.get(ref)
	}
	if b == nil || b.Kind != BindState {
		n.Left = c.lowerExpr(n.Left)
		n.Right = c.lowerExpr(n.Right)
		return ast.Expr{Loc: loc, Data: n}
	}

	rhs := c.lowerExpr(n.Right)
	var newValue ast.Expr
	if n.Op == ast.BinOpAssign {
		newValue = rhs
	} else {
		newValue = ast.Binary(n.Op.BinaryOperand(), ast.CallRef(ref, loc), rhs)
	}
	return ast.CallRef(ref, loc, newValue)
}

// lowerUpdate implements `x++` / `++x` -> `x(x() + 1)` (spec §4.5); the
// pre/post return-value distinction is not preserved when the expression
// is used as a value, matching the note on the update operators in
// ops.go.
func (c *compilation) lowerUpdate(n *ast.EUnary, loc logger.Loc) ast.Expr {
	ref, isIdent := ast.IsIdentifier(n.Value)
	if !isIdent {
		n.Value = c.lowerExpr(n.Value)
		return ast.Expr{Loc: loc, Data: n}
	}
	b := c.bindings.get(ref)
	if b == nil || b.Kind != BindState {
		return ast.Expr{Loc: loc, Data: n}
	}
	op := ast.BinOpAdd
	if !n.Op.IsIncrement() {
		op = ast.BinOpSub
	}
	return ast.CallRef(ref, loc, ast.Binary(op, ast.CallRef(ref, loc), ast.Num(1, loc)))
}

// lowerFn lowers a nested function/arrow literal's own body in place:
// event handlers, list-render callbacks, and any other inline callback.
// Its reads were already classified tracked/untracked by the policy
// pass; lowering emits the identical accessor-call syntax either way
// (spec §4.4: untracked reads are "live but untracked... lowered to an
// accessor call but not registered as a dependency" -- registration is a
// runtime-side concern, not a syntactic one).
func (c *compilation) lowerFn(fn *ast.Fn) {
	if c.componentFnSet[fn] {
		c.lowerComponentBody(fn)
		return
	}
	prevPop := c.insertPopBeforeReturn
	c.insertPopBeforeReturn = false
	fn.Body = c.applyGetterCache(c.lowerStmts(fn.Body))
	if fn.ExprBody != nil {
		*fn.ExprBody = c.lowerExpr(*fn.ExprBody)
	}
	c.insertPopBeforeReturn = prevPop
}

// lowerEffectCall implements the `effect(fn)` macro's half of step 7
// (spec §4.5, §6): the callback argument is lowered through the ordinary
// expression path -- its reads were already classified tracked by the
// policy pass regardless of how the callback is spelled (spec §4.4,
// pass_policy.go's scanPolicySite MacroEffect case) -- and the whole call
// becomes `useEffect(ctx, fn')`, the same ctx-threading shape lowerDecl
// already uses for useSignal/useMemo.
func (c *compilation) lowerEffectCall(n *ast.ECall, loc logger.Loc) ast.Expr {
	args := make([]ast.Expr, 0, len(n.Args)+1)
	args = append(args, c.ctxExpr(loc))
	for _, a := range n.Args {
		args = append(args, c.lowerExpr(a))
	}
	return c.callRuntime(loc, rtUseEffect, args...)
}

func (c *compilation) untrackIdent(loc logger.Loc) ast.Expr {
	ref := c.macros.untrackRef
	if !ref.IsValid() {
		ref = c.program.Symbols.NewSymbol("untrack", loc)
		c.macros.untrackRef = ref
	}
	return ast.Ident(ref, loc)
}
