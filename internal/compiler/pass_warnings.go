package compiler

import (
	"fmt"
	"sort"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
)

// safeGlobalCallees is the constant table of well-known globals the
// black-box-function-call check never flags, following the design note
// in spec §9 ("global module registries ... are constant tables compiled
// into the binary; no runtime mutation is needed"). Calling Math.max or
// JSON.stringify inside a derivation's initializer can't hide a reactive
// dependency, so there is nothing for the compiler to warn about.
var safeGlobalCallees = map[string]bool{
	"Math": true, "JSON": true, "console": true, "Object": true,
	"Array": true, "String": true, "Number": true, "Boolean": true,
	"Date": true, "Promise": true, "Symbol": true, "RegExp": true,
}

var safeGlobalFunctions = map[string]bool{
	"parseInt": true, "parseFloat": true, "isNaN": true, "isFinite": true,
	"encodeURIComponent": true, "decodeURIComponent": true, "structuredClone": true,
}

// runWarningPass is step 6 of the pipeline (spec §2.6): non-fatal, coded
// diagnostics. direct-nested-mutation, dynamic-property-access,
// module-level-state, alias-reassignment, nested-component, and
// reactive-primitive-in-non-jsx-control-flow are
// cheaper to detect right where the offending syntax is first seen, so
// they're emitted inline during the scope pass (see pass_scope.go,
// pass_scope_decl.go, pass_scope_expr.go). This pass handles the
// remaining four, which all need the classification the policy pass
// just finished computing: memo-side-effect, black-box-function-call,
// empty-effect, missing-list-key.
func (c *compilation) runWarningPass() {
	c.warnMemoSideEffectsAndBlackBoxCalls()
	forEachExprInStmts(c.program.Stmts, false, func(e ast.Expr, _ bool) {
		c.warnEmptyEffect(e)
		c.warnMissingListKey(e)
	})
}

func (c *compilation) warnMemoSideEffectsAndBlackBoxCalls() {
	refs := make([]*Binding, 0, c.bindings.len())
	c.bindings.each(func(_ ast.Ref, b *Binding) {
		if b.Kind.IsDerived() && b.InitExpr != nil {
			refs = append(refs, b)
		}
	})
	sort.Slice(refs, func(i, j int) bool { return refs[i].DeclaredAt.Start < refs[j].DeclaredAt.Start })

	for _, b := range refs {
		if exprHasSideEffect(*b.InitExpr, c) {
			b.HasSideEffectInInitializer = true
			c.emitWarning(logger.MsgID_MemoSideEffect, b.DeclaredAt,
				fmt.Sprintf("derivation %q performs a side effect in its initializer; move it into effect()", b.Name))
		}
		if blackBoxCallee := findBlackBoxCallee(*b.InitExpr, c); blackBoxCallee != "" {
			c.emitWarning(logger.MsgID_BlackBoxFunctionCall, b.DeclaredAt,
				fmt.Sprintf("derivation %q calls %q, whose own reads the compiler cannot see; its dependency set may be incomplete", b.Name, blackBoxCallee))
		}
	}
}

// exprHasSideEffect reports whether expr contains an assignment, an
// update expression, or a call to a setter accessor -- the concrete
// forms spec §4.8 item 5 calls out for the memo-side-effect warning.
func exprHasSideEffect(e ast.Expr, c *compilation) bool {
	found := false
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		if found || e.Data == nil {
			return
		}
		switch n := e.Data.(type) {
		case *ast.EBinary:
			if n.Op.IsAssign() {
				found = true
				return
			}
			walk(n.Left)
			walk(n.Right)
		case *ast.EUnary:
			if n.Op.IsUpdate() {
				found = true
				return
			}
			walk(n.Value)
		case *ast.ECall:
			if ref, ok := ast.IsIdentifier(n.Target); ok {
				if b := c.bindings.get(ref); b != nil && b.Kind == BindState {
					// A call to a state binding's own accessor with an
					// argument is the lowered setter form; here, pre-
					// lowering, it shows up as a plain call with args,
					// which can only be the setter if len(args) > 0 --
					// `x()` alone is just a tracked read.
					if len(n.Args) > 0 {
						found = true
						return
					}
				}
			}
			walk(n.Target)
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.EObject:
			for _, p := range n.Properties {
				walk(p.Value)
			}
		case *ast.EArray:
			for _, item := range n.Items {
				walk(item)
			}
		case *ast.ESpread:
			walk(n.Value)
		case *ast.EDot:
			walk(n.Target)
		case *ast.EIndex:
			walk(n.Target)
			walk(n.Index)
		case *ast.ECond:
			walk(n.Test)
			walk(n.Yes)
			walk(n.No)
		case *ast.EAwait:
			walk(n.Value)
		case *ast.ETemplate:
			for _, part := range n.Parts {
				walk(part.Value)
			}
		}
	}
	walk(e)
	return found
}

// findBlackBoxCallee returns the name of the first callee in expr that
// the compiler has no reactivity information about -- anything that
// isn't a known safe global, a macro, or a locally declared binding the
// scope pass already classified. Returns "" when none is found.
func findBlackBoxCallee(e ast.Expr, c *compilation) string {
	result := ""
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		if result != "" || e.Data == nil {
			return
		}
		switch n := e.Data.(type) {
		case *ast.ECall:
			switch target := n.Target.Data.(type) {
			case *ast.EIdentifier:
				name := c.program.Symbols.Get(target.Ref).OriginalName
				if !c.macros.isMacro(target.Ref) && !safeGlobalFunctions[name] {
					if !c.bindings.has(target.Ref) {
						result = name
						return
					}
				}
			case *ast.EDot:
				if baseID, ok := target.Target.Data.(*ast.EIdentifier); ok {
					base := c.program.Symbols.Get(baseID.Ref).OriginalName
					if safeGlobalCallees[base] {
						break
					}
				}
			}
			walk(n.Target)
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.EBinary:
			walk(n.Left)
			walk(n.Right)
		case *ast.EUnary:
			walk(n.Value)
		case *ast.EObject:
			for _, p := range n.Properties {
				walk(p.Value)
			}
		case *ast.EArray:
			for _, item := range n.Items {
				walk(item)
			}
		case *ast.ESpread:
			walk(n.Value)
		case *ast.EDot:
			walk(n.Target)
		case *ast.EIndex:
			walk(n.Target)
			walk(n.Index)
		case *ast.ECond:
			walk(n.Test)
			walk(n.Yes)
			walk(n.No)
		case *ast.EAwait:
			walk(n.Value)
		case *ast.ETemplate:
			for _, part := range n.Parts {
				walk(part.Value)
			}
		}
	}
	walk(e)
	return result
}

// warnEmptyEffect flags an effect() call whose callback reads no
// state/derived name at all, tracked or not -- it will never re-run
// (spec §6: empty-effect).
func (c *compilation) warnEmptyEffect(e ast.Expr) {
	call, ok := e.Data.(*ast.ECall)
	if !ok || c.macros.kindOf(refOf(call.Target)) != MacroEffect || len(call.Args) == 0 {
		return
	}
	arrow, ok := call.Args[0].Data.(*ast.EArrow)
	if !ok {
		return
	}
	reads := map[ast.Ref]bool{}
	collectFnReads(arrow.Fn, reads)
	if len(c.filterReactive(reads)) == 0 {
		c.emitWarning(logger.MsgID_EmptyEffect, e.Loc, "effect() has no tracked reads and will never re-run")
	}
}

// warnMissingListKey flags `{xs.map(x => <li>...)}` inside JSX children
// when the rendered element carries no `key` (spec §6: missing-list-key).
func (c *compilation) warnMissingListKey(e ast.Expr) {
	container, ok := e.Data.(*ast.EJSXExprContainer)
	if !ok {
		return
	}
	call, ok := container.Value.Data.(*ast.ECall)
	if !ok {
		return
	}
	dot, ok := call.Target.Data.(*ast.EDot)
	if !ok || dot.Name != "map" || len(call.Args) == 0 {
		return
	}
	arrow, ok := call.Args[0].Data.(*ast.EArrow)
	if !ok || arrow.Fn.ExprBody == nil {
		return
	}
	elem, ok := arrow.Fn.ExprBody.Data.(*ast.EJSXElement)
	if !ok || elem.TagKind == ast.JSXTagFragment {
		return
	}
	if elem.KeyOrNil == nil {
		c.emitWarning(logger.MsgID_MissingListKey, e.Loc, "list item rendered from .map() has no key prop")
	}
}
