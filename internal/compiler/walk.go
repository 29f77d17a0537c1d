package compiler

import "github.com/fictjs/fictc/internal/ast"

// This file holds the small set of read-only tree walkers shared by
// several passes, following the design note in spec §9: rather than a
// full decorator-style visitor with enter/exit hooks for every node kind,
// each walker here is a narrow recursive function built only for the one
// question it answers (does this expression read a reactive name, is
// this function a component, ...). The mutating walkers that actually
// rewrite the tree live next to the pass that owns them (lower_expr.go,
// lower_jsx_*.go).

// collectReads returns every identifier Ref read anywhere inside expr.
// When crossFunctionBoundary is false the walk stops at the body of any
// nested EArrow/EFunction, matching spec §4.1's derived-recognition rule
// that a const's dependencies come from "ordinary expression evaluation,
// not through a nested function's body".
func collectReads(e ast.Expr, crossFunctionBoundary bool, out map[ast.Ref]bool) {
	if e.Data == nil {
		return
	}
	switch n := e.Data.(type) {
	case *ast.EIdentifier:
		out[n.Ref] = true
	case *ast.ENumber, *ast.EString, *ast.EBoolean, *ast.ENull, *ast.EUndefined, *ast.EThis:
		// no reads
	case *ast.EObject:
		for _, p := range n.Properties {
			if p.IsComputed {
				collectReads(p.Key, crossFunctionBoundary, out)
			}
			collectReads(p.Value, crossFunctionBoundary, out)
		}
	case *ast.EArray:
		for _, item := range n.Items {
			collectReads(item, crossFunctionBoundary, out)
		}
	case *ast.ESpread:
		collectReads(n.Value, crossFunctionBoundary, out)
	case *ast.EBinary:
		collectReads(n.Left, crossFunctionBoundary, out)
		collectReads(n.Right, crossFunctionBoundary, out)
	case *ast.EUnary:
		collectReads(n.Value, crossFunctionBoundary, out)
	case *ast.EDot:
		collectReads(n.Target, crossFunctionBoundary, out)
	case *ast.EIndex:
		collectReads(n.Target, crossFunctionBoundary, out)
		collectReads(n.Index, crossFunctionBoundary, out)
	case *ast.ECall:
		collectReads(n.Target, crossFunctionBoundary, out)
		for _, a := range n.Args {
			collectReads(a, crossFunctionBoundary, out)
		}
	case *ast.ENew:
		collectReads(n.Target, crossFunctionBoundary, out)
		for _, a := range n.Args {
			collectReads(a, crossFunctionBoundary, out)
		}
	case *ast.ECond:
		collectReads(n.Test, crossFunctionBoundary, out)
		collectReads(n.Yes, crossFunctionBoundary, out)
		collectReads(n.No, crossFunctionBoundary, out)
	case *ast.EAwait:
		collectReads(n.Value, crossFunctionBoundary, out)
	case *ast.ETemplate:
		for _, part := range n.Parts {
			collectReads(part.Value, crossFunctionBoundary, out)
		}
	case *ast.EUntrack:
		// Reads inside an explicit untrack() are not rewritten and do not
		// register as dependencies at all (spec §4.4).
	case *ast.EArrow:
		if crossFunctionBoundary {
			collectFnReads(n.Fn, out)
		}
	case *ast.EFunction:
		if crossFunctionBoundary {
			collectFnReads(n.Fn, out)
		}
	case *ast.EJSXElement:
		for _, attr := range n.Attrs {
			if attr.ValueOrNil != nil {
				collectReads(*attr.ValueOrNil, crossFunctionBoundary, out)
			}
		}
		if n.KeyOrNil != nil {
			collectReads(*n.KeyOrNil, crossFunctionBoundary, out)
		}
		for _, c := range n.Children {
			collectReads(c, crossFunctionBoundary, out)
		}
	case *ast.EJSXExprContainer:
		collectReads(n.Value, crossFunctionBoundary, out)
	case *ast.EJSXText:
		// no reads
	}
}

func collectFnReads(fn ast.Fn, out map[ast.Ref]bool) {
	if fn.ExprBody != nil {
		collectReads(*fn.ExprBody, true, out)
	}
	for _, s := range fn.Body {
		collectStmtReads(s, out)
	}
}

func collectStmtReads(s ast.Stmt, out map[ast.Ref]bool) {
	switch n := s.Data.(type) {
	case *ast.SExpr:
		collectReads(n.Value, true, out)
	case *ast.SLocal:
		for _, d := range n.Decls {
			if d.ValueOrNil != nil {
				collectReads(*d.ValueOrNil, true, out)
			}
		}
	case *ast.SReturn:
		if n.ValueOrNil != nil {
			collectReads(*n.ValueOrNil, true, out)
		}
	case *ast.SBlock:
		for _, s2 := range n.Stmts {
			collectStmtReads(s2, out)
		}
	case *ast.SIf:
		collectReads(n.Test, true, out)
		collectStmtReads(n.Yes, out)
		if n.NoOrNil != nil {
			collectStmtReads(*n.NoOrNil, out)
		}
	case *ast.SSwitch:
		collectReads(n.Test, true, out)
		for _, c := range n.Cases {
			if c.ValueOrNil != nil {
				collectReads(*c.ValueOrNil, true, out)
			}
			for _, s2 := range c.Body {
				collectStmtReads(s2, out)
			}
		}
	case *ast.SFor:
		if n.InitOrNil != nil {
			collectStmtReads(*n.InitOrNil, out)
		}
		if n.TestOrNil != nil {
			collectReads(*n.TestOrNil, true, out)
		}
		if n.UpdateOrNil != nil {
			collectReads(*n.UpdateOrNil, true, out)
		}
		collectStmtReads(n.Body, out)
	case *ast.SWhile:
		collectReads(n.Test, true, out)
		collectStmtReads(n.Body, out)
	case *ast.SFunction:
		collectFnReads(n.Fn, out)
	}
}

// returnsJSX reports whether fn's body contains a return statement whose
// value is a JSX element/fragment, or a call to something the compiler
// already believes is a component. This is the heuristic spec §4.8 and
// §9's open question name for classifying a function as a component.
func returnsJSX(fn ast.Fn, componentRefs map[ast.Ref]bool) bool {
	if fn.ExprBody != nil {
		return exprIsJSXish(*fn.ExprBody, componentRefs)
	}
	found := false
	walkStmtsForReturn(fn.Body, func(ret *ast.SReturn) {
		if ret.ValueOrNil != nil && exprIsJSXish(*ret.ValueOrNil, componentRefs) {
			found = true
		}
	})
	return found
}

func exprIsJSXish(e ast.Expr, componentRefs map[ast.Ref]bool) bool {
	switch n := e.Data.(type) {
	case *ast.EJSXElement:
		return true
	case *ast.ECond:
		return exprIsJSXish(n.Yes, componentRefs) || exprIsJSXish(n.No, componentRefs)
	case *ast.ECall:
		if id, ok := ast.IsIdentifier(n.Target); ok && componentRefs[id] {
			return true
		}
	}
	return false
}

// walkStmtsForReturn visits every return statement reachable without
// crossing into a nested function body (a `return` inside a callback
// passed to this function doesn't make this function itself return JSX).
func walkStmtsForReturn(stmts []ast.Stmt, visit func(*ast.SReturn)) {
	for _, s := range stmts {
		switch n := s.Data.(type) {
		case *ast.SReturn:
			visit(n)
		case *ast.SBlock:
			walkStmtsForReturn(n.Stmts, visit)
		case *ast.SIf:
			walkStmtsForReturn([]ast.Stmt{n.Yes}, visit)
			if n.NoOrNil != nil {
				walkStmtsForReturn([]ast.Stmt{*n.NoOrNil}, visit)
			}
		case *ast.SSwitch:
			for _, c := range n.Cases {
				walkStmtsForReturn(c.Body, visit)
			}
		case *ast.SFor:
			walkStmtsForReturn([]ast.Stmt{n.Body}, visit)
		case *ast.SWhile:
			walkStmtsForReturn([]ast.Stmt{n.Body}, visit)
		}
	}
}

// forEachExprInStmts visits every expression in stmts, including inside
// nested function/arrow bodies, calling visit with the expression and the
// event-handler-ness inherited from ctx. Used by the policy and warning
// passes which need to see every use site regardless of nesting.
type exprVisitor func(e ast.Expr, inEventOnlySink bool)

func forEachExprInStmts(stmts []ast.Stmt, inEventOnlySink bool, visit exprVisitor) {
	for _, s := range stmts {
		forEachExprInStmt(s, inEventOnlySink, visit)
	}
}

func forEachExprInStmt(s ast.Stmt, inEventOnlySink bool, visit exprVisitor) {
	switch n := s.Data.(type) {
	case *ast.SExpr:
		forEachExprInExpr(n.Value, inEventOnlySink, visit)
	case *ast.SLocal:
		for _, d := range n.Decls {
			if d.ValueOrNil != nil {
				forEachExprInExpr(*d.ValueOrNil, inEventOnlySink, visit)
			}
		}
	case *ast.SReturn:
		if n.ValueOrNil != nil {
			forEachExprInExpr(*n.ValueOrNil, inEventOnlySink, visit)
		}
	case *ast.SBlock:
		forEachExprInStmts(n.Stmts, inEventOnlySink, visit)
	case *ast.SIf:
		forEachExprInExpr(n.Test, inEventOnlySink, visit)
		forEachExprInStmt(n.Yes, inEventOnlySink, visit)
		if n.NoOrNil != nil {
			forEachExprInStmt(*n.NoOrNil, inEventOnlySink, visit)
		}
	case *ast.SSwitch:
		forEachExprInExpr(n.Test, inEventOnlySink, visit)
		for _, c := range n.Cases {
			if c.ValueOrNil != nil {
				forEachExprInExpr(*c.ValueOrNil, inEventOnlySink, visit)
			}
			forEachExprInStmts(c.Body, inEventOnlySink, visit)
		}
	case *ast.SFor:
		if n.InitOrNil != nil {
			forEachExprInStmt(*n.InitOrNil, inEventOnlySink, visit)
		}
		if n.TestOrNil != nil {
			forEachExprInExpr(*n.TestOrNil, inEventOnlySink, visit)
		}
		if n.UpdateOrNil != nil {
			forEachExprInExpr(*n.UpdateOrNil, inEventOnlySink, visit)
		}
		forEachExprInStmt(n.Body, inEventOnlySink, visit)
	case *ast.SWhile:
		forEachExprInExpr(n.Test, inEventOnlySink, visit)
		forEachExprInStmt(n.Body, inEventOnlySink, visit)
	case *ast.SFunction:
		forEachExprInStmts(n.Fn.Body, inEventOnlySink, visit)
	}
}

func forEachExprInExpr(e ast.Expr, inEventOnlySink bool, visit exprVisitor) {
	visit(e, inEventOnlySink)
	switch n := e.Data.(type) {
	case *ast.EObject:
		for _, p := range n.Properties {
			forEachExprInExpr(p.Value, inEventOnlySink, visit)
		}
	case *ast.EArray:
		for _, item := range n.Items {
			forEachExprInExpr(item, inEventOnlySink, visit)
		}
	case *ast.ESpread:
		forEachExprInExpr(n.Value, inEventOnlySink, visit)
	case *ast.EBinary:
		forEachExprInExpr(n.Left, inEventOnlySink, visit)
		forEachExprInExpr(n.Right, inEventOnlySink, visit)
	case *ast.EUnary:
		forEachExprInExpr(n.Value, inEventOnlySink, visit)
	case *ast.EDot:
		forEachExprInExpr(n.Target, inEventOnlySink, visit)
	case *ast.EIndex:
		forEachExprInExpr(n.Target, inEventOnlySink, visit)
		forEachExprInExpr(n.Index, inEventOnlySink, visit)
	case *ast.ECall:
		forEachExprInExpr(n.Target, inEventOnlySink, visit)
		for _, a := range n.Args {
			forEachExprInExpr(a, inEventOnlySink, visit)
		}
	case *ast.ENew:
		forEachExprInExpr(n.Target, inEventOnlySink, visit)
		for _, a := range n.Args {
			forEachExprInExpr(a, inEventOnlySink, visit)
		}
	case *ast.ECond:
		forEachExprInExpr(n.Test, inEventOnlySink, visit)
		forEachExprInExpr(n.Yes, inEventOnlySink, visit)
		forEachExprInExpr(n.No, inEventOnlySink, visit)
	case *ast.EAwait:
		forEachExprInExpr(n.Value, inEventOnlySink, visit)
	case *ast.ETemplate:
		for _, part := range n.Parts {
			forEachExprInExpr(part.Value, inEventOnlySink, visit)
		}
	case *ast.EUntrack:
		forEachExprInExpr(n.Value, inEventOnlySink, visit)
	case *ast.EArrow:
		forEachExprInStmts(n.Fn.Body, true, visit)
		if n.Fn.ExprBody != nil {
			forEachExprInExpr(*n.Fn.ExprBody, true, visit)
		}
	case *ast.EFunction:
		forEachExprInStmts(n.Fn.Body, true, visit)
	case *ast.EJSXElement:
		for _, attr := range n.Attrs {
			if attr.ValueOrNil != nil {
				isHandler := len(attr.Name) > 2 && attr.Name[:2] == "on"
				forEachExprInExpr(*attr.ValueOrNil, inEventOnlySink || isHandler, visit)
			}
		}
		for _, c := range n.Children {
			forEachExprInExpr(c, inEventOnlySink, visit)
		}
	case *ast.EJSXExprContainer:
		forEachExprInExpr(n.Value, inEventOnlySink, visit)
	}
}
