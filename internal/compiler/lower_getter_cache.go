package compiler

import "github.com/fictjs/fictc/internal/ast"

// applyGetterCache implements the GetterCache option (spec §6): within
// one synchronous callback body, a getter-kind accessor read more than
// once is evaluated once into a `__cached_<name>` local declared at the
// top of the body, and every read of it in that body (the first one
// included) is rewritten to use the local instead of re-invoking the
// getter. It never crosses into a nested function
// literal: a callback passed further down is its own "synchronous
// callback body" and gets its own cache, if any, the next time lowerFn
// lowers it.
//
// This only ever runs over an already-lowered statement list, so every
// getter read has already become a zero-argument ECall on a plain
// identifier; there is nothing left to lower here, only to deduplicate.
func (c *compilation) applyGetterCache(stmts []ast.Stmt) []ast.Stmt {
	if !c.opts.GetterCache {
		return stmts
	}

	counts := map[ast.Ref]int{}
	var order []ast.Ref
	for _, s := range stmts {
		countGetterCallsInStmt(c, s, counts, &order)
	}

	cacheRefs := map[ast.Ref]ast.Ref{}
	var prelude []ast.Stmt
	for _, ref := range order {
		if counts[ref] < 2 {
			continue
		}
		if _, done := cacheRefs[ref]; done {
			continue
		}
		b := c.bindings.get(ref)
		cachedRef := c.program.Symbols.NewSymbol("__cached_"+b.Name, b.DeclaredAt)
		cacheRefs[ref] = cachedRef
		prelude = append(prelude, ast.ConstDecl(cachedRef, b.DeclaredAt, ast.CallRef(ref, b.DeclaredAt)))
	}
	if len(cacheRefs) == 0 {
		return stmts
	}

	out := make([]ast.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = rewriteGetterCallsInStmt(s, cacheRefs)
	}
	return append(prelude, out...)
}

// isGetterCall recognizes `name()` where name resolves to a
// BindDerivedGetter binding -- the only shape a getter read lowers to.
func (c *compilation) isGetterCall(e ast.Expr) (ast.Ref, bool) {
	call, ok := e.Data.(*ast.ECall)
	if !ok || len(call.Args) != 0 {
		return ast.Ref{}, false
	}
	ref, ok := ast.IsIdentifier(call.Target)
	if !ok {
		return ast.Ref{}, false
	}
	b := c.bindings.get(ref)
	if b == nil || b.Kind != BindDerivedGetter {
		return ast.Ref{}, false
	}
	return ref, true
}

func countGetterCallsInStmt(c *compilation, s ast.Stmt, counts map[ast.Ref]int, order *[]ast.Ref) {
	switch n := s.Data.(type) {
	case *ast.SExpr:
		countGetterCallsInExpr(c, n.Value, counts, order)
	case *ast.SLocal:
		for _, d := range n.Decls {
			if d.ValueOrNil != nil {
				countGetterCallsInExpr(c, *d.ValueOrNil, counts, order)
			}
		}
	case *ast.SReturn:
		if n.ValueOrNil != nil {
			countGetterCallsInExpr(c, *n.ValueOrNil, counts, order)
		}
	case *ast.SBlock:
		for _, s2 := range n.Stmts {
			countGetterCallsInStmt(c, s2, counts, order)
		}
	case *ast.SIf:
		countGetterCallsInExpr(c, n.Test, counts, order)
		countGetterCallsInStmt(c, n.Yes, counts, order)
		if n.NoOrNil != nil {
			countGetterCallsInStmt(c, *n.NoOrNil, counts, order)
		}
	case *ast.SSwitch:
		countGetterCallsInExpr(c, n.Test, counts, order)
		for _, cs := range n.Cases {
			if cs.ValueOrNil != nil {
				countGetterCallsInExpr(c, *cs.ValueOrNil, counts, order)
			}
			for _, s2 := range cs.Body {
				countGetterCallsInStmt(c, s2, counts, order)
			}
		}
	case *ast.SFor:
		if n.InitOrNil != nil {
			countGetterCallsInStmt(c, *n.InitOrNil, counts, order)
		}
		if n.TestOrNil != nil {
			countGetterCallsInExpr(c, *n.TestOrNil, counts, order)
		}
		if n.UpdateOrNil != nil {
			countGetterCallsInExpr(c, *n.UpdateOrNil, counts, order)
		}
		countGetterCallsInStmt(c, n.Body, counts, order)
	case *ast.SWhile:
		countGetterCallsInExpr(c, n.Test, counts, order)
		countGetterCallsInStmt(c, n.Body, counts, order)
	}
}

func countGetterCallsInExpr(c *compilation, e ast.Expr, counts map[ast.Ref]int, order *[]ast.Ref) {
	if e.Data == nil {
		return
	}
	if ref, ok := c.isGetterCall(e); ok {
		if counts[ref] == 0 {
			*order = append(*order, ref)
		}
		counts[ref]++
		return
	}
	switch n := e.Data.(type) {
	case *ast.EObject:
		for _, p := range n.Properties {
			countGetterCallsInExpr(c, p.Value, counts, order)
		}
	case *ast.EArray:
		for _, item := range n.Items {
			countGetterCallsInExpr(c, item, counts, order)
		}
	case *ast.ESpread:
		countGetterCallsInExpr(c, n.Value, counts, order)
	case *ast.EBinary:
		countGetterCallsInExpr(c, n.Left, counts, order)
		countGetterCallsInExpr(c, n.Right, counts, order)
	case *ast.EUnary:
		countGetterCallsInExpr(c, n.Value, counts, order)
	case *ast.EDot:
		countGetterCallsInExpr(c, n.Target, counts, order)
	case *ast.EIndex:
		countGetterCallsInExpr(c, n.Target, counts, order)
		countGetterCallsInExpr(c, n.Index, counts, order)
	case *ast.ECall:
		countGetterCallsInExpr(c, n.Target, counts, order)
		for _, a := range n.Args {
			countGetterCallsInExpr(c, a, counts, order)
		}
	case *ast.ENew:
		countGetterCallsInExpr(c, n.Target, counts, order)
		for _, a := range n.Args {
			countGetterCallsInExpr(c, a, counts, order)
		}
	case *ast.ECond:
		countGetterCallsInExpr(c, n.Test, counts, order)
		countGetterCallsInExpr(c, n.Yes, counts, order)
		countGetterCallsInExpr(c, n.No, counts, order)
	case *ast.EAwait:
		countGetterCallsInExpr(c, n.Value, counts, order)
	case *ast.ETemplate:
		for _, part := range n.Parts {
			countGetterCallsInExpr(c, part.Value, counts, order)
		}
		// EArrow/EFunction: a nested callback is its own body; its reads
		// are not counted toward this one's cache.
	}
}

func rewriteGetterCallsInStmt(s ast.Stmt, cacheRefs map[ast.Ref]ast.Ref) ast.Stmt {
	switch n := s.Data.(type) {
	case *ast.SExpr:
		n.Value = rewriteGetterCallsInExpr(n.Value, cacheRefs)
	case *ast.SLocal:
		for i := range n.Decls {
			if n.Decls[i].ValueOrNil != nil {
				rewritten := rewriteGetterCallsInExpr(*n.Decls[i].ValueOrNil, cacheRefs)
				n.Decls[i].ValueOrNil = &rewritten
			}
		}
	case *ast.SReturn:
		if n.ValueOrNil != nil {
			rewritten := rewriteGetterCallsInExpr(*n.ValueOrNil, cacheRefs)
			n.ValueOrNil = &rewritten
		}
	case *ast.SBlock:
		for i := range n.Stmts {
			n.Stmts[i] = rewriteGetterCallsInStmt(n.Stmts[i], cacheRefs)
		}
	case *ast.SIf:
		n.Test = rewriteGetterCallsInExpr(n.Test, cacheRefs)
		n.Yes = rewriteGetterCallsInStmt(n.Yes, cacheRefs)
		if n.NoOrNil != nil {
			no := rewriteGetterCallsInStmt(*n.NoOrNil, cacheRefs)
			n.NoOrNil = &no
		}
	case *ast.SSwitch:
		n.Test = rewriteGetterCallsInExpr(n.Test, cacheRefs)
		for ci := range n.Cases {
			if n.Cases[ci].ValueOrNil != nil {
				rewritten := rewriteGetterCallsInExpr(*n.Cases[ci].ValueOrNil, cacheRefs)
				n.Cases[ci].ValueOrNil = &rewritten
			}
			for si := range n.Cases[ci].Body {
				n.Cases[ci].Body[si] = rewriteGetterCallsInStmt(n.Cases[ci].Body[si], cacheRefs)
			}
		}
	case *ast.SFor:
		if n.InitOrNil != nil {
			init := rewriteGetterCallsInStmt(*n.InitOrNil, cacheRefs)
			n.InitOrNil = &init
		}
		if n.TestOrNil != nil {
			rewritten := rewriteGetterCallsInExpr(*n.TestOrNil, cacheRefs)
			n.TestOrNil = &rewritten
		}
		if n.UpdateOrNil != nil {
			rewritten := rewriteGetterCallsInExpr(*n.UpdateOrNil, cacheRefs)
			n.UpdateOrNil = &rewritten
		}
		n.Body = rewriteGetterCallsInStmt(n.Body, cacheRefs)
	case *ast.SWhile:
		n.Test = rewriteGetterCallsInExpr(n.Test, cacheRefs)
		n.Body = rewriteGetterCallsInStmt(n.Body, cacheRefs)
	}
	return s
}

func rewriteGetterCallsInExpr(e ast.Expr, cacheRefs map[ast.Ref]ast.Ref) ast.Expr {
	if e.Data == nil {
		return e
	}
	if call, ok := e.Data.(*ast.ECall); ok && len(call.Args) == 0 {
		if ref, ok := ast.IsIdentifier(call.Target); ok {
			if cachedRef, hit := cacheRefs[ref]; hit {
				return ast.Ident(cachedRef, e.Loc)
			}
		}
	}
	switch n := e.Data.(type) {
	case *ast.EObject:
		for i := range n.Properties {
			n.Properties[i].Value = rewriteGetterCallsInExpr(n.Properties[i].Value, cacheRefs)
		}
	case *ast.EArray:
		for i := range n.Items {
			n.Items[i] = rewriteGetterCallsInExpr(n.Items[i], cacheRefs)
		}
	case *ast.ESpread:
		n.Value = rewriteGetterCallsInExpr(n.Value, cacheRefs)
	case *ast.EBinary:
		n.Left = rewriteGetterCallsInExpr(n.Left, cacheRefs)
		n.Right = rewriteGetterCallsInExpr(n.Right, cacheRefs)
	case *ast.EUnary:
		n.Value = rewriteGetterCallsInExpr(n.Value, cacheRefs)
	case *ast.EDot:
		n.Target = rewriteGetterCallsInExpr(n.Target, cacheRefs)
	case *ast.EIndex:
		n.Target = rewriteGetterCallsInExpr(n.Target, cacheRefs)
		n.Index = rewriteGetterCallsInExpr(n.Index, cacheRefs)
	case *ast.ECall:
		n.Target = rewriteGetterCallsInExpr(n.Target, cacheRefs)
		for i := range n.Args {
			n.Args[i] = rewriteGetterCallsInExpr(n.Args[i], cacheRefs)
		}
	case *ast.ENew:
		n.Target = rewriteGetterCallsInExpr(n.Target, cacheRefs)
		for i := range n.Args {
			n.Args[i] = rewriteGetterCallsInExpr(n.Args[i], cacheRefs)
		}
	case *ast.ECond:
		n.Test = rewriteGetterCallsInExpr(n.Test, cacheRefs)
		n.Yes = rewriteGetterCallsInExpr(n.Yes, cacheRefs)
		n.No = rewriteGetterCallsInExpr(n.No, cacheRefs)
	case *ast.EAwait:
		n.Value = rewriteGetterCallsInExpr(n.Value, cacheRefs)
	case *ast.ETemplate:
		for i := range n.Parts {
			n.Parts[i].Value = rewriteGetterCallsInExpr(n.Parts[i].Value, cacheRefs)
		}
	}
	return e
}
