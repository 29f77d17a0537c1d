package compiler

import (
	"sort"

	"github.com/fictjs/fictc/internal/ast"
)

// runPolicyPass is step 5 of the pipeline (spec §4.4): classify every
// still-pending derivation as a memo or a getter by scanning its use
// sites, then freeze the result onto each Binding.Kind.
//
// The use-site scan (scanPolicySite below) treats two contexts
// specially, reusing the same name-prefix/JSX-return heuristic
// declareFunctionLike already uses to recognize components (spec §9's
// open question about that heuristic applies equally here): the
// argument of an `effect(...)` call is scanned as a tracked context
// regardless of the fact that it is itself an arrow-function body, and
// an inline callback whose body looks like it produces JSX (a `.map`
// list-render callback, an inline ternary branch) is scanned as a
// tracked context too, on the theory that such a callback is rendering,
// not handling an event. Every other nested function body -- most
// commonly a JSX `onX` handler or a callback passed to an unknown
// user function -- is scanned as an event-only (untracked) context.
func (c *compilation) runPolicyPass() {
	for _, fn := range c.componentFns {
		c.scanPolicyStmts(fn.Body, false)
		if fn.ExprBody != nil {
			c.scanPolicySite(*fn.ExprBody, false)
		}
	}

	refs := make([]*Binding, 0, c.bindings.len())
	c.bindings.each(func(_ ast.Ref, b *Binding) {
		if b.Kind == BindDerivedPending {
			refs = append(refs, b)
		}
	})
	sort.Slice(refs, func(i, j int) bool { return refs[i].DeclaredAt.Start < refs[j].DeclaredAt.Start })

	for _, b := range refs {
		moduleScoped := b.OwnerScope != nil && b.OwnerScope.Kind == ScopeModule
		if moduleScoped || b.Region != nil {
			b.Kind = BindDerivedMemo
			continue
		}
		if b.UsedInReactiveSink {
			// LazyConditional (spec §6 option table): a derivation
			// written directly inside one conditional branch, never
			// merged into a region, stays a lazy getter instead of
			// being forced into a memo -- it only pays to evaluate on a
			// tracked read, and any render of the branch that doesn't
			// take it never allocates a cache slot for it at all.
			if c.opts.LazyConditional && b.DeclBlock != nil {
				b.Kind = BindDerivedGetter
				continue
			}
			b.Kind = BindDerivedMemo
		} else {
			b.Kind = BindDerivedGetter
		}
	}

	// A reference that feeds another derivation's initializer is a
	// reactive sink regardless of how that other derivation itself was
	// later classified, so propagate through Deps edges once all pending
	// bindings have union-found their own direct use sites.
	c.bindings.each(func(_ ast.Ref, b *Binding) {
		if !b.Kind.IsDerived() {
			return
		}
		for dep := range b.Deps {
			depB := c.bindings.get(dep)
			if depB == nil || depB.Kind != BindDerivedGetter || !depB.UsedInReactiveSink {
				continue
			}
			if c.opts.LazyConditional && depB.DeclBlock != nil {
				continue
			}
			depB.Kind = BindDerivedMemo
		}
	})
}

func (c *compilation) markDerivedUse(ref ast.Ref, eventOnly bool) {
	b := c.bindings.get(ref)
	if b == nil || !b.Kind.IsDerived() {
		return
	}
	if eventOnly {
		b.UsedInEventOnlySink = true
	} else {
		b.UsedInReactiveSink = true
	}
}

func (c *compilation) scanPolicyStmts(stmts []ast.Stmt, eventOnly bool) {
	for _, s := range stmts {
		c.scanPolicyStmt(s, eventOnly)
	}
}

func (c *compilation) scanPolicyStmt(s ast.Stmt, eventOnly bool) {
	switch n := s.Data.(type) {
	case *ast.SExpr:
		c.scanPolicySite(n.Value, eventOnly)
	case *ast.SLocal:
		for _, d := range n.Decls {
			if d.ValueOrNil != nil {
				c.scanPolicySite(*d.ValueOrNil, eventOnly)
			}
		}
	case *ast.SReturn:
		if n.ValueOrNil != nil {
			c.scanPolicySite(*n.ValueOrNil, eventOnly)
		}
	case *ast.SBlock:
		c.scanPolicyStmts(n.Stmts, eventOnly)
	case *ast.SIf:
		c.scanPolicySite(n.Test, eventOnly)
		c.scanPolicyStmt(n.Yes, eventOnly)
		if n.NoOrNil != nil {
			c.scanPolicyStmt(*n.NoOrNil, eventOnly)
		}
	case *ast.SSwitch:
		c.scanPolicySite(n.Test, eventOnly)
		for _, cs := range n.Cases {
			if cs.ValueOrNil != nil {
				c.scanPolicySite(*cs.ValueOrNil, eventOnly)
			}
			c.scanPolicyStmts(cs.Body, eventOnly)
		}
	case *ast.SFor:
		if n.InitOrNil != nil {
			c.scanPolicyStmt(*n.InitOrNil, eventOnly)
		}
		if n.TestOrNil != nil {
			c.scanPolicySite(*n.TestOrNil, eventOnly)
		}
		if n.UpdateOrNil != nil {
			c.scanPolicySite(*n.UpdateOrNil, eventOnly)
		}
		c.scanPolicyStmt(n.Body, eventOnly)
	case *ast.SWhile:
		c.scanPolicySite(n.Test, eventOnly)
		c.scanPolicyStmt(n.Body, eventOnly)
	}
}

func (c *compilation) scanPolicySite(e ast.Expr, eventOnly bool) {
	if e.Data == nil {
		return
	}
	switch n := e.Data.(type) {
	case *ast.EIdentifier:
		c.markDerivedUse(n.Ref, eventOnly)

	case *ast.EObject:
		for _, p := range n.Properties {
			if p.IsComputed {
				c.scanPolicySite(p.Key, eventOnly)
			}
			c.scanPolicySite(p.Value, eventOnly)
		}
	case *ast.EArray:
		for _, item := range n.Items {
			c.scanPolicySite(item, eventOnly)
		}
	case *ast.ESpread:
		c.scanPolicySite(n.Value, eventOnly)
	case *ast.EBinary:
		c.scanPolicySite(n.Left, eventOnly)
		c.scanPolicySite(n.Right, eventOnly)
	case *ast.EUnary:
		c.scanPolicySite(n.Value, eventOnly)
	case *ast.EDot:
		c.scanPolicySite(n.Target, eventOnly)
	case *ast.EIndex:
		c.scanPolicySite(n.Target, eventOnly)
		c.scanPolicySite(n.Index, eventOnly)
	case *ast.ECall:
		if mk := c.macros.kindOf(refOf(n.Target)); mk == MacroEffect {
			c.scanPolicySite(n.Target, eventOnly)
			for _, a := range n.Args {
				// The effect body is a tracked context no matter how it is
				// spelled (spec §4.4): don't let the generic arrow-body
				// rule below mark it event-only.
				if arrow, ok := a.Data.(*ast.EArrow); ok {
					c.scanPolicyFnBody(arrow.Fn, false)
					continue
				}
				c.scanPolicySite(a, eventOnly)
			}
			return
		}
		c.scanPolicySite(n.Target, eventOnly)
		for _, a := range n.Args {
			c.scanPolicySite(a, eventOnly)
		}
	case *ast.ENew:
		c.scanPolicySite(n.Target, eventOnly)
		for _, a := range n.Args {
			c.scanPolicySite(a, eventOnly)
		}
	case *ast.ECond:
		c.scanPolicySite(n.Test, eventOnly)
		c.scanPolicySite(n.Yes, eventOnly)
		c.scanPolicySite(n.No, eventOnly)
	case *ast.EAwait:
		c.scanPolicySite(n.Value, eventOnly)
	case *ast.ETemplate:
		for _, part := range n.Parts {
			c.scanPolicySite(part.Value, eventOnly)
		}
	case *ast.EUntrack:
		// Explicit untrack: reads here are neither tracked nor counted as
		// event-only use; they simply don't participate in policy.
	case *ast.EArrow:
		c.scanPolicyFnBody(n.Fn, !looksLikeRenderCallback(n.Fn))
	case *ast.EFunction:
		c.scanPolicyFnBody(n.Fn, !looksLikeRenderCallback(n.Fn))
	case *ast.EJSXElement:
		for _, attr := range n.Attrs {
			if attr.ValueOrNil == nil || attr.Name == "key" {
				continue
			}
			isHandler := len(attr.Name) > 2 && attr.Name[:2] == "on"
			c.scanPolicySite(*attr.ValueOrNil, eventOnly || isHandler)
		}
		for _, child := range n.Children {
			c.scanPolicySite(child, eventOnly)
		}
	case *ast.EJSXExprContainer:
		c.scanPolicySite(n.Value, eventOnly)
	}
}

func (c *compilation) scanPolicyFnBody(fn ast.Fn, eventOnly bool) {
	c.scanPolicyStmts(fn.Body, eventOnly)
	if fn.ExprBody != nil {
		c.scanPolicySite(*fn.ExprBody, eventOnly)
	}
}

// looksLikeRenderCallback reuses the returnsJSX-style heuristic to guess
// whether an inline callback is a list/conditional render function (a
// tracked context) rather than an event handler or opaque user callback
// (an event-only context). See the package doc above this pass for the
// reasoning and spec §9's acknowledgement that this classification is
// inherently heuristic.
func looksLikeRenderCallback(fn ast.Fn) bool {
	if fn.ExprBody != nil {
		_, isJSX := fn.ExprBody.Data.(*ast.EJSXElement)
		return isJSX
	}
	found := false
	walkStmtsForReturn(fn.Body, func(ret *ast.SReturn) {
		if ret.ValueOrNil != nil {
			if _, isJSX := ret.ValueOrNil.Data.(*ast.EJSXElement); isJSX {
				found = true
			}
		}
	})
	return found
}

func refOf(e ast.Expr) ast.Ref {
	if id, ok := e.Data.(*ast.EIdentifier); ok {
		return id.Ref
	}
	return ast.InvalidRef
}
