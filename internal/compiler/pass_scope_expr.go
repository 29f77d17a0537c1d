package compiler

import (
	"fmt"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
)

// walkExpr is the general recursive expression walker for the scope pass.
// It recurses into every nested function literal (declaring its scope and
// parameters), rejects macro calls used somewhere other than their one
// legal position, and rejects reassignment of a binding whose kind makes
// it read-only (spec §4.1, §4.5).
func (c *compilation) walkExpr(e ast.Expr, scope *Scope) {
	if e.Data == nil {
		return
	}
	switch n := e.Data.(type) {
	case *ast.EIdentifier, *ast.ENumber, *ast.EString, *ast.EBoolean, *ast.ENull, *ast.EUndefined, *ast.EThis:
		// leaves

	case *ast.EObject:
		for _, p := range n.Properties {
			if p.IsComputed {
				c.walkExpr(p.Key, scope)
			}
			c.walkExpr(p.Value, scope)
		}

	case *ast.EArray:
		for _, item := range n.Items {
			c.walkExpr(item, scope)
		}

	case *ast.ESpread:
		c.walkExpr(n.Value, scope)

	case *ast.EBinary:
		if n.Op.IsAssign() {
			c.checkAssignTarget(n.Left, e.Loc, scope)
			c.checkMemberMutation(n.Left, e.Loc)
			c.recordLetReassign(n, scope)
		}
		c.walkExpr(n.Left, scope)
		c.walkExpr(n.Right, scope)

	case *ast.EUnary:
		if n.Op.IsUpdate() {
			c.checkAssignTarget(n.Value, e.Loc, scope)
		}
		c.walkExpr(n.Value, scope)

	case *ast.EDot:
		c.walkExpr(n.Target, scope)

	case *ast.EIndex:
		c.checkDynamicRead(n, e.Loc)
		c.walkExpr(n.Target, scope)
		c.walkExpr(n.Index, scope)

	case *ast.ECall:
		switch c.macroCallKind(n.Target, e.Loc) {
		case MacroState:
			bail(c.source, e.Loc, "state() may only initialize a top-level variable declaration inside a component or hook")
		case MacroMemo:
			bail(c.source, e.Loc, "memo() may only initialize a variable declaration")
		case MacroStore:
			bail(c.source, e.Loc, "store() may only initialize a variable declaration")
		case MacroEffect:
			bail(c.source, e.Loc, "effect()'s return value cannot be used; call it as its own statement")
		default:
			c.walkExpr(n.Target, scope)
			for _, a := range n.Args {
				c.walkExpr(a, scope)
			}
		}

	case *ast.ENew:
		c.walkExpr(n.Target, scope)
		for _, a := range n.Args {
			c.walkExpr(a, scope)
		}

	case *ast.ECond:
		c.walkExpr(n.Test, scope)
		c.walkExpr(n.Yes, scope)
		c.walkExpr(n.No, scope)

	case *ast.EAwait:
		c.walkExpr(n.Value, scope)

	case *ast.ETemplate:
		for _, part := range n.Parts {
			c.walkExpr(part.Value, scope)
		}

	case *ast.EUntrack:
		c.walkExpr(n.Value, scope)

	case *ast.EArrow:
		c.declareFunctionLike(&n.Fn, nil, scope, e.Loc)

	case *ast.EFunction:
		c.declareFunctionLike(&n.Fn, n.Name, scope, e.Loc)

	case *ast.EJSXElement:
		for _, attr := range n.Attrs {
			if attr.ValueOrNil != nil {
				c.walkExpr(*attr.ValueOrNil, scope)
			}
		}
		if n.KeyOrNil != nil {
			c.walkExpr(*n.KeyOrNil, scope)
		}
		for _, child := range n.Children {
			c.walkExpr(child, scope)
		}

	case *ast.EJSXExprContainer:
		c.walkExpr(n.Value, scope)

	case *ast.EJSXText:
		// leaf
	}
}

// checkAssignTarget rejects writes to a binding that spec §4.5 makes
// read-only: a derived value (memo/getter), an alias, or a destructured
// field pulled off a store/state object. Plain `state` bindings are not
// rejected: assigning to one is legal source, and the lowering pass turns
// it into a setter call (`x = e` -> `x(e')`).
//
// The snapshot-reassignment warning only fires outside any control
// block: a conditional write is also the exact shape
// finalizeConditionalLetRegions (pass_region_conditional.go) looks for
// to promote the binding into a real derivation instead, in which case
// there is nothing to warn about. A conditional write that doesn't end
// up matching that shape (inside a loop, a switch case, two unrelated
// if-statements) silently keeps today's behavior -- it stays a plain
// snapshot and this one warning category just doesn't cover it.
func (c *compilation) checkAssignTarget(target ast.Expr, loc logger.Loc, scope *Scope) {
	ref, ok := ast.IsIdentifier(target)
	if !ok {
		return
	}
	b := c.bindings.get(ref)
	if b == nil {
		return
	}
	switch {
	case b.Kind.IsDerived():
		bail(c.source, loc, fmt.Sprintf("%q is derived and cannot be reassigned", b.Name))
	case b.Kind == BindAlias:
		bail(c.source, loc, fmt.Sprintf("%q is an alias and cannot be reassigned", b.Name))
	case b.Kind == BindDestructuredStateAlias:
		bail(c.source, loc, fmt.Sprintf("%q was destructured from reactive state and cannot be reassigned directly", b.Name))
	case b.Kind == BindProp || b.Kind == BindPropRest:
		bail(c.source, loc, fmt.Sprintf("prop %q cannot be reassigned", b.Name))
	case b.Kind == BindPlain && b.IsReactiveSnapshot && scope.ControlBlock == nil:
		c.emitWarning(logger.MsgID_AliasReassignment, loc,
			fmt.Sprintf("%q captured a reactive value when declared; reassigning it here no longer tracks anything", b.Name))
	}
}

// recordLetReassign gathers the raw material finalizeConditionalLetRegions
// (pass_region_conditional.go) needs to recognize a `let` that is only ever
// reassigned inside one if/else pair (spec §4.3, "pending region outputs").
// It only records candidates here; nothing is reclassified until the whole
// scope pass has finished walking the binding's lifetime, since an earlier
// conditional write and a later disqualifying one can appear in either
// order in source.
func (c *compilation) recordLetReassign(n *ast.EBinary, scope *Scope) {
	ref, ok := ast.IsIdentifier(n.Left)
	if !ok {
		return
	}
	b := c.bindings.get(ref)
	if b == nil || b.Kind != BindPlain {
		return
	}
	if n.Op != ast.BinOpAssign || scope.ControlBlock == nil {
		b.DisqualifiesLetRegion = true
		return
	}
	b.AssignBlocks = append(b.AssignBlocks, scope.ControlBlock)
	b.AssignValues = append(b.AssignValues, n.Right)
	b.AssignNodes = append(b.AssignNodes, n)
}

// checkDynamicRead flags a computed-key *read* off a reactive base (spec
// §6: dynamic-property-access). The write-site sibling check lives in
// checkMemberMutation.
func (c *compilation) checkDynamicRead(n *ast.EIndex, loc logger.Loc) {
	ref, ok := ast.IsIdentifier(n.Target)
	if !ok {
		return
	}
	b := c.bindings.get(ref)
	if b == nil || (b.Kind != BindState && b.Kind != BindStore) {
		return
	}
	switch n.Index.Data.(type) {
	case *ast.EString, *ast.ENumber:
		return
	}
	c.emitWarning(logger.MsgID_DynamicPropertyAccess, loc,
		fmt.Sprintf("computed property read on %q cannot be statically analyzed", b.Name))
}

// checkMemberMutation flags writes that reach through a property access
// whose base resolves to reactive state or a store (spec §6:
// direct-nested-mutation, dynamic-property-access). Writes to the
// binding itself are handled by checkAssignTarget; this only concerns
// `target.prop = ...` / `target[computed] = ...` forms.
func (c *compilation) checkMemberMutation(target ast.Expr, loc logger.Loc) {
	var base ast.Expr
	var computed ast.Expr
	switch n := target.Data.(type) {
	case *ast.EDot:
		base = n.Target
	case *ast.EIndex:
		base = n.Target
		computed = n.Index
	default:
		return
	}
	ref, ok := ast.IsIdentifier(base)
	if !ok {
		return
	}
	b := c.bindings.get(ref)
	if b == nil || (b.Kind != BindState && b.Kind != BindStore) {
		return
	}
	if computed.Data != nil {
		if _, isLiteral := computed.Data.(*ast.EString); !isLiteral {
			if _, isNum := computed.Data.(*ast.ENumber); !isNum {
				c.emitWarning(logger.MsgID_DynamicPropertyAccess, loc,
					fmt.Sprintf("computed property write on %q cannot be statically analyzed", b.Name))
				return
			}
		}
	}
	c.emitWarning(logger.MsgID_DirectNestedMutation, loc,
		fmt.Sprintf("mutating a property of %q directly bypasses its setter; reactivity will not see this write", b.Name))
}
