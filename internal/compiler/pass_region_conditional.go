package compiler

import (
	"sort"

	"github.com/fictjs/fictc/internal/ast"
)

// finalizeConditionalLetRegions is the second half of step 2 (spec §4.3,
// "pending region outputs"): a `let` whose only writes are the two arms
// of a single if/else statement is folded into a derivation with a
// synthesized `test ? ifValue : elseValue` initializer, so it flows
// through the same dependency/region/policy/lowering machinery a `const`
// derivation already does from here on -- including joining a Region
// with a sibling derivation declared directly in the same if-block
// (pass_region.go groups by exact DeclBlock identity, and this function
// hands a promoted let the same if-block pointer a const sitting in that
// arm would get).
//
// Anything less regular is left a plain local exactly as before:
// reassigned unconditionally anywhere in its lifetime, reassigned with a
// compound operator, reassigned across more than one if-statement, or
// reassigned inside a loop or switch arm. recordLetReassign
// (pass_scope_expr.go) already recorded why in each such case, so this
// function only has to check the recorded shape, never re-walk the tree.
func (c *compilation) finalizeConditionalLetRegions() {
	refs := make([]*Binding, 0, c.bindings.len())
	c.bindings.each(func(_ ast.Ref, b *Binding) {
		if b.Kind == BindPlain && len(b.AssignBlocks) > 0 {
			refs = append(refs, b)
		}
	})
	sort.Slice(refs, func(i, j int) bool { return refs[i].DeclaredAt.Start < refs[j].DeclaredAt.Start })

	for _, b := range refs {
		if b.DisqualifiesLetRegion {
			continue
		}
		shape, ok := conditionalLetShape(b)
		if !ok {
			continue
		}
		c.promoteConditionalLet(b, shape)
	}
}

// conditionalLetShapeInfo describes the one supported pattern: a `let`
// written in the arm(s) of exactly one if-statement.
type conditionalLetShapeInfo struct {
	ifBlock, elseBlock *ControlBlock
	ifVal, elseVal     ast.Expr
	hasIf, hasElse      bool
}

// conditionalLetShape reduces b's recorded AssignBlocks/AssignValues down
// to the supported if/else shape, or reports ok=false for anything else
// (a loop, a switch case, two unrelated if-statements, ...). When a block
// was written more than once, the last recorded write wins, matching
// ordinary sequential execution of the arm.
func conditionalLetShape(b *Binding) (conditionalLetShapeInfo, bool) {
	order := make([]*ControlBlock, 0, 2)
	valueFor := map[*ControlBlock]ast.Expr{}
	for i, block := range b.AssignBlocks {
		if _, seen := valueFor[block]; !seen {
			order = append(order, block)
		}
		valueFor[block] = b.AssignValues[i]
	}
	if len(order) == 0 || len(order) > 2 {
		return conditionalLetShapeInfo{}, false
	}
	for _, block := range order {
		if block.Kind != ControlBlockIf && block.Kind != ControlBlockElse {
			return conditionalLetShapeInfo{}, false
		}
	}
	if len(order) == 2 {
		a, c2 := order[0], order[1]
		if a.Kind == c2.Kind || a.ConditionExpr != c2.ConditionExpr || a.Parent != c2.Parent {
			return conditionalLetShapeInfo{}, false
		}
	}

	var info conditionalLetShapeInfo
	for _, block := range order {
		if block.Kind == ControlBlockIf {
			info.ifBlock, info.ifVal, info.hasIf = block, valueFor[block], true
		} else {
			info.elseBlock, info.elseVal, info.hasElse = block, valueFor[block], true
		}
	}
	return info, true
}

// promoteConditionalLet reclassifies b in place, the same way
// handleExplicitMemoDecl/declareDerived classify a `const` derivation,
// except the initializer is synthesized here instead of lifted straight
// from a single declaration site.
func (c *compilation) promoteConditionalLet(b *Binding, shape conditionalLetShapeInfo) {
	condBlock := shape.ifBlock
	if condBlock == nil {
		condBlock = shape.elseBlock
	}

	fallback := func() ast.Expr {
		if b.DeclInitExpr != nil {
			return cloneExpr(*b.DeclInitExpr)
		}
		return ast.Expr{Loc: b.DeclaredAt, Data: &ast.EUndefined{}}
	}
	ifVal, elseVal := shape.ifVal, shape.elseVal
	if !shape.hasIf {
		ifVal = fallback()
	}
	if !shape.hasElse {
		elseVal = fallback()
	}

	// The if-statement's own Test node is still lowered in place when the
	// if-statement itself is lowered (it stays in the tree, now with
	// empty arms once its reassignment statements are dropped below); a
	// clone keeps that in-place rewrite from running a second time over
	// the copy embedded in InitExpr.
	cond := cloneExpr(*condBlock.ConditionExpr)
	synthesized := ast.Expr{Loc: b.DeclaredAt, Data: &ast.ECond{Test: cond, Yes: ifVal, No: elseVal}}

	reads := map[ast.Ref]bool{}
	collectReads(synthesized, false, reads)

	b.Kind = BindDerivedPending
	b.InitExpr = &synthesized
	b.DeclBlock = condBlock
	b.Deps = c.filterReactive(reads)

	for _, node := range b.AssignNodes {
		c.droppedAssigns[node] = true
	}
}

// cloneExpr deep-copies an expression tree. It exists only so a
// condition that is embedded both in its original if-statement and in a
// promoteConditionalLet-synthesized initializer gets lowered exactly
// once per copy -- lower_expr.go mutates several node shapes in place,
// which is only safe when each live Expr in the tree owns its own nodes.
// Node kinds that can't meaningfully appear in a boolean condition (JSX,
// function literals) are returned unchanged rather than cloned.
func cloneExpr(e ast.Expr) ast.Expr {
	if e.Data == nil {
		return e
	}
	switch n := e.Data.(type) {
	case *ast.EIdentifier:
		return ast.Expr{Loc: e.Loc, Data: &ast.EIdentifier{Ref: n.Ref}}
	case *ast.ENumber:
		return ast.Expr{Loc: e.Loc, Data: &ast.ENumber{Value: n.Value}}
	case *ast.EString:
		return ast.Expr{Loc: e.Loc, Data: &ast.EString{Value: n.Value}}
	case *ast.EBoolean:
		return ast.Expr{Loc: e.Loc, Data: &ast.EBoolean{Value: n.Value}}
	case *ast.ENull, *ast.EUndefined, *ast.EThis:
		return e
	case *ast.EObject:
		props := make([]ast.Property, len(n.Properties))
		for i, p := range n.Properties {
			props[i] = p
			if p.IsComputed {
				props[i].Key = cloneExpr(p.Key)
			}
			props[i].Value = cloneExpr(p.Value)
		}
		return ast.Expr{Loc: e.Loc, Data: &ast.EObject{Properties: props}}
	case *ast.EArray:
		items := make([]ast.Expr, len(n.Items))
		for i, item := range n.Items {
			items[i] = cloneExpr(item)
		}
		return ast.Expr{Loc: e.Loc, Data: &ast.EArray{Items: items}}
	case *ast.ESpread:
		return ast.Expr{Loc: e.Loc, Data: &ast.ESpread{Value: cloneExpr(n.Value)}}
	case *ast.EBinary:
		return ast.Expr{Loc: e.Loc, Data: &ast.EBinary{Op: n.Op, Left: cloneExpr(n.Left), Right: cloneExpr(n.Right)}}
	case *ast.EUnary:
		return ast.Expr{Loc: e.Loc, Data: &ast.EUnary{Op: n.Op, Value: cloneExpr(n.Value)}}
	case *ast.EDot:
		return ast.Expr{Loc: e.Loc, Data: &ast.EDot{Target: cloneExpr(n.Target), Name: n.Name, NameLoc: n.NameLoc, OptionalChain: n.OptionalChain}}
	case *ast.EIndex:
		return ast.Expr{Loc: e.Loc, Data: &ast.EIndex{Target: cloneExpr(n.Target), Index: cloneExpr(n.Index), OptionalChain: n.OptionalChain}}
	case *ast.ECall:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = cloneExpr(a)
		}
		return ast.Expr{Loc: e.Loc, Data: &ast.ECall{Target: cloneExpr(n.Target), Args: args, OptionalChain: n.OptionalChain}}
	case *ast.ENew:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = cloneExpr(a)
		}
		return ast.Expr{Loc: e.Loc, Data: &ast.ENew{Target: cloneExpr(n.Target), Args: args}}
	case *ast.ECond:
		return ast.Expr{Loc: e.Loc, Data: &ast.ECond{Test: cloneExpr(n.Test), Yes: cloneExpr(n.Yes), No: cloneExpr(n.No)}}
	case *ast.EAwait:
		return ast.Expr{Loc: e.Loc, Data: &ast.EAwait{Value: cloneExpr(n.Value)}}
	case *ast.ETemplate:
		parts := make([]ast.TemplatePart, len(n.Parts))
		for i, p := range n.Parts {
			parts[i] = p
			parts[i].Value = cloneExpr(p.Value)
		}
		return ast.Expr{Loc: e.Loc, Data: &ast.ETemplate{HeadRaw: n.HeadRaw, Parts: parts}}
	case *ast.EUntrack:
		return ast.Expr{Loc: e.Loc, Data: &ast.EUntrack{Value: cloneExpr(n.Value)}}
	default:
		return e
	}
}
