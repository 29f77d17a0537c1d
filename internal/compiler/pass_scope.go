package compiler

import (
	"fmt"
	"strings"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
)

// runScopePass is step 2 of the pipeline (spec §2): it walks the program
// once, records every binding into c.bindings, classifies each one, and
// rejects illegal macro placements. It is the only pass that builds the
// Scope tree; every later pass works off the flat maps this one
// populates (c.bindings, c.componentRefs, c.hookRefs) because once a
// name has been resolved to an ast.Ref by the (external) parser, every
// later pass can look a binding up directly by Ref without ever walking
// scope chains again.
func (c *compilation) runScopePass() {
	for i := range c.program.Stmts {
		c.walkStmt(c.program.Stmts[i], c.moduleScope)
	}
}

func (c *compilation) walkStmts(stmts []ast.Stmt, scope *Scope) {
	for _, s := range stmts {
		c.walkStmt(s, scope)
	}
}

func (c *compilation) walkStmt(s ast.Stmt, scope *Scope) {
	switch n := s.Data.(type) {
	case *ast.SImport:
		c.processImport(n)

	case *ast.SLocal:
		for i := range n.Decls {
			c.processDecl(n.Kind, &n.Decls[i], scope, s.Loc)
		}

	case *ast.SExpr:
		c.checkMacroPlacementInStmtExpr(n.Value, scope, s.Loc)
		if call, ok := n.Value.Data.(*ast.ECall); ok && c.macroCallKind(call.Target, s.Loc) == MacroEffect {
			// A statement-position effect() is its legal form; only its
			// arguments are walked, since walkExpr rejects the call itself.
			for _, a := range call.Args {
				c.walkExpr(a, scope)
			}
		} else {
			c.walkExpr(n.Value, scope)
		}

	case *ast.SReturn:
		if n.ValueOrNil != nil {
			c.walkExpr(*n.ValueOrNil, scope)
		}

	case *ast.SBlock:
		inner := newScope(ScopeBlock, scope)
		c.walkStmts(n.Stmts, inner)

	case *ast.SIf:
		c.walkExpr(n.Test, scope)
		crosses := scope.FuncDepth > ownerFuncDepth(scope)
		thenBlock := c.newControlBlock(ControlBlockIf, scope.ControlBlock, &n.Test, crosses)
		thenScope := newScope(ScopeBlock, scope)
		thenScope.ControlBlock = thenBlock
		c.walkStmt(n.Yes, thenScope)
		if n.NoOrNil != nil {
			elseBlock := c.newControlBlock(ControlBlockElse, scope.ControlBlock, &n.Test, crosses)
			elseScope := newScope(ScopeBlock, scope)
			elseScope.ControlBlock = elseBlock
			c.walkStmt(*n.NoOrNil, elseScope)
		}

	case *ast.SSwitch:
		c.walkExpr(n.Test, scope)
		crosses := scope.FuncDepth > ownerFuncDepth(scope)
		for ci := range n.Cases {
			caseBlock := c.newControlBlock(ControlBlockSwitchCase, scope.ControlBlock, &n.Test, crosses)
			caseScope := newScope(ScopeBlock, scope)
			caseScope.ControlBlock = caseBlock
			if n.Cases[ci].ValueOrNil != nil {
				c.walkExpr(*n.Cases[ci].ValueOrNil, scope)
			}
			c.walkStmts(n.Cases[ci].Body, caseScope)
		}

	case *ast.SFor:
		loopBlock := c.newControlBlock(ControlBlockLoop, scope.ControlBlock, nil, scope.FuncDepth > ownerFuncDepth(scope))
		loopScope := newScope(ScopeBlock, scope)
		loopScope.ControlBlock = loopBlock
		if n.InitOrNil != nil {
			c.walkStmt(*n.InitOrNil, loopScope)
		}
		if n.TestOrNil != nil {
			c.walkExpr(*n.TestOrNil, loopScope)
		}
		if n.UpdateOrNil != nil {
			c.walkExpr(*n.UpdateOrNil, loopScope)
		}
		c.walkStmt(n.Body, loopScope)

	case *ast.SWhile:
		loopBlock := c.newControlBlock(ControlBlockLoop, scope.ControlBlock, &n.Test, scope.FuncDepth > ownerFuncDepth(scope))
		loopScope := newScope(ScopeBlock, scope)
		loopScope.ControlBlock = loopBlock
		c.walkExpr(n.Test, scope)
		c.walkStmt(n.Body, loopScope)

	case *ast.SFunction:
		c.declareFunctionLike(&n.Fn, &n.Name, scope, s.Loc)
	}
}

// ownerFuncDepth returns the FuncDepth of the nearest enclosing
// component/hook body, or 0 at true module scope. A control block whose
// FuncDepth is greater than this is nested inside a callback rather than
// directly in the component/hook body, which is exactly the condition
// spec §4.3 uses to decide a condition must stay inline instead of being
// hoisted.
func ownerFuncDepth(s *Scope) int {
	if comp := s.nearestComponentOrHook(); comp != nil {
		return comp.FuncDepth
	}
	return 0
}

func (c *compilation) processImport(n *ast.SImport) {
	for _, item := range n.Items {
		if item.ImportedName != "" {
			// Only imports from the designated macro module count,
			// matching spec §4.1: "Macro intrinsics must be imported
			// from the dedicated module."
			if n.Path == c.macros.module {
				if mk := recognizeImportName(item.ImportedName); mk != MacroNone {
					c.macros.kindByRef[item.Ref] = mk
					if mk == MacroUntrack {
						c.macros.untrackRef = item.Ref
					}
					continue
				}
			}
		}
		c.moduleScope.declare(&Binding{Name: item.Alias, Ref: item.Ref, Kind: BindPlain, OwnerScope: c.moduleScope})
	}
}

// declareFunctionLike processes one function/arrow body: it creates its
// scope, classifies it as a component/hook/plain function (spec §4.8,
// §9 open question), declares its parameters, and recurses into its
// body. nameRef is nil for an anonymous function literal (an inline
// event handler or list-rendering callback).
func (c *compilation) declareFunctionLike(fn *ast.Fn, nameRef *ast.Ref, parent *Scope, loc logger.Loc) *Scope {
	fscope := newScope(ScopeFunctionBody, parent)
	fscope.FuncDepth = parent.FuncDepth + 1

	name := ""
	if nameRef != nil {
		name = c.program.Symbols.Get(*nameRef).OriginalName
	}

	isHookName := strings.HasPrefix(name, "use") && name != "use"
	isHook := isHookName && containsMacroCallShallow(fn.Body, fn.ExprBody, c.macros)
	isComponent := returnsJSX(*fn, c.componentRefs)
	fscope.IsComponentOrHook = isHook || isComponent
	fscope.ComponentName = name

	if fscope.IsComponentOrHook {
		counter := 0
		fscope.SlotCounter = &counter
		c.componentFns = append(c.componentFns, fn)
	}

	if isComponent && nameRef != nil {
		c.componentRefs[*nameRef] = true
		if parent.nearestComponentOrHook() != nil {
			c.emitWarning(logger.MsgID_NestedComponent, loc,
				fmt.Sprintf("component %q is declared inside another component's body", name))
		}
	}
	if isHook && nameRef != nil {
		c.hookRefs[*nameRef] = true
		if parent.FuncDepth > 0 && parent.nearestComponentOrHook() == nil {
			bail(c.source, loc, fmt.Sprintf("hook %q must be declared at module scope and called from a component or hook", name))
		}
	}

	for i := range fn.Args {
		c.declareParam(&fn.Args[i], fscope)
	}

	c.walkStmts(fn.Body, fscope)
	if fn.ExprBody != nil {
		c.walkExpr(*fn.ExprBody, fscope)
	}

	return fscope
}

func (c *compilation) declareParam(arg *ast.Arg, fscope *Scope) {
	kind := BindPlain
	if fscope.IsComponentOrHook {
		kind = BindProp
	}
	c.declareBindingPattern(arg.Binding, fscope, kind, fscope.IsComponentOrHook)
}

// declareBindingPattern recursively declares every name introduced by a
// (possibly nested) destructuring pattern, per spec §4.8 item 4 ("nested
// patterns recursed"). kind applies to every name the pattern declares,
// at any depth. A rest element becomes prop-rest only at the outermost
// level of a prop pattern (isPropPattern), since propsRest() only makes
// sense on a component's own parameter object; a nested rest is plain.
func (c *compilation) declareBindingPattern(b ast.Binding, scope *Scope, kind BindingKind, isPropPattern bool) {
	switch n := b.Data.(type) {
	case *ast.BIdentifier:
		bind := &Binding{Name: c.program.Symbols.Get(n.Ref).OriginalName, Ref: n.Ref, Kind: kind, OwnerScope: scope, DeclaredAt: b.Loc, SlotIndex: -1}
		scope.declare(bind)
		c.bindings.set(n.Ref, bind)
	case *ast.BObject:
		for _, p := range n.Properties {
			childKind := kind
			c.declareBindingPattern(p.Value, scope, childKind, false)
		}
		if n.RestRef != nil {
			restKind := BindPlain
			if isPropPattern {
				restKind = BindPropRest
			}
			bind := &Binding{Name: c.program.Symbols.Get(*n.RestRef).OriginalName, Ref: *n.RestRef, Kind: restKind, OwnerScope: scope, DeclaredAt: b.Loc, SlotIndex: -1}
			scope.declare(bind)
			c.bindings.set(*n.RestRef, bind)
		}
	case *ast.BArray:
		for _, item := range n.Items {
			c.declareBindingPattern(item.Value, scope, kind, false)
		}
		if n.RestRef != nil {
			restKind := BindPlain
			if isPropPattern {
				restKind = BindPropRest
			}
			bind := &Binding{Name: c.program.Symbols.Get(*n.RestRef).OriginalName, Ref: *n.RestRef, Kind: restKind, OwnerScope: scope, DeclaredAt: b.Loc, SlotIndex: -1}
			scope.declare(bind)
			c.bindings.set(*n.RestRef, bind)
		}
	}
}

// containsMacroCallShallow reports whether fn's own body (not crossing
// into a nested function) calls any macro, used to decide whether a
// `use`-prefixed function is a hook (spec §4.8: "recognized by name
// prefix `use` plus at least one macro call in their body").
func containsMacroCallShallow(body []ast.Stmt, exprBody *ast.Expr, macros *macroTable) bool {
	found := false
	var visit exprVisitor = func(e ast.Expr, _ bool) {
		if call, ok := e.Data.(*ast.ECall); ok {
			if id, ok := ast.IsIdentifier(call.Target); ok && macros.isMacro(id) {
				found = true
			}
		}
	}
	if exprBody != nil {
		forEachExprInExpr(*exprBody, false, visit)
	}
	for _, s := range body {
		forEachExprInStmtShallow(s, visit)
		if found {
			break
		}
	}
	return found
}

// forEachExprInStmtShallow is forEachExprInStmt restricted to the
// statement's own function: it does not recurse into nested
// SFunction/EArrow/EFunction bodies.
func forEachExprInStmtShallow(s ast.Stmt, visit exprVisitor) {
	switch n := s.Data.(type) {
	case *ast.SExpr:
		forEachExprShallow(n.Value, visit)
	case *ast.SLocal:
		for _, d := range n.Decls {
			if d.ValueOrNil != nil {
				forEachExprShallow(*d.ValueOrNil, visit)
			}
		}
	case *ast.SReturn:
		if n.ValueOrNil != nil {
			forEachExprShallow(*n.ValueOrNil, visit)
		}
	case *ast.SBlock:
		for _, s2 := range n.Stmts {
			forEachExprInStmtShallow(s2, visit)
		}
	case *ast.SIf:
		forEachExprShallow(n.Test, visit)
		forEachExprInStmtShallow(n.Yes, visit)
		if n.NoOrNil != nil {
			forEachExprInStmtShallow(*n.NoOrNil, visit)
		}
	}
}

func forEachExprShallow(e ast.Expr, visit exprVisitor) {
	visit(e, false)
	switch n := e.Data.(type) {
	case *ast.EBinary:
		forEachExprShallow(n.Left, visit)
		forEachExprShallow(n.Right, visit)
	case *ast.ECall:
		forEachExprShallow(n.Target, visit)
		for _, a := range n.Args {
			forEachExprShallow(a, visit)
		}
	case *ast.ECond:
		forEachExprShallow(n.Test, visit)
		forEachExprShallow(n.Yes, visit)
		forEachExprShallow(n.No, visit)
	}
}
