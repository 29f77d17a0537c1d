package compiler

import (
	"fmt"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
)

var macroNames = map[string]bool{"state": true, "effect": true, "memo": true, "store": true, "untrack": true}

// macroCallKind returns the MacroKind of a call expression's target, and
// bails with a hard error if the callee is textually one of the macro
// names but was never imported from the macro module (spec §4.1: "Using
// them without an import is a hard error").
func (c *compilation) macroCallKind(target ast.Expr, loc logger.Loc) MacroKind {
	id, ok := ast.IsIdentifier(target)
	if !ok {
		return MacroNone
	}
	if mk := c.macros.kindOf(id); mk != MacroNone {
		return mk
	}
	name := c.program.Symbols.Get(id).OriginalName
	if macroNames[name] {
		bail(c.source, loc, fmt.Sprintf("%q must be imported from %q to be used as a macro", name, c.macros.module))
	}
	return MacroNone
}

// checkMacroPlacementInStmtExpr handles the statement-position form that
// carries its own placement rules: a bare `effect(...)` call.
func (c *compilation) checkMacroPlacementInStmtExpr(e ast.Expr, scope *Scope, loc logger.Loc) {
	call, ok := e.Data.(*ast.ECall)
	if !ok {
		return
	}
	switch c.macroCallKind(call.Target, loc) {
	case MacroEffect:
		c.validateTopLevelPlacement(scope, loc, "effect")
	}
}

// validateTopLevelPlacement enforces the placement rules shared by
// `state` and `effect` (spec §4.1): must be inside a component or hook
// body, not inside a loop/conditional, and not inside a nested function.
func (c *compilation) validateTopLevelPlacement(scope *Scope, loc logger.Loc, what string) *Scope {
	funcScope := scope.nearestComponentOrHook()
	if funcScope == nil {
		bail(c.source, loc, fmt.Sprintf("%s() must be declared inside a component or hook body, not at module scope", what))
	}
	if scope.ControlBlock != nil {
		bail(c.source, loc, fmt.Sprintf("%s() cannot be declared inside loops or conditionals", what))
	}
	if scope.FuncDepth != funcScope.FuncDepth {
		bail(c.source, loc, fmt.Sprintf("%s() cannot be declared inside a nested function", what))
	}
	return funcScope
}

func (c *compilation) processDecl(kind ast.LocalKind, decl *ast.Decl, scope *Scope, loc logger.Loc) {
	if decl.ValueOrNil == nil {
		c.declarePlainPattern(decl.Binding, scope)
		return
	}
	value := *decl.ValueOrNil

	if call, ok := value.Data.(*ast.ECall); ok {
		switch c.macroCallKind(call.Target, loc) {
		case MacroState:
			c.handleStateDecl(decl, scope, loc)
			return
		case MacroMemo:
			c.handleExplicitMemoDecl(decl, call, scope, loc)
			return
		case MacroStore:
			c.handleStoreDecl(decl, scope, loc)
			return
		}
	}

	if kind == ast.LocalConst {
		if rhsRef, ok := ast.IsIdentifier(value); ok {
			if rhsBinding := c.bindings.get(rhsRef); rhsBinding != nil && rhsBinding.Kind.IsReactive() {
				if _, isIdentPattern := decl.Binding.Data.(*ast.BIdentifier); isIdentPattern {
					c.declareAlias(decl, rhsBinding, scope, loc)
					return
				}
				c.declareDestructuredStateAliases(decl, rhsBinding, scope, loc)
				return
			}
			if rhsBinding := c.bindings.get(rhsRef); rhsBinding != nil && rhsBinding.Kind == BindStore {
				c.declareDestructuredStateAliases(decl, rhsBinding, scope, loc)
				return
			}
		}

		reads := map[ast.Ref]bool{}
		collectReads(value, false, reads)
		reactive := c.filterReactive(reads)
		if len(reactive) > 0 {
			c.declareDerived(decl, reactive, scope, loc, &value)
			c.walkExpr(value, scope)
			return
		}
	}

	c.declarePlainPattern(decl.Binding, scope)
	c.walkExpr(value, scope)

	if kind == ast.LocalLet {
		if ident, ok := decl.Binding.Data.(*ast.BIdentifier); ok {
			if b := c.bindings.get(ident.Ref); b != nil {
				b.DeclInitExpr = &value
			}
			reads := map[ast.Ref]bool{}
			collectReads(value, false, reads)
			if len(c.filterReactive(reads)) > 0 {
				if b := c.bindings.get(ident.Ref); b != nil {
					b.IsReactiveSnapshot = true
				}
			}
		}
	}
}

func (c *compilation) filterReactive(reads map[ast.Ref]bool) map[ast.Ref]bool {
	out := map[ast.Ref]bool{}
	for ref := range reads {
		if b := c.bindings.get(ref); b != nil && (b.Kind == BindState || b.Kind.IsDerived() || b.Kind == BindAlias || b.Kind == BindDestructuredStateAlias) {
			out[ref] = true
		}
	}
	return out
}

func (c *compilation) declarePlainPattern(b ast.Binding, scope *Scope) {
	c.declareBindingPattern(b, scope, BindPlain, false)
}

func (c *compilation) handleStateDecl(decl *ast.Decl, scope *Scope, loc logger.Loc) {
	ident, ok := decl.Binding.Data.(*ast.BIdentifier)
	if !ok {
		bail(c.source, loc, "state() must be bound to a single identifier; destructuring its result is not allowed")
	}
	funcScope := c.validateTopLevelPlacement(scope, loc, "state")

	slot := *funcScope.SlotCounter
	*funcScope.SlotCounter++

	name := c.program.Symbols.Get(ident.Ref).OriginalName
	b := &Binding{
		Name: name, Ref: ident.Ref, Kind: BindState, OwnerScope: funcScope,
		DeclaredAt: loc, SlotIndex: slot,
	}
	scope.declare(b)
	c.bindings.set(ident.Ref, b)
}

func (c *compilation) handleExplicitMemoDecl(decl *ast.Decl, call *ast.ECall, scope *Scope, loc logger.Loc) {
	ident, ok := decl.Binding.Data.(*ast.BIdentifier)
	if !ok {
		bail(c.source, loc, "memo() must be bound to a single identifier")
	}
	reads := map[ast.Ref]bool{}
	var initExpr *ast.Expr
	if len(call.Args) > 0 {
		collectReads(call.Args[0], false, reads)
		initExpr = &call.Args[0]
	}
	if scope.ControlBlock != nil {
		c.emitWarning(logger.MsgID_ReactivePrimitiveInNonJSXControlFlow, loc, fmt.Sprintf("memo %q is declared inside a conditional or loop", c.program.Symbols.Get(ident.Ref).OriginalName))
	}
	b := &Binding{
		Name: c.program.Symbols.Get(ident.Ref).OriginalName, Ref: ident.Ref, Kind: BindDerivedMemo,
		OwnerScope: scope, DeclaredAt: loc, Deps: c.filterReactive(reads), DeclBlock: scope.ControlBlock,
		SlotIndex: -1, InitExpr: initExpr,
	}
	scope.declare(b)
	c.bindings.set(ident.Ref, b)
	if len(call.Args) > 0 {
		c.walkExpr(call.Args[0], scope)
	}
}

func (c *compilation) handleStoreDecl(decl *ast.Decl, scope *Scope, loc logger.Loc) {
	ident, ok := decl.Binding.Data.(*ast.BIdentifier)
	if !ok {
		bail(c.source, loc, "store() must be bound to a single identifier")
	}
	if scope.nearestComponentOrHook() == nil {
		c.emitWarning(logger.MsgID_ModuleLevelState, loc, fmt.Sprintf("store %q is created at module scope", c.program.Symbols.Get(ident.Ref).OriginalName))
	}
	if scope.ControlBlock != nil {
		c.emitWarning(logger.MsgID_ReactivePrimitiveInNonJSXControlFlow, loc, fmt.Sprintf("store %q is declared inside a conditional or loop", c.program.Symbols.Get(ident.Ref).OriginalName))
	}
	b := &Binding{
		Name: c.program.Symbols.Get(ident.Ref).OriginalName, Ref: ident.Ref, Kind: BindStore,
		OwnerScope: scope, DeclaredAt: loc, SlotIndex: -1,
	}
	scope.declare(b)
	c.bindings.set(ident.Ref, b)
}

func (c *compilation) declareAlias(decl *ast.Decl, rhs *Binding, scope *Scope, loc logger.Loc) {
	ident := decl.Binding.Data.(*ast.BIdentifier)
	b := &Binding{
		Name: c.program.Symbols.Get(ident.Ref).OriginalName, Ref: ident.Ref, Kind: BindAlias,
		AliasOf: rhs.Ref, OwnerScope: scope, DeclaredAt: loc, SlotIndex: -1,
	}
	scope.declare(b)
	c.bindings.set(ident.Ref, b)
}

// declareDestructuredStateAliases handles `const { a, b: c } = store` (or
// any reactive object-valued binding): every extracted name becomes a
// read-only destructured-state-alias whose live value is read off the
// source object each time, never cached at declaration (spec §4.5).
func (c *compilation) declareDestructuredStateAliases(decl *ast.Decl, rhs *Binding, scope *Scope, loc logger.Loc) {
	switch pat := decl.Binding.Data.(type) {
	case *ast.BObject:
		for _, p := range pat.Properties {
			ident, ok := p.Value.Data.(*ast.BIdentifier)
			if !ok {
				c.declareBindingPattern(p.Value, scope, BindPlain, false)
				continue
			}
			b := &Binding{
				Name: c.program.Symbols.Get(ident.Ref).OriginalName, Ref: ident.Ref, Kind: BindDestructuredStateAlias,
				AliasOf: rhs.Ref, AliasField: p.KeyName, OwnerScope: scope, DeclaredAt: loc, SlotIndex: -1,
			}
			scope.declare(b)
			c.bindings.set(ident.Ref, b)
		}
		if pat.RestRef != nil {
			b := &Binding{Name: c.program.Symbols.Get(*pat.RestRef).OriginalName, Ref: *pat.RestRef, Kind: BindPlain, OwnerScope: scope, DeclaredAt: loc, SlotIndex: -1}
			scope.declare(b)
			c.bindings.set(*pat.RestRef, b)
		}
	case *ast.BArray:
		for i, item := range pat.Items {
			ident, ok := item.Value.Data.(*ast.BIdentifier)
			if !ok {
				c.declareBindingPattern(item.Value, scope, BindPlain, false)
				continue
			}
			b := &Binding{
				Name: c.program.Symbols.Get(ident.Ref).OriginalName, Ref: ident.Ref, Kind: BindDestructuredStateAlias,
				AliasOf: rhs.Ref, AliasField: fmt.Sprintf("%d", i), OwnerScope: scope, DeclaredAt: loc, SlotIndex: -1,
			}
			scope.declare(b)
			c.bindings.set(ident.Ref, b)
		}
	default:
		c.declareBindingPattern(decl.Binding, scope, BindPlain, false)
	}
}

func (c *compilation) declareDerived(decl *ast.Decl, deps map[ast.Ref]bool, scope *Scope, loc logger.Loc, initExpr *ast.Expr) {
	ident, ok := decl.Binding.Data.(*ast.BIdentifier)
	if !ok {
		// Destructuring a reactive expression's result isn't one of the
		// named forms in spec §4.1-§4.5; fall back to plain locals
		// rather than inventing new semantics.
		c.declareBindingPattern(decl.Binding, scope, BindPlain, false)
		return
	}
	b := &Binding{
		Name: c.program.Symbols.Get(ident.Ref).OriginalName, Ref: ident.Ref, Kind: BindDerivedPending,
		Deps: deps, OwnerScope: scope, DeclaredAt: loc, DeclBlock: scope.ControlBlock, SlotIndex: -1,
		InitExpr: initExpr,
	}
	scope.declare(b)
	c.bindings.set(ident.Ref, b)
}
