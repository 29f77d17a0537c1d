package compiler

import (
	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
)

// runtimeImport lazily creates (and memoizes) the Ref bound to one import
// specifier from Options.runtimeModule(), the same idiom esbuild's parser
// uses for its own internal helpers (see importFromRuntime/callRuntime):
// a name is only ever imported once no matter how many call sites need
// it, and the import declaration itself is synthesized once lowering is
// done (see finalizeRuntimeImport below) rather than threaded through
// every lowering rule.
func (c *compilation) runtimeImport(loc logger.Loc, name string) ast.Expr {
	ref, ok := c.runtimeRefs[name]
	if !ok {
		ref = c.program.Symbols.NewSymbol(name, loc)
		if c.runtimeRefs == nil {
			c.runtimeRefs = make(map[string]ast.Ref)
		}
		c.runtimeRefs[name] = ref
		c.runtimeOrder = append(c.runtimeOrder, name)
	}
	return ast.Ident(ref, loc)
}

// callRuntime builds a call to a named runtime helper, importing it on
// first use.
func (c *compilation) callRuntime(loc logger.Loc, name string, args ...ast.Expr) ast.Expr {
	return ast.Call(c.runtimeImport(loc, name), args...)
}

// Runtime helper names. These are not bit-mandated by spec §6, but they
// must match whatever runtime the output targets; picking one fixed,
// descriptive set here keeps every lowering rule's output deterministic
// and readable.
const (
	rtPushContext      = "pushContext"
	rtPopContext       = "popContext"
	rtUseSignal        = "useSignal"
	rtUseMemo          = "useMemo"
	rtUseEffect        = "useEffect"
	rtUseProp          = "useProp"
	rtPropsRest        = "propsRest"
	rtBindText         = "bindText"
	rtBindProperty     = "bindProperty"
	rtBindAttribute    = "bindAttribute"
	rtBindClass        = "bindClass"
	rtBindStyle        = "bindStyle"
	rtBindEvent        = "bindEvent"
	rtInsert           = "insert"
	rtTemplate         = "template"
	rtCreateKeyedList  = "createKeyedList"
	rtCreateConditional = "createConditional"
	rtFragment         = "fragment"
	rtCreateElement    = "createElement"
	rtCreateStore      = "createStore"
)

// finalizeRuntimeImport synthesizes a single `import { ... } from
// "<runtimeModule>"` declaration covering every helper lowering actually
// used, in first-use order (spec §5's determinism guarantee requires
// this not depend on map iteration). It is a no-op when lowering never
// touched the runtime, which only happens for a translation unit with no
// components at all.
func (c *compilation) finalizeRuntimeImport() {
	if len(c.runtimeOrder) == 0 {
		return
	}
	items := make([]ast.ImportItem, 0, len(c.runtimeOrder))
	for _, name := range c.runtimeOrder {
		ref := c.runtimeRefs[name]
		items = append(items, ast.ImportItem{ImportedName: name, Alias: name, Ref: ref})
	}
	decl := ast.Stmt{Data: &ast.SImport{Items: items, Path: c.opts.runtimeModule()}}
	c.program.Stmts = append([]ast.Stmt{decl}, c.program.Stmts...)
}
