package compiler

import "github.com/fictjs/fictc/internal/ast"

// Compile is the pipeline's single external entry point (spec §6):
// compile(program, options) -> (program, warnings). It runs every pass in
// the fixed order spec §2 lays out -- scope/binding, dependency/cycle,
// region, policy, warnings, lowering, macro-import stripping -- over
// program in place and hands back the mutated tree.
//
// A hard error detected by any pass unwinds through a diagPanic (see
// diag.go); recoverDiag converts it into the returned error here so a
// caller never has to set up its own recover. Per spec §7, a translation
// unit that produces a hard error produces no output: err is non-nil and
// out is nil in that case, never a partially-lowered tree.
func Compile(program *ast.Program, opts Options) (out *ast.Program, warnings []Warning, err error) {
	defer recoverDiag(&err)

	c := newCompilation(program, opts)

	c.runScopePass()
	c.finalizeConditionalLetRegions()
	c.runDependencyPass()
	c.runRegionPass()
	c.runPolicyPass()
	c.runWarningPass()

	c.componentFnSet = make(map[*ast.Fn]bool, len(c.componentFns))
	for _, fn := range c.componentFns {
		c.componentFnSet[fn] = true
	}

	c.program.Stmts = c.lowerStmts(c.program.Stmts)
	c.stripMacroImports()

	if len(c.templates) > 0 {
		merged := make([]ast.Stmt, 0, len(c.templates)+len(c.program.Stmts))
		merged = append(merged, c.templates...)
		merged = append(merged, c.program.Stmts...)
		c.program.Stmts = merged
	}
	c.finalizeRuntimeImport()

	return c.program, c.warnings, nil
}

// stripMacroImports is step 8 of the pipeline (spec §2.8, §4.1): once
// lowering has replaced every macro call with its concrete runtime
// counterpart, the import specifiers that named state/effect/memo/store
// no longer correspond to anything in the output and are removed. The
// untrack specifier is kept, since lowered untrack() calls still
// reference it. An import declaration left with no specifiers is dropped
// entirely rather than left as an empty `import {} from "fict"`.
func (c *compilation) stripMacroImports() {
	kept := make([]ast.Stmt, 0, len(c.program.Stmts))
	for _, s := range c.program.Stmts {
		imp, ok := s.Data.(*ast.SImport)
		if !ok || imp.Path != c.macros.module {
			kept = append(kept, s)
			continue
		}
		items := make([]ast.ImportItem, 0, len(imp.Items))
		for _, item := range imp.Items {
			if c.macros.isMacro(item.Ref) && c.macros.kindOf(item.Ref) != MacroUntrack {
				continue
			}
			items = append(items, item)
		}
		imp.Items = items
		if len(items) == 0 && imp.DefaultRef == nil && imp.StarRef == nil {
			continue
		}
		kept = append(kept, s)
	}
	c.program.Stmts = kept
}
