package compiler

import "github.com/fictjs/fictc/internal/ast"

// MacroKind identifies which of the macro intrinsics (spec §6, "Macro
// surface") an imported binding names. Resolution is by imported-binding
// identity (the Ref the import declaration created), never by source
// text, so a rename like `import { state as s } from "fict"` is
// recognized exactly like the unrenamed form.
type MacroKind uint8

const (
	MacroNone MacroKind = iota
	MacroState
	MacroEffect
	MacroMemo
	MacroStore
	MacroUntrack
)

// macroTable maps the Ref an import specifier introduced to the macro it
// names, plus the reverse direction needed by the import-stripping pass
// (§2.8) to know which statement and which specifier to delete.
type macroTable struct {
	kindByRef map[ast.Ref]MacroKind
	module    string

	// untrackRef is the Ref the user's `untrack` import specifier
	// resolved to, reused verbatim by the lowering pass since (unlike
	// state/effect/memo/store) untrack's import is never stripped --
	// the call itself survives lowering unchanged (spec §4.4).
	untrackRef ast.Ref
}

func newMacroTable(module string) *macroTable {
	return &macroTable{kindByRef: make(map[ast.Ref]MacroKind), module: module, untrackRef: ast.InvalidRef}
}

func (t *macroTable) kindOf(ref ast.Ref) MacroKind {
	return t.kindByRef[ref]
}

func (t *macroTable) isMacro(ref ast.Ref) bool {
	return t.kindByRef[ref] != MacroNone
}

// recognizeImportName maps an import's original (pre-rename) specifier
// text to the macro it names. Only names from this fixed list count;
// everything else imported from the macro module is left alone (a future
// macro could be added here without breaking existing programs).
func recognizeImportName(name string) MacroKind {
	switch name {
	case "state":
		return MacroState
	case "effect":
		return MacroEffect
	case "memo":
		return MacroMemo
	case "store":
		return MacroStore
	case "untrack":
		return MacroUntrack
	default:
		return MacroNone
	}
}
