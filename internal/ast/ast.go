// Package ast defines the tree shape the compiler operates on: a small
// JavaScript-plus-JSX abstract syntax tree. It intentionally covers only
// the subset of JS needed to express components written against the
// macro surface in spec §6 -- there is no parser or printer in this
// module (see spec §1); callers hand the compiler an already-parsed
// *ast.Program and receive a mutated one back.
//
// The node shapes and the Ref/Symbol bookkeeping follow the same pattern
// esbuild's js_ast package uses: every expression and statement is a thin
// {Loc, Data} wrapper around a pointer to a concrete node type, and
// identifiers are resolved indirectly through a Ref into a per-program
// symbol table rather than by name, so a renaming or lowering pass never
// has to worry about shadowing once resolution has happened.
package ast

import "github.com/fictjs/fictc/internal/logger"

// Ref is an index into a Program's symbol table. Unlike esbuild (which
// must merge symbol tables across many parsed files during bundling) a
// fict translation unit is compiled in isolation, so a Ref is just the
// inner index -- there is no source-index component.
type Ref struct {
	InnerIndex uint32
}

var InvalidRef = Ref{InnerIndex: ^uint32(0)}

func (r Ref) IsValid() bool { return r != InvalidRef }

// Symbol is the generic, compiler-pass-agnostic record for a declared
// name. Anything specific to the reactive classification of a name
// (state/derived-memo/derived-getter/alias/... -- see spec §3) lives in
// the side table built by the binding package, keyed by Ref, not here:
// that keeps this package reusable by any pass without a dependency
// cycle back into the classification logic.
type Symbol struct {
	OriginalName string
	DeclaredAt   logger.Loc

	// UseCount is a slot for a count of the places that read this
	// symbol. Nothing in this module increments or reads it; the
	// empty-effect check collects an effect's reads directly.
	UseCount uint32
}

// SymbolTable owns every Symbol for one translation unit and hands out
// fresh Refs. Generated symbols (the per-component context, cached getter
// locals, region records) share the same table as user-authored ones, so
// every generated Ref is distinct from every user-authored Ref.
type SymbolTable struct {
	symbols []Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

func (t *SymbolTable) NewSymbol(name string, loc logger.Loc) Ref {
	t.symbols = append(t.symbols, Symbol{OriginalName: name, DeclaredAt: loc})
	return Ref{InnerIndex: uint32(len(t.symbols) - 1)}
}

func (t *SymbolTable) Get(ref Ref) *Symbol {
	return &t.symbols[ref.InnerIndex]
}

func (t *SymbolTable) Len() int { return len(t.symbols) }

// Program is the root of a translation unit: a flat list of top-level
// statements plus the symbol table every Ref in the tree resolves
// through.
type Program struct {
	Source  *logger.Source
	Symbols *SymbolTable
	Stmts   []Stmt

	// ImportsToStrip is a per-import-declaration set of specifier names,
	// keyed by the statement's index into Stmts. The macro-import-
	// stripping pass (§2.8) does not consult it: it finds macro
	// specifiers through the compiler's own macro table.
	ImportsToStrip map[int]map[string]bool
}
