// Package testutil builds small *ast.Program trees by hand for the
// internal/compiler tests and the cmd/fictcheck fixtures, standing in for
// the (external) parser the real pipeline expects its input from.
package testutil

import (
	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
)

// Builder accumulates top-level statements for one translation unit and
// hands out fresh Refs through the same symbol table the program itself
// uses, so every Ref a test creates already resolves correctly once the
// program is handed to compiler.Compile.
type Builder struct {
	Source *logger.Source
	Prog   *ast.Program

	// Macro holds the Ref each macro intrinsic's import specifier
	// resolved to, keyed by its unrenamed name ("state", "effect",
	// "memo", "store", "untrack"). NewProgram declares all five from the
	// default "fict" module before returning.
	Macro map[string]ast.Ref

	loc int32
}

// NewProgram builds an empty program whose first statement imports every
// macro intrinsic from "fict", the module compiler.Options.MacroModule
// defaults to. pretty names the fake file for diagnostics.
func NewProgram(pretty string) *Builder {
	source := &logger.Source{PrettyPath: pretty}
	prog := &ast.Program{Source: source, Symbols: ast.NewSymbolTable()}
	b := &Builder{Source: source, Prog: prog, Macro: map[string]ast.Ref{}}

	names := []string{"state", "effect", "memo", "store", "untrack"}
	items := make([]ast.ImportItem, 0, len(names))
	for _, name := range names {
		ref := b.Ident(name)
		b.Macro[name] = ref
		items = append(items, ast.ImportItem{ImportedName: name, Alias: name, Ref: ref, AliasLoc: b.NextLoc()})
	}
	b.Prog.Stmts = append(b.Prog.Stmts, ast.Stmt{
		Loc:  b.NextLoc(),
		Data: &ast.SImport{Items: items, Path: "fict"},
	})
	return b
}

// NextLoc hands out a monotonically increasing fake byte offset so every
// node in a hand-built tree has a distinct, ordered Loc -- passes like
// the dependency pass sort bindings by DeclaredAt.Start and need that
// order to be meaningful.
func (b *Builder) NextLoc() logger.Loc {
	b.loc++
	return logger.Loc{Start: b.loc}
}

// Ident allocates a fresh symbol and returns its Ref.
func (b *Builder) Ident(name string) ast.Ref {
	return b.Prog.Symbols.NewSymbol(name, b.NextLoc())
}

// Top appends a statement to the program's top level and returns it.
func (b *Builder) Top(s ast.Stmt) ast.Stmt {
	b.Prog.Stmts = append(b.Prog.Stmts, s)
	return s
}

// CallMacro builds `<macro>(args...)` using the Ref NewProgram already
// registered for that intrinsic.
func (b *Builder) CallMacro(name string, args ...ast.Expr) ast.Expr {
	return ast.CallRef(b.Macro[name], b.NextLoc(), args...)
}

// State builds `let <name> = state(init)` as a standalone statement,
// along with the Ref the declared identifier resolved to.
func (b *Builder) State(name string, init ast.Expr) (ast.Stmt, ast.Ref) {
	ref := b.Ident(name)
	loc := b.NextLoc()
	value := b.CallMacro("state", init)
	return ast.Stmt{Loc: loc, Data: &ast.SLocal{
		Kind: ast.LocalLet,
		Decls: []ast.Decl{{
			Binding:    ast.Binding{Loc: loc, Data: &ast.BIdentifier{Ref: ref}},
			ValueOrNil: &value,
		}},
	}}, ref
}

// Derived builds `const <name> = <expr>` (implicit derivation, spec
// §4.1's "any const whose initializer reads a tracked value").
func (b *Builder) Derived(name string, expr ast.Expr) (ast.Stmt, ast.Ref) {
	ref := b.Ident(name)
	loc := b.NextLoc()
	return ast.ConstDecl(ref, loc, expr), ref
}

// Memo builds `const <name> = memo(() => expr)`.
func (b *Builder) Memo(name string, expr ast.Expr) (ast.Stmt, ast.Ref) {
	ref := b.Ident(name)
	loc := b.NextLoc()
	value := b.CallMacro("memo", ast.Thunk(expr))
	return ast.Stmt{Loc: loc, Data: &ast.SLocal{
		Kind: ast.LocalConst,
		Decls: []ast.Decl{{
			Binding:    ast.Binding{Loc: loc, Data: &ast.BIdentifier{Ref: ref}},
			ValueOrNil: &value,
		}},
	}}, ref
}

// Store builds `const <name> = store(init)`.
func (b *Builder) Store(name string, init ast.Expr) (ast.Stmt, ast.Ref) {
	ref := b.Ident(name)
	loc := b.NextLoc()
	value := b.CallMacro("store", init)
	return ast.Stmt{Loc: loc, Data: &ast.SLocal{
		Kind: ast.LocalConst,
		Decls: []ast.Decl{{
			Binding:    ast.Binding{Loc: loc, Data: &ast.BIdentifier{Ref: ref}},
			ValueOrNil: &value,
		}},
	}}, ref
}

// Effect builds a bare `effect(() => { ...body })` statement.
func (b *Builder) Effect(body ...ast.Stmt) ast.Stmt {
	loc := b.NextLoc()
	arrow := ast.Expr{Loc: loc, Data: &ast.EArrow{Fn: ast.Fn{Body: body}}}
	return ast.ExprStmt(b.CallMacro("effect", arrow))
}

// Read builds a bare identifier reference to ref.
func (b *Builder) Read(ref ast.Ref) ast.Expr {
	return ast.Ident(ref, b.NextLoc())
}

// Component builds a named function declaration whose body is given
// verbatim, wrapping jsxExpr in a `return` so the returnsJSX heuristic
// recognizes it as a component (spec §4.8/§9).
func (b *Builder) Component(name string, params []ast.Arg, body []ast.Stmt, jsxExpr ast.Expr) (ast.Stmt, ast.Ref) {
	ref := b.Ident(name)
	loc := b.NextLoc()
	full := append(append([]ast.Stmt{}, body...), ast.Stmt{Loc: b.NextLoc(), Data: &ast.SReturn{ValueOrNil: &jsxExpr}})
	return ast.Stmt{Loc: loc, Data: &ast.SFunction{
		Fn:   ast.Fn{Args: params, Body: full},
		Name: ref,
	}}, ref
}

// JSXElement builds a minimal intrinsic JSX element with no attributes,
// e.g. `<div>{children...}</div>`.
func (b *Builder) JSXElement(tag string, children ...ast.Expr) ast.Expr {
	return ast.Expr{Loc: b.NextLoc(), Data: &ast.EJSXElement{
		TagKind:  ast.JSXTagIntrinsic,
		TagName:  tag,
		Children: children,
	}}
}

// JSXExpr wraps value as a `{value}` JSX expression container child.
func (b *Builder) JSXExpr(value ast.Expr) ast.Expr {
	return ast.Expr{Loc: value.Loc, Data: &ast.EJSXExprContainer{Value: value}}
}
