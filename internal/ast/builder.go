package ast

import "github.com/fictjs/fictc/internal/logger"

// This file collects small tree-construction helpers in the same spirit
// as esbuild's js_ast_helpers.go: every lowering rule in spec §4.5-§4.8
// produces a handful of recurring shapes (an accessor call, a setter
// call, an arrow wrapping an expression) and building them inline at each
// call site would bury the interesting part of every lowering rule under
// boilerplate.

func Ident(ref Ref, loc logger.Loc) Expr {
	return Expr{Loc: loc, Data: &EIdentifier{Ref: ref}}
}

// Call builds `target(args...)`, the shape every accessor read (`x()`)
// and setter write (`x(v)`) lowers to.
func Call(target Expr, args ...Expr) Expr {
	return Expr{Loc: target.Loc, Data: &ECall{Target: target, Args: args}}
}

// CallRef is shorthand for Call(Ident(ref, loc), args...).
func CallRef(ref Ref, loc logger.Loc, args ...Expr) Expr {
	return Call(Ident(ref, loc), args...)
}

// Thunk builds a zero-argument arrow `() => expr`, the shape used for
// every getter, alias, and tracked JSX binder callback.
func Thunk(body Expr) Expr {
	return Expr{Loc: body.Loc, Data: &EArrow{Fn: Fn{ExprBody: &body}}}
}

func Assign(target Expr, value Expr) Expr {
	return Expr{Loc: target.Loc, Data: &EBinary{Op: BinOpAssign, Left: target, Right: value}}
}

func AssignStmt(target Expr, value Expr) Stmt {
	e := Assign(target, value)
	return Stmt{Loc: e.Loc, Data: &SExpr{Value: e}}
}

func Binary(op BinOp, left, right Expr) Expr {
	return Expr{Loc: left.Loc, Data: &EBinary{Op: op, Left: left, Right: right}}
}

func Dot(target Expr, name string, nameLoc logger.Loc) Expr {
	return Expr{Loc: target.Loc, Data: &EDot{Target: target, Name: name, NameLoc: nameLoc}}
}

func Num(v float64, loc logger.Loc) Expr {
	return Expr{Loc: loc, Data: &ENumber{Value: v}}
}

func Str(v string, loc logger.Loc) Expr {
	return Expr{Loc: loc, Data: &EString{Value: v}}
}

// Not wraps expr in a logical-not, collapsing a double-negation the way
// esbuild's helper of the same name does.
func Not(expr Expr) Expr {
	if u, ok := expr.Data.(*EUnary); ok && u.Op == UnOpNot {
		return u.Value
	}
	return Expr{Loc: expr.Loc, Data: &EUnary{Op: UnOpNot, Value: expr}}
}

func ExprStmt(e Expr) Stmt {
	return Stmt{Loc: e.Loc, Data: &SExpr{Value: e}}
}

func ConstDecl(ref Ref, loc logger.Loc, value Expr) Stmt {
	return Stmt{Loc: loc, Data: &SLocal{
		Kind: LocalConst,
		Decls: []Decl{{
			Binding:    Binding{Loc: loc, Data: &BIdentifier{Ref: ref}},
			ValueOrNil: &value,
		}},
	}}
}

// IsIdentifier reports whether expr is a bare identifier reference, used
// throughout scope resolution to recognize `const x = y` alias forms
// (spec §4.1) as opposed to an arbitrary expression.
func IsIdentifier(expr Expr) (Ref, bool) {
	if id, ok := expr.Data.(*EIdentifier); ok {
		return id.Ref, true
	}
	return Ref{}, false
}
