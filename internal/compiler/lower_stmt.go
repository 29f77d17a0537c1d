package compiler

import (
	"strconv"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
)

// lowerStmts is the statement half of step 7 (spec §4.5, §4.8). Most
// statement shapes keep their own node and only have their nested
// expressions rewritten in place; the declaration forms that name a
// macro result (state/memo/store/alias/destructured-state-alias) are the
// exception; each expands into the concrete runtime call or accessor
// thunk its Binding.Kind calls for, and a destructuring alias pattern can
// expand one source declaration into several output ones. Because of
// that, lowerStmts builds and returns a fresh slice rather than mutating
// in place.
func (c *compilation) lowerStmts(stmts []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, c.lowerStmt(s)...)
	}
	return out
}

func (c *compilation) lowerStmt(s ast.Stmt) []ast.Stmt {
	switch n := s.Data.(type) {
	case *ast.SLocal:
		return c.lowerLocal(n, s.Loc)

	case *ast.SExpr:
		if assign, ok := n.Value.Data.(*ast.EBinary); ok && c.droppedAssigns[assign] {
			// This was an arm of a conditional reassignment
			// finalizeConditionalLetRegions folded into a derivation's own
			// synthesized initializer (§4.3); the imperative write no
			// longer exists once the value is computed reactively.
			return nil
		}
		n.Value = c.lowerExpr(n.Value)
		return []ast.Stmt{s}

	case *ast.SReturn:
		if n.ValueOrNil != nil {
			*n.ValueOrNil = c.lowerExpr(*n.ValueOrNil)
		}
		if c.insertPopBeforeReturn && c.hasCtxRef {
			return []ast.Stmt{c.popContextStmt(s.Loc), s}
		}
		return []ast.Stmt{s}

	case *ast.SBlock:
		n.Stmts = c.lowerStmts(n.Stmts)
		return []ast.Stmt{s}

	case *ast.SIf:
		n.Test = c.lowerExpr(n.Test)
		n.Yes = c.lowerSingleStmt(n.Yes)
		if n.NoOrNil != nil {
			no := c.lowerSingleStmt(*n.NoOrNil)
			n.NoOrNil = &no
		}
		return []ast.Stmt{s}

	case *ast.SSwitch:
		n.Test = c.lowerExpr(n.Test)
		for ci := range n.Cases {
			if n.Cases[ci].ValueOrNil != nil {
				*n.Cases[ci].ValueOrNil = c.lowerExpr(*n.Cases[ci].ValueOrNil)
			}
			n.Cases[ci].Body = c.lowerStmts(n.Cases[ci].Body)
		}
		return []ast.Stmt{s}

	case *ast.SFor:
		if n.InitOrNil != nil {
			init := c.lowerSingleStmt(*n.InitOrNil)
			n.InitOrNil = &init
		}
		if n.TestOrNil != nil {
			*n.TestOrNil = c.lowerExpr(*n.TestOrNil)
		}
		if n.UpdateOrNil != nil {
			*n.UpdateOrNil = c.lowerExpr(*n.UpdateOrNil)
		}
		n.Body = c.lowerSingleStmt(n.Body)
		return []ast.Stmt{s}

	case *ast.SWhile:
		n.Test = c.lowerExpr(n.Test)
		n.Body = c.lowerSingleStmt(n.Body)
		return []ast.Stmt{s}

	case *ast.SFunction:
		c.lowerFn(&n.Fn)
		return []ast.Stmt{s}

	default:
		return []ast.Stmt{s}
	}
}

// lowerSingleStmt lowers one statement in a position that must stay a
// single statement (an `if` arm, a loop body), flattening lowerStmt's
// possible multi-statement expansion (a destructured alias, a return with
// an inserted popContext) into an SBlock when more than one came out.
func (c *compilation) lowerSingleStmt(s ast.Stmt) ast.Stmt {
	lowered := c.lowerStmt(s)
	if len(lowered) == 1 {
		return lowered[0]
	}
	return ast.Stmt{Loc: s.Loc, Data: &ast.SBlock{Stmts: lowered}}
}

// lowerLocal lowers one `var`/`let`/`const` statement, dispatching each of
// its declarators by the Binding.Kind the scope/policy passes already
// settled on. A single source declarator can expand into several output
// statements (a destructured alias pattern turns into one const per
// extracted name), so this returns a flat slice covering every declarator
// in n.Decls.
func (c *compilation) lowerLocal(n *ast.SLocal, loc logger.Loc) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(n.Decls))
	for i := range n.Decls {
		out = append(out, c.lowerDecl(n.Kind, &n.Decls[i], loc)...)
	}
	return out
}

func (c *compilation) lowerDecl(kind ast.LocalKind, decl *ast.Decl, loc logger.Loc) []ast.Stmt {
	if pat, ok := decl.Binding.Data.(*ast.BObject); ok {
		if out, handled := c.lowerDestructuredAliasObjectPattern(pat, decl, loc); handled {
			return out
		}
	}
	if pat, ok := decl.Binding.Data.(*ast.BArray); ok {
		if out, handled := c.lowerDestructuredAliasArrayPattern(pat, decl, loc); handled {
			return out
		}
	}

	ident, isIdent := decl.Binding.Data.(*ast.BIdentifier)
	var b *Binding
	if isIdent {
		b = c.bindings.get(ident.Ref)
	}

	if b != nil && b.Region != nil {
		return c.lowerRegionMember(b, ident, loc)
	}

	if b == nil {
		// A destructuring pattern neither destructured-alias lowering
		// above took over, or an identifier with no recorded binding: only
		// the initializer is lowered, and the declaration keeps its kind.
		if decl.ValueOrNil != nil {
			*decl.ValueOrNil = c.lowerExpr(*decl.ValueOrNil)
		}
		return []ast.Stmt{{Loc: loc, Data: &ast.SLocal{Kind: kind, Decls: []ast.Decl{*decl}}}}
	}

	switch b.Kind {
	case BindState:
		initial := ast.Expr{Data: &ast.EUndefined{}, Loc: loc}
		if decl.ValueOrNil != nil {
			if call, ok := decl.ValueOrNil.Data.(*ast.ECall); ok && len(call.Args) > 0 {
				initial = c.lowerExpr(call.Args[0])
			}
		}
		value := c.callRuntime(loc, rtUseSignal, c.ctxExpr(loc), initial, ast.Num(float64(b.SlotIndex), loc))
		return []ast.Stmt{ast.ConstDecl(ident.Ref, loc, value)}

	case BindDerivedMemo:
		thunk := ast.Thunk(c.lowerInitOrUndefined(b.InitExpr, loc))
		value := c.callRuntime(loc, rtUseMemo, c.ctxExpr(loc), thunk)
		return []ast.Stmt{ast.ConstDecl(ident.Ref, loc, value)}

	case BindDerivedGetter:
		getter := ast.Thunk(c.lowerInitOrUndefined(b.InitExpr, loc))
		return []ast.Stmt{ast.ConstDecl(ident.Ref, loc, getter)}

	case BindStore:
		initial := ast.Expr{Data: &ast.EUndefined{}, Loc: loc}
		if decl.ValueOrNil != nil {
			if call, ok := decl.ValueOrNil.Data.(*ast.ECall); ok && len(call.Args) > 0 {
				initial = c.lowerExpr(call.Args[0])
			}
		}
		value := c.callRuntime(loc, rtCreateStore, initial)
		return []ast.Stmt{ast.ConstDecl(ident.Ref, loc, value)}

	case BindAlias:
		read := c.lowerIdentifierRead(b.AliasOf, loc)
		return []ast.Stmt{ast.ConstDecl(ident.Ref, loc, ast.Thunk(read))}

	case BindDestructuredStateAlias:
		return []ast.Stmt{ast.ConstDecl(ident.Ref, loc, ast.Thunk(c.destructuredAliasRead(b, loc)))}

	default:
		if decl.ValueOrNil != nil {
			*decl.ValueOrNil = c.lowerExpr(*decl.ValueOrNil)
		}
		return []ast.Stmt{{Loc: loc, Data: &ast.SLocal{Kind: kind, Decls: []ast.Decl{*decl}}}}
	}
}

// lowerRegionMember lowers one derivation that pass_region.go grouped into
// a Region (spec §4.3). A region has exactly one materialization site: the
// first member in source order emits the shared memo, returning a record
// `{a: a', b: b', ...}` keyed by each member's own name, right before its
// own accessor declaration. Every member, first or not, keeps its own
// `const name = () => region().name` accessor at its original statement
// position, so use sites need no special casing -- lowerIdentifierRead
// already rewrites a BindDerivedMemo read to `name()` regardless of
// whether that accessor happens to read straight off a region record.
func (c *compilation) lowerRegionMember(b *Binding, ident *ast.BIdentifier, loc logger.Loc) []ast.Stmt {
	region := b.Region
	out := make([]ast.Stmt, 0, 2)

	if b == region.Outputs[0] {
		fields := make([]ast.Property, 0, len(region.Outputs))
		for _, member := range region.Outputs {
			fields = append(fields, ast.Property{
				Key:   ast.Str(member.Name, member.DeclaredAt),
				Value: c.lowerInitOrUndefined(member.InitExpr, member.DeclaredAt),
			})
		}
		record := ast.Expr{Loc: loc, Data: &ast.EObject{Properties: fields}}
		thunk := ast.Thunk(record)
		value := c.callRuntime(loc, rtUseMemo, c.ctxExpr(loc), thunk)
		out = append(out, ast.ConstDecl(region.RecordRef, loc, value))
	}

	accessor := ast.Dot(ast.CallRef(region.RecordRef, loc), b.Name, loc)
	out = append(out, ast.ConstDecl(ident.Ref, loc, ast.Thunk(accessor)))
	return out
}

// lowerDestructuredAliasObjectPattern expands `const { a, b: c, ...rest } =
// store` into one const per extracted name once any of its properties
// resolved to a BindDestructuredStateAlias (spec §4.5); the second return
// value is false when the pattern is an ordinary, non-reactive object
// destructure that should pass through lowerExpr unchanged instead.
func (c *compilation) lowerDestructuredAliasObjectPattern(pat *ast.BObject, decl *ast.Decl, loc logger.Loc) ([]ast.Stmt, bool) {
	isAlias := false
	for _, p := range pat.Properties {
		if ident, ok := p.Value.Data.(*ast.BIdentifier); ok {
			if b := c.bindings.get(ident.Ref); b != nil && b.Kind == BindDestructuredStateAlias {
				isAlias = true
				break
			}
		}
	}
	if !isAlias {
		return nil, false
	}

	var out []ast.Stmt
	excluded := make([]ast.Expr, 0, len(pat.Properties))
	for _, p := range pat.Properties {
		excluded = append(excluded, ast.Str(p.KeyName, loc))
		ident, ok := p.Value.Data.(*ast.BIdentifier)
		if !ok {
			continue
		}
		b := c.bindings.get(ident.Ref)
		if b == nil || b.Kind != BindDestructuredStateAlias {
			continue
		}
		out = append(out, ast.ConstDecl(ident.Ref, loc, ast.Thunk(c.destructuredAliasRead(b, loc))))
	}
	if pat.RestRef != nil && decl.ValueOrNil != nil {
		source := c.lowerExpr(*decl.ValueOrNil)
		value := c.callRuntime(loc, rtPropsRest, append([]ast.Expr{source}, excluded...)...)
		out = append(out, ast.ConstDecl(*pat.RestRef, loc, value))
	}
	return out, true
}

// lowerDestructuredAliasArrayPattern is lowerDestructuredAliasObjectPattern's
// array-pattern counterpart, e.g. `const [a, b] = someDerivedTuple`.
func (c *compilation) lowerDestructuredAliasArrayPattern(pat *ast.BArray, decl *ast.Decl, loc logger.Loc) ([]ast.Stmt, bool) {
	isAlias := false
	for _, item := range pat.Items {
		if ident, ok := item.Value.Data.(*ast.BIdentifier); ok {
			if b := c.bindings.get(ident.Ref); b != nil && b.Kind == BindDestructuredStateAlias {
				isAlias = true
				break
			}
		}
	}
	if !isAlias {
		return nil, false
	}

	var out []ast.Stmt
	for _, item := range pat.Items {
		ident, ok := item.Value.Data.(*ast.BIdentifier)
		if !ok {
			continue
		}
		b := c.bindings.get(ident.Ref)
		if b == nil || b.Kind != BindDestructuredStateAlias {
			continue
		}
		out = append(out, ast.ConstDecl(ident.Ref, loc, ast.Thunk(c.destructuredAliasRead(b, loc))))
	}
	if pat.RestRef != nil && decl.ValueOrNil != nil {
		source := c.lowerExpr(*decl.ValueOrNil)
		value := c.callRuntime(loc, rtPropsRest, source)
		out = append(out, ast.ConstDecl(*pat.RestRef, loc, value))
	}
	return out, true
}

// lowerInitOrUndefined lowers a derivation's stashed initializer, falling
// back to `undefined` for the degenerate `memo()` call with no argument.
func (c *compilation) lowerInitOrUndefined(initExpr *ast.Expr, loc logger.Loc) ast.Expr {
	if initExpr == nil {
		return ast.Expr{Loc: loc, Data: &ast.EUndefined{}}
	}
	return c.lowerExpr(*initExpr)
}

// destructuredAliasRead builds the member-access expression a
// destructured-state-alias's accessor thunk wraps: a call-then-property
// read off anything reactive (`root().a`), or a bare property read off a
// store, whose own identifier already stands for a live proxy object
// (`root.a`, no call -- spec §6).
func (c *compilation) destructuredAliasRead(b *Binding, loc logger.Loc) ast.Expr {
	var base ast.Expr
	if src := c.bindings.get(b.AliasOf); src != nil && src.Kind == BindStore {
		base = ast.Ident(b.AliasOf, loc)
	} else {
		base = c.lowerIdentifierRead(b.AliasOf, loc)
	}
	if idx, err := strconv.Atoi(b.AliasField); err == nil {
		return ast.Expr{Loc: loc, Data: &ast.EIndex{Target: base, Index: ast.Num(float64(idx), loc)}}
	}
	return ast.Dot(base, b.AliasField, loc)
}

// ctxExpr reads the active component/hook context local, set up by
// lowerComponentBody for the duration of lowering that body.
func (c *compilation) ctxExpr(loc logger.Loc) ast.Expr {
	return ast.Ident(c.ctxRef, loc)
}

func (c *compilation) popContextStmt(loc logger.Loc) ast.Stmt {
	return ast.ExprStmt(c.callRuntime(loc, rtPopContext, c.ctxExpr(loc)))
}
