package compiler

import (
	"testing"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestApplyGetterCacheHoistsRepeatedReads builds two already-lowered
// reads of the same getter (`label(); label();`) and checks that, with
// GetterCache on, a cached local is hoisted and both reads are rewritten
// to use it instead of calling the getter twice.
func TestApplyGetterCacheHoistsRepeatedReads(t *testing.T) {
	c := newTestCompilation(Options{GetterCache: true})
	ref := c.program.Symbols.NewSymbol("label", logger.Loc{Start: 1})
	c.bindings.set(ref, &Binding{Name: "label", Ref: ref, Kind: BindDerivedGetter, DeclaredAt: logger.Loc{Start: 1}})

	stmts := []ast.Stmt{
		ast.ExprStmt(ast.CallRef(ref, logger.Loc{Start: 2})),
		ast.ExprStmt(ast.CallRef(ref, logger.Loc{Start: 3})),
	}

	out := c.applyGetterCache(stmts)
	require.Len(t, out, 3)

	decl, ok := out[0].Data.(*ast.SLocal)
	require.True(t, ok)
	require.Len(t, decl.Decls, 1)
	require.NotNil(t, decl.Decls[0].ValueOrNil)
	call, ok := decl.Decls[0].ValueOrNil.Data.(*ast.ECall)
	require.True(t, ok)
	calleeRef, ok := ast.IsIdentifier(call.Target)
	require.True(t, ok)
	assert.Equal(t, ref, calleeRef)

	bIdent, ok := decl.Decls[0].Binding.Data.(*ast.BIdentifier)
	require.True(t, ok)
	cachedRef := bIdent.Ref

	for _, s := range out[1:] {
		expr, ok := s.Data.(*ast.SExpr)
		require.True(t, ok)
		readRef, ok := ast.IsIdentifier(expr.Value)
		require.True(t, ok)
		assert.Equal(t, cachedRef, readRef)
	}
}

// TestApplyGetterCacheLeavesSingleReadAlone checks the cache only kicks
// in once a getter is actually read more than once in the same body.
func TestApplyGetterCacheLeavesSingleReadAlone(t *testing.T) {
	c := newTestCompilation(Options{GetterCache: true})
	ref := c.program.Symbols.NewSymbol("label", logger.Loc{Start: 1})
	c.bindings.set(ref, &Binding{Name: "label", Ref: ref, Kind: BindDerivedGetter, DeclaredAt: logger.Loc{Start: 1}})

	stmts := []ast.Stmt{ast.ExprStmt(ast.CallRef(ref, logger.Loc{Start: 2}))}
	out := c.applyGetterCache(stmts)

	require.Len(t, out, 1)
	expr, ok := out[0].Data.(*ast.SExpr)
	require.True(t, ok)
	call, ok := expr.Value.Data.(*ast.ECall)
	require.True(t, ok)
	calleeRef, ok := ast.IsIdentifier(call.Target)
	require.True(t, ok)
	assert.Equal(t, ref, calleeRef)
}

// TestApplyGetterCacheDisabledIsNoOp checks the option gate itself: with
// GetterCache off, repeated reads are left exactly as lowerFn produced
// them, calling the getter every time.
func TestApplyGetterCacheDisabledIsNoOp(t *testing.T) {
	c := newTestCompilation(Options{GetterCache: false})
	ref := c.program.Symbols.NewSymbol("label", logger.Loc{Start: 1})
	c.bindings.set(ref, &Binding{Name: "label", Ref: ref, Kind: BindDerivedGetter, DeclaredAt: logger.Loc{Start: 1}})

	stmts := []ast.Stmt{
		ast.ExprStmt(ast.CallRef(ref, logger.Loc{Start: 2})),
		ast.ExprStmt(ast.CallRef(ref, logger.Loc{Start: 3})),
	}
	out := c.applyGetterCache(stmts)
	assert.Equal(t, stmts, out)
}

// TestApplyGetterCacheIgnoresNonGetterCalls makes sure a zero-arg call to
// something that isn't a BindDerivedGetter binding (a plain function, a
// memo accessor) is left untouched even when repeated.
func TestApplyGetterCacheIgnoresNonGetterCalls(t *testing.T) {
	c := newTestCompilation(Options{GetterCache: true})
	ref := c.program.Symbols.NewSymbol("helper", logger.Loc{Start: 1})
	c.bindings.set(ref, &Binding{Name: "helper", Ref: ref, Kind: BindPlain, DeclaredAt: logger.Loc{Start: 1}})

	stmts := []ast.Stmt{
		ast.ExprStmt(ast.CallRef(ref, logger.Loc{Start: 2})),
		ast.ExprStmt(ast.CallRef(ref, logger.Loc{Start: 3})),
	}
	out := c.applyGetterCache(stmts)
	assert.Equal(t, stmts, out)
}
