package compiler

import (
	"testing"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
	"github.com/stretchr/testify/assert"
)

func hasWarning(c *compilation, id logger.MsgID) bool {
	for _, w := range c.warnings {
		if w.ID == id {
			return true
		}
	}
	return false
}

// TestWarnMemoSideEffectFlagsAssignmentInInitializer builds a derivation
// whose InitExpr assigns to something, the concrete shape spec §4.8 calls
// out for memo-side-effect.
func TestWarnMemoSideEffectFlagsAssignmentInInitializer(t *testing.T) {
	c := newTestCompilation(Options{})
	ref := c.program.Symbols.NewSymbol("total", logger.Loc{Start: 1})
	other := c.program.Symbols.NewSymbol("log", logger.Loc{Start: 2})

	assign := ast.Expr{Loc: logger.Loc{Start: 3}, Data: &ast.EBinary{
		Op:    ast.BinOpAssign,
		Left:  ast.Ident(other, logger.Loc{Start: 3}),
		Right: ast.Num(1, logger.Loc{Start: 3}),
	}}
	b := &Binding{Name: "total", Ref: ref, Kind: BindDerivedMemo, DeclaredAt: logger.Loc{Start: 1}, InitExpr: &assign}
	c.bindings.set(ref, b)

	c.runWarningPass()

	assert.True(t, hasWarning(c, logger.MsgID_MemoSideEffect))
	assert.True(t, b.HasSideEffectInInitializer)
}

// TestWarnMemoSideEffectIgnoresPlainRead checks a derivation reading
// another binding's tracked accessor (no args, so it's a read not a
// setter call) doesn't false-positive.
func TestWarnMemoSideEffectIgnoresPlainRead(t *testing.T) {
	c := newTestCompilation(Options{})
	ref := c.program.Symbols.NewSymbol("doubled", logger.Loc{Start: 1})
	srcRef := c.program.Symbols.NewSymbol("count", logger.Loc{Start: 2})

	c.bindings.set(srcRef, &Binding{Name: "count", Ref: srcRef, Kind: BindState, DeclaredAt: logger.Loc{Start: 2}})

	read := ast.CallRef(srcRef, logger.Loc{Start: 3})
	b := &Binding{Name: "doubled", Ref: ref, Kind: BindDerivedMemo, DeclaredAt: logger.Loc{Start: 1}, InitExpr: &read}
	c.bindings.set(ref, b)

	c.runWarningPass()

	assert.False(t, hasWarning(c, logger.MsgID_MemoSideEffect))
	assert.False(t, b.HasSideEffectInInitializer)
}

// TestWarnBlackBoxFunctionCallFlagsUnknownCallee checks a derivation whose
// initializer calls a plain function the scope pass never classified.
func TestWarnBlackBoxFunctionCallFlagsUnknownCallee(t *testing.T) {
	c := newTestCompilation(Options{})
	ref := c.program.Symbols.NewSymbol("result", logger.Loc{Start: 1})
	unknownRef := c.program.Symbols.NewSymbol("computeSomething", logger.Loc{Start: 2})

	call := ast.CallRef(unknownRef, logger.Loc{Start: 3})
	b := &Binding{Name: "result", Ref: ref, Kind: BindDerivedMemo, DeclaredAt: logger.Loc{Start: 1}, InitExpr: &call}
	c.bindings.set(ref, b)

	c.runWarningPass()

	assert.True(t, hasWarning(c, logger.MsgID_BlackBoxFunctionCall))
}

// TestWarnBlackBoxFunctionCallIgnoresSafeGlobal checks Math.max style
// calls to the known-safe global table never warn.
func TestWarnBlackBoxFunctionCallIgnoresSafeGlobal(t *testing.T) {
	c := newTestCompilation(Options{})
	ref := c.program.Symbols.NewSymbol("result", logger.Loc{Start: 1})
	mathRef := c.program.Symbols.NewSymbol("Math", logger.Loc{Start: 2})

	call := ast.Expr{Loc: logger.Loc{Start: 3}, Data: &ast.ECall{
		Target: ast.Expr{Loc: logger.Loc{Start: 3}, Data: &ast.EDot{
			Target: ast.Ident(mathRef, logger.Loc{Start: 3}), Name: "max",
		}},
		Args: []ast.Expr{ast.Num(1, logger.Loc{Start: 3}), ast.Num(2, logger.Loc{Start: 3})},
	}}
	b := &Binding{Name: "result", Ref: ref, Kind: BindDerivedMemo, DeclaredAt: logger.Loc{Start: 1}, InitExpr: &call}
	c.bindings.set(ref, b)

	c.runWarningPass()

	assert.False(t, hasWarning(c, logger.MsgID_BlackBoxFunctionCall))
}

// TestWarnEmptyEffectFlagsCallbackWithNoTrackedReads exercises
// warnEmptyEffect directly: an effect() whose callback body reads nothing
// reactive will never re-run.
func TestWarnEmptyEffectFlagsCallbackWithNoTrackedReads(t *testing.T) {
	c := newTestCompilation(Options{})
	effectRef := c.program.Symbols.NewSymbol("effect", logger.Loc{Start: 1})
	c.macros.kindByRef[effectRef] = MacroEffect

	body := ast.Num(1, logger.Loc{Start: 2})
	call := ast.Expr{Loc: logger.Loc{Start: 3}, Data: &ast.ECall{
		Target: ast.Ident(effectRef, logger.Loc{Start: 3}),
		Args:   []ast.Expr{ast.Thunk(body)},
	}}

	c.warnEmptyEffect(call)

	assert.True(t, hasWarning(c, logger.MsgID_EmptyEffect))
}

// TestWarnEmptyEffectIgnoresCallbackWithTrackedRead checks the callback
// reading a state accessor is left alone.
func TestWarnEmptyEffectIgnoresCallbackWithTrackedRead(t *testing.T) {
	c := newTestCompilation(Options{})
	effectRef := c.program.Symbols.NewSymbol("effect", logger.Loc{Start: 1})
	c.macros.kindByRef[effectRef] = MacroEffect
	stateRef := c.program.Symbols.NewSymbol("count", logger.Loc{Start: 2})
	c.bindings.set(stateRef, &Binding{Name: "count", Ref: stateRef, Kind: BindState, DeclaredAt: logger.Loc{Start: 2}})

	body := ast.CallRef(stateRef, logger.Loc{Start: 3})
	call := ast.Expr{Loc: logger.Loc{Start: 3}, Data: &ast.ECall{
		Target: ast.Ident(effectRef, logger.Loc{Start: 3}),
		Args:   []ast.Expr{ast.Thunk(body)},
	}}

	c.warnEmptyEffect(call)

	assert.False(t, hasWarning(c, logger.MsgID_EmptyEffect))
}

// TestWarnMissingListKeyFlagsMapWithoutKey exercises warnMissingListKey
// directly against a `{xs.map(x => <li>...)}` shape with no key prop.
func TestWarnMissingListKeyFlagsMapWithoutKey(t *testing.T) {
	c := newTestCompilation(Options{})
	xsRef := c.program.Symbols.NewSymbol("xs", logger.Loc{Start: 1})
	xRef := c.program.Symbols.NewSymbol("x", logger.Loc{Start: 2})

	li := ast.Expr{Loc: logger.Loc{Start: 3}, Data: &ast.EJSXElement{TagKind: ast.JSXTagIntrinsic, TagName: "li"}}
	arrow := ast.Expr{Loc: logger.Loc{Start: 2}, Data: &ast.EArrow{Fn: ast.Fn{ExprBody: &li}}}
	_ = xRef

	mapCall := ast.Expr{Loc: logger.Loc{Start: 3}, Data: &ast.ECall{
		Target: ast.Expr{Loc: logger.Loc{Start: 1}, Data: &ast.EDot{Target: ast.Ident(xsRef, logger.Loc{Start: 1}), Name: "map"}},
		Args:   []ast.Expr{arrow},
	}}
	container := ast.Expr{Loc: logger.Loc{Start: 3}, Data: &ast.EJSXExprContainer{Value: mapCall}}

	c.warnMissingListKey(container)

	assert.True(t, hasWarning(c, logger.MsgID_MissingListKey))
}

// TestWarnMissingListKeyIgnoresMapWithKey checks the same shape with a key
// prop set doesn't warn.
func TestWarnMissingListKeyIgnoresMapWithKey(t *testing.T) {
	c := newTestCompilation(Options{})
	xsRef := c.program.Symbols.NewSymbol("xs", logger.Loc{Start: 1})

	key := ast.Str("id", logger.Loc{Start: 3})
	li := ast.Expr{Loc: logger.Loc{Start: 3}, Data: &ast.EJSXElement{TagKind: ast.JSXTagIntrinsic, TagName: "li", KeyOrNil: &key}}
	arrow := ast.Expr{Loc: logger.Loc{Start: 2}, Data: &ast.EArrow{Fn: ast.Fn{ExprBody: &li}}}

	mapCall := ast.Expr{Loc: logger.Loc{Start: 3}, Data: &ast.ECall{
		Target: ast.Expr{Loc: logger.Loc{Start: 1}, Data: &ast.EDot{Target: ast.Ident(xsRef, logger.Loc{Start: 1}), Name: "map"}},
		Args:   []ast.Expr{arrow},
	}}
	container := ast.Expr{Loc: logger.Loc{Start: 3}, Data: &ast.EJSXExprContainer{Value: mapCall}}

	c.warnMissingListKey(container)

	assert.False(t, hasWarning(c, logger.MsgID_MissingListKey))
}
