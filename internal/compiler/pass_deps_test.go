package compiler

import (
	"testing"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRunDependencyPassDetectsCycle builds two derivations whose Deps
// point at each other directly (the shape the scope pass would only ever
// produce through a construct a forward const reference can't express in
// source, e.g. two mutually recursive memo()s wired up by hand here) and
// checks the three-color DFS reports it as a hard error naming both
// bindings.
func TestRunDependencyPassDetectsCycle(t *testing.T) {
	c := newTestCompilation(Options{})

	aRef := c.program.Symbols.NewSymbol("a", logger.Loc{Start: 1})
	bRef := c.program.Symbols.NewSymbol("b", logger.Loc{Start: 2})

	a := &Binding{Name: "a", Ref: aRef, Kind: BindDerivedMemo, DeclaredAt: logger.Loc{Start: 1}, Deps: map[ast.Ref]bool{bRef: true}}
	b := &Binding{Name: "b", Ref: bRef, Kind: BindDerivedMemo, DeclaredAt: logger.Loc{Start: 2}, Deps: map[ast.Ref]bool{aRef: true}}
	c.bindings.set(aRef, a)
	c.bindings.set(bRef, b)

	var err error
	func() {
		defer recoverDiag(&err)
		c.runDependencyPass()
	}()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular derivation")
	assert.Contains(t, err.Error(), "a -> b -> a")
}

// TestRunDependencyPassAcceptsAcyclicChain checks the non-cyclic case
// doesn't falsely trip: a depends on b, b depends on nothing.
func TestRunDependencyPassAcceptsAcyclicChain(t *testing.T) {
	c := newTestCompilation(Options{})

	aRef := c.program.Symbols.NewSymbol("a", logger.Loc{Start: 1})
	bRef := c.program.Symbols.NewSymbol("b", logger.Loc{Start: 2})

	a := &Binding{Name: "a", Ref: aRef, Kind: BindDerivedMemo, DeclaredAt: logger.Loc{Start: 1}, Deps: map[ast.Ref]bool{bRef: true}}
	b := &Binding{Name: "b", Ref: bRef, Kind: BindDerivedMemo, DeclaredAt: logger.Loc{Start: 2}, Deps: map[ast.Ref]bool{}}
	c.bindings.set(aRef, a)
	c.bindings.set(bRef, b)

	var err error
	func() {
		defer recoverDiag(&err)
		c.runDependencyPass()
	}()

	assert.NoError(t, err)
}
