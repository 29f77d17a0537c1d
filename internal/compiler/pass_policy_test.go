package compiler

import (
	"testing"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
	"github.com/stretchr/testify/assert"
)

func newTestCompilation(opts Options) *compilation {
	prog := &ast.Program{Source: &logger.Source{PrettyPath: "test.fict"}, Symbols: ast.NewSymbolTable()}
	return newCompilation(prog, opts)
}

// TestLazyConditionalKeepsBranchDerivationAsGetter exercises the policy
// described in options.go: a derivation read from JSX but declared inside
// a conditional branch (never merged into a region) stays a getter
// instead of being forced into a memo when LazyConditional is set.
func TestLazyConditionalKeepsBranchDerivationAsGetter(t *testing.T) {
	c := newTestCompilation(Options{LazyConditional: true})
	ref := c.program.Symbols.NewSymbol("label", logger.Loc{Start: 1})
	block := c.newControlBlock(ControlBlockIf, nil, nil, false)
	b := &Binding{
		Name: "label", Ref: ref, Kind: BindDerivedPending,
		OwnerScope: c.moduleScope, DeclaredAt: logger.Loc{Start: 1}, DeclBlock: block,
		UsedInReactiveSink: true,
	}
	c.moduleScope.Kind = ScopeFunctionBody // keep b.OwnerScope.Kind != ScopeModule
	c.bindings.set(ref, b)

	c.runPolicyPass()

	assert.Equal(t, BindDerivedGetter, b.Kind)
}

// TestWithoutLazyConditionalSameShapeBecomesMemo pins down the baseline
// this option changes: with LazyConditional off, the same binding is
// forced to a memo exactly as it was before the option existed.
func TestWithoutLazyConditionalSameShapeBecomesMemo(t *testing.T) {
	c := newTestCompilation(Options{})
	ref := c.program.Symbols.NewSymbol("label", logger.Loc{Start: 1})
	block := c.newControlBlock(ControlBlockIf, nil, nil, false)
	b := &Binding{
		Name: "label", Ref: ref, Kind: BindDerivedPending,
		OwnerScope: c.moduleScope, DeclaredAt: logger.Loc{Start: 1}, DeclBlock: block,
		UsedInReactiveSink: true,
	}
	c.moduleScope.Kind = ScopeFunctionBody
	c.bindings.set(ref, b)

	c.runPolicyPass()

	assert.Equal(t, BindDerivedMemo, b.Kind)
}

// TestLazyConditionalDoesNotApplyToModuleScopedOrRegionedBindings checks
// the two exemptions spoken for in the classification loop: a
// module-scoped derivation and a region member always memoize regardless
// of LazyConditional.
func TestLazyConditionalDoesNotApplyToModuleScopedOrRegionedBindings(t *testing.T) {
	c := newTestCompilation(Options{LazyConditional: true})
	block := c.newControlBlock(ControlBlockIf, nil, nil, false)

	moduleRef := c.program.Symbols.NewSymbol("title", logger.Loc{Start: 1})
	moduleBinding := &Binding{
		Name: "title", Ref: moduleRef, Kind: BindDerivedPending,
		OwnerScope: c.moduleScope, DeclaredAt: logger.Loc{Start: 1}, DeclBlock: block,
		UsedInReactiveSink: true,
	}
	c.bindings.set(moduleRef, moduleBinding)

	regionRef := c.program.Symbols.NewSymbol("width", logger.Loc{Start: 2})
	fnScope := newScope(ScopeFunctionBody, c.moduleScope)
	regionBinding := &Binding{
		Name: "width", Ref: regionRef, Kind: BindDerivedPending,
		OwnerScope: fnScope, DeclaredAt: logger.Loc{Start: 2}, DeclBlock: block,
		UsedInReactiveSink: true, Region: &Region{},
	}
	c.bindings.set(regionRef, regionBinding)

	c.runPolicyPass()

	assert.Equal(t, BindDerivedMemo, moduleBinding.Kind)
	assert.Equal(t, BindDerivedMemo, regionBinding.Kind)
}

// TestLazyConditionalDependencyPropagationSkipsBranchGetters makes sure
// the fix to the dependency-propagation loop sticks: a lazy getter that
// also feeds another derivation's initializer must not be silently
// upgraded back to a memo.
func TestLazyConditionalDependencyPropagationSkipsBranchGetters(t *testing.T) {
	c := newTestCompilation(Options{LazyConditional: true})
	block := c.newControlBlock(ControlBlockIf, nil, nil, false)
	c.moduleScope.Kind = ScopeFunctionBody

	leafRef := c.program.Symbols.NewSymbol("leaf", logger.Loc{Start: 1})
	leaf := &Binding{
		Name: "leaf", Ref: leafRef, Kind: BindDerivedPending,
		OwnerScope: c.moduleScope, DeclaredAt: logger.Loc{Start: 1}, DeclBlock: block,
		UsedInReactiveSink: true,
	}
	c.bindings.set(leafRef, leaf)

	parentRef := c.program.Symbols.NewSymbol("parent", logger.Loc{Start: 2})
	parent := &Binding{
		Name: "parent", Ref: parentRef, Kind: BindDerivedPending,
		OwnerScope: c.moduleScope, DeclaredAt: logger.Loc{Start: 2}, DeclBlock: block,
		UsedInReactiveSink: true, Deps: map[ast.Ref]bool{leafRef: true},
	}
	c.bindings.set(parentRef, parent)

	c.runPolicyPass()

	assert.Equal(t, BindDerivedGetter, leaf.Kind)
}
