package compiler

import (
	"testing"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRunRegionPassGroupsConstDerivationsSharingABlock covers region-member
// kind (a): two `const` derivations declared directly inside the same
// if-block are merged into a single Region by runRegionPass itself, not by
// a Region{} literal wired up by hand.
func TestRunRegionPassGroupsConstDerivationsSharingABlock(t *testing.T) {
	c := newTestCompilation(Options{})
	block := c.newControlBlock(ControlBlockIf, nil, nil, false)

	widthRef := c.program.Symbols.NewSymbol("width", logger.Loc{Start: 1})
	width := &Binding{
		Name: "width", Ref: widthRef, Kind: BindDerivedPending,
		DeclaredAt: logger.Loc{Start: 1}, DeclBlock: block,
	}
	c.bindings.set(widthRef, width)

	heightRef := c.program.Symbols.NewSymbol("height", logger.Loc{Start: 2})
	height := &Binding{
		Name: "height", Ref: heightRef, Kind: BindDerivedPending,
		DeclaredAt: logger.Loc{Start: 2}, DeclBlock: block,
	}
	c.bindings.set(heightRef, height)

	c.runRegionPass()

	require.NotNil(t, width.Region)
	require.NotNil(t, height.Region)
	assert.Same(t, width.Region, height.Region)
	assert.ElementsMatch(t, []*Binding{width, height}, width.Region.Outputs)
	assert.Same(t, block, width.Region.Block)
}

// TestRunRegionPassLeavesSoleOccupantUngrouped makes sure a lone derivation
// in a block never gets wrapped in a Region of one.
func TestRunRegionPassLeavesSoleOccupantUngrouped(t *testing.T) {
	c := newTestCompilation(Options{})
	block := c.newControlBlock(ControlBlockIf, nil, nil, false)

	ref := c.program.Symbols.NewSymbol("label", logger.Loc{Start: 1})
	b := &Binding{Name: "label", Ref: ref, Kind: BindDerivedPending, DeclaredAt: logger.Loc{Start: 1}, DeclBlock: block}
	c.bindings.set(ref, b)

	c.runRegionPass()

	assert.Nil(t, b.Region)
}

// TestFinalizeConditionalLetRegionsPromotesIfElsePair covers region-member
// kind (b): a `let` reassigned in both arms of one if/else is promoted to a
// derivation whose synthesized initializer is `test ? ifVal : elseVal`, and
// then joins the same Region as a `const` derivation declared directly in
// the if-arm -- exercising finalizeConditionalLetRegions and runRegionPass
// together, end to end.
func TestFinalizeConditionalLetRegionsPromotesIfElsePair(t *testing.T) {
	c := newTestCompilation(Options{})

	flagRef := c.program.Symbols.NewSymbol("flag", logger.Loc{Start: 1})
	c.bindings.set(flagRef, &Binding{Name: "flag", Ref: flagRef, Kind: BindState, DeclaredAt: logger.Loc{Start: 1}})
	condExpr := ast.Ident(flagRef, logger.Loc{Start: 1})

	ifBlock := c.newControlBlock(ControlBlockIf, nil, &condExpr, false)
	elseBlock := c.newControlBlock(ControlBlockElse, nil, &condExpr, false)

	labelRef := c.program.Symbols.NewSymbol("label", logger.Loc{Start: 2})
	initExpr := ast.Str("neutral", logger.Loc{Start: 2})
	label := &Binding{
		Name: "label", Ref: labelRef, Kind: BindPlain,
		DeclaredAt: logger.Loc{Start: 2}, DeclInitExpr: &initExpr,
	}
	c.bindings.set(labelRef, label)

	hotVal := ast.Str("hot", logger.Loc{Start: 3})
	coldVal := ast.Str("cold", logger.Loc{Start: 4})
	hotAssign := ast.Assign(ast.Ident(labelRef, logger.Loc{Start: 3}), hotVal).Data.(*ast.EBinary)
	coldAssign := ast.Assign(ast.Ident(labelRef, logger.Loc{Start: 4}), coldVal).Data.(*ast.EBinary)

	label.AssignBlocks = []*ControlBlock{ifBlock, elseBlock}
	label.AssignValues = []ast.Expr{hotVal, coldVal}
	label.AssignNodes = []*ast.EBinary{hotAssign, coldAssign}

	// a sibling const derivation declared directly in the if-arm; promoting
	// label should land it in the same Region as this one.
	siblingRef := c.program.Symbols.NewSymbol("badge", logger.Loc{Start: 5})
	sibling := &Binding{
		Name: "badge", Ref: siblingRef, Kind: BindDerivedPending,
		DeclaredAt: logger.Loc{Start: 5}, DeclBlock: ifBlock,
	}
	c.bindings.set(siblingRef, sibling)

	c.finalizeConditionalLetRegions()

	require.Equal(t, BindDerivedPending, label.Kind)
	require.Same(t, ifBlock, label.DeclBlock)
	require.NotNil(t, label.InitExpr)
	cond, ok := label.InitExpr.Data.(*ast.ECond)
	require.True(t, ok, "synthesized initializer must be a conditional expression")
	condRef, ok := ast.IsIdentifier(cond.Test)
	require.True(t, ok)
	assert.Equal(t, flagRef, condRef)
	assert.NotSame(t, condExpr.Data, cond.Test.Data, "condition must be cloned, not shared with the if-statement's own Test")
	yesStr, ok := cond.Yes.Data.(*ast.EString)
	require.True(t, ok)
	assert.Equal(t, "hot", yesStr.Value)
	noStr, ok := cond.No.Data.(*ast.EString)
	require.True(t, ok)
	assert.Equal(t, "cold", noStr.Value)
	assert.True(t, label.Deps[flagRef])

	assert.True(t, c.droppedAssigns[hotAssign])
	assert.True(t, c.droppedAssigns[coldAssign])

	c.runRegionPass()

	require.NotNil(t, label.Region)
	require.NotNil(t, sibling.Region)
	assert.Same(t, sibling.Region, label.Region)
	assert.ElementsMatch(t, []*Binding{sibling, label}, label.Region.Outputs)
}

// TestFinalizeConditionalLetRegionsFallsBackForMissingArm checks the
// documented fallback: when only one arm of the if/else ever assigns the
// let, the other arm's synthesized value is the let's own declared
// initializer, not an error.
func TestFinalizeConditionalLetRegionsFallsBackForMissingArm(t *testing.T) {
	c := newTestCompilation(Options{})

	flagRef := c.program.Symbols.NewSymbol("flag", logger.Loc{Start: 1})
	condExpr := ast.Ident(flagRef, logger.Loc{Start: 1})
	ifBlock := c.newControlBlock(ControlBlockIf, nil, &condExpr, false)

	labelRef := c.program.Symbols.NewSymbol("label", logger.Loc{Start: 2})
	initExpr := ast.Str("neutral", logger.Loc{Start: 2})
	label := &Binding{
		Name: "label", Ref: labelRef, Kind: BindPlain,
		DeclaredAt: logger.Loc{Start: 2}, DeclInitExpr: &initExpr,
	}
	hotVal := ast.Str("hot", logger.Loc{Start: 3})
	hotAssign := ast.Assign(ast.Ident(labelRef, logger.Loc{Start: 3}), hotVal).Data.(*ast.EBinary)
	label.AssignBlocks = []*ControlBlock{ifBlock}
	label.AssignValues = []ast.Expr{hotVal}
	label.AssignNodes = []*ast.EBinary{hotAssign}
	c.bindings.set(labelRef, label)

	c.finalizeConditionalLetRegions()

	require.Equal(t, BindDerivedPending, label.Kind)
	cond := label.InitExpr.Data.(*ast.ECond)
	noStr, ok := cond.No.Data.(*ast.EString)
	require.True(t, ok)
	assert.Equal(t, "neutral", noStr.Value)
}

// TestFinalizeConditionalLetRegionsLeavesUnsupportedShapesAlone checks the
// documented disqualifiers: a let reassigned across two unrelated
// if-statements (different ConditionExpr pointers) is left as a plain
// binding exactly as before.
func TestFinalizeConditionalLetRegionsLeavesUnsupportedShapesAlone(t *testing.T) {
	c := newTestCompilation(Options{})

	cond1 := ast.Ident(c.program.Symbols.NewSymbol("a", logger.Loc{Start: 1}), logger.Loc{Start: 1})
	cond2 := ast.Ident(c.program.Symbols.NewSymbol("b", logger.Loc{Start: 2}), logger.Loc{Start: 2})
	block1 := c.newControlBlock(ControlBlockIf, nil, &cond1, false)
	block2 := c.newControlBlock(ControlBlockIf, nil, &cond2, false)

	labelRef := c.program.Symbols.NewSymbol("label", logger.Loc{Start: 3})
	label := &Binding{Name: "label", Ref: labelRef, Kind: BindPlain, DeclaredAt: logger.Loc{Start: 3}}
	val1 := ast.Str("x", logger.Loc{Start: 4})
	val2 := ast.Str("y", logger.Loc{Start: 5})
	label.AssignBlocks = []*ControlBlock{block1, block2}
	label.AssignValues = []ast.Expr{val1, val2}
	label.AssignNodes = []*ast.EBinary{
		ast.Assign(ast.Ident(labelRef, logger.Loc{Start: 4}), val1).Data.(*ast.EBinary),
		ast.Assign(ast.Ident(labelRef, logger.Loc{Start: 5}), val2).Data.(*ast.EBinary),
	}
	c.bindings.set(labelRef, label)

	c.finalizeConditionalLetRegions()

	assert.Equal(t, BindPlain, label.Kind)
	assert.Nil(t, label.InitExpr)
	assert.Empty(t, c.droppedAssigns)
}

// TestFinalizeConditionalLetRegionsSkipsDisqualifiedBindings checks that an
// unconditional reassignment recorded anywhere in the binding's lifetime
// (DisqualifiesLetRegion, set by recordLetReassign) blocks promotion even
// when the recorded AssignBlocks would otherwise match the supported shape.
func TestFinalizeConditionalLetRegionsSkipsDisqualifiedBindings(t *testing.T) {
	c := newTestCompilation(Options{})

	condExpr := ast.Ident(c.program.Symbols.NewSymbol("flag", logger.Loc{Start: 1}), logger.Loc{Start: 1})
	ifBlock := c.newControlBlock(ControlBlockIf, nil, &condExpr, false)
	elseBlock := c.newControlBlock(ControlBlockElse, nil, &condExpr, false)

	labelRef := c.program.Symbols.NewSymbol("label", logger.Loc{Start: 2})
	label := &Binding{Name: "label", Ref: labelRef, Kind: BindPlain, DeclaredAt: logger.Loc{Start: 2}, DisqualifiesLetRegion: true}
	hotVal := ast.Str("hot", logger.Loc{Start: 3})
	coldVal := ast.Str("cold", logger.Loc{Start: 4})
	label.AssignBlocks = []*ControlBlock{ifBlock, elseBlock}
	label.AssignValues = []ast.Expr{hotVal, coldVal}
	label.AssignNodes = []*ast.EBinary{
		ast.Assign(ast.Ident(labelRef, logger.Loc{Start: 3}), hotVal).Data.(*ast.EBinary),
		ast.Assign(ast.Ident(labelRef, logger.Loc{Start: 4}), coldVal).Data.(*ast.EBinary),
	}
	c.bindings.set(labelRef, label)

	c.finalizeConditionalLetRegions()

	assert.Equal(t, BindPlain, label.Kind)
	assert.Nil(t, label.InitExpr)
}
