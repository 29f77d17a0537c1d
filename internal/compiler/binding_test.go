package compiler

import (
	"math/rand"
	"testing"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingTableGetSetHas(t *testing.T) {
	table := newBindingTable()
	ref := ast.Ref{InnerIndex: 7}

	assert.Nil(t, table.get(ref))
	assert.False(t, table.has(ref))

	b := &Binding{Name: "x", Ref: ref}
	table.set(ref, b)

	assert.True(t, table.has(ref))
	assert.Same(t, b, table.get(ref))
	assert.Equal(t, 1, table.len())
}

// TestBindingTableMatchesPlainMapOracle round-trips a batch of refs
// through the swiss-backed bindingTable and an equivalent plain Go map
// and checks both agree on every lookup, the same oracle check
// mna-nenuphar runs for its own swiss-backed value maps.
func TestBindingTableMatchesPlainMapOracle(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	table := newBindingTable()
	oracle := map[ast.Ref]*Binding{}

	const n = 500
	refs := make([]ast.Ref, n)
	for i := 0; i < n; i++ {
		ref := ast.Ref{InnerIndex: uint32(i)}
		refs[i] = ref
		b := &Binding{Name: "v", Ref: ref, SlotIndex: i}
		table.set(ref, b)
		oracle[ref] = b
	}

	r.Shuffle(n, func(i, j int) { refs[i], refs[j] = refs[j], refs[i] })
	for _, ref := range refs {
		want := oracle[ref]
		got := table.get(ref)
		require.NotNil(t, got)
		assert.Equal(t, want.SlotIndex, got.SlotIndex)
	}
	assert.Equal(t, len(oracle), table.len())

	seen := map[ast.Ref]bool{}
	table.each(func(ref ast.Ref, b *Binding) {
		seen[ref] = true
		assert.Equal(t, oracle[ref].SlotIndex, b.SlotIndex)
	})
	assert.Equal(t, len(oracle), len(seen))
}

func TestBindingIsDerivedAndIsReactive(t *testing.T) {
	assert.True(t, BindDerivedPending.IsDerived())
	assert.True(t, BindDerivedMemo.IsDerived())
	assert.True(t, BindDerivedGetter.IsDerived())
	assert.False(t, BindState.IsDerived())
	assert.False(t, BindAlias.IsDerived())

	assert.True(t, BindState.IsReactive())
	assert.True(t, BindProp.IsReactive())
	assert.False(t, BindPlain.IsReactive())
	assert.False(t, BindStore.IsReactive())
}

func TestIsDestructuredStore(t *testing.T) {
	b := &Binding{Kind: BindDestructuredStateAlias}
	assert.True(t, b.IsDestructuredStore())
	b2 := &Binding{Kind: BindAlias}
	assert.False(t, b2.IsDestructuredStore())
}
