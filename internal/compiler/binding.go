package compiler

import (
	"github.com/dolthub/swiss"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
)

// BindingKind is the classification every local name receives exactly
// once, in exactly one scope (spec §3 invariants). BindDerivedPending is
// an internal-only placeholder used between the scope pass and the
// policy pass; it never survives past Compile.
type BindingKind uint8

const (
	BindPlain BindingKind = iota
	BindState
	BindDerivedPending
	BindDerivedMemo
	BindDerivedGetter
	BindAlias
	BindDestructuredStateAlias
	BindProp
	BindPropRest
	BindStore
)

func (k BindingKind) IsDerived() bool {
	return k == BindDerivedPending || k == BindDerivedMemo || k == BindDerivedGetter
}

// IsReactive reports whether a `const x = y` whose right-hand side names
// a binding of this kind makes x a live alias of it. It is not the exact
// set of reads lowerIdentifierRead rewrites to an accessor call: prop-rest
// reads stay bare identifiers, and destructured-state-alias reads are
// called although that kind is not listed here.
func (k BindingKind) IsReactive() bool {
	switch k {
	case BindState, BindDerivedPending, BindDerivedMemo, BindDerivedGetter, BindAlias, BindProp, BindPropRest:
		return true
	default:
		return false
	}
}

// Binding is the side-table record for one declared name (spec §3,
// "Binding"). It is keyed by ast.Ref rather than embedded in the AST so
// that passes never have to mutate the tree just to annotate it.
type Binding struct {
	Name       string
	Ref        ast.Ref
	Kind       BindingKind
	OwnerScope *Scope
	DeclaredAt logger.Loc

	// Deps is the set of state/derived Refs this derivation transitively
	// reads, computed by the scope pass and consumed by the dependency
	// pass (§4.2). Only meaningful for derived bindings.
	Deps map[ast.Ref]bool

	// InitExpr is the derivation's own initializer expression, kept
	// around (rather than re-deriving it from the statement tree) so the
	// warning pass can scan it once for side effects (§4.8 item 5) without
	// threading a second tree walk through every declaration site.
	InitExpr *ast.Expr

	// DeclBlock is the control-flow block the binding's declaration
	// itself lives in (nil for the top of a component/hook body).
	DeclBlock *ControlBlock

	// DeclInitExpr is a plain `let`'s own initializer, kept as the value
	// to fall back to for whichever arm of a conditional reassignment
	// doesn't fire. Nil for `let x;` with no initializer.
	DeclInitExpr *ast.Expr

	// AssignBlocks records every control-flow block a `let` was
	// conditionally reassigned inside, paired positionally with
	// AssignValues (the reassignment's right-hand side) and AssignNodes
	// (the assignment expression itself, so the finalize step below can
	// mark the ones it folds into a derivation for removal during
	// lowering). finalizeConditionalLetRegions (pass_region_conditional.go)
	// consumes these once the scope pass finishes walking the whole
	// binding's lifetime, promoting the binding to BindDerivedPending
	// when they describe exactly one if/else pair (§4.3, "pending region
	// outputs"); anything more irregular is left a plain local.
	AssignBlocks []*ControlBlock
	AssignValues []ast.Expr
	AssignNodes  []*ast.EBinary

	// DisqualifiesLetRegion is set the moment a `let` is reassigned in a
	// shape finalizeConditionalLetRegions can't safely fold into a
	// derivation: unconditionally (outside any control block, where the
	// write has to stay a real assignment) or with a compound operator
	// (`+=` and friends, which read the old value rather than replacing
	// it outright).
	DisqualifiesLetRegion bool

	// SlotIndex is the stable, textual-order slot index for a `state`
	// binding (spec §3, "Lifecycle"). -1 for anything else.
	SlotIndex int

	// AliasOf is the Ref this alias's accessor reads through, for
	// BindAlias and BindDestructuredStateAlias.
	AliasOf ast.Ref

	// AliasField is set for BindDestructuredStateAlias: the property
	// name read off AliasOf's value, e.g. "a" in `const { a } = store`.
	AliasField string

	// Region is set once this binding is grouped by the region pass
	// (§4.3); nil if it stays a standalone memo/getter.
	Region *Region

	// UsedInReactiveSink / UsedInEventOnlySink record which kind of use
	// site this derivation was read from at least once, populated by the
	// policy pass's use-site scan (§4.4) and consumed by the same pass
	// to decide memo vs. getter.
	UsedInReactiveSink  bool
	UsedInEventOnlySink bool

	// HasSideEffectInInitializer flags a derivation whose RHS contains an
	// assignment, update expression, or setter call -- raised by the
	// warning pass as memo-side-effect.
	HasSideEffectInInitializer bool

	// IsReactiveSnapshot marks a plain `let` whose initializer read at
	// least one reactive name (spec §4.5, "let snap = reactive" ->
	// one-shot snapshot). A later plain reassignment of such a binding
	// is legal but silently drops any appearance of continued tracking,
	// which is exactly what the alias-reassignment warning flags here
	// (spec §7 only lists derived-reassignment and destructured-alias
	// writes as hard errors; this is the softer case §6's warning code
	// covers).
	IsReactiveSnapshot bool
}

// IsDestructuredStore reports whether ref aliasing records a field pulled
// off a store/state object rather than aliasing the binding wholesale.
func (b *Binding) IsDestructuredStore() bool {
	return b.Kind == BindDestructuredStateAlias
}

// bindingTable is the Ref-keyed side table indexing every Binding the
// scope pass declares, backed by a swiss-table hash map rather than a
// plain Go map. Every later pass (dependency, region, policy, warning,
// lowering) looks a binding up by Ref constantly -- it is by far the
// hottest map in the whole pipeline -- which is the same tradeoff
// mna-nenuphar's own machine.Map makes for its hot Value maps (see
// lang/machine/map.go there): swiss avoids Go's built-in map's per-bucket
// overhead at the size this table grows to in any real component tree.
type bindingTable struct {
	m *swiss.Map[ast.Ref, *Binding]
}

func newBindingTable() *bindingTable {
	return &bindingTable{m: swiss.NewMap[ast.Ref, *Binding](64)}
}

func (t *bindingTable) get(ref ast.Ref) *Binding {
	v, ok := t.m.Get(ref)
	if !ok {
		return nil
	}
	return v
}

func (t *bindingTable) set(ref ast.Ref, b *Binding) {
	t.m.Put(ref, b)
}

func (t *bindingTable) has(ref ast.Ref) bool {
	return t.m.Has(ref)
}

func (t *bindingTable) len() int {
	return int(t.m.Count())
}

// each visits every entry in unspecified order, mirroring a plain Go
// map's own iteration guarantees. Every caller that needs a stable
// traversal already sorts the collected slice afterward (by declaration
// order or by Ref), exactly as it did when this table was a bare
// map[ast.Ref]*Binding.
func (t *bindingTable) each(fn func(ref ast.Ref, b *Binding)) {
	t.m.Iter(func(ref ast.Ref, b *Binding) bool {
		fn(ref, b)
		return false
	})
}
