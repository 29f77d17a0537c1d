package compiler

import "github.com/fictjs/fictc/internal/ast"

// ControlBlockKind identifies the kind of control-flow construct a block
// belongs to. Region identity (§3, "Region") and the placement-rule hard
// errors (§4.1) both key off this.
type ControlBlockKind uint8

const (
	ControlBlockNone ControlBlockKind = iota
	ControlBlockIf
	ControlBlockElse
	ControlBlockSwitchCase
	ControlBlockLoop
	ControlBlockTernary
)

// ControlBlock represents one conditional or loop arm. Nesting is
// tracked through Parent so the region pass can find the lowest common
// enclosing block of a set of bindings (§3, "Region identity").
type ControlBlock struct {
	ID     int
	Kind   ControlBlockKind
	Parent *ControlBlock

	// ConditionExpr is the test expression of the owning `if`/`switch`/
	// `while`; nil for a `for` body. finalizeConditionalLetRegions reads
	// it to build a promoted let's conditional initializer.
	ConditionExpr *ast.Expr

	// CrossesFunctionBoundary marks a block nested inside a callback
	// rather than directly in a component/hook body (§4.3, "must not
	// cross a function boundary"). No pass reads it; branch conditions
	// are not hoisted.
	CrossesFunctionBoundary bool
}

// ScopeKind distinguishes the handful of lexical contexts this compiler
// cares about. Unlike a general-purpose JS scope tree we don't need a
// separate catch/class/label kind since state/effect placement rules
// only distinguish "component/hook top level" from everything else.
type ScopeKind uint8

const (
	ScopeModule ScopeKind = iota
	ScopeFunctionBody
	ScopeBlock
	ScopeArrow
)

// Scope is one lexical scope. FuncDepth is 0 at module scope and
// increases by one for every nested function body (including arrow
// functions), which is exactly the quantity the hard-error rule "nested
// function depth > 1 from the top of the component" needs (spec §4.1).
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Children []*Scope
	Bindings map[string]*Binding

	FuncDepth int

	// IsComponentOrHook marks the function-body scope of a component or
	// hook (spec §4.8); state/effect are only legal at the top of such a
	// scope.
	IsComponentOrHook bool
	ComponentName     string

	// ControlBlock is the nearest enclosing control-flow block, nil when
	// this scope sits directly at the top of a component/hook/function
	// body.
	ControlBlock *ControlBlock

	// IsEventHandlerBody is copied from the parent scope by newScope.
	// No pass sets it to true, so it is false in every scope; the policy
	// pass decides tracked vs. untracked use sites on its own walk.
	IsEventHandlerBody bool

	// SlotCounter hands out sequential state slot indices in textual
	// order within one component/hook body (spec §3, "Lifecycle").
	SlotCounter *int
}

func newScope(kind ScopeKind, parent *Scope) *Scope {
	s := &Scope{Kind: kind, Parent: parent, Bindings: make(map[string]*Binding)}
	if parent != nil {
		s.FuncDepth = parent.FuncDepth
		s.ControlBlock = parent.ControlBlock
		s.IsEventHandlerBody = parent.IsEventHandlerBody
		s.SlotCounter = parent.SlotCounter
		parent.Children = append(parent.Children, s)
	}
	return s
}

// lookup walks outward through the scope chain, respecting shadowing: an
// inner binding of the same name hides an outer reactive one entirely
// (spec §3, invariants).
func (s *Scope) lookup(name string) *Binding {
	for sc := s; sc != nil; sc = sc.Parent {
		if b, ok := sc.Bindings[name]; ok {
			return b
		}
	}
	return nil
}

func (s *Scope) declare(b *Binding) {
	s.Bindings[b.Name] = b
}

// nearestComponentOrHook returns the scope of the innermost enclosing
// component or hook body, or nil at true module scope.
func (s *Scope) nearestComponentOrHook() *Scope {
	for sc := s; sc != nil; sc = sc.Parent {
		if sc.Kind == ScopeFunctionBody && sc.IsComponentOrHook {
			return sc
		}
	}
	return nil
}

// Region is a set of sibling derivations materialized together as one
// memo returning a record (spec §3, "Region"; §4.3).
type Region struct {
	ID      int
	Block   *ControlBlock
	Outputs []*Binding

	// RecordRef is the generated local the region memo/getter is bound
	// to, e.g. `const __fictRegion0 = useMemo(...)`.
	RecordRef ast.Ref
}
