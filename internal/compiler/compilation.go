package compiler

import (
	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
)

// compilation is the mutable state threaded through every pass for one
// call to Compile. It is never shared across translation units: spec §5
// requires that the only process-wide state be the generated-symbol
// counter (reset per run, see names.go) and a warning latch that belongs
// to the out-of-scope router layer, so everything else lives here.
type compilation struct {
	opts    Options
	program *ast.Program
	source  *logger.Source
	log     *logger.Log

	macros *macroTable

	// bindings indexes every declared Binding by its Ref for O(1) lookup
	// from any pass. Built by the scope pass, read by every later one.
	bindings *bindingTable

	moduleScope *Scope

	// componentRefs marks every Ref the scope pass decided names a
	// component function. Only the returnsJSX heuristic (a component that
	// returns another component's call) reads it, during the scope pass.
	componentRefs map[ast.Ref]bool

	// hookRefs marks Refs that name a hook (a `use`-prefixed function
	// containing at least one macro call), which are allowed to declare
	// state/effect at their own top level (spec §4.1).
	hookRefs map[ast.Ref]bool

	// componentFns holds every function body the scope pass recognized as
	// a component or hook, so later passes (policy, lowering) can re-walk
	// exactly those bodies without re-running component detection.
	componentFns []*ast.Fn

	controlBlocks      []*ControlBlock
	controlBlockIDSeq  int
	regions            []*Region
	regionIDSeq        int
	nameSeq            int
	delegatedEvents    map[string]bool
	warnings           []Warning

	// droppedAssigns marks every conditional-let reassignment expression
	// finalizeConditionalLetRegions folded into a derivation's synthesized
	// initializer (pass_region_conditional.go); the statement lowering
	// pass drops these outright instead of lowering them into an invalid
	// `name() = value` accessor call.
	droppedAssigns map[*ast.EBinary]bool

	// runtimeRefs/runtimeOrder back runtimeImport (runtime.go): every
	// runtime helper the lowering pass reaches for is imported at most
	// once, in first-use order.
	runtimeRefs  map[string]ast.Ref
	runtimeOrder []string

	// templates accumulates the top-level template string declarations
	// fine-grained JSX lowering (§4.7) emits, in emission order.
	templates []ast.Stmt

	// componentFnSet lets lowerFn recognize a function literal the scope
	// pass already classified as a component/hook body, so it can dispatch
	// to lowerComponentBody instead of plain statement lowering. Built
	// once, right before the lowering pass starts (see compile.go).
	componentFnSet map[*ast.Fn]bool

	// ctxRef is the local bound to the nearest enclosing component/hook's
	// context object, valid only while lowering inside that body; hasCtxRef
	// distinguishes "no component entered yet" from the zero Ref.
	ctxRef    ast.Ref
	hasCtxRef bool

	// insertPopBeforeReturn is true while lowering statements that are
	// still within a component/hook's own control flow (not yet crossed
	// into a nested callback), so an explicit `return` gets a popContext()
	// call inserted right before it (§4.8).
	insertPopBeforeReturn bool
}

func newCompilation(program *ast.Program, opts Options) *compilation {
	c := &compilation{
		opts:            opts,
		program:         program,
		source:          program.Source,
		log:             logger.NewLog(),
		macros:          newMacroTable(opts.macroModule()),
		bindings:        newBindingTable(),
		componentRefs:   make(map[ast.Ref]bool),
		hookRefs:        make(map[ast.Ref]bool),
		delegatedEvents: defaultDelegatedEvents(),
		droppedAssigns:  make(map[*ast.EBinary]bool),
	}
	c.moduleScope = newScope(ScopeModule, nil)
	return c
}

func (c *compilation) newControlBlock(kind ControlBlockKind, parent *ControlBlock, cond *ast.Expr, crossesFn bool) *ControlBlock {
	c.controlBlockIDSeq++
	b := &ControlBlock{ID: c.controlBlockIDSeq, Kind: kind, Parent: parent, ConditionExpr: cond, CrossesFunctionBoundary: crossesFn}
	c.controlBlocks = append(c.controlBlocks, b)
	return b
}

func (c *compilation) emitWarning(id logger.MsgID, loc logger.Loc, text string) {
	data := c.log.MsgData(c.source, loc, text)
	c.log.AddMsg(logger.Msg{Kind: logger.Warning, ID: id, Data: data})
	w := Warning{ID: id, Code: logger.MsgIDName(id), Message: text, Location: data.Location}
	c.warnings = append(c.warnings, w)
	if c.opts.OnWarn != nil {
		c.opts.OnWarn(w)
	}
}
