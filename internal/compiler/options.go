// Package compiler implements the transformation pipeline described in
// spec §2: macro recognition, scope-and-binding analysis, dependency-graph
// construction, region grouping, memo/getter and tracked/untracked
// policy, coded warnings, and lowering to either factory-call or
// template-clone JSX. See Compile for the single entry point.
package compiler

import "github.com/fictjs/fictc/internal/logger"

// Options configures a single call to Compile. The enumerated fields
// match spec §6 exactly; there is no escape hatch to add ad-hoc options
// because the runtime this compiler targets only understands this fixed
// set.
type Options struct {
	// FineGrainedDom selects template-clone lowering (§4.7) over the
	// default factory-call lowering (§4.6).
	FineGrainedDom bool

	// LazyConditional, when set, keeps a derivation declared directly
	// inside a conditional branch (and not grouped into a region) as a
	// lazy getter instead of a memo. It does not hoist branch conditions.
	LazyConditional bool

	// GetterCache caches repeated reads of a getter within the same
	// synchronous callback body, introducing a `__cached_<name>` local.
	GetterCache bool

	// Optimize and Dev are accepted but no pass reads either field:
	// generated-symbol names and warning text are the same with or
	// without them.
	Optimize bool
	Dev      bool

	// Sourcemap is a hint to the (external) printer that it should
	// preserve mappings; the compiler itself always carries source
	// locations through on every generated node regardless of this flag.
	Sourcemap bool

	// MacroModule is the import specifier the macro intrinsics
	// (state/effect/memo/store) must come from. It defaults to "fict"
	// when empty.
	MacroModule string

	// RuntimeModule is the import specifier generated runtime calls
	// (useSignal, useMemo, bindText, ...) are attributed to. Defaults to
	// "fict/runtime" when empty.
	RuntimeModule string

	// OnWarn receives every coded warning (§6) at the moment any pass
	// emits it. It may be nil, in which case warnings are only
	// available via the Warnings return value of Compile.
	OnWarn func(Warning)
}

func (o Options) macroModule() string {
	if o.MacroModule == "" {
		return "fict"
	}
	return o.MacroModule
}

func (o Options) runtimeModule() string {
	if o.RuntimeModule == "" {
		return "fict/runtime"
	}
	return o.RuntimeModule
}

// Warning is the public shape of a single coded diagnostic, handed both
// to Options.OnWarn and returned from Compile.
type Warning struct {
	ID       logger.MsgID
	Code     string
	Message  string
	Location *logger.MsgLocation
}
