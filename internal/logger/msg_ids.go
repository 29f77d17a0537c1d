package logger

// This is the closed set of warning codes the warning pass (§2.6) can
// produce, mirrored after esbuild's own msg_ids.go table. Keeping the list
// in one place makes it possible to have an exhaustive switch anywhere a
// caller wants to filter or silence specific warnings, and keeps the
// strings used for `--ignore-warning=` style flags stable across releases.
const (
	MsgID_None MsgID = iota

	// A property of a reactive state object was mutated directly instead
	// of going through the setter, e.g. `u.a = 1` where `u` is `state({a:0})`.
	MsgID_DirectNestedMutation

	// A member expression used a computed (dynamic) key where the
	// compiler cannot statically tell whether the access touches a
	// reactive property, e.g. `obj[key]`.
	MsgID_DynamicPropertyAccess

	// A derivation's dependencies could not be determined because its
	// initializer calls a function the compiler has no reactivity
	// information about.
	MsgID_BlackBoxFunctionCall

	// An effect body contains no tracked reads, so it will never re-run.
	MsgID_EmptyEffect

	// A `store` was created at module scope instead of inside a component
	// or hook body. (`state` at module scope is a hard error, not this
	// warning.)
	MsgID_ModuleLevelState

	// A `let` whose initializer read a reactive value was reassigned
	// outside any control block; the variable is a plain snapshot and the
	// new value tracks nothing. (Reassigning a `const` alias of a reactive
	// binding is a hard error, not this warning.)
	MsgID_AliasReassignment

	// A component function was declared inside another component's body.
	MsgID_NestedComponent

	// A memo's initializer contains an assignment, `++`/`--`, or a call
	// to a setter accessor -- side effects that should live in an effect.
	MsgID_MemoSideEffect

	// A list produced by mapping over reactive data has no `key` prop.
	MsgID_MissingListKey

	// An explicit `memo()` or `store()` was declared inside a loop or
	// conditional block. (`state`/`effect` in the same place are hard
	// errors, not this warning.)
	MsgID_ReactivePrimitiveInNonJSXControlFlow
)

// MsgIDName returns the stable string form of a warning code, used both in
// diagnostic output and as the key callers match against to filter
// warnings.
func MsgIDName(id MsgID) string {
	switch id {
	case MsgID_DirectNestedMutation:
		return "direct-nested-mutation"
	case MsgID_DynamicPropertyAccess:
		return "dynamic-property-access"
	case MsgID_BlackBoxFunctionCall:
		return "black-box-function-call"
	case MsgID_EmptyEffect:
		return "empty-effect"
	case MsgID_ModuleLevelState:
		return "module-level-state"
	case MsgID_AliasReassignment:
		return "alias-reassignment"
	case MsgID_NestedComponent:
		return "nested-component"
	case MsgID_MemoSideEffect:
		return "memo-side-effect"
	case MsgID_MissingListKey:
		return "missing-list-key"
	case MsgID_ReactivePrimitiveInNonJSXControlFlow:
		return "reactive-primitive-in-non-jsx-control-flow"
	default:
		return "unknown"
	}
}
