package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDefaultDelegatedEventsCoversCommonInteractionEvents pins down the
// event names the fine-grained lowering mode assumes the runtime
// delegates at the document root (spec §9's open question about keeping
// this table byte-identical to the runtime's own). Renaming or dropping
// any of these here without a matching runtime change would silently
// regress to a non-delegated binding.
func TestDefaultDelegatedEventsCoversCommonInteractionEvents(t *testing.T) {
	events := defaultDelegatedEvents()

	for _, name := range []string{
		"click", "dblclick", "mousedown", "mouseup", "mouseenter", "mouseleave",
		"pointerdown", "pointerup", "touchstart", "touchend",
		"keydown", "keyup", "input", "change", "submit",
		"focus", "blur", "focusin", "focusout",
		"dragstart", "dragend", "drop", "wheel", "contextmenu",
	} {
		assert.True(t, events[name], "expected %q to be a delegated event", name)
	}
}

func TestDefaultDelegatedEventsExcludesUnknownNames(t *testing.T) {
	events := defaultDelegatedEvents()
	assert.False(t, events["load"])
	assert.False(t, events["resize"])
	assert.False(t, events["scroll"])
}

// TestDefaultDelegatedEventsReturnsAFreshMapEachCall guards against a
// shared mutable map leaking state between compilations -- each call to
// Compile gets its own delegatedEvents via newCompilation.
func TestDefaultDelegatedEventsReturnsAFreshMapEachCall(t *testing.T) {
	a := defaultDelegatedEvents()
	b := defaultDelegatedEvents()
	a["custom-test-event"] = true
	assert.False(t, b["custom-test-event"])
}
