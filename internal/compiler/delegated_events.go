package compiler

// defaultDelegatedEvents is the fixed set of DOM event names the
// fine-grained JSX lowering mode (spec §4.7) attaches once at the
// document root and dispatches through target.closest lookups, rather
// than binding a listener on every element instance. This list must stay
// byte-identical to the runtime's own delegation table, since the
// runtime is the other half of the contract this compiler emits calls
// against -- a name present here but missing there is emitted for
// delegation and would never be dispatched at all, while a name missing
// here but present there is bound per element through bindEvent, which
// stays correct but gives up delegation.
func defaultDelegatedEvents() map[string]bool {
	return map[string]bool{
		"click":      true,
		"dblclick":   true,
		"mousedown":  true,
		"mouseup":    true,
		"mouseenter": true,
		"mouseleave": true,
		"mouseover":  true,
		"mouseout":   true,
		"mousemove":  true,
		"pointerdown": true,
		"pointerup":   true,
		"pointermove": true,
		"pointerenter": true,
		"pointerleave": true,
		"touchstart": true,
		"touchmove":  true,
		"touchend":   true,
		"keydown":    true,
		"keyup":      true,
		"keypress":   true,
		"input":      true,
		"change":     true,
		"submit":     true,
		"focus":      true,
		"blur":       true,
		"focusin":    true,
		"focusout":   true,
		"dragstart":  true,
		"drag":       true,
		"dragend":    true,
		"dragover":   true,
		"dragenter":  true,
		"dragleave":  true,
		"drop":       true,
		"wheel":      true,
		"contextmenu": true,
	}
}
