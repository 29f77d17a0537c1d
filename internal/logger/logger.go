// Package logger carries source locations and diagnostics through the
// compiler pipeline. It is deliberately small: the actual parser and
// printer live outside this module, so this package only needs to be able
// to point back at the place in the original source that a diagnostic (or
// a generated node) came from.
package logger

import (
	"fmt"
	"sort"
	"strings"
)

// Loc is the 0-based byte offset of a location from the start of the
// source file. It is carried on every AST node so the eventual printer can
// reconstruct a source map entry for it.
type Loc struct {
	Start int32
}

type Range struct {
	Loc Loc
	Len int32
}

func (r Range) End() int32 {
	return r.Loc.Start + r.Len
}

// Source is the file this translation unit was parsed from. The compiler
// never reads or writes it; it is supplied by the caller alongside the
// already-parsed AST and is only used to frame diagnostics.
type Source struct {
	Index      uint32
	PrettyPath string
	Contents   string
}

// LineAndColumn converts a byte offset into a 1-based line and 0-based
// column, matching the convention used by most source map consumers.
func (s *Source) LineAndColumn(loc Loc) (line int, column int, lineText string) {
	line = 1
	lineStart := 0
	for i := 0; i < int(loc.Start) && i < len(s.Contents); i++ {
		if s.Contents[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := strings.IndexByte(s.Contents[lineStart:], '\n')
	if lineEnd < 0 {
		lineText = s.Contents[lineStart:]
	} else {
		lineText = s.Contents[lineStart : lineStart+lineEnd]
	}
	column = int(loc.Start) - lineStart
	return
}

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Note
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		panic("internal error: unknown MsgKind")
	}
}

// MsgID is a stable, closed-set identifier for every warning the warning
// pass can emit. Hard errors are intentionally not part of this set: they
// carry a free-form explanation instead, since (unlike warnings) a caller
// never needs to filter or suppress them by code.
type MsgID uint16

type Msg struct {
	Kind MsgKind
	ID   MsgID
	Data MsgData

	// Notes are secondary locations relevant to the message, e.g. every
	// name along a dependency cycle, or the earlier declaration a later
	// one conflicts with.
	Notes []MsgData
}

type MsgData struct {
	Text     string
	Location *MsgLocation
}

type MsgLocation struct {
	File       string
	Line       int
	Column     int
	Length     int
	LineText   string
	Suggestion string
}

func (m *MsgLocation) String() string {
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", m.File, m.Line, m.Column)
}

type sortableMsgs []Msg

func (a sortableMsgs) Len() int      { return len(a) }
func (a sortableMsgs) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a sortableMsgs) Less(i, j int) bool {
	ai, aj := a[i].Data.Location, a[j].Data.Location
	if ai == nil || aj == nil {
		return ai == nil && aj != nil
	}
	if ai.Line != aj.Line {
		return ai.Line < aj.Line
	}
	if ai.Column != aj.Column {
		return ai.Column < aj.Column
	}
	return a[i].Data.Text < a[j].Data.Text
}

// Log collects diagnostics produced while compiling a single translation
// unit. compiler.Compile does not route its warnings through a Log: it
// records each one and hands it to its sink the moment it is emitted, and
// returns them in emission order without Done's sort. Hard errors are
// returned directly to the caller the moment they are detected, via
// DiagError.
type Log struct {
	msgs []Msg
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) AddMsg(msg Msg) {
	l.msgs = append(l.msgs, msg)
}

func (l *Log) AddError(source *Source, loc Loc, text string) {
	l.AddMsg(Msg{Kind: Error, Data: l.rangeData(source, Range{Loc: loc}, text)})
}

func (l *Log) AddErrorWithNotes(source *Source, loc Loc, text string, notes ...MsgData) {
	l.AddMsg(Msg{Kind: Error, Data: l.rangeData(source, Range{Loc: loc}, text), Notes: notes})
}

func (l *Log) AddWarning(source *Source, id MsgID, loc Loc, text string) {
	l.AddMsg(Msg{Kind: Warning, ID: id, Data: l.rangeData(source, Range{Loc: loc}, text)})
}

func (l *Log) rangeData(source *Source, r Range, text string) MsgData {
	if source == nil {
		return MsgData{Text: text}
	}
	line, column, lineText := source.LineAndColumn(r.Loc)
	return MsgData{
		Text: text,
		Location: &MsgLocation{
			File:     source.PrettyPath,
			Line:     line,
			Column:   column,
			Length:   int(r.Len),
			LineText: lineText,
		},
	}
}

func (l *Log) MsgData(source *Source, loc Loc, text string) MsgData {
	return l.rangeData(source, Range{Loc: loc}, text)
}

// Done returns every buffered message sorted into a deterministic order.
// Determinism here is required by the compiler's byte-identical-output
// guarantee (see spec §5): diagnostics must not depend on map iteration
// order.
func (l *Log) Done() []Msg {
	sorted := make([]Msg, len(l.msgs))
	copy(sorted, l.msgs)
	sort.Stable(sortableMsgs(sorted))
	return sorted
}

func (l *Log) HasErrors() bool {
	for _, msg := range l.msgs {
		if msg.Kind == Error {
			return true
		}
	}
	return false
}

// DiagError is a hard, source-framed compile error (§7, taxonomy 1). It
// aborts the translation unit it was raised in; it never aborts an
// enclosing multi-file build, which is the caller's concern, not this
// package's.
type DiagError struct {
	Loc     Loc
	Source  *Source
	Text    string
	Notes   []MsgData
	Pass    string
}

func (e *DiagError) Error() string {
	if e.Source != nil {
		line, column, _ := e.Source.LineAndColumn(e.Loc)
		return fmt.Sprintf("%s:%d:%d: error: %s", e.Source.PrettyPath, line, column, e.Text)
	}
	return "error: " + e.Text
}

func NewDiagError(source *Source, loc Loc, text string) *DiagError {
	return &DiagError{Loc: loc, Source: source, Text: text}
}

// PanicError marks an internal invariant violation (§7, taxonomy 3) -- a
// pass discovered a state that should be impossible to reach. It is
// distinguished from DiagError so callers can tell a user mistake from a
// compiler bug.
type PanicError struct {
	Pass string
	Text string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("internal error in %s pass: %s", e.Pass, e.Text)
}
