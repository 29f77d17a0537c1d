package compiler

import "github.com/fictjs/fictc/internal/logger"

// diagPanic is how a hard error (spec §7, taxonomy 1) unwinds out of
// whatever pass detected it. esbuild's own lexer/parser uses the same
// panic-and-recover idiom (see js_lexer.LexerPanic) for exactly the same
// reason: these errors can be discovered arbitrarily deep in a recursive
// tree walk, and threading an error return through every recursive call
// in this package would bury every lowering rule under bookkeeping that
// has nothing to do with the rule itself.
type diagPanic struct {
	err *logger.DiagError
}

func bail(source *logger.Source, loc logger.Loc, text string) {
	panic(diagPanic{err: logger.NewDiagError(source, loc, text)})
}

func bailWithNotes(source *logger.Source, loc logger.Loc, text string, notes ...logger.MsgData) {
	e := logger.NewDiagError(source, loc, text)
	e.Notes = notes
	panic(diagPanic{err: e})
}

// recoverDiag should be deferred exactly once, at the top of Compile. It
// converts a diagPanic into a normal error return and lets every other
// kind of panic (an actual compiler bug) propagate as a real panic, per
// spec §7 taxonomy 3 -- those are not supposed to be recoverable.
func recoverDiag(errOut *error) {
	if r := recover(); r != nil {
		if dp, ok := r.(diagPanic); ok {
			*errOut = dp.err
			return
		}
		panic(r)
	}
}
