package compiler

import (
	"fmt"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
)

// genRef allocates a new symbol for a compiler-generated local (a region
// record, a context variable, a template accessor, ...) and returns its
// Ref. Names are numbered by a monotone per-run counter reset at the
// start of every Compile call (spec §5: "the only process-wide state is
// a monotone counter used for stable generated symbol names, lifecycle =
// per-translation-unit"), so two compiles of the same input produce
// byte-identical generated names.
func (c *compilation) genRef(prefix string, loc logger.Loc) ast.Ref {
	name := fmt.Sprintf("__fict%s%d", prefix, c.nameSeq)
	c.nameSeq++
	return c.program.Symbols.NewSymbol(name, loc)
}

// genName is genRef for callers that only need the text, not a bindable
// Ref (diagnostic messages, template ids).
func (c *compilation) genName(prefix string) string {
	name := fmt.Sprintf("__fict%s%d", prefix, c.nameSeq)
	c.nameSeq++
	return name
}
