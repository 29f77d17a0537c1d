package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fictjs/fictc/internal/ast"
)

// depColor is the standard three-color DFS marking used to find back
// edges in a directed graph, the same scheme esbuild's own internal/graph
// package uses to order import cycles. White (unvisited) is the zero
// value so the map only needs entries for nodes actually touched.
type depColor uint8

const (
	depWhite depColor = iota
	depGray
	depBlack
)

// runDependencyPass is step 3 of the pipeline (spec §4.2): walk the
// derivation graph (derived binding -> derived/state bindings it reads)
// looking for a cycle. A cycle is a hard error naming every binding on
// it, `a -> b -> ... -> a`, at the location of the first node visited.
func (c *compilation) runDependencyPass() {
	color := make(map[ast.Ref]depColor)
	var stack []ast.Ref

	var visit func(ref ast.Ref)
	visit = func(ref ast.Ref) {
		b := c.bindings.get(ref)
		if b == nil || !b.Kind.IsDerived() {
			return
		}
		switch color[ref] {
		case depBlack:
			return
		case depGray:
			c.reportCycle(stack, ref)
		}
		color[ref] = depGray
		stack = append(stack, ref)

		// Deps holds only what filterReactive kept at declaration time
		// (state, derived, alias and destructured-alias refs); visit
		// returns at once for anything not derived, so no extra filtering
		// is needed here.
		depRefs := make([]ast.Ref, 0, len(b.Deps))
		for dep := range b.Deps {
			depRefs = append(depRefs, dep)
		}
		sort.Slice(depRefs, func(i, j int) bool { return depRefs[i].InnerIndex < depRefs[j].InnerIndex })
		for _, dep := range depRefs {
			visit(dep)
		}

		stack = stack[:len(stack)-1]
		color[ref] = depBlack
	}

	refs := make([]ast.Ref, 0, c.bindings.len())
	c.bindings.each(func(ref ast.Ref, b *Binding) {
		if b.Kind.IsDerived() {
			refs = append(refs, ref)
		}
	})
	sort.Slice(refs, func(i, j int) bool {
		bi, bj := c.bindings.get(refs[i]), c.bindings.get(refs[j])
		return bi.DeclaredAt.Start < bj.DeclaredAt.Start
	})
	for _, ref := range refs {
		visit(ref)
	}
}

// reportCycle formats the cycle starting from where backRef first
// appeared on the stack, as spec §4.2 requires: `a -> b -> ... -> a`,
// reported at the first occurrence's location.
func (c *compilation) reportCycle(stack []ast.Ref, backRef ast.Ref) {
	start := 0
	for i, ref := range stack {
		if ref == backRef {
			start = i
			break
		}
	}
	names := make([]string, 0, len(stack)-start+1)
	for _, ref := range stack[start:] {
		names = append(names, c.bindings.get(ref).Name)
	}
	names = append(names, c.bindings.get(backRef).Name)
	loc := c.bindings.get(stack[start]).DeclaredAt
	bail(c.source, loc, fmt.Sprintf("circular derivation: %s", strings.Join(names, " -> ")))
}
