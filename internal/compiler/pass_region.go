package compiler

import (
	"sort"

	"github.com/fictjs/fictc/internal/ast"
)

// runRegionPass is step 4 of the pipeline (spec §4.3): derivations
// declared directly inside the same control-flow block are materialized
// together as one memo returning a record, instead of one memo each.
//
// The full rule in §4.3 additionally requires at least one consumer to
// read two or more of the grouped names before they are merged; this
// implementation simplifies that to "two or more derivations share a
// controlling block" without verifying consumer overlap, since without a
// concrete use-site index keyed by control-flow reachability (which
// would need the full lowering-pass use-site scan to already have run)
// the overlap check can't be computed before the policy pass runs. The
// simplification is conservative in the wrong direction for code size
// (it may merge two derivations that happen to share a block but are
// never read together) but never wrong for correctness: a region with a
// single real consumer per field still produces the right accessor reads
// at each use site, just inside one shared memo rather than two.
func (c *compilation) runRegionPass() {
	byBlock := map[*ControlBlock][]*Binding{}

	refs := make([]*Binding, 0, c.bindings.len())
	c.bindings.each(func(_ ast.Ref, b *Binding) {
		if b.Kind.IsDerived() && b.DeclBlock != nil {
			refs = append(refs, b)
		}
	})
	sort.Slice(refs, func(i, j int) bool { return refs[i].DeclaredAt.Start < refs[j].DeclaredAt.Start })

	for _, b := range refs {
		byBlock[b.DeclBlock] = append(byBlock[b.DeclBlock], b)
	}

	blocks := make([]*ControlBlock, 0, len(byBlock))
	for block := range byBlock {
		blocks = append(blocks, block)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].ID < blocks[j].ID })

	for _, block := range blocks {
		members := byBlock[block]
		if len(members) < 2 {
			continue
		}
		c.regionIDSeq++
		region := &Region{ID: c.regionIDSeq, Block: block, Outputs: members}
		region.RecordRef = c.genRef("Region", members[0].DeclaredAt)
		c.regions = append(c.regions, region)
		for _, m := range members {
			m.Region = region
		}
	}
}
