package simplify

import (
	"sort"

	"github.com/evanw/unwind-go/ir"
)

// PrependGlobals inserts a single GlobalDecl at the front of body listing
// every name the function stores to with STORE_GLOBAL, mirroring the
// `global x, y` declaration Python itself requires before such a store
// (4.H). names is collected by the caller across every basic block's
// lift.Result during decompilation, since a single STORE_GLOBAL can occur
// in any block, not just the entry block.
func PrependGlobals(body *ir.Block, names []string) *ir.Block {
	if len(names) == 0 {
		return body
	}
	sorted := append([]string{}, names...)
	sort.Strings(sorted)

	out := &ir.Block{Stmts: make([]ir.Node, 0, len(body.Stmts)+1)}
	out.Stmts = append(out.Stmts, &ir.GlobalDecl{Names: sorted})
	out.Stmts = append(out.Stmts, body.Stmts...)
	return out
}
