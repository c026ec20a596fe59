// Package simplify implements the tree-rewriting passes that turn the
// literal, temp-heavy output of package lift into something closer to the
// original source: single-use inlining, dict-literal reconstruction,
// print-statement combining, identifier legalization, and a global-name
// prepend (4.H).
package simplify

import "github.com/evanw/unwind-go/ir"

// Uses counts, for every ir.Temp ID, how many times a Temp with that ID is
// read (as opposed to assigned). InlineVariables only folds a Temp whose
// use count is exactly one: anything else either doesn't need inlining (0:
// dead store) or can't be inlined without duplicating a side effect (2+).
func FindUses(root ir.Node) map[int]int {
	uses := map[int]int{}
	ir.Walk(root, func(n ir.Node) bool {
		if a, ok := n.(*ir.Assign); ok {
			// A Temp as an Assign's Target is a definition, not a use;
			// walk its Expr only so the definition itself isn't counted.
			ir.Walk(a.Expr, func(inner ir.Node) bool {
				if t, ok := inner.(*ir.Temp); ok {
					uses[t.ID]++
				}
				return true
			})
			return false
		}
		if t, ok := n.(*ir.Temp); ok {
			uses[t.ID]++
		}
		return true
	})
	return uses
}
