package simplify

import "github.com/evanw/unwind-go/ir"

// rewriteBlocks applies f to every *ir.Block in the tree rooted at root,
// bottom-up (a Block's own nested If/Loop bodies are rewritten before f
// sees the Block itself), and returns the rewritten tree. Several of the
// 4.H passes are "look at one Block's statement list and fold a pattern in
// it"; this is the shared plumbing so each of them only has to supply that
// per-block fold.
func rewriteBlocks(root ir.Node, f func(*ir.Block) *ir.Block) ir.Node {
	switch t := root.(type) {
	case *ir.Block:
		rewritten := &ir.Block{Stmts: make([]ir.Node, len(t.Stmts))}
		for i, s := range t.Stmts {
			rewritten.Stmts[i] = rewriteBlocks(s, f)
		}
		return f(rewritten)
	case *ir.If:
		var elseBlock *ir.Block
		if t.Else != nil {
			elseBlock = rewriteBlocks(t.Else, f).(*ir.Block)
		}
		return &ir.If{Cond: t.Cond, Then: rewriteBlocks(t.Then, f).(*ir.Block), Else: elseBlock}
	case *ir.Loop:
		return &ir.Loop{Cond: t.Cond, Body: rewriteBlocks(t.Body, f).(*ir.Block)}
	default:
		return t
	}
}
