package simplify

import "github.com/evanw/unwind-go/ir"

// CombinePrintStatements merges the run of Print statements a single
// `print a, b, c` produces — one non-newline Print per operand, then a
// trailing newline-only Print — into one Print node carrying every value
// (4.H).
func CombinePrintStatements(root ir.Node) ir.Node {
	return rewriteBlocks(root, foldPrints)
}

func foldPrints(b *ir.Block) *ir.Block {
	out := &ir.Block{}
	i := 0
	for i < len(b.Stmts) {
		p, ok := b.Stmts[i].(*ir.Print)
		if !ok || p.Newline {
			out.Stmts = append(out.Stmts, b.Stmts[i])
			i++
			continue
		}

		values := append([]ir.Node{}, p.Values...)
		j := i + 1
		for ; j < len(b.Stmts); j++ {
			next, ok := b.Stmts[j].(*ir.Print)
			if !ok || next.Newline {
				break
			}
			values = append(values, next.Values...)
		}
		newline := false
		if j < len(b.Stmts) {
			if next, ok := b.Stmts[j].(*ir.Print); ok && next.Newline {
				newline = true
				j++
			}
		}
		out.Stmts = append(out.Stmts, &ir.Print{Values: values, Newline: newline})
		i = j
	}
	return out
}
