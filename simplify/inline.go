package simplify

import "github.com/evanw/unwind-go/ir"

// InlineVariables removes an Assign to a Temp with exactly one later use by
// splicing its Expr directly into that use site, in place of the Temp
// (4.H). Evaluation order is preserved by construction rather than by a
// separate check: a pending Temp can only be substituted into the
// statement that immediately follows its definition within the same
// Block, so nothing can be reordered past a statement with a side effect
// that sits between the two.
func InlineVariables(root ir.Node) ir.Node {
	uses := FindUses(root)
	return inlineAny(root, uses)
}

func inlineAny(n ir.Node, uses map[int]int) ir.Node {
	switch t := n.(type) {
	case *ir.Block:
		return inlineBlock(t, uses)
	case *ir.If:
		return &ir.If{Cond: t.Cond, Then: inlineAny(t.Then, uses).(*ir.Block), Else: inlineElse(t.Else, uses)}
	case *ir.Loop:
		return &ir.Loop{Cond: t.Cond, Body: inlineAny(t.Body, uses).(*ir.Block)}
	default:
		return n
	}
}

func inlineElse(b *ir.Block, uses map[int]int) *ir.Block {
	if b == nil {
		return nil
	}
	return inlineAny(b, uses).(*ir.Block)
}

func inlineBlock(b *ir.Block, uses map[int]int) *ir.Block {
	out := &ir.Block{}
	pending := map[int]ir.Node{}

	for _, stmt := range b.Stmts {
		stmt = inlineAny(stmt, uses)
		stmt = substitutePending(stmt, pending)

		// A pending Temp this statement did not consume is written back
		// out ahead of it rather than carried further down the block.
		for id, expr := range pending {
			out.Stmts = append(out.Stmts, &ir.Assign{Target: &ir.Temp{ID: id}, Expr: expr})
			delete(pending, id)
		}

		if a, ok := stmt.(*ir.Assign); ok {
			if t, ok := a.Target.(*ir.Temp); ok && uses[t.ID] == 1 {
				pending[t.ID] = a.Expr
				continue
			}
		}
		out.Stmts = append(out.Stmts, stmt)
	}

	// A Temp defined by the block's last statement is still pending here
	// (its one recorded use lies outside this block); emit it rather than
	// silently drop a value with a side effect.
	for id, expr := range pending {
		out.Stmts = append(out.Stmts, &ir.Assign{Target: &ir.Temp{ID: id}, Expr: expr})
	}
	return out
}

func substitutePending(stmt ir.Node, pending map[int]ir.Node) ir.Node {
	return ir.Replace(stmt, func(n ir.Node) ir.Node {
		t, ok := n.(*ir.Temp)
		if !ok {
			return nil
		}
		expr, ok := pending[t.ID]
		if !ok {
			return nil
		}
		delete(pending, t.ID)
		return expr
	})
}
