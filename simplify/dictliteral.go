package simplify

import "github.com/evanw/unwind-go/ir"

// ReconstructDictLiterals folds the statement sequence CPython actually
// compiles a dict display into — one BUILD_MAP followed by a STORE_SUBSCR
// (or, on older revisions, STORE_MAP) per entry — back into a single
// DictExpr with every entry in source order (4.H).
//
// The shape this pass recognizes is an Assign of a *ir.DictExpr to some
// Temp followed by statements of the form Assign{Target: Subscr{Value:
// thatTemp}}; it merges them and does not re-derive anything from raw
// opcodes. lift.Exec does not emit that shape itself: it pushes the
// BUILD_MAP's DictExpr onto its simulated stack and appends each STORE_MAP
// entry to it in place, so a dict display it lifts needs no folding here.
func ReconstructDictLiterals(root ir.Node) ir.Node {
	return rewriteBlocks(root, foldDictAssigns)
}

func foldDictAssigns(b *ir.Block) *ir.Block {
	out := &ir.Block{}
	for i := 0; i < len(b.Stmts); i++ {
		assign, ok := b.Stmts[i].(*ir.Assign)
		if !ok {
			out.Stmts = append(out.Stmts, b.Stmts[i])
			continue
		}
		temp, isTemp := assign.Target.(*ir.Temp)
		dict, isDict := assign.Expr.(*ir.DictExpr)
		if !isTemp || !isDict {
			out.Stmts = append(out.Stmts, b.Stmts[i])
			continue
		}

		merged := &ir.DictExpr{Entries: append([]ir.DictEntry{}, dict.Entries...)}
		j := i + 1
		for ; j < len(b.Stmts); j++ {
			entryAssign, ok := b.Stmts[j].(*ir.Assign)
			if !ok {
				break
			}
			subscr, ok := entryAssign.Target.(*ir.Subscr)
			if !ok {
				break
			}
			subscrTemp, ok := subscr.Value.(*ir.Temp)
			if !ok || subscrTemp.ID != temp.ID {
				break
			}
			merged.Entries = append(merged.Entries, ir.DictEntry{Key: subscr.Index, Value: entryAssign.Expr})
		}

		out.Stmts = append(out.Stmts, &ir.Assign{Target: temp, Expr: merged})
		i = j - 1
	}
	return out
}
