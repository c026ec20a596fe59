package simplify_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evanw/unwind-go/ir"
	"github.com/evanw/unwind-go/simplify"
)

func TestInlineVariablesFoldsSingleUseTemp(t *testing.T) {
	tree := &ir.Block{Stmts: []ir.Node{
		&ir.Assign{Target: &ir.Temp{ID: 0}, Expr: &ir.BinOp{Op: "+", Left: &ir.Const{Value: int64(1)}, Right: &ir.Const{Value: int64(2)}}},
		&ir.Assign{Target: &ir.Name{Ident: "x"}, Expr: &ir.Temp{ID: 0}},
	}}

	out := simplify.InlineVariables(tree).(*ir.Block)
	require.Len(t, out.Stmts, 1)

	assign, ok := out.Stmts[0].(*ir.Assign)
	require.True(t, ok)
	bin, ok := assign.Expr.(*ir.BinOp)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)
}

func TestInlineVariablesLeavesMultiUseTemp(t *testing.T) {
	tree := &ir.Block{Stmts: []ir.Node{
		&ir.Assign{Target: &ir.Temp{ID: 0}, Expr: &ir.Const{Value: int64(5)}},
		&ir.Assign{Target: &ir.Name{Ident: "a"}, Expr: &ir.Temp{ID: 0}},
		&ir.Assign{Target: &ir.Name{Ident: "b"}, Expr: &ir.Temp{ID: 0}},
	}}

	out := simplify.InlineVariables(tree).(*ir.Block)
	require.Len(t, out.Stmts, 3, "a temp used twice must not be inlined away")
}

func TestFindUsesCountsOnlyReads(t *testing.T) {
	tree := &ir.Block{Stmts: []ir.Node{
		&ir.Assign{Target: &ir.Temp{ID: 0}, Expr: &ir.Const{Value: int64(1)}},
	}}
	uses := simplify.FindUses(tree)
	require.Equal(t, 0, uses[0], "a Temp that is only ever assigned, never read, has zero uses")
}
