package simplify_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evanw/unwind-go/ir"
	"github.com/evanw/unwind-go/simplify"
)

func TestMakeIdentifiersValidGivesDistinctInvalidNamesDistinctReplacements(t *testing.T) {
	tree := &ir.Block{Stmts: []ir.Node{
		&ir.ExprStmt{Expr: &ir.Name{Ident: "x!"}},
		&ir.ExprStmt{Expr: &ir.Name{Ident: "x?"}},
	}}

	out := simplify.MakeIdentifiersValid(tree).(*ir.Block)
	require.Len(t, out.Stmts, 2)

	first := out.Stmts[0].(*ir.ExprStmt).Expr.(*ir.Name).Ident
	second := out.Stmts[1].(*ir.ExprStmt).Expr.(*ir.Name).Ident
	require.NotEqual(t, first, second, "distinct invalid names must not collide on the same replacement")
}

func TestMakeIdentifiersValidReusesReplacementForRepeatedName(t *testing.T) {
	tree := &ir.Block{Stmts: []ir.Node{
		&ir.ExprStmt{Expr: &ir.Name{Ident: "x!"}},
		&ir.ExprStmt{Expr: &ir.Name{Ident: "x!"}},
	}}

	out := simplify.MakeIdentifiersValid(tree).(*ir.Block)
	first := out.Stmts[0].(*ir.ExprStmt).Expr.(*ir.Name).Ident
	second := out.Stmts[1].(*ir.ExprStmt).Expr.(*ir.Name).Ident
	require.Equal(t, first, second, "repeated occurrences of the same invalid name must map to the same replacement")
}

func TestMakeIdentifiersValidSkipsNamesAlreadyInUse(t *testing.T) {
	tree := &ir.Block{Stmts: []ir.Node{
		&ir.ExprStmt{Expr: &ir.Name{Ident: "a"}},
		&ir.ExprStmt{Expr: &ir.Name{Ident: "!"}},
	}}

	out := simplify.MakeIdentifiersValid(tree).(*ir.Block)
	first := out.Stmts[0].(*ir.ExprStmt).Expr.(*ir.Name).Ident
	second := out.Stmts[1].(*ir.ExprStmt).Expr.(*ir.Name).Ident
	require.Equal(t, "a", first)
	require.NotEqual(t, "a", second, "the allocator must skip a name already present in the tree")
}

func TestMakeIdentifiersValidSuffixesKeywordCollision(t *testing.T) {
	tree := &ir.Block{Stmts: []ir.Node{
		&ir.ExprStmt{Expr: &ir.Name{Ident: "type"}},
	}}

	out := simplify.MakeIdentifiersValid(tree).(*ir.Block)
	got := out.Stmts[0].(*ir.ExprStmt).Expr.(*ir.Name).Ident
	require.Equal(t, "type_", got)
}
