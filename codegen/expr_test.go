package codegen_test

import (
	"testing"

	"github.com/evanw/unwind-go/codegen"
	"github.com/evanw/unwind-go/ir"
)

func TestExprRendersBinOpWithParens(t *testing.T) {
	n := &ir.BinOp{Op: "+", Left: &ir.Const{Value: int64(1)}, Right: &ir.Const{Value: int64(2)}}
	got := codegen.Expr(n)
	want := "(1 + 2)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExprRendersStringLiteralQuoted(t *testing.T) {
	got := codegen.Expr(&ir.Const{Value: "hi"})
	want := `"hi"`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStmtRendersIfElse(t *testing.T) {
	n := &ir.If{
		Cond: &ir.Name{Ident: "cond"},
		Then: &ir.Block{Stmts: []ir.Node{&ir.Return{Value: &ir.Const{Value: int64(1)}}}},
		Else: &ir.Block{Stmts: []ir.Node{&ir.Return{Value: &ir.Const{Value: int64(2)}}}},
	}
	got := codegen.Stmt(n, 0)
	want := "if cond:\n    return 1\nelse:\n    return 2\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
