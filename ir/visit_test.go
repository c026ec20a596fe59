package ir_test

import (
	"testing"

	"github.com/evanw/unwind-go/ir"
)

func sampleTree() *ir.Block {
	return &ir.Block{Stmts: []ir.Node{
		&ir.Assign{Target: &ir.Name{Ident: "x"}, Expr: &ir.Const{Value: int64(1)}},
		&ir.If{
			Cond: &ir.BinOp{Op: ">", Left: &ir.Name{Ident: "x"}, Right: &ir.Const{Value: int64(0)}},
			Then: &ir.Block{Stmts: []ir.Node{&ir.Return{Value: &ir.Name{Ident: "x"}}}},
		},
	}}
}

func TestWalkVisitsEveryNode(t *testing.T) {
	count := 0
	ir.Walk(sampleTree(), func(n ir.Node) bool {
		count++
		return true
	})
	// Block, Assign, Name, Const, If, BinOp, Name, Const, Block(then), Return, Name
	if count != 11 {
		t.Fatalf("expected 11 nodes visited, got %d", count)
	}
}

func TestWalkCanPrune(t *testing.T) {
	count := 0
	ir.Walk(sampleTree(), func(n ir.Node) bool {
		count++
		if _, ok := n.(*ir.If); ok {
			return false
		}
		return true
	})
	// Block, Assign, Name, Const, If -- pruned, so If's children are skipped
	if count != 5 {
		t.Fatalf("expected 5 nodes visited with pruning, got %d", count)
	}
}

func TestReplaceSubstitutesNames(t *testing.T) {
	tree := sampleTree()
	replaced := ir.Replace(tree, func(n ir.Node) ir.Node {
		if name, ok := n.(*ir.Name); ok && name.Ident == "x" {
			return &ir.Name{Ident: "y"}
		}
		return nil
	})

	found := false
	ir.Walk(replaced, func(n ir.Node) bool {
		if name, ok := n.(*ir.Name); ok {
			if name.Ident == "x" {
				t.Fatalf("found un-replaced name %q", name.Ident)
			}
			found = true
		}
		return true
	})
	if !found {
		t.Fatalf("expected at least one renamed Name in the replaced tree")
	}
}
