package control_test

import (
	"testing"

	"github.com/evanw/unwind-go/cfg"
	"github.com/evanw/unwind-go/control"
	"github.com/evanw/unwind-go/ir"
	"github.com/evanw/unwind-go/pyc"
)

// ifElseOps mirrors cfg's own synthetic if/else fixture: a condition load,
// a conditional branch, and two single-block arms that both return.
func ifElseOps() []pyc.Opcode {
	return []pyc.Opcode{
		{Offset: 0, Size: 3, Name: pyc.OpLoadFast, Arg: "x"},
		{Offset: 3, Size: 3, Name: pyc.OpPopJumpIfFalse, Arg: int64(10)},
		{Offset: 6, Size: 3, Name: pyc.OpLoadConst, Arg: int64(1)},
		{Offset: 9, Size: 1, Name: pyc.OpReturnValue},
		{Offset: 10, Size: 3, Name: pyc.OpLoadConst, Arg: int64(2)},
		{Offset: 13, Size: 1, Name: pyc.OpReturnValue},
	}
}

// ifElseBodies builds the per-block Body map ifElseOps needs: block 0 ends in
// a conditional branch whose condition the lifter already popped, blocks 1
// and 2 each hold one Return statement.
func ifElseBodies() map[int]*control.Body {
	return map[int]*control.Body{
		0: {Cond: &ir.Name{Ident: "x"}},
		1: {Stmts: []ir.Node{&ir.Return{Value: &ir.Const{Value: int64(1)}}}},
		2: {Stmts: []ir.Node{&ir.Return{Value: &ir.Const{Value: int64(2)}}}},
	}
}

func TestStructureBuildsIfElse(t *testing.T) {
	g := cfg.Build(ifElseOps())
	dom := cfg.Compute(g)

	body, err := control.Structure(g, dom, ifElseBodies())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body.Stmts) != 1 {
		t.Fatalf("expected exactly one top-level statement (the If), got %d", len(body.Stmts))
	}
	ifStmt, ok := body.Stmts[0].(*ir.If)
	if !ok {
		t.Fatalf("expected *ir.If, got %T", body.Stmts[0])
	}
	if ifStmt.Else == nil || len(ifStmt.Else.Stmts) != 1 {
		t.Fatalf("expected a populated else branch")
	}
	if len(ifStmt.Then.Stmts) != 1 {
		t.Fatalf("expected a populated then branch")
	}
}

func TestStructureReportsBranchDepthMismatch(t *testing.T) {
	g := cfg.Build(ifElseOps())
	dom := cfg.Compute(g)

	bodies := ifElseBodies()
	bodies[1].Depth = 1 // simulate a lifter bug: the then-branch left a value live

	_, err := control.Structure(g, dom, bodies)
	if err == nil {
		t.Fatalf("expected a branch-depth mismatch error")
	}
}

// whileLoopOps builds `while x: x = x` (roughly) immediately followed by
// `return 0`, with the condition re-checked at the top of the loop and a
// back edge (JUMP_ABSOLUTE) closing it — the canonical shape 4.F's while
// reconstruction targets.
func whileLoopOps() []pyc.Opcode {
	return []pyc.Opcode{
		{Offset: 0, Size: 1, Name: pyc.OpLoadFast, Arg: "x"},
		{Offset: 1, Size: 1, Name: pyc.OpPopJumpIfFalse, Arg: int64(5)},
		{Offset: 2, Size: 1, Name: pyc.OpLoadFast, Arg: "x"},
		{Offset: 3, Size: 1, Name: pyc.OpStoreFast, Arg: "x"},
		{Offset: 4, Size: 1, Name: pyc.OpJumpAbsolute, Arg: int64(0)},
		{Offset: 5, Size: 1, Name: pyc.OpLoadConst, Arg: int64(0)},
		{Offset: 6, Size: 1, Name: pyc.OpReturnValue},
	}
}

func whileLoopBodies() map[int]*control.Body {
	return map[int]*control.Body{
		0: {Cond: &ir.Name{Ident: "x"}},
		1: {Stmts: []ir.Node{&ir.Assign{Target: &ir.Name{Ident: "x"}, Expr: &ir.Name{Ident: "x"}}}},
		2: {Stmts: []ir.Node{&ir.Return{Value: &ir.Const{Value: int64(0)}}}},
	}
}

func TestStructureBuildsWhileLoop(t *testing.T) {
	g := cfg.Build(whileLoopOps())
	dom := cfg.Compute(g)

	body, err := control.Structure(g, dom, whileLoopBodies())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body.Stmts) != 2 {
		t.Fatalf("expected a Loop followed by a Return, got %d statements", len(body.Stmts))
	}
	loop, ok := body.Stmts[0].(*ir.Loop)
	if !ok {
		t.Fatalf("expected *ir.Loop, got %T", body.Stmts[0])
	}
	if len(loop.Body.Stmts) != 1 {
		t.Fatalf("expected the loop body to carry the single Assign, got %d statements", len(loop.Body.Stmts))
	}
	if _, ok := body.Stmts[1].(*ir.Return); !ok {
		t.Fatalf("expected the statement after the loop to be the Return, got %T", body.Stmts[1])
	}
}
