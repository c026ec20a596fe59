package cfg_test

import (
	"testing"

	"github.com/evanw/unwind-go/cfg"
	"github.com/evanw/unwind-go/pyc"
)

// ifElseOps builds a tiny if/else shaped opcode stream:
//
//	0: LOAD_FAST x          (3 bytes)
//	3: POP_JUMP_IF_FALSE 10 (3 bytes)
//	6: LOAD_CONST 1         (3 bytes)
//	9: RETURN_VALUE         (1 byte)
//	10: LOAD_CONST 2        (3 bytes)
//	13: RETURN_VALUE        (1 byte)
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

func TestBuildPartitionsOnJumpTargets(t *testing.T) {
	g := cfg.Build(ifElseOps())
	if len(g.Blocks) != 3 {
		t.Fatalf("expected 3 blocks (entry, then, else), got %d", len(g.Blocks))
	}
	entry := g.Blocks[0]
	if len(entry.Succs) != 2 {
		t.Fatalf("expected entry block to have 2 successors, got %d", len(entry.Succs))
	}
}

func TestComputeDominators(t *testing.T) {
	g := cfg.Build(ifElseOps())
	dom := cfg.Compute(g)

	for _, b := range g.Blocks {
		if !dom.Dominates(g.Entry, b.ID) {
			t.Errorf("expected entry block to dominate block %d", b.ID)
		}
	}
	// Neither branch block dominates the other.
	if dom.Dominates(1, 2) || dom.Dominates(2, 1) {
		t.Errorf("if/else branches should not dominate each other")
	}
}
