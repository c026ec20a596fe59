// Package lift turns a pyc.CodeObject's flat, already-normalized opcode
// stream into a tree-shaped ir.Block (component D), then symbolically
// executes that stream against a simulated operand stack to rewrite
// Opcode nodes into Assign/Call/BinOp/... expression nodes (component G).
package lift

import (
	"github.com/evanw/unwind-go/ir"
	"github.com/evanw/unwind-go/pyc"
)

// Lower wraps every instruction of co's decoded opcode stream in an
// ir.Opcode node, in original program order, with no attempt yet at
// reconstructing expressions or control structure. This is the input the
// Exec symbolic interpreter (exec.go) consumes; the cfg package partitions
// the pyc.Opcode slice itself, not this block.
func Lower(co *pyc.CodeObject) *ir.Block {
	return LowerOps(co.Opcodes)
}

// LowerOps is Lower generalized to any opcode slice, so cfg.Block.Ops (one
// basic block's worth of instructions) can be wrapped the same way the
// whole function's stream is.
func LowerOps(ops []pyc.Opcode) *ir.Block {
	block := &ir.Block{Stmts: make([]ir.Node, len(ops))}
	for i, op := range ops {
		block.Stmts[i] = &ir.Opcode{Offset: op.Offset, Name: op.Name, Arg: op.Arg}
	}
	return block
}
