// Package cfg builds a basic-block graph out of a flat, already-normalized
// pyc.Opcode stream and computes the dominator relation used by package
// control to reconstruct if/else and while statements.
package cfg

import "github.com/evanw/unwind-go/pyc"

// conditionalJumps, unconditionalJumps and terminalOpcodes classify which
// normalized opcode names end a basic block,
// and whether they branch conditionally (leaving two successors) or
// unconditionally (one successor, or none for a return/raise).
var conditionalJumps = map[string]bool{
	pyc.OpJumpIfFalseOrPop: true, pyc.OpJumpIfTrueOrPop: true,
	pyc.OpPopJumpIfFalse: true, pyc.OpPopJumpIfTrue: true,
	pyc.OpJumpIfFalse: true, pyc.OpJumpIfTrue: true,
	pyc.OpForIter: true,
}

var unconditionalJumps = map[string]bool{
	pyc.OpJumpForward: true, pyc.OpJumpAbsolute: true, pyc.OpContinueLoop: true,
}

var terminalOpcodes = map[string]bool{
	pyc.OpReturnValue: true, pyc.OpRaiseVarargs: true, pyc.OpBreakLoop: true,
}

// Block is one basic block: a maximal run of instructions with a single
// entry point and no jump into its middle. Blocks are referred to by index
// into Graph.Blocks rather than by pointer, so the graph can be built in
// one forward pass and patched up with a second pass that resolves jump
// targets to indices (the arena-of-indices style used for code object
// constant pools, generalized here to basic blocks).
type Block struct {
	ID    int
	Start int // byte offset of the first instruction
	Ops   []pyc.Opcode

	// Succs holds 0, 1 or 2 successor block indices. A conditional jump
	// orders them [fallthrough, target]; an unconditional jump holds
	// [target]; a return/raise/break holds none.
	Succs []int
	Preds []int
}

// Graph is the basic-block graph of one code object's opcode stream.
type Graph struct {
	Blocks []*Block
	Entry  int
}

// Build partitions ops into basic blocks and links them into a graph,
// implementing 4.E's "leader" algorithm: an instruction starts a new block
// if it is the first instruction, the target of some jump, or immediately
// follows a jump/return/raise.
func Build(ops []pyc.Opcode) *Graph {
	if len(ops) == 0 {
		return &Graph{Entry: 0}
	}

	leaders := map[int]bool{ops[0].Offset: true}
	offsetIndex := make(map[int]int, len(ops))
	for i, op := range ops {
		offsetIndex[op.Offset] = i
		if target, ok := jumpTarget(op); ok {
			leaders[target] = true
		}
		if isBlockEnd(op.Name) && i+1 < len(ops) {
			leaders[ops[i+1].Offset] = true
		}
	}

	g := &Graph{}
	var cur *Block
	for i, op := range ops {
		if leaders[op.Offset] || cur == nil {
			cur = &Block{ID: len(g.Blocks), Start: op.Offset}
			g.Blocks = append(g.Blocks, cur)
		}
		cur.Ops = append(cur.Ops, op)
		_ = i
	}

	startIndex := make(map[int]int, len(g.Blocks))
	for _, b := range g.Blocks {
		startIndex[b.Start] = b.ID
	}

	for bi, b := range g.Blocks {
		last := b.Ops[len(b.Ops)-1]
		if terminalOpcodes[last.Name] {
			continue
		}
		if target, ok := jumpTarget(last); ok {
			if unconditionalJumps[last.Name] {
				link(g, b, startIndex[target])
				continue
			}
			if conditionalJumps[last.Name] {
				if bi+1 < len(g.Blocks) {
					link(g, b, g.Blocks[bi+1].ID)
				}
				link(g, b, startIndex[target])
				continue
			}
		}
		if bi+1 < len(g.Blocks) {
			link(g, b, g.Blocks[bi+1].ID)
		}
	}

	return g
}

func link(g *Graph, from *Block, to int) {
	from.Succs = append(from.Succs, to)
	g.Blocks[to].Preds = append(g.Blocks[to].Preds, from.ID)
}

func isBlockEnd(name string) bool {
	return conditionalJumps[name] || unconditionalJumps[name] || terminalOpcodes[name]
}

// jumpTarget returns the absolute byte offset a jump-family opcode targets,
// resolving the relative encoding of JUMP_FORWARD, JUMP_IF_FALSE and
// JUMP_IF_TRUE against the instruction's own offset and size.
func jumpTarget(op pyc.Opcode) (int, bool) {
	if !conditionalJumps[op.Name] && !unconditionalJumps[op.Name] {
		return 0, false
	}
	raw, ok := op.Arg.(int64)
	if !ok {
		return 0, false
	}
	if op.Name == pyc.OpJumpForward || op.Name == pyc.OpJumpIfFalse || op.Name == pyc.OpJumpIfTrue {
		return op.Offset + op.Size + int(raw), true
	}
	return int(raw), true
}
