// Package control reconstructs if/else and while statements out of the
// basic-block graph and dominator relation package cfg computes (4.F).
// Every other control-flow idiom (for-loops, try/except/finally, with,
// comprehensions) is left as the bare jump opcodes and basic blocks that
// produced it; reconstructing those is out of scope (6 supplement).
package control

import (
	"github.com/evanw/unwind-go/cfg"
	"github.com/evanw/unwind-go/ir"
	"github.com/evanw/unwind-go/lift"
)

// noTarget marks "no further block", used both for "fell off the end of
// the graph" and as the sentinel stop-block of the outermost call.
const noTarget = -1

// Body supplies per-block input to Structure: the block's lifted
// statements with any trailing conditional-branch opcode already stripped
// off, that opcode's condition expression (nil for blocks that do not end
// in a conditional branch), and the number of values the symbolic
// executor still had live on its simulated stack when the block ended
// (nonzero only for a FOR_ITER/JUMP_IF_*_OR_POP fallthrough).
type Body struct {
	Stmts []ir.Node
	Cond  ir.Node
	Depth int
}

// Structure walks g starting at its entry block and builds a nested
// ir.Block out of it: a conditional branch whose two successors reconverge
// at a common block becomes an If; a block that dominates one of its own
// predecessors (a back edge) becomes a Loop. It stops and returns the
// first lift.LiftError it encounters (a branch-depth mismatch at an
// if-merge), along with whatever tree had already been built.
func Structure(g *cfg.Graph, dom *cfg.Dominators, bodies map[int]*Body) (*ir.Block, error) {
	loopHeaders := findLoopHeaders(g, dom)
	visited := map[int]bool{}
	return structureRange(g, dom, bodies, loopHeaders, g.Entry, noTarget, visited)
}

// findLoopHeaders returns the set of blocks that are the target of a back
// edge: some predecessor p of header is dominated by header itself, which
// is only possible if control flow can return to header, i.e. header
// starts a loop.
func findLoopHeaders(g *cfg.Graph, dom *cfg.Dominators) map[int]bool {
	headers := map[int]bool{}
	for _, b := range g.Blocks {
		for _, succ := range b.Succs {
			if dom.Dominates(succ, b.ID) {
				headers[succ] = true
			}
		}
	}
	return headers
}

func structureRange(g *cfg.Graph, dom *cfg.Dominators, bodies map[int]*Body, loopHeaders map[int]bool, start, stop int, visited map[int]bool) (*ir.Block, error) {
	out := &ir.Block{}
	cur := start

	for cur != stop && cur != noTarget && !visited[cur] {
		visited[cur] = true
		block := g.Blocks[cur]
		body := bodies[cur]
		if body == nil {
			body = &Body{}
		}

		if loopHeaders[cur] {
			loopOut, err := structureLoop(g, dom, bodies, loopHeaders, cur, visited)
			if err != nil {
				return out, err
			}
			out.Stmts = append(out.Stmts, loopOut.node)
			cur = loopOut.next
			continue
		}

		out.Stmts = append(out.Stmts, body.Stmts...)

		switch len(block.Succs) {
		case 0:
			cur = noTarget
		case 1:
			cur = block.Succs[0]
		default:
			thenID, elseID := block.Succs[0], block.Succs[1]
			merge := mergePoint(g, dom, thenID, elseID, stop)

			if elseID != merge {
				if mismatch := branchDepthMismatch(bodies, thenID, elseID); mismatch != nil {
					return out, mismatch
				}
			}

			thenBlock, err := structureRange(g, dom, bodies, loopHeaders, thenID, merge, visited)
			if err != nil {
				return out, err
			}
			var elseBlock *ir.Block
			if elseID != merge {
				elseBlock, err = structureRange(g, dom, bodies, loopHeaders, elseID, merge, visited)
				if err != nil {
					return out, err
				}
			}
			out.Stmts = append(out.Stmts, &ir.If{Cond: body.Cond, Then: thenBlock, Else: elseBlock})
			cur = merge
		}
	}
	return out, nil
}

// branchDepthMismatch reports whether the two direct branch-entry blocks
// of an if/else leave a different number of values live on the simulated
// stack. Both branches join at the same merge block, so by the per-block
// fresh-stack assumption (4.G) they must leave it in the same shape;
// anything else means the symbolic executor lost track of the stack on
// one side.
func branchDepthMismatch(bodies map[int]*Body, thenID, elseID int) error {
	thenBody, elseBody := bodies[thenID], bodies[elseID]
	if thenBody == nil || elseBody == nil {
		return nil
	}
	if thenBody.Depth != elseBody.Depth {
		return lift.LiftError{Context: "if-merge", Err: lift.ErrBranchMismatch}
	}
	return nil
}

type loopResult struct {
	node *ir.Loop
	next int
}

// structureLoop builds the Loop node rooted at header: its body is
// everything reachable before control either exits the loop (the successor
// from which header cannot be reached again) or jumps back to header (the back edge, which
// terminates the body without itself appearing in it).
func structureLoop(g *cfg.Graph, dom *cfg.Dominators, bodies map[int]*Body, loopHeaders map[int]bool, header int, visited map[int]bool) (loopResult, error) {
	block := g.Blocks[header]
	body := bodies[header]
	if body == nil {
		body = &Body{}
	}

	// A successor belongs to the loop body if some path from it leads
	// back to header (the back edge); the other successor is the loop's
	// exit. header itself always dominates both successors in a
	// single-entry function, so dominance alone cannot tell them apart.
	var bodyStart, exit int = noTarget, noTarget
	for _, succ := range block.Succs {
		if succ == header || reachableSet(g, succ, noTarget)[header] {
			bodyStart = succ
		} else {
			exit = succ
		}
	}
	if bodyStart == noTarget {
		bodyStart = header
	}

	innerVisited := map[int]bool{header: true}
	loopBody, err := structureRange(g, dom, bodies, loopHeaders, bodyStart, header, innerVisited)
	if err != nil {
		return loopResult{}, err
	}
	for id, v := range innerVisited {
		visited[id] = v
	}

	loopBody.Stmts = append(loopBody.Stmts, body.Stmts...)

	return loopResult{node: &ir.Loop{Cond: body.Cond, Body: loopBody}, next: exit}, nil
}

// mergePoint finds the first block both a and b (or their descendants)
// reach, which becomes the If's join point and resumption block for the
// surrounding call; it falls back to fallback (the enclosing range's own
// stop block) when the two branches never reconverge before that.
func mergePoint(g *cfg.Graph, dom *cfg.Dominators, a, b, fallback int) int {
	reachableFromA := reachableSet(g, a, fallback)
	cur := b
	seen := map[int]bool{}
	for cur != noTarget && cur != fallback && !seen[cur] {
		seen[cur] = true
		if reachableFromA[cur] {
			return cur
		}
		cur = firstSucc(g, cur)
	}
	return fallback
}

func reachableSet(g *cfg.Graph, start, stop int) map[int]bool {
	seen := map[int]bool{}
	stack := []int{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == noTarget || id == stop || seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, g.Blocks[id].Succs...)
	}
	return seen
}

func firstSucc(g *cfg.Graph, id int) int {
	succs := g.Blocks[id].Succs
	if len(succs) == 0 {
		return noTarget
	}
	return succs[0]
}
