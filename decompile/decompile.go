// Package decompile wires packages cfg, lift, control and simplify
// together into the per-function pipeline: basic blocks, symbolic
// execution of each block, control-structure reconstruction, and the 4.H
// simplification passes, in that order.
package decompile

import (
	"github.com/evanw/unwind-go/cfg"
	"github.com/evanw/unwind-go/codegen"
	"github.com/evanw/unwind-go/control"
	"github.com/evanw/unwind-go/ir"
	"github.com/evanw/unwind-go/lift"
	"github.com/evanw/unwind-go/pyc"
	"github.com/evanw/unwind-go/simplify"
)

// Function runs the full pipeline over one code object and renders the
// result as Python-like source text. If lifting or control-structure
// reconstruction aborts partway through (a lift.LiftError), Function still
// renders whatever tree was built up to that point and returns the error
// alongside it, per 4.G: "abort the lifting pass but preserve the
// structured IR produced up to that point".
func Function(co *pyc.CodeObject) (string, error) {
	body, _, err := Reconstruct(co)
	return codegen.Function(co, body), err
}

// Reconstruct runs every pass short of final text rendering, returning the
// simplified statement tree and the set of names the function declares
// global. Exported separately from Function so tests can assert on the
// tree shape without string-diffing rendered source.
func Reconstruct(co *pyc.CodeObject) (*ir.Block, []string, error) {
	graph := cfg.Build(co.Opcodes)
	if len(graph.Blocks) == 0 {
		return &ir.Block{}, nil, nil
	}
	dom := cfg.Compute(graph)

	bodies := make(map[int]*control.Body, len(graph.Blocks))
	var allGlobals []string
	var liftErr error
	nextTmp := 0
	for _, b := range graph.Blocks {
		result, err := lift.Exec(lift.LowerOps(b.Ops), nextTmp)
		nextTmp = result.NextTmp
		bodies[b.ID] = &control.Body{Stmts: result.Block.Stmts, Cond: result.Cond, Depth: result.Depth}
		allGlobals = append(allGlobals, result.Globals...)
		if err != nil && liftErr == nil {
			liftErr = err
		}
	}

	structured, structErr := control.Structure(graph, dom, bodies)
	if liftErr == nil {
		liftErr = structErr
	}

	var tree ir.Node = structured
	tree = simplify.InlineVariables(tree)
	tree = simplify.ReconstructDictLiterals(tree)
	tree = simplify.CombinePrintStatements(tree)
	tree = simplify.MakeIdentifiersValid(tree)

	result := tree.(*ir.Block)
	result = simplify.PrependGlobals(result, allGlobals)
	return result, allGlobals, liftErr
}
