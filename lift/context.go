package lift

import "github.com/evanw/unwind-go/ir"

// Context is the state threaded through one symbolic execution pass: the
// simulated operand stack, and a counter for minting fresh Temp IDs. The
// stack holds the expression nodes themselves; a pushed value is not
// assigned to a Temp, and the only Temps minted are the placeholders pop
// and top return on an empty stack.
type Context struct {
	stack    []ir.Node
	nextTmp  int
	globals  map[string]bool
	lastCond ir.Node

	// err is set by the first pop/top call that finds an empty stack, and
	// checked by Exec after every instruction so lifting stops there
	// instead of continuing to build expression trees from fabricated
	// placeholders.
	err    error
	offset int
}

func newContext(startTmp int) *Context {
	return &Context{globals: map[string]bool{}, nextTmp: startTmp}
}

func (c *Context) push(n ir.Node) {
	c.stack = append(c.stack, n)
}

// pop removes and returns the top of the simulated stack. Popping an empty
// stack means the opcode table is malformed or a block was entered with
// the wrong stack depth (4.G's per-block fresh-stack assumption does not
// hold); it records a LiftError via fail and still returns a placeholder
// Temp so the caller's tree-building code does not need a nil check, but
// Exec stops lifting as soon as err is set.
func (c *Context) pop() ir.Node {
	if len(c.stack) == 0 {
		c.fail(ErrStackUnderflow)
		return c.fresh()
	}
	n := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return n
}

// fail records the first error Context encounters; later calls (from
// further pops within the same instruction) do not overwrite it.
func (c *Context) fail(err error) {
	if c.err == nil {
		c.err = LiftError{Offset: c.offset, Context: "symbolic execution", Err: err}
	}
}

// popN pops n values and returns them in original (bottom-to-top) push
// order, the order BUILD_TUPLE/CALL_FUNCTION/etc expect their operands in.
func (c *Context) popN(n int) []ir.Node {
	out := make([]ir.Node, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = c.pop()
	}
	return out
}

func (c *Context) top() ir.Node {
	if len(c.stack) == 0 {
		c.fail(ErrStackUnderflow)
		return c.fresh()
	}
	return c.stack[len(c.stack)-1]
}

func (c *Context) fresh() *ir.Temp {
	t := &ir.Temp{ID: c.nextTmp}
	c.nextTmp++
	return t
}
