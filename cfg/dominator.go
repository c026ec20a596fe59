package cfg

// Dominators maps each block ID to the set of block IDs that dominate it
// (every path from the entry block to it passes through them), computed by
// the standard iterative dataflow fixpoint (4.E): start by assuming every
// block dominates every other, then repeatedly tighten each block's set to
// the intersection of its predecessors' sets plus itself, until nothing
// changes.
type Dominators struct {
	graph *Graph
	doms  [][]bool // doms[b][d] is true if block d dominates block b
	idom  []int    // idom[b] is b's immediate dominator, or -1 for the entry
}

// Compute runs the dominator fixpoint over g and also derives each block's
// immediate dominator.
func Compute(g *Graph) *Dominators {
	n := len(g.Blocks)
	d := &Dominators{graph: g, doms: make([][]bool, n), idom: make([]int, n)}
	for i := range d.doms {
		d.doms[i] = make([]bool, n)
		for j := range d.doms[i] {
			d.doms[i][j] = true
		}
	}
	d.doms[g.Entry] = make([]bool, n)
	d.doms[g.Entry][g.Entry] = true

	changed := true
	for changed {
		changed = false
		for _, b := range g.Blocks {
			if b.ID == g.Entry {
				continue
			}
			if len(b.Preds) == 0 {
				continue
			}
			next := make([]bool, n)
			for i := range next {
				next[i] = true
			}
			for _, p := range b.Preds {
				for i := range next {
					next[i] = next[i] && d.doms[p][i]
				}
			}
			next[b.ID] = true
			if !equalSets(next, d.doms[b.ID]) {
				d.doms[b.ID] = next
				changed = true
			}
		}
	}

	for _, b := range g.Blocks {
		d.idom[b.ID] = d.immediateDominator(b.ID)
	}
	return d
}

// Dominates reports whether block a dominates block b.
func (d *Dominators) Dominates(a, b int) bool { return d.doms[b][a] }

// IDom returns b's immediate dominator, or -1 if b is the entry block.
func (d *Dominators) IDom(b int) int { return d.idom[b] }

// immediateDominator finds the unique strict dominator of b that is
// dominated by every other strict dominator of b (4.E: "the immediate
// dominator is well-defined and unique for every block but the entry").
func (d *Dominators) immediateDominator(b int) int {
	if b == d.graph.Entry {
		return -1
	}
	var strict []int
	for i, dominates := range d.doms[b] {
		if dominates && i != b {
			strict = append(strict, i)
		}
	}
	for _, cand := range strict {
		isImmediate := true
		for _, other := range strict {
			if other != cand && !d.doms[cand][other] {
				isImmediate = false
				break
			}
		}
		if isImmediate {
			return cand
		}
	}
	return -1
}

func equalSets(a, b []bool) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
