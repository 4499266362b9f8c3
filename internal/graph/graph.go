package graph

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/patchgrid/internal/node"
)

// Graph owns the node arena and its evaluation plan.
type Graph struct {
	// Nodes is the arena, indexed by node id. Every compiled node is kept,
	// including those the plan leaves out.
	Nodes []node.Node
	// Plan lists the nodes reachable from Output or from a Writer, in
	// evaluation order.
	Plan []int
	// Output is the index of the Output node.
	Output int
	// SampleRate is the rate the oscillators advance at, in Hz.
	SampleRate float64
	// Stores holds the value of every store as of the last committed tick.
	Stores []float64

	// stateful holds the plan entries that own a phase accumulator.
	stateful []int
}

// New assembles a Graph and checks the plan invariants: every plan entry
// is a valid index that appears once and reads only from entries before it,
// the Output node is planned, and every Writer targets a store. The store
// arena is sized from the highest store id any node touches.
func New(nodes []node.Node, plan []int, output int, sampleRate float64) (*Graph, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", sampleRate)
	}
	if output < 0 || output >= len(nodes) || nodes[output].Kind != node.KindOutput {
		return nil, fmt.Errorf("output index %d does not name an Output node", output)
	}
	if !slices.Contains(plan, output) {
		return nil, fmt.Errorf("plan must include the output node %d", output)
	}

	position := make([]int, len(nodes))
	for i := range position {
		position[i] = -1
	}
	stores := 0
	for i := range nodes {
		n := &nodes[i]
		for _, in := range n.Args() {
			if !in.IsStore {
				continue
			}
			if in.Store < 0 {
				return nil, fmt.Errorf("node %d (%s) reads negative store id %d", i, n.Label, in.Store)
			}
			stores = max(stores, in.Store+1)
		}
		if n.Kind == node.KindWriter && !n.Inputs[0].IsStore {
			return nil, fmt.Errorf("writer %d (%s) does not target a store", i, n.Label)
		}
	}

	var stateful []int
	for pos, idx := range plan {
		if idx < 0 || idx >= len(nodes) {
			return nil, fmt.Errorf("plan entry %d is out of range: %d", pos, idx)
		}
		if position[idx] >= 0 {
			return nil, fmt.Errorf("node %d appears twice in the plan", idx)
		}
		n := &nodes[idx]
		for _, in := range n.Args() {
			if !in.IsRef {
				continue
			}
			if in.Node < 0 || in.Node >= len(nodes) || position[in.Node] < 0 {
				return nil, fmt.Errorf("node %d (%s) reads node %d before it is evaluated", idx, n.Label, in.Node)
			}
		}
		position[idx] = pos
		if n.Kind.Stateful() {
			stateful = append(stateful, idx)
		}
	}

	return &Graph{
		Nodes:      nodes,
		Plan:       plan,
		Output:     output,
		SampleRate: sampleRate,
		Stores:     make([]float64, stores),
		stateful:   stateful,
	}, nil
}

// Len returns the size of the node arena.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// Stateful returns the planned nodes that stage state for Commit, in plan
// order.
func (g *Graph) Stateful() []int {
	return g.stateful
}

// Commit applies the phases and store writes staged during the last
// evaluated tick.
func (g *Graph) Commit() {
	for _, idx := range g.stateful {
		g.Nodes[idx].Commit(g.Stores)
	}
}

// Reset returns every oscillator in the arena to phase zero and empties
// every store, restoring the state the graph had right after compilation.
func (g *Graph) Reset() {
	for i := range g.Nodes {
		g.Nodes[i].Reset()
	}
	clear(g.Stores)
}

// Excluded returns the arena indices the plan leaves out because neither
// Output nor any Writer depends on them.
func (g *Graph) Excluded() []int {
	planned := make([]bool, len(g.Nodes))
	for _, idx := range g.Plan {
		planned[idx] = true
	}
	var out []int
	for i, ok := range planned {
		if !ok {
			out = append(out, i)
		}
	}
	return out
}
