package dag

import (
	"fmt"
)

// New creates a graph with n vertices and no edges.
func New(n int) *Graph {
	return &Graph{deps: make([][]int, n)}
}

// Len returns the number of vertices.
func (g *Graph) Len() int {
	return len(g.deps)
}

// AddEdge records that vertex `from` depends on vertex `to`. Self edges are
// accepted; they are cycles and DetectCycles reports them.
func (g *Graph) AddEdge(from, to int) error {
	if from < 0 || from >= len(g.deps) {
		return fmt.Errorf("source vertex out of range: %d", from)
	}
	if to < 0 || to >= len(g.deps) {
		return fmt.Errorf("destination vertex out of range: %d", to)
	}
	g.deps[from] = append(g.deps[from], to)
	return nil
}

// Dependencies returns the vertices v depends on. The slice is shared with
// the graph and must not be modified.
func (g *Graph) Dependencies(v int) []int {
	return g.deps[v]
}

// DetectCycles checks every vertex, reachable from anything or not, and
// returns a *CycleError describing the first cycle found in vertex order.
func (g *Graph) DetectCycles() error {
	w := g.newWalk()
	for v := range g.deps {
		if w.colors[v] == unvisited {
			if err := w.visit(v); err != nil {
				return err
			}
		}
	}
	return nil
}

// TopoOrder returns the vertices reachable from any of roots, each placed
// after all of its dependencies. Roots are walked in the order given, so
// the first root's subgraph comes first. Vertices not reachable from a
// root are left out.
func (g *Graph) TopoOrder(roots ...int) ([]int, error) {
	w := g.newWalk()
	for _, root := range roots {
		if root < 0 || root >= len(g.deps) {
			return nil, fmt.Errorf("root vertex out of range: %d", root)
		}
		if err := w.visit(root); err != nil {
			return nil, err
		}
	}
	return w.order, nil
}

// walk is a single depth-first traversal. stack mirrors the in-progress
// vertices so a cycle can be reported as a path.
type walk struct {
	g      *Graph
	colors []color
	stack  []int
	order  []int
}

func (g *Graph) newWalk() *walk {
	return &walk{g: g, colors: make([]color, len(g.deps))}
}

func (w *walk) visit(v int) error {
	switch w.colors[v] {
	case done:
		return nil
	case inProgress:
		return w.cycleAt(v)
	}

	w.colors[v] = inProgress
	w.stack = append(w.stack, v)
	for _, dep := range w.g.deps[v] {
		if err := w.visit(dep); err != nil {
			return err
		}
	}
	w.stack = w.stack[:len(w.stack)-1]
	w.colors[v] = done
	w.order = append(w.order, v)
	return nil
}

// cycleAt builds the path from the earlier occurrence of v on the stack back
// to v itself.
func (w *walk) cycleAt(v int) error {
	start := len(w.stack) - 1
	for start > 0 && w.stack[start] != v {
		start--
	}
	path := append([]int(nil), w.stack[start:]...)
	path = append(path, v)
	return &CycleError{Path: path}
}
