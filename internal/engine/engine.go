package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/specialistvlad/patchgrid/internal/graph"
	"github.com/specialistvlad/patchgrid/internal/node"
)

var (
	// ErrDivisionByZero is reported when a Map node's signal bounds meet.
	ErrDivisionByZero = node.ErrDivisionByZero
	// ErrNonFiniteValue is reported when a node computes NaN or ±Inf, or
	// stages a non-finite phase for the next tick.
	ErrNonFiniteValue = errors.New("non-finite value")
	// ErrInvalidBlockSize is returned by RenderBlock for sizes below one.
	ErrInvalidBlockSize = errors.New("block size must be positive")
)

// RuntimeError describes the node that aborted a tick.
type RuntimeError struct {
	Err   error
	Node  int
	Kind  node.Kind
	Label string
	// Tick is the number of ticks completed before the failing one.
	Tick uint64
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("tick %d: %s node %q: %v", e.Tick, e.Kind, e.Label, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Engine renders samples from a Graph.
type Engine struct {
	g      *graph.Graph
	values []float64
	tick   uint64
}

// New prepares an engine for g. All buffers a tick needs are allocated here.
func New(g *graph.Graph) *Engine {
	return &Engine{
		g:      g,
		values: make([]float64, g.Len()),
	}
}

// Graph returns the graph the engine drives.
func (e *Engine) Graph() *graph.Graph {
	return e.g
}

// Tick returns the number of ticks completed so far.
func (e *Engine) Tick() uint64 {
	return e.tick
}

// Reset rewinds the graph's oscillators, its stores and the tick counter.
func (e *Engine) Reset() {
	e.g.Reset()
	e.tick = 0
}

// Step evaluates one tick and returns the Output node's value. Phases and
// store writes are committed only when every node succeeded.
func (e *Engine) Step() (float64, error) {
	g := e.g
	clear(e.values)
	for _, idx := range g.Plan {
		n := &g.Nodes[idx]
		v, err := n.Eval(e.values, g.Stores, g.SampleRate)
		if err != nil {
			return 0, e.fail(idx, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, e.fail(idx, ErrNonFiniteValue)
		}
		e.values[idx] = v
	}
	for _, idx := range g.Stateful() {
		if s := g.Nodes[idx].Staged(); math.IsNaN(s) || math.IsInf(s, 0) {
			return 0, e.fail(idx, ErrNonFiniteValue)
		}
	}
	g.Commit()
	e.tick++
	return e.values[g.Output], nil
}

// Render fills dst with consecutive samples. On failure it returns how many
// samples were produced before the failing tick; callers treat the block as
// aborted.
func (e *Engine) Render(dst []float64) (int, error) {
	for i := range dst {
		v, err := e.Step()
		if err != nil {
			return i, err
		}
		dst[i] = v
	}
	return len(dst), nil
}

// RenderBlock returns the next blockSize samples in a new slice. Use Render
// with a reused buffer where allocation matters.
func (e *Engine) RenderBlock(blockSize int) ([]float64, error) {
	if blockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	out := make([]float64, blockSize)
	if _, err := e.Render(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) fail(idx int, err error) error {
	n := &e.g.Nodes[idx]
	return &RuntimeError{
		Err:   err,
		Node:  idx,
		Kind:  n.Kind,
		Label: n.Label,
		Tick:  e.tick,
	}
}
