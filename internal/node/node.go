package node

import (
	"errors"
	"math"
)

// ErrDivisionByZero is returned when a Map node's input bounds coincide at
// evaluation time.
var ErrDivisionByZero = errors.New("division by zero")

// Node is a single vertex of a compiled signal graph.
type Node struct {
	Kind   Kind
	Inputs [MaxArity]Input

	// Label names the node in errors: the assigned name, or the call and
	// its source position for anonymous calls.
	Label string

	// Shape is the LFO waveform. Nil means Sine.
	Shape Waveform

	// Phase is the oscillator position in [0, 1) at the start of the tick.
	Phase float64
	next  float64
}

// New returns a node of the given kind with all inputs set to literal zero.
func New(kind Kind, label string) Node {
	return Node{Kind: kind, Label: label}
}

// Args returns the used prefix of Inputs.
func (n *Node) Args() []Input {
	return n.Inputs[:n.Kind.Arity()]
}

// Eval computes the node's output for the current tick. values holds the
// outputs of every node already evaluated this tick and stores the store
// contents committed at the end of the previous tick. Oscillators stage
// their next phase and Writers stage their store write; call Commit once
// the tick is known to be good.
func (n *Node) Eval(values, stores []float64, sampleRate float64) (float64, error) {
	arg := func(i int) float64 {
		return n.Inputs[i].Resolve(values, stores)
	}
	switch n.Kind {
	case KindSaw:
		p := n.advance(arg(0), sampleRate)
		return arg(1) * (2*p - 1), nil
	case KindSine:
		p := n.advance(arg(0), sampleRate)
		return arg(1) * math.Sin(2*math.Pi*p), nil
	case KindSquare:
		// High for the first half cycle, in step with Sine.
		p := n.advance(arg(0), sampleRate)
		if p < 0.5 {
			return arg(1), nil
		}
		return -arg(1), nil
	case KindTriangle:
		p := n.advance(arg(0), sampleRate)
		if p < 0.5 {
			return arg(1) * (4*p - 1), nil
		}
		return arg(1) * (3 - 4*p), nil
	case KindLFO:
		p := n.advance(arg(0), sampleRate)
		if n.Shape == nil {
			return Sine(p), nil
		}
		return n.Shape(p), nil
	case KindAdd:
		return arg(0) + arg(1), nil
	case KindSub:
		return arg(0) - arg(1), nil
	case KindMul:
		return arg(0) * arg(1), nil
	case KindMix:
		a, b, t := arg(0), arg(1), arg(2)
		return a*(1-t) + b*t, nil
	case KindMap:
		x := arg(0)
		inMin, inMax := arg(1), arg(2)
		outMin, outMax := arg(3), arg(4)
		span := inMax - inMin
		if span == 0 {
			return 0, ErrDivisionByZero
		}
		return outMin + (x-inMin)*(outMax-outMin)/span, nil
	case KindWriter:
		v := arg(1)
		n.next = v
		return v, nil
	case KindOutput:
		return arg(0), nil
	}
	return 0, nil
}

// Staged returns the value the next Commit will apply: the oscillator's
// next phase, or the value a Writer will store.
func (n *Node) Staged() float64 {
	return n.next
}

// Commit applies the state staged by the last Eval. A Writer puts its value
// into stores; oscillators move to their next phase.
func (n *Node) Commit(stores []float64) {
	if n.Kind == KindWriter {
		stores[n.Inputs[0].Store] = n.next
		return
	}
	n.Phase = n.next
}

// Reset returns the oscillator to phase zero and drops any staged write.
func (n *Node) Reset() {
	n.Phase = 0
	n.next = 0
}

// advance stages phase+freq/sampleRate wrapped into [0, 1) and returns the
// current phase.
func (n *Node) advance(freq, sampleRate float64) float64 {
	p := n.Phase
	n.next = wrap(p + freq/sampleRate)
	return p
}

func wrap(p float64) float64 {
	p -= math.Floor(p)
	// p - Floor(p) rounds up to 1 for tiny negative inputs.
	if p >= 1 {
		return 0
	}
	return p
}
