package node

// Input is one argument of a Node: a literal value, a reference to another
// node's output for the current tick, or a read of a store.
type Input struct {
	Value float64
	Node  int
	IsRef bool

	// Store is the store id read when IsStore is set.
	Store   int
	IsStore bool
}

// Literal returns a constant input.
func Literal(v float64) Input {
	return Input{Value: v}
}

// Ref returns an input that reads the output of node idx.
func Ref(idx int) Input {
	return Input{Node: idx, IsRef: true}
}

// StoreRead returns an input that reads store id as committed at the end of
// the previous tick.
func StoreRead(id int) Input {
	return Input{Store: id, IsStore: true}
}

// IsConst reports whether the input is a literal.
func (in Input) IsConst() bool {
	return !in.IsRef && !in.IsStore
}

// Resolve returns the input's value given the per-tick value cache and the
// committed store contents.
func (in Input) Resolve(values, stores []float64) float64 {
	switch {
	case in.IsRef:
		return values[in.Node]
	case in.IsStore:
		return stores[in.Store]
	}
	return in.Value
}
