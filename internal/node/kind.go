package node

// Kind tags the transfer function of a Node.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindSaw
	KindSine
	KindSquare
	KindTriangle
	KindLFO
	KindAdd
	KindSub
	KindMul
	KindMix
	KindMap
	KindWriter
	KindOutput

	kindCount
)

// MaxArity is the largest fixed arity of any kind (Map).
const MaxArity = 5

var kindNames = [kindCount]string{
	KindInvalid:  "Invalid",
	KindSaw:      "Saw",
	KindSine:     "Sine",
	KindSquare:   "Square",
	KindTriangle: "Triangle",
	KindLFO:      "LFO",
	KindAdd:      "Add",
	KindSub:      "Sub",
	KindMul:      "Mul",
	KindMix:      "Mix",
	KindMap:      "Map",
	KindWriter:   "Writer",
	KindOutput:   "Output",
}

var kindArity = [kindCount]int{
	KindSaw:      2,
	KindSine:     2,
	KindSquare:   2,
	KindTriangle: 2,
	KindLFO:      1,
	KindAdd:      2,
	KindSub:      2,
	KindMul:      2,
	KindMix:      3,
	KindMap:      5,
	KindWriter:   2,
	KindOutput:   1,
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k := KindSaw; k < kindCount; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

// LookupKind maps a call name such as "Saw" to its Kind. Names are
// case-sensitive.
func LookupKind(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

func (k Kind) String() string {
	if k >= kindCount {
		return "Invalid"
	}
	return kindNames[k]
}

// Arity is the exact number of arguments a call of this kind takes.
func (k Kind) Arity() int {
	if k >= kindCount {
		return 0
	}
	return kindArity[k]
}

// Stateful reports whether the kind stages state for Commit: a phase
// accumulator, or a Writer's pending store write.
func (k Kind) Stateful() bool {
	switch k {
	case KindSaw, KindSine, KindSquare, KindTriangle, KindLFO, KindWriter:
		return true
	}
	return false
}

// Names lists the call names of every kind in declaration order.
func Names() []string {
	names := make([]string, 0, kindCount-1)
	for k := KindSaw; k < kindCount; k++ {
		names = append(names, kindNames[k])
	}
	return names
}
