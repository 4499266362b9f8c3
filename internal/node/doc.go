// Package node is the closed library of signal node kinds.
//
// A Node is a tagged record: a Kind, a fixed-size array of inputs and the
// phase accumulator used by oscillators. Evaluation is a single switch over
// the Kind, so a tick never allocates and never dispatches through an
// interface. Nodes refer to each other only by index into the graph's node
// arena; the compiler is the only place that deals with names.
//
// Oscillators read their phase before advancing it, and the advanced phase
// is only staged by Eval. The caller commits it once the whole tick has
// succeeded, which keeps a failed tick from leaving half-advanced state
// behind. Writers stage their store value the same way, and store reads
// always see the value committed on the previous tick.
package node
