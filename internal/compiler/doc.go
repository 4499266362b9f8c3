// Package compiler turns a parsed patch into an executable graph.
//
// Compilation happens in passes over the expression tree:
//
//  1. Every call becomes a node in declaration order (nested calls become
//     anonymous nodes). Unknown call names and wrong argument counts fail
//     here, and each assignment is recorded as a binding.
//  2. Identifier arguments are resolved against the bindings. A name binds
//     the most recent assignment in an earlier statement; failing that, the
//     first assignment at or after the current one, which makes forward
//     references work and turns self references into cycles.
//  3. Writers are checked to target a store, one Writer per store, and Map
//     calls with equal literal input bounds are rejected.
//  4. The whole node arena is checked for cycles, the single Output node is
//     located, and a depth-first walk from Output and then from each Writer
//     yields the evaluation plan. Nodes none of them depend on stay in the
//     arena but are left out of the plan.
//
// `name = Store()` declares a store rather than a node. Naming a store reads
// the value its Writer committed on the previous tick (zero before the
// first write), so a store read adds no dependency edge and feedback loops
// through a store are not cycles.
//
// All failures are *Error values wrapping one of the Err* sentinels.
package compiler
