// Package graph defines the compiled form of a patch: a flat arena of
// nodes, the Evaluation Plan over that arena, the index of the single
// Output node and the store arena Writers feed.
//
// # Lifecycle
//
//  1. **Created** by the compiler from an expression tree.
//  2. **Rendered** by the engine, which mutates only per-node phase state
//     and the store values.
//  3. **Discarded** when the render session ends.
//
// The structure never changes after New returns. Node inputs refer to other
// nodes by index only, and the plan guarantees every node appears after the
// nodes it reads from.
//
// # Thread-Safety
//
// A Graph is not safe for concurrent use. Independent graphs share nothing
// and may be rendered on separate goroutines.
package graph
