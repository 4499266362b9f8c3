// Package dag holds the dependency structure of a compiled patch as a
// directed graph over integer vertices. It is responsible for proving the
// graph acyclic and for producing the evaluation order of the vertices
// reachable from a root.
//
// Vertices are plain indices into the caller's node arena, so the package
// never sees names or node payloads.
package dag
