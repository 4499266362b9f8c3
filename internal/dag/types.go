package dag

import (
	"fmt"
	"strings"
)

// Graph is a directed graph over the vertices 0..Len()-1. An edge from u to
// v records that u depends on v, so v is ordered before u.
type Graph struct {
	// deps holds, per vertex, the vertices it depends on in insertion order.
	deps [][]int
}

// color is the three-state visitation marker used by the depth-first walks.
type color uint8

const (
	unvisited color = iota
	inProgress
	done
)

// CycleError reports a dependency cycle. Path lists the vertices along the
// cycle in dependency order; the first and last entries are the same vertex.
type CycleError struct {
	Path []int
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, v := range e.Path {
		parts[i] = fmt.Sprint(v)
	}
	return "cycle detected: " + strings.Join(parts, " -> ")
}
