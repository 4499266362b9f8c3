package dag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New(3)
	require.NotNil(t, g)
	assert.Equal(t, 3, g.Len())
	for v := 0; v < 3; v++ {
		assert.Empty(t, g.Dependencies(v))
	}
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New(2)
		require.NoError(t, g.AddEdge(1, 0)) // 1 depends on 0
		assert.Equal(t, []int{0}, g.Dependencies(1))
		assert.Empty(t, g.Dependencies(0))
	})

	t.Run("error cases", func(t *testing.T) {
		g := New(2)
		assert.ErrorContains(t, g.AddEdge(-1, 0), "source vertex out of range")
		assert.ErrorContains(t, g.AddEdge(0, 2), "destination vertex out of range")
	})

	t.Run("self edge is accepted", func(t *testing.T) {
		g := New(1)
		assert.NoError(t, g.AddEdge(0, 0))
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		assert.NoError(t, New(0).DetectCycles())
	})

	t.Run("graph with vertices but no edges has no cycles", func(t *testing.T) {
		assert.NoError(t, New(3).DetectCycles())
	})

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := New(4)
		require.NoError(t, g.AddEdge(1, 0))
		require.NoError(t, g.AddEdge(2, 1))
		require.NoError(t, g.AddEdge(2, 0)) // Transitive edge
		require.NoError(t, g.AddEdge(3, 2))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("self edge is detected", func(t *testing.T) {
		g := New(1)
		require.NoError(t, g.AddEdge(0, 0))
		err := g.DetectCycles()
		var cycle *CycleError
		require.True(t, errors.As(err, &cycle))
		assert.Equal(t, []int{0, 0}, cycle.Path)
		assert.EqualError(t, err, "cycle detected: 0 -> 0")
	})

	t.Run("longer cycle is reported as a path", func(t *testing.T) {
		g := New(5)
		require.NoError(t, g.AddEdge(4, 0)) // 4 is outside the cycle
		require.NoError(t, g.AddEdge(0, 1))
		require.NoError(t, g.AddEdge(1, 2))
		require.NoError(t, g.AddEdge(2, 3))
		require.NoError(t, g.AddEdge(3, 1)) // Cycle back into the middle
		err := g.DetectCycles()
		var cycle *CycleError
		require.True(t, errors.As(err, &cycle))
		assert.Equal(t, []int{1, 2, 3, 1}, cycle.Path)
	})

	t.Run("cycle in unreachable part is still found", func(t *testing.T) {
		g := New(3)
		require.NoError(t, g.AddEdge(1, 2))
		require.NoError(t, g.AddEdge(2, 1))
		assert.Error(t, g.DetectCycles())
	})
}

func TestTopoOrder(t *testing.T) {
	t.Run("dependencies precede dependents", func(t *testing.T) {
		// 0 -> {1, 2}, 1 -> 3, 2 -> 3; 4 is dead.
		g := New(5)
		require.NoError(t, g.AddEdge(0, 1))
		require.NoError(t, g.AddEdge(0, 2))
		require.NoError(t, g.AddEdge(1, 3))
		require.NoError(t, g.AddEdge(2, 3))
		require.NoError(t, g.AddEdge(4, 0))

		order, err := g.TopoOrder(0)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 2, 0}, order)
		assert.NotContains(t, order, 4)
	})

	t.Run("shared dependency appears once", func(t *testing.T) {
		g := New(2)
		require.NoError(t, g.AddEdge(1, 0))
		require.NoError(t, g.AddEdge(1, 0))
		order, err := g.TopoOrder(1)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, order)
	})

	t.Run("cycle reachable from root fails", func(t *testing.T) {
		g := New(2)
		require.NoError(t, g.AddEdge(0, 1))
		require.NoError(t, g.AddEdge(1, 0))
		_, err := g.TopoOrder(0)
		assert.ErrorContains(t, err, "cycle detected")
	})

	t.Run("several roots share one walk", func(t *testing.T) {
		// 1 -> 0, 2 -> {0, 1}; 3 is dead.
		g := New(4)
		require.NoError(t, g.AddEdge(1, 0))
		require.NoError(t, g.AddEdge(2, 0))
		require.NoError(t, g.AddEdge(2, 1))
		order, err := g.TopoOrder(1, 2)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, order)
	})

	t.Run("root out of range", func(t *testing.T) {
		_, err := New(1).TopoOrder(3)
		assert.ErrorContains(t, err, "root vertex out of range")
	})
}
