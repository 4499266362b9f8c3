package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupShape(t *testing.T) {
	w, err := LookupShape("")
	require.NoError(t, err)
	assert.Equal(t, 0.5, w(0))

	_, err = LookupShape("wobble")
	assert.ErrorContains(t, err, `unknown LFO shape "wobble"`)
}

func TestShapes_StayInUnitRange(t *testing.T) {
	for _, name := range ShapeNames() {
		t.Run(name, func(t *testing.T) {
			w, err := LookupShape(name)
			require.NoError(t, err)
			for i := 0; i < 1000; i++ {
				v := w(float64(i) / 1000)
				assert.GreaterOrEqual(t, v, -1e-6)
				assert.LessOrEqual(t, v, 1+1e-6)
			}
		})
	}
}

func TestEasedExpoShapesReachBothEnds(t *testing.T) {
	for _, name := range []string{"ease-in-expo", "ease-out-expo", "ease-in-out-expo"} {
		t.Run(name, func(t *testing.T) {
			w, err := LookupShape(name)
			require.NoError(t, err)
			assert.InDelta(t, 0, w(0), 1e-2)
			assert.InDelta(t, 1, w(0.5), 1e-2)
			assert.GreaterOrEqual(t, w(0), 0.0)
			assert.LessOrEqual(t, w(0.5), 1.0)
		})
	}
}

func TestEasedShapeIsSymmetric(t *testing.T) {
	w, err := LookupShape("ease-in-out-quad")
	require.NoError(t, err)
	assert.InDelta(t, 0, w(0), 1e-6)
	assert.InDelta(t, 1, w(0.5), 1e-6)
	assert.InDelta(t, w(0.2), w(0.8), 1e-6)
}

func TestLFOUsesConfiguredShape(t *testing.T) {
	n := literalNode(KindLFO, 1)
	n.Shape = Triangle
	v, err := n.Eval(nil, nil, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
	n.Commit(nil)
	v, err = n.Eval(nil, nil, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)
}

func TestShapeNamesSorted(t *testing.T) {
	names := ShapeNames()
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, DefaultShape)
}
