package render

import (
	"sync/atomic"

	"github.com/specialistvlad/patchgrid/internal/engine"
	"github.com/specialistvlad/patchgrid/internal/graph"
)

// Source supplies the engine to use for the next block.
type Source interface {
	Engine() *engine.Engine
}

type fixed struct {
	e *engine.Engine
}

// Fixed always renders with e.
func Fixed(e *engine.Engine) Source {
	return fixed{e: e}
}

func (f fixed) Engine() *engine.Engine { return f.e }

// Hot is a Source whose graph can be replaced while a render is running. The
// replacement takes effect at the next block boundary with fresh state.
type Hot struct {
	current atomic.Pointer[engine.Engine]
	swaps   atomic.Uint64
}

// NewHot starts with an engine for g.
func NewHot(g *graph.Graph) *Hot {
	h := &Hot{}
	h.current.Store(engine.New(g))
	return h
}

func (h *Hot) Engine() *engine.Engine {
	return h.current.Load()
}

// Swap installs a new graph. It is safe to call from any goroutine.
func (h *Hot) Swap(g *graph.Graph) {
	h.current.Store(engine.New(g))
	h.swaps.Add(1)
}

// Swaps reports how many times the graph has been replaced.
func (h *Hot) Swaps() uint64 {
	return h.swaps.Load()
}
