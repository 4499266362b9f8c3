// Package engine evaluates compiled graphs one sample tick at a time.
//
// A tick clears the per-node value cache, evaluates the plan in order so
// every node reads inputs that are already cached, checks each result is
// finite, and only then commits the oscillators' staged phases and the
// Writers' staged store values once those are finite too. A failing
// tick returns a *RuntimeError and leaves all state as it was before the
// tick started.
//
// Step and Render never allocate, so they can run inside an audio callback.
// An Engine, like the Graph it drives, must not be used from more than one
// goroutine at a time.
package engine
