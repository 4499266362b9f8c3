package node

import (
	"fmt"
	"math"
	"sort"

	"github.com/tanema/gween/ease"
)

// Waveform maps an LFO phase in [0, 1) to a modulation value in [0, 1].
type Waveform func(phase float64) float64

// DefaultShape is the LFO waveform used when none is configured.
const DefaultShape = "sine"

// Sine is the default LFO shape: 0.5 + 0.5*sin(2πp).
func Sine(p float64) float64 {
	return 0.5 + 0.5*math.Sin(2*math.Pi*p)
}

// Triangle rises from 0 to 1 over the first half cycle and falls back.
func Triangle(p float64) float64 {
	if p < 0.5 {
		return 2 * p
	}
	return 2 - 2*p
}

// Ramp rises linearly from 0 to 1 once per cycle.
func Ramp(p float64) float64 {
	return p
}

// Pulse is 1 for the first half cycle and 0 for the second.
func Pulse(p float64) float64 {
	if p < 0.5 {
		return 1
	}
	return 0
}

// Eased builds a symmetric waveform from an easing curve: the curve drives
// the rise over the first half cycle and is mirrored for the fall. Curves
// that overshoot, like the expo family at its ends, are clamped to [0, 1].
func Eased(fn ease.TweenFunc) Waveform {
	return func(p float64) float64 {
		t := 2 * p
		if p >= 0.5 {
			t = 2 - 2*p
		}
		return min(max(float64(fn(float32(t), 0, 1, 1)), 0), 1)
	}
}

var shapes = map[string]Waveform{
	"sine":     Sine,
	"triangle": Triangle,
	"ramp":     Ramp,
	"square":   Pulse,

	"ease-in-quad":      Eased(ease.InQuad),
	"ease-out-quad":     Eased(ease.OutQuad),
	"ease-in-out-quad":  Eased(ease.InOutQuad),
	"ease-in-cubic":     Eased(ease.InCubic),
	"ease-out-cubic":    Eased(ease.OutCubic),
	"ease-in-out-cubic": Eased(ease.InOutCubic),
	"ease-in-sine":      Eased(ease.InSine),
	"ease-out-sine":     Eased(ease.OutSine),
	"ease-in-out-sine":  Eased(ease.InOutSine),
	"ease-in-expo":      Eased(ease.InExpo),
	"ease-out-expo":     Eased(ease.OutExpo),
	"ease-in-out-expo":  Eased(ease.InOutExpo),
	"ease-out-bounce":   Eased(ease.OutBounce),
}

// LookupShape returns the named LFO waveform. The empty name selects the
// default.
func LookupShape(name string) (Waveform, error) {
	if name == "" {
		name = DefaultShape
	}
	w, ok := shapes[name]
	if !ok {
		return nil, fmt.Errorf("unknown LFO shape %q", name)
	}
	return w, nil
}

// ShapeNames lists every registered LFO shape, sorted.
func ShapeNames() []string {
	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
