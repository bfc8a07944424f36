package windowing

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/window"
)

// Window is a fixed-size tapering window
type Window interface {
	ApplyTo(dst, signal []float64) error
	ApplyInPlace(signal []float64) error
	GetCoefficients() []float64
	GetSize() int
	GetType() string
}

// New returns the periodic window of the named type. "none" and "" return
// a nil Window.
func New(name string, size int) (Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}

	switch name {
	case "", "none", "rectangular":
		return nil, nil
	case "hann":
		return NewHann(size, false), nil
	case "hamming":
		return PeriodicHamming(size), nil
	default:
		return nil, fmt.Errorf("unknown window type %q", name)
	}
}

// Cosine-sum terms of the Hamming window, pinned to the classic 0.54/0.46
var hammingTerms = []float64{0.54, -0.46}

// generate returns the coefficients of a window type. Periodic windows
// divide by size, symmetric ones by size-1; a single-sample window is [1].
func generate(t window.Type, size int, symmetric bool, opts ...window.Option) []float64 {
	if size == 1 {
		return []float64{1}
	}
	if !symmetric {
		opts = append(opts, window.WithPeriodic())
	}
	return window.Generate(t, size, opts...)
}
