package windowing

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-dsp/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

// Hamming represents a Hamming window function
type Hamming struct {
	size         int
	symmetric    bool
	coefficients []float64
}

// NewHamming creates a new Hamming window. The periodic form
// (symmetric=false) divides by size and is the one used ahead of an FFT.
func NewHamming(size int, symmetric bool) *Hamming {
	return &Hamming{
		size:         size,
		symmetric:    symmetric,
		coefficients: generate(window.TypeFreeCosine, size, symmetric, window.WithCustomCoeffs(hammingTerms)),
	}
}

var periodicHamming sync.Map // size -> *Hamming

// PeriodicHamming returns the process-wide periodic Hamming window of the
// given size, computing it on first use. The window must not be modified.
func PeriodicHamming(size int) *Hamming {
	if h, ok := periodicHamming.Load(size); ok {
		return h.(*Hamming)
	}
	h, _ := periodicHamming.LoadOrStore(size, NewHamming(size, false))
	return h.(*Hamming)
}

// ApplyTo writes signal*window into dst without allocating
func (h *Hamming) ApplyTo(dst, signal []float64) error {
	if len(signal) != h.size || len(dst) != h.size {
		return fmt.Errorf("signal length (%d) or destination length (%d) doesn't match window size (%d)",
			len(signal), len(dst), h.size)
	}

	vecmath.MulBlock(dst, signal, h.coefficients)
	return nil
}

// ApplyInPlace applies the window to a signal in-place
func (h *Hamming) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	vecmath.MulBlockInPlace(signal, h.coefficients)
	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (h *Hamming) GetCoefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// GetSize returns the window size
func (h *Hamming) GetSize() int {
	return h.size
}

// GetType returns the window type
func (h *Hamming) GetType() string {
	return "hamming"
}
