package spectral

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/mjibson/go-dsp/fft"
)

// FFT provides one-shot Fast Fourier Transforms of any length.
// Every call allocates its result; use PlannedFFT on per-frame paths.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the transform of a real signal using mjibson/go-dsp
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// mjibson/go-dsp handles all sizes, including non-power-of-2
	return fft.FFTReal(x)
}

// PlannedFFT is a fixed-size forward transform whose plan and buffers are
// allocated once, so Transform does not allocate.
type PlannedFFT struct {
	size int
	plan *algofft.Plan[complex128]
	in   []complex128
	out  []complex128
}

// NewPlannedFFT plans a forward transform of the given size
func NewPlannedFFT(size int) (*PlannedFFT, error) {
	if size <= 0 {
		return nil, fmt.Errorf("fft size must be positive, got %d", size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("plan %d-point fft: %w", size, err)
	}

	return &PlannedFFT{
		size: size,
		plan: plan,
		in:   make([]complex128, size),
		out:  make([]complex128, size),
	}, nil
}

// Size returns the transform length
func (p *PlannedFFT) Size() int {
	return p.size
}

// Transform loads the real signal x (len(x) must equal Size) and returns
// the complex spectrum. The returned slice is reused by the next call.
func (p *PlannedFFT) Transform(x []float64) ([]complex128, error) {
	if len(x) != p.size {
		return nil, fmt.Errorf("signal length (%d) doesn't match fft size (%d)", len(x), p.size)
	}

	for i, v := range x {
		p.in[i] = complex(v, 0)
	}

	if err := p.plan.Forward(p.out, p.in); err != nil {
		return nil, fmt.Errorf("forward fft: %w", err)
	}

	return p.out, nil
}
