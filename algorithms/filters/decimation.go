package filters

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// Second order low-pass run ahead of down-sampling. The coefficients are
// kept exactly as designed; a1 is effectively zero.
var decimationCoefficients = biquad.Coefficients{
	B0: 0.2929,
	B1: 0.5858,
	B2: 0.2929,
	A1: -0.0000,
	A2: 0.1716,
}

// DecimationFilter is the anti-aliasing low-pass used by the chromagram.
// Its state persists across blocks.
type DecimationFilter struct {
	section *biquad.Section
}

// NewDecimationFilter creates the low-pass with cleared state
func NewDecimationFilter() *DecimationFilter {
	return &DecimationFilter{
		section: biquad.NewSection(decimationCoefficients),
	}
}

// Process filters a single sample.
//
// The transfer function is:
// H(z) = (b0 + b1*z^-1 + b2*z^-2) / (1 + a1*z^-1 + a2*z^-2)
func (f *DecimationFilter) Process(x float64) float64 {
	return f.section.ProcessSample(x)
}

// ProcessBlock filters src into dst; the shorter length wins
func (f *DecimationFilter) ProcessBlock(dst, src []float64) {
	n := min(len(dst), len(src))
	copy(dst[:n], src[:n])
	f.section.ProcessBlock(dst[:n])
}

// Reset clears the filter state
func (f *DecimationFilter) Reset() {
	f.section.Reset()
}

// Decimator low-pass filters fixed-size frames and keeps every factor-th
// sample. All buffers are allocated up front.
type Decimator struct {
	filter    *DecimationFilter
	factor    int
	frameSize int
	filtered  []float64
	output    []float64
}

// NewDecimator creates a decimator for frames of frameSize samples
func NewDecimator(factor, frameSize int) (*Decimator, error) {
	if factor < 1 {
		return nil, fmt.Errorf("down-sampling factor must be at least 1, got %d", factor)
	}
	if frameSize < factor {
		return nil, fmt.Errorf("frame size (%d) must be at least the down-sampling factor (%d)", frameSize, factor)
	}

	return &Decimator{
		filter:    NewDecimationFilter(),
		factor:    factor,
		frameSize: frameSize,
		filtered:  make([]float64, frameSize),
		output:    make([]float64, frameSize/factor),
	}, nil
}

// Process filters frame (len must equal the frame size) and returns the
// decimated samples. The returned slice is reused by the next call.
func (d *Decimator) Process(frame []float64) ([]float64, error) {
	if len(frame) != d.frameSize {
		return nil, fmt.Errorf("frame length (%d) doesn't match frame size (%d)", len(frame), d.frameSize)
	}

	d.filter.ProcessBlock(d.filtered, frame)
	for i := range d.output {
		d.output[i] = d.filtered[i*d.factor]
	}

	return d.output, nil
}

// OutputSize returns the number of samples Process yields per frame
func (d *Decimator) OutputSize() int {
	return len(d.output)
}

// Reset clears the filter state
func (d *Decimator) Reset() {
	d.filter.Reset()
}
