package spectral

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/spectrum"
)

// Goertzel estimates the energy of one frequency within a block of
// BlockLen samples. Samples may arrive in several Add calls; Reset starts
// a new block, so one estimator per frequency can be reused frame after
// frame:
//
//	mag := g.Reset().AddFloat(older).AddFloat(newer).FinishMag()
//
// The result is only meaningful once BlockLen samples have been added; with
// fewer samples it covers whatever was supplied.
type Goertzel struct {
	bin      *spectrum.Goertzel
	blockLen int
	count    int
}

// NewGoertzel creates an estimator for freqHz. The target frequency does
// not have to fall on an integer DFT bin but must lie in [0, sampleRate/2].
func NewGoertzel(freqHz float64, sampleRate int, blockLen int) (*Goertzel, error) {
	if blockLen <= 0 {
		return nil, fmt.Errorf("block length must be positive, got %d", blockLen)
	}

	bin, err := spectrum.NewGoertzel(freqHz, float64(sampleRate))
	if err != nil {
		return nil, fmt.Errorf("failed to create estimator for %.2f Hz: %w", freqHz, err)
	}

	return &Goertzel{bin: bin, blockLen: blockLen}, nil
}

// Reset clears the accumulated state
func (g *Goertzel) Reset() *Goertzel {
	g.bin.Reset()
	g.count = 0
	return g
}

// Add feeds 16-bit samples through the recursion
func (g *Goertzel) Add(samples []int16) *Goertzel {
	for _, s := range samples {
		g.bin.ProcessSample(float64(s))
	}
	g.count += len(samples)
	return g
}

// AddFloat feeds floating point samples through the recursion
func (g *Goertzel) AddFloat(samples []float64) *Goertzel {
	g.bin.ProcessBlock(samples)
	g.count += len(samples)
	return g
}

// FinishMag returns the (unnormalized) DFT magnitude at the target
// frequency over everything added since the last Reset.
func (g *Goertzel) FinishMag() float64 {
	return g.bin.Magnitude()
}

// Count returns how many samples have been added since the last Reset
func (g *Goertzel) Count() int {
	return g.count
}

// BlockLen returns the number of samples the estimate is meant to cover
func (g *Goertzel) BlockLen() int {
	return g.blockLen
}

// Frequency returns the target frequency in Hz
func (g *Goertzel) Frequency() float64 {
	return g.bin.Frequency()
}
