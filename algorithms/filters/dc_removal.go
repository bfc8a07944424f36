package filters

import (
	"math"
)

// DCRemoval implements a DC blocking filter (high-pass filter) to remove
// the DC component (0 Hz) from audio signals.
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
type DCRemoval struct {
	poleLocation float64 // R parameter (0 < R < 1)

	// State variables
	x1 float64 // Previous input sample x[n-1]
	y1 float64 // Previous output sample y[n-1]
}

// NewDCRemoval creates a DC removal filter with a pole location of 0.995,
// a cutoff of about 35 Hz at 44.1 kHz.
func NewDCRemoval() *DCRemoval {
	return &DCRemoval{poleLocation: 0.995}
}

// NewDCRemovalWithCutoff creates a DC removal filter with the given -3dB
// cutoff frequency, using R = 1 - 2*pi*fc/fs clamped to (0, 1).
func NewDCRemovalWithCutoff(sampleRate int, cutoffFreq float64) *DCRemoval {
	pole := 0.995
	if sampleRate > 0 && cutoffFreq > 0 {
		pole = math.Min(math.Max(1.0-2.0*math.Pi*cutoffFreq/float64(sampleRate), 0.001), 0.999)
	}
	return &DCRemoval{poleLocation: pole}
}

// Process applies DC removal to a single sample.
// Implements the difference equation:
// y[n] = x[n] - x[n-1] + R * y[n-1]
func (dc *DCRemoval) Process(input float64) float64 {
	output := input - dc.x1 + dc.poleLocation*dc.y1

	dc.x1 = input
	dc.y1 = output

	return output
}

// ProcessPCM filters every stride-th sample of pcm starting at offset, in
// place, saturating to the int16 range. Interleaved channels each need their
// own filter.
func (dc *DCRemoval) ProcessPCM(pcm []int16, offset, stride int) {
	for i := offset; i < len(pcm); i += stride {
		y := math.Round(dc.Process(float64(pcm[i])))
		pcm[i] = int16(math.Max(math.MinInt16, math.Min(math.MaxInt16, y)))
	}
}

// Reset clears the filter's internal state.
// Call this when processing discontinuous audio segments.
func (dc *DCRemoval) Reset() {
	dc.x1 = 0.0
	dc.y1 = 0.0
}

// GetCutoffFrequency calculates the approximate -3dB cutoff frequency.
// Uses the inverse of the design formula: fc ≈ (1-R)*fs/(2*pi)
func (dc *DCRemoval) GetCutoffFrequency(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0.0
	}

	return (1.0 - dc.poleLocation) * float64(sampleRate) / (2.0 * math.Pi)
}

