package spectral

import (
	"math"

	"github.com/RyanBlaney/sonido-chords/algorithms/windowing"
)

// PowerSpectrum computes the power spectrum of a raw PCM chunk for display
type PowerSpectrum struct {
	fft    *FFT
	window windowing.Window // nil leaves chunks untapered
}

// NewPowerSpectrum creates a power spectrum calculator. A non-nil window
// tapers every chunk and fixes the chunk length to its size.
func NewPowerSpectrum(window windowing.Window) *PowerSpectrum {
	return &PowerSpectrum{fft: NewFFT(), window: window}
}

// ComputePCM scales samples to [-1, 1] by math.MaxInt16, applies the window,
// transforms them and returns |X_k|^2 for every one of the len(samples) bins.
func (ps *PowerSpectrum) ComputePCM(samples []int16) ([]float64, error) {
	if len(samples) == 0 {
		return []float64{}, nil
	}

	x := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = float64(s) / math.MaxInt16
	}

	if ps.window != nil {
		if err := ps.window.ApplyInPlace(x); err != nil {
			return nil, err
		}
	}

	spectrum := ps.fft.Compute(x)
	power := make([]float64, len(spectrum))
	for i, c := range spectrum {
		power[i] = real(c)*real(c) + imag(c)*imag(c)
	}

	return power, nil
}

// PeakBin returns the bin with the most power in the lower half of the
// spectrum (DC through Nyquist), or -1 for an empty spectrum.
func PeakBin(power []float64) int {
	if len(power) == 0 {
		return -1
	}

	half := power[:len(power)/2+1]
	best := 0
	for i, p := range half {
		if p > half[best] {
			best = i
		}
	}
	return best
}

// BinFrequency returns the center frequency in Hz of bin for an fftSize-point
// transform at sampleRate.
func BinFrequency(bin, fftSize, sampleRate int) float64 {
	if fftSize == 0 {
		return 0
	}
	return float64(bin) * float64(sampleRate) / float64(fftSize)
}
