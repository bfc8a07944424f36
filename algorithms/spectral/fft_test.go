package spectral

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/RyanBlaney/sonido-chords/algorithms/windowing"
)

func TestPlannedFFTPeakBin(t *testing.T) {
	const size = 1024
	p, err := NewPlannedFFT(size)
	if err != nil {
		t.Fatalf("NewPlannedFFT: %v", err)
	}

	x := make([]float64, size)
	for i := range x {
		x[i] = math.Cos(2 * math.Pi * 32 * float64(i) / size)
	}

	spectrum, err := p.Transform(x)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	best := 0
	for k := 0; k <= size/2; k++ {
		if cmplx.Abs(spectrum[k]) > cmplx.Abs(spectrum[best]) {
			best = k
		}
	}
	if best != 32 {
		t.Fatalf("peak bin = %d, want 32", best)
	}
	if got := cmplx.Abs(spectrum[32]); math.Abs(got-size/2) > 1e-6*size {
		t.Fatalf("|X[32]| = %v, want %v", got, size/2)
	}
}

func TestPlannedFFTRejectsWrongLength(t *testing.T) {
	p, err := NewPlannedFFT(64)
	if err != nil {
		t.Fatalf("NewPlannedFFT: %v", err)
	}
	if _, err := p.Transform(make([]float64, 63)); err == nil {
		t.Fatal("expected error for mismatched length")
	}
	if _, err := NewPlannedFFT(0); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestPowerSpectrumPeak(t *testing.T) {
	const (
		sampleRate = 8000
		n          = 256
	)
	// 1000 Hz lands exactly on bin 32.
	samples := sineInt16(1000, sampleRate, n, 16000)

	power, err := NewPowerSpectrum(nil).ComputePCM(samples)
	if err != nil {
		t.Fatalf("ComputePCM: %v", err)
	}
	if len(power) != n {
		t.Fatalf("len(power) = %d, want %d", len(power), n)
	}

	bin := PeakBin(power)
	if bin != 32 {
		t.Fatalf("PeakBin = %d, want 32", bin)
	}
	if f := BinFrequency(bin, n, sampleRate); f != 1000 {
		t.Fatalf("BinFrequency = %v, want 1000", f)
	}
}

func TestPowerSpectrumEmpty(t *testing.T) {
	if got, err := NewPowerSpectrum(nil).ComputePCM(nil); err != nil || len(got) != 0 {
		t.Fatalf("expected empty spectrum, got %d bins", len(got))
	}
	if PeakBin(nil) != -1 {
		t.Fatal("PeakBin(nil) should be -1")
	}
}

func TestPowerSpectrumWindowed(t *testing.T) {
	const (
		sampleRate = 8000
		n          = 256
	)
	// 1010 Hz sits between bins, where the taper matters
	samples := sineInt16(1010, sampleRate, n, 16000)

	plain, err := NewPowerSpectrum(nil).ComputePCM(samples)
	if err != nil {
		t.Fatalf("ComputePCM: %v", err)
	}
	tapered, err := NewPowerSpectrum(windowing.NewHann(n, false)).ComputePCM(samples)
	if err != nil {
		t.Fatalf("ComputePCM: %v", err)
	}

	if PeakBin(tapered) != 32 || PeakBin(plain) != 32 {
		t.Fatalf("peak bins %d / %d, want 32", PeakBin(tapered), PeakBin(plain))
	}
	// Leakage far from the tone drops with the Hann taper
	if tapered[100] >= plain[100] {
		t.Fatalf("bin 100: tapered %v >= plain %v", tapered[100], plain[100])
	}

	if _, err := NewPowerSpectrum(windowing.NewHann(n, false)).ComputePCM(samples[:n-1]); err == nil {
		t.Fatal("expected error for a chunk that doesn't match the window")
	}
}
