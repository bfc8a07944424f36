package spectral

import (
	"math"
	"math/cmplx"
	"testing"
)

func sineInt16(freq float64, sampleRate, n int, amp float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

func newTestGoertzel(t *testing.T, freq float64, sampleRate, blockLen int) *Goertzel {
	t.Helper()
	g, err := NewGoertzel(freq, sampleRate, blockLen)
	if err != nil {
		t.Fatalf("NewGoertzel(%v, %d, %d): %v", freq, sampleRate, blockLen, err)
	}
	return g
}

func TestGoertzelZeroSignal(t *testing.T) {
	for _, n := range []int{1, 7, 1024} {
		g := newTestGoertzel(t, 440, 44100, n)
		if mag := g.Add(make([]int16, n)).FinishMag(); mag != 0 {
			t.Errorf("block %d: magnitude of silence = %v, want 0", n, mag)
		}
	}

	if mag := newTestGoertzel(t, 440, 44100, 16).FinishMag(); mag != 0 {
		t.Errorf("magnitude with no samples = %v, want 0", mag)
	}
}

func TestGoertzelChunkedMatchesWhole(t *testing.T) {
	samples := sineInt16(220, 44100, 2048, 12000)
	g := newTestGoertzel(t, 220, 44100, len(samples))

	whole := g.Add(samples).FinishMag()
	chunked := g.Reset().Add(samples[:500]).Add(samples[500:1300]).Add(samples[1300:])

	if chunked.Count() != len(samples) {
		t.Fatalf("Count() = %d, want %d", chunked.Count(), len(samples))
	}
	if got := chunked.FinishMag(); math.Abs(got-whole) > 1e-6*whole {
		t.Fatalf("chunked magnitude %v != whole %v", got, whole)
	}
}

func TestGoertzelResetStartsNewBlock(t *testing.T) {
	loud := sineInt16(220, 44100, 1024, 12000)
	g := newTestGoertzel(t, 220, 44100, len(loud))

	first := g.Add(loud).FinishMag()
	g.Reset()
	if g.Count() != 0 || g.FinishMag() != 0 {
		t.Fatalf("after Reset: count %d, magnitude %v", g.Count(), g.FinishMag())
	}
	if again := g.Add(loud).FinishMag(); math.Abs(again-first) > 1e-9*first {
		t.Fatalf("magnitude after Reset %v, want %v", again, first)
	}
}

func TestGoertzelFloatMatchesInt(t *testing.T) {
	samples := sineInt16(330, 44100, 1024, 9000)
	floats := make([]float64, len(samples))
	for i, s := range samples {
		floats[i] = float64(s)
	}

	g := newTestGoertzel(t, 330, 44100, len(samples))
	a := g.Add(samples).FinishMag()
	b := g.Reset().AddFloat(floats).FinishMag()
	if math.Abs(a-b) > 1e-9*a {
		t.Fatalf("int magnitude %v != float magnitude %v", a, b)
	}
}

func TestGoertzelMatchesDFT(t *testing.T) {
	const (
		sampleRate = 8000
		n          = 500
	)
	samples := sineInt16(697, sampleRate, n, 7000)
	for i := range samples {
		samples[i] += int16(3000 * math.Cos(2*math.Pi*1209*float64(i)/sampleRate))
	}

	for _, freq := range []float64{697, 770, 1209, 1336} {
		var x complex128
		omega := 2 * math.Pi * freq / sampleRate
		for i, s := range samples {
			x += complex(float64(s), 0) * cmplx.Exp(complex(0, -omega*float64(i)))
		}
		want := cmplx.Abs(x)

		got := newTestGoertzel(t, freq, sampleRate, n).Add(samples).FinishMag()
		if math.Abs(got-want) > 1e-6*math.Max(want, 1) {
			t.Errorf("%v Hz: magnitude %v, DFT magnitude %v", freq, got, want)
		}
	}
}

func TestGoertzelSelectsTargetFrequency(t *testing.T) {
	const (
		sampleRate = 44100
		n          = 4096
		amp        = 16000.0
	)
	samples := sineInt16(440, sampleRate, n, amp)

	on := newTestGoertzel(t, 440, sampleRate, n).Add(samples).FinishMag()
	off := newTestGoertzel(t, 880, sampleRate, n).Add(samples).FinishMag()

	// A full-scale bin of a sine is about amp*n/2.
	want := amp * n / 2
	if math.Abs(on-want) > 0.05*want {
		t.Fatalf("on-target magnitude %v, want about %v", on, want)
	}
	if off > on/20 {
		t.Fatalf("off-target magnitude %v too close to on-target %v", off, on)
	}
}

func TestNewGoertzelRejectsInvalidArguments(t *testing.T) {
	tests := []struct {
		name       string
		freq       float64
		sampleRate int
		blockLen   int
	}{
		{"above nyquist", 30000, 44100, 1024},
		{"negative frequency", -1, 44100, 1024},
		{"zero sample rate", 440, 0, 1024},
		{"empty block", 440, 44100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGoertzel(tt.freq, tt.sampleRate, tt.blockLen); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
