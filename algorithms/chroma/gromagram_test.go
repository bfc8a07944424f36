package chroma

import (
	"math"
	"slices"
	"testing"
)

func sineFrame(freq float64, sampleRate, n int, amp float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

func newTestGromagram(t *testing.T, cfg GromagramConfig) *Gromagram {
	t.Helper()
	g, err := NewGromagram(cfg)
	if err != nil {
		t.Fatalf("NewGromagram: %v", err)
	}
	return g
}

func TestGromagramA2Scenario(t *testing.T) {
	g := newTestGromagram(t, GromagramConfig{
		WindowSize:   1024,
		SampleRate:   44100,
		ChannelCount: 1,
		StartNote:    A1,
		NotesCount:   24,
	})

	g.ProcessAudioFrame(sineFrame(110, 44100, 1024, 16000))

	features := g.Features()
	a2 := A2 - A1
	if got := slices.Index(features, slices.Max(features)); got != a2 {
		t.Fatalf("max energy at index %d (%s), want %d (A2); features=%v",
			got, NoteName(A1+got), a2, features)
	}
	if features[a2] <= features[a2-1] || features[a2] <= features[a2+1] {
		t.Fatalf("A2 energy %v not strictly above neighbors %v, %v",
			features[a2], features[a2-1], features[a2+1])
	}
}

func TestGromagramPeaksAcrossTrackedNotes(t *testing.T) {
	const (
		sampleRate = 44100
		window     = 8192
		notes      = 24
	)
	g := newTestGromagram(t, GromagramConfig{
		WindowSize:   window,
		SampleRate:   sampleRate,
		ChannelCount: 1,
		StartNote:    A1,
		NotesCount:   notes,
	})

	for idx := range notes {
		freq := NoteFrequency(A1 + idx)
		g.Reset()
		g.ProcessAudioFrame(sineFrame(freq, sampleRate, window, 16000))

		features := g.Features()
		if got := slices.Index(features, slices.Max(features)); got != idx {
			t.Errorf("%s (%.1f Hz): max at %s", NoteName(A1+idx), freq, NoteName(A1+got))
			continue
		}
		for j, e := range features {
			if abs(j-idx) > 2 && features[idx] < 5*e {
				t.Errorf("%s: energy %v less than 5x %s energy %v",
					NoteName(A1+idx), features[idx], NoteName(A1+j), e)
			}
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestGromagramChunkedFramesMatchSingleFrame(t *testing.T) {
	cfg := GromagramConfig{WindowSize: 1024, SampleRate: 44100, ChannelCount: 1, StartNote: A2, NotesCount: 12}
	whole := newTestGromagram(t, cfg)
	chunked := newTestGromagram(t, cfg)

	signal := sineFrame(220, 44100, 1024, 12000)
	whole.ProcessAudioFrame(signal)
	for start := 0; start < len(signal); start += 128 {
		chunked.ProcessAudioFrame(signal[start : start+128])
	}

	if !slices.Equal(whole.Features(), chunked.Features()) {
		t.Fatalf("chunked features %v != whole %v", chunked.Features(), whole.Features())
	}
}

func TestGromagramStereoDownMix(t *testing.T) {
	mono := newTestGromagram(t, GromagramConfig{WindowSize: 2048, SampleRate: 44100, ChannelCount: 1, StartNote: A2, NotesCount: 12})
	stereo := newTestGromagram(t, GromagramConfig{WindowSize: 2048, SampleRate: 44100, ChannelCount: 2, StartNote: A2, NotesCount: 12})

	signal := sineFrame(261.63, 44100, 2048, 10000)
	interleaved := make([]int16, 2*len(signal))
	for i, s := range signal {
		interleaved[2*i] = s
		interleaved[2*i+1] = s
	}

	mono.ProcessAudioFrame(signal)
	stereo.ProcessAudioFrame(interleaved)

	if !slices.Equal(mono.Features(), stereo.Features()) {
		t.Fatalf("stereo features %v != mono %v", stereo.Features(), mono.Features())
	}
}

func TestGromagramNormalize(t *testing.T) {
	g := newTestGromagram(t, GromagramConfig{WindowSize: 2048, SampleRate: 44100, ChannelCount: 1, StartNote: A2, NotesCount: 12})
	g.ProcessAudioFrame(sineFrame(220, 44100, 2048, 12000))

	before := slices.Clone(g.Features())
	if !g.Normalize() {
		t.Fatal("Normalize() = false for a tone")
	}

	sum := 0.0
	for i, v := range g.Features() {
		sum += v
		for j := range before {
			if (before[i] > before[j]) != (v > g.Features()[j]) {
				t.Fatalf("ordering between %d and %d changed", i, j)
			}
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("normalized sum = %v", sum)
	}
}

func TestGromagramResetAndSilence(t *testing.T) {
	g := newTestGromagram(t, GromagramConfig{WindowSize: 512, SampleRate: 44100, ChannelCount: 1, StartNote: A2, NotesCount: 12})
	g.ProcessAudioFrame(sineFrame(220, 44100, 512, 12000))
	g.Reset()
	g.ProcessAudioFrame(make([]int16, 16))

	for i, v := range g.Features() {
		if v != 0 {
			t.Fatalf("feature %d = %v after reset and silence", i, v)
		}
	}
	if g.Normalize() {
		t.Fatal("Normalize() = true for silence")
	}
	for i, v := range g.Features() {
		if v != 0 {
			t.Fatalf("feature %d = %v after normalizing silence", i, v)
		}
	}
}

func TestGromagramFeatureNames(t *testing.T) {
	g := newTestGromagram(t, GromagramConfig{WindowSize: 512, SampleRate: 44100, ChannelCount: 1, StartNote: A1, NotesCount: 3})
	if got, want := g.FeatureNames(), []string{"A1", "A#1", "B1"}; !slices.Equal(got, want) {
		t.Fatalf("FeatureNames() = %v, want %v", got, want)
	}
}

func TestGromagramProcessDoesNotAllocate(t *testing.T) {
	g := newTestGromagram(t, GromagramConfig{WindowSize: 1024, SampleRate: 44100, ChannelCount: 2, StartNote: A1, NotesCount: 24})
	frame := sineFrame(110, 44100, 512, 8000)

	allocs := testing.AllocsPerRun(20, func() {
		g.ProcessAudioFrame(frame)
	})
	if allocs != 0 {
		t.Fatalf("ProcessAudioFrame allocated %v times per run", allocs)
	}
}
