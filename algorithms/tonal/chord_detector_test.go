package tonal

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
)

const (
	testSampleRate = 44100
	testWindow     = 2048
	lowHz          = 220.0
	highHz         = 329.63
)

func tone(freq float64, n, offset int, amp float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amp * math.Sin(2*math.Pi*freq*float64(i+offset)/testSampleRate))
	}
	return out
}

func newTestAnalyzer(t *testing.T) *chroma.Gromagram {
	t.Helper()
	g, err := chroma.NewGromagram(chroma.GromagramConfig{
		WindowSize:   testWindow,
		SampleRate:   testSampleRate,
		ChannelCount: 1,
		StartNote:    chroma.A2,
		NotesCount:   24,
	})
	if err != nil {
		t.Fatalf("NewGromagram: %v", err)
	}
	return g
}

// features extracts a normalized feature vector the way Train does
func features(g *chroma.Gromagram, window []int16) []float64 {
	g.Reset()
	g.ProcessAudioFrame(window)
	g.Normalize()
	return slices.Clone(g.Features())
}

func trainedLowHigh(t *testing.T) *ChordDetector[string] {
	t.Helper()
	d, err := NewChordDetector(newTestAnalyzer(t), []string{"low", "high"}, DefaultDetectorConfig())
	if err != nil {
		t.Fatalf("NewChordDetector: %v", err)
	}

	if err := d.Train(tone(lowHz, 8192, 0, 12000), "low"); err != nil {
		t.Fatalf("Train(low): %v", err)
	}
	if err := d.Train(tone(highHz, 8192, 0, 12000), "high"); err != nil {
		t.Fatalf("Train(high): %v", err)
	}
	if got := d.Examples(); got != 26 {
		t.Fatalf("Examples() = %d, want 26", got)
	}
	if err := d.FinishTraining(); err != nil {
		t.Fatalf("FinishTraining: %v", err)
	}
	return d
}

func TestChordDetectorLowHighRoundTrip(t *testing.T) {
	d := trainedLowHigh(t)
	analyzer := newTestAnalyzer(t)

	tests := []struct {
		freq float64
		want string
	}{
		{lowHz, "low"},
		{highHz, "high"},
	}

	for _, tt := range tests {
		for _, offset := range []int{0, 100, 256, 777, 3000} {
			for _, amp := range []float64{12000, 8000} {
				f := features(analyzer, tone(tt.freq, testWindow, offset, amp))

				got, err := d.Detect(f)
				if err != nil {
					t.Fatalf("%.2f Hz offset %d amp %v: Detect: %v", tt.freq, offset, amp, err)
				}
				if got != tt.want {
					t.Errorf("%.2f Hz offset %d amp %v: Detect = %q, want %q", tt.freq, offset, amp, got, tt.want)
				}

				scores, err := d.Scores(f)
				if err != nil {
					t.Fatalf("Scores: %v", err)
				}
				if idx := slices.Index(d.Labels(), tt.want); scores[idx] <= 0.9 {
					t.Errorf("%.2f Hz: posterior %v not above threshold", tt.freq, scores[idx])
				}
			}
		}
	}
}

func TestChordDetectorDetectCurrent(t *testing.T) {
	d := trainedLowHigh(t)

	d.ProcessAudioFrame(tone(highHz, testWindow, 777, 8000))
	before := slices.Clone(d.Analyzer().Features())

	got, err := d.DetectCurrent()
	if err != nil {
		t.Fatalf("DetectCurrent: %v", err)
	}
	if got != "high" {
		t.Fatalf("DetectCurrent = %q, want high", got)
	}
	if !slices.Equal(before, d.Analyzer().Features()) {
		t.Fatal("DetectCurrent modified the analyzer features")
	}
}

func TestChordDetectorNoConfidentPrediction(t *testing.T) {
	d, err := NewChordDetector(newTestAnalyzer(t), []string{"a", "b"}, DefaultDetectorConfig())
	if err != nil {
		t.Fatalf("NewChordDetector: %v", err)
	}

	clip := tone(lowHz, 8192, 0, 12000)
	for _, label := range []string{"a", "b"} {
		if err := d.Train(clip, label); err != nil {
			t.Fatalf("Train(%s): %v", label, err)
		}
	}
	if err := d.FinishTraining(); err != nil {
		t.Fatalf("FinishTraining: %v", err)
	}

	f := features(newTestAnalyzer(t), tone(lowHz, testWindow, 0, 12000))
	scores, err := d.Scores(f)
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if math.Abs(scores[0]-0.5) > 1e-9 || math.Abs(scores[1]-0.5) > 1e-9 {
		t.Fatalf("Scores = %v, want an even split", scores)
	}

	if _, err := d.Detect(f); !errors.Is(err, ErrNoConfidentPrediction) {
		t.Fatalf("Detect = %v, want ErrNoConfidentPrediction", err)
	}
}

func TestChordDetectorLifecycleErrors(t *testing.T) {
	d, err := NewChordDetector(newTestAnalyzer(t), []string{"low", "high"}, DefaultDetectorConfig())
	if err != nil {
		t.Fatalf("NewChordDetector: %v", err)
	}

	if _, err := d.Detect(make([]float64, 24)); !errors.Is(err, ErrModelNotTrained) {
		t.Errorf("Detect before training = %v", err)
	}
	if _, err := d.MarshalModel(); !errors.Is(err, ErrModelNotTrained) {
		t.Errorf("MarshalModel before training = %v", err)
	}
	if err := d.FinishTraining(); !errors.Is(err, ErrNoTrainingData) {
		t.Errorf("FinishTraining without data = %v", err)
	}
	if err := d.Train(tone(lowHz, 8192, 0, 12000), "middle"); !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("Train with unknown label = %v", err)
	}
	if err := d.Train(tone(lowHz, testWindow-1, 0, 12000), "low"); !errors.Is(err, ErrNoTrainingData) {
		t.Errorf("Train with short clip = %v", err)
	}

	if err := d.Train(tone(lowHz, testWindow, 0, 12000), "low"); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if d.Examples() != 1 {
		t.Errorf("Examples() = %d, want 1", d.Examples())
	}
	if err := d.FinishTraining(); err != nil {
		t.Fatalf("FinishTraining: %v", err)
	}
	if err := d.FinishTraining(); !errors.Is(err, ErrAlreadyTrained) {
		t.Errorf("second FinishTraining = %v", err)
	}
	if err := d.Train(tone(lowHz, 8192, 0, 12000), "low"); !errors.Is(err, ErrAlreadyTrained) {
		t.Errorf("Train after FinishTraining = %v", err)
	}
}

func TestNewChordDetectorLabels(t *testing.T) {
	type pitch int

	d, err := NewChordDetector(newTestAnalyzer(t), []pitch{57, 64, 57}, DefaultDetectorConfig())
	if err != nil {
		t.Fatalf("NewChordDetector: %v", err)
	}
	if got := d.Labels(); !slices.Equal(got, []pitch{57, 64}) {
		t.Fatalf("Labels() = %v", got)
	}

	if _, err := NewChordDetector(newTestAnalyzer(t), []pitch{}, DefaultDetectorConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("empty labels = %v", err)
	}
	if _, err := NewChordDetector[pitch](nil, []pitch{1}, DefaultDetectorConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil analyzer = %v", err)
	}
	bad := DetectorConfig{ConfidenceThreshold: 1.2, StepDivisor: 4}
	if _, err := NewChordDetector(newTestAnalyzer(t), []pitch{1}, bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("threshold above one = %v", err)
	}
}

func TestChordDetectorModelSnapshot(t *testing.T) {
	d := trainedLowHigh(t)

	data, err := d.MarshalModel()
	if err != nil {
		t.Fatalf("MarshalModel: %v", err)
	}

	restored, err := RestoreChordDetector[string](data)
	if err != nil {
		t.Fatalf("RestoreChordDetector: %v", err)
	}
	if !restored.Trained() {
		t.Fatal("restored detector is not trained")
	}
	if !slices.Equal(restored.Labels(), d.Labels()) {
		t.Fatalf("labels = %v, want %v", restored.Labels(), d.Labels())
	}
	if restored.Analyzer().Config() != d.Analyzer().Config() {
		t.Fatalf("analyzer config = %+v", restored.Analyzer().Config())
	}

	f := features(newTestAnalyzer(t), tone(lowHz, testWindow, 321, 9000))
	want, _ := d.Scores(f)
	got, err := restored.Scores(f)
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if !slices.Equal(got, want) {
		t.Fatalf("restored scores %v, original %v", got, want)
	}

	if err := restored.Train(tone(lowHz, 8192, 0, 12000), "low"); !errors.Is(err, ErrAlreadyTrained) {
		t.Errorf("Train on restored detector = %v", err)
	}
	if _, err := RestoreChordDetector[string]([]byte("not msgpack")); err == nil {
		t.Error("RestoreChordDetector accepted garbage")
	}
}
