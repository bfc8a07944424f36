package chroma

import (
	"fmt"

	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/algorithms/spectral"
	"github.com/RyanBlaney/sonido-chords/logging"
)

// Gromagram tracks the energy of NotesCount consecutive semitones over a
// sliding window of the most recent WindowSize mono samples.
//
// Every ProcessAudioFrame call re-estimates all notes over the whole window
// with a single-bin Goertzel estimator, so the work per frame is
// O(WindowSize * NotesCount) and nothing is allocated.
type Gromagram struct {
	config    GromagramConfig
	buffer    *common.CircularBuffer[float64]
	notes     []*spectral.Goertzel // One per tracked note
	gromagram []float64
	logger    logging.Logger
}

// NewGromagram creates a gromagram analyzer
func NewGromagram(config GromagramConfig) (*Gromagram, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	g := &Gromagram{
		config:    config,
		buffer:    common.NewCircularBuffer[float64](config.WindowSize),
		notes:     make([]*spectral.Goertzel, config.NotesCount),
		gromagram: make([]float64, config.NotesCount),
		logger: logging.WithFields(logging.Fields{
			"component": "gromagram",
		}),
	}

	for i := range g.notes {
		note := config.StartNote + i
		est, err := spectral.NewGoertzel(NoteFrequency(note), config.SampleRate, config.WindowSize)
		if err != nil {
			return nil, fmt.Errorf("%w: note %s: %v", ErrInvalidConfig, NoteName(note), err)
		}
		g.notes[i] = est
	}

	g.logger.Debug("Gromagram configured", logging.Fields{
		"window_size": config.WindowSize,
		"sample_rate": config.SampleRate,
		"channels":    config.ChannelCount,
		"first_note":  NoteName(config.StartNote),
		"notes":       config.NotesCount,
	})

	return g, nil
}

// ProcessAudioFrame folds an interleaved frame into the window, mixing
// multi-channel audio down to mono first, and recomputes every note.
func (g *Gromagram) ProcessAudioFrame(frame []int16) {
	channels := g.config.ChannelCount
	if channels == 1 {
		for _, s := range frame {
			g.buffer.Push(float64(s))
		}
	} else {
		for start := 0; start < len(frame); start += channels {
			end := min(start+channels, len(frame))
			g.buffer.Push(float64(common.MixGroup(frame[start:end], channels)))
		}
	}

	older, newer := g.buffer.Halves()
	for i, est := range g.notes {
		g.gromagram[i] = est.Reset().AddFloat(older).AddFloat(newer).FinishMag()
	}
}

// ProcessPCMFrame is ProcessAudioFrame satisfying Analyzer; it never fails
func (g *Gromagram) ProcessPCMFrame(frame []int16) error {
	g.ProcessAudioFrame(frame)
	return nil
}

// Reset zeroes the window and cursor; the configuration is kept
func (g *Gromagram) Reset() {
	g.buffer.Reset()
}

// Normalize scales the note energies to sum to one, in place. After
// silence the vector is all zero and is left unchanged; false is returned.
func (g *Gromagram) Normalize() bool {
	return common.NormalizeSum(g.gromagram)
}

// Features returns the per-note energies. The slice is owned by the
// analyzer and overwritten by the next frame.
func (g *Gromagram) Features() []float64 {
	return g.gromagram
}

// FeatureNames returns the note name of every feature entry
func (g *Gromagram) FeatureNames() []string {
	names := make([]string, g.config.NotesCount)
	for i := range names {
		names[i] = NoteName(g.config.StartNote + i)
	}
	return names
}

// Config returns the analyzer configuration
func (g *Gromagram) Config() GromagramConfig {
	return g.config
}
