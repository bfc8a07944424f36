package chroma

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by the analyzer constructors
var ErrInvalidConfig = errors.New("invalid analyzer configuration")

// GromagramConfig configures a Gromagram. It is fixed at construction.
type GromagramConfig struct {
	WindowSize   int `json:"window_size" yaml:"window_size"`     // Samples in the analysis window
	SampleRate   int `json:"sample_rate" yaml:"sample_rate"`     // Hz
	ChannelCount int `json:"channel_count" yaml:"channel_count"` // Interleaved channels per incoming frame
	StartNote    int `json:"start_note" yaml:"start_note"`       // MIDI note of the first tracked note
	NotesCount   int `json:"notes_count" yaml:"notes_count"`     // Consecutive semitones tracked
}

// DefaultGromagramConfig tracks one octave upward from E2, the lowest
// guitar string, over 1024 mono samples at 44.1 kHz.
func DefaultGromagramConfig() GromagramConfig {
	return GromagramConfig{
		WindowSize:   1024,
		SampleRate:   44100,
		ChannelCount: 1,
		StartNote:    E2,
		NotesCount:   12,
	}
}

// Validate reports the first invalid setting
func (c GromagramConfig) Validate() error {
	switch {
	case c.WindowSize <= 0:
		return fmt.Errorf("%w: window size must be positive, got %d", ErrInvalidConfig, c.WindowSize)
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	case c.ChannelCount <= 0:
		return fmt.Errorf("%w: channel count must be positive, got %d", ErrInvalidConfig, c.ChannelCount)
	case c.NotesCount <= 0:
		return fmt.Errorf("%w: notes count must be positive, got %d", ErrInvalidConfig, c.NotesCount)
	case c.StartNote < 0:
		return fmt.Errorf("%w: start note must not be negative, got %d", ErrInvalidConfig, c.StartNote)
	}

	highest := c.StartNote + c.NotesCount - 1
	if f := NoteFrequency(highest); f >= float64(c.SampleRate)/2 {
		return fmt.Errorf("%w: note %s (%.1f Hz) is at or above Nyquist for %d Hz",
			ErrInvalidConfig, NoteName(highest), f, c.SampleRate)
	}

	return nil
}

// ChromagramConfig configures a Chromagram. It is fixed at construction.
type ChromagramConfig struct {
	FrameSize          int `json:"frame_size" yaml:"frame_size"`                     // Mono samples per incoming frame
	SampleRate         int `json:"sample_rate" yaml:"sample_rate"`                   // Hz
	ChannelCount       int `json:"channel_count" yaml:"channel_count"`               // Interleaved channels for ProcessPCMFrame
	DownSamplingFactor int `json:"down_sampling_factor" yaml:"down_sampling_factor"` // 1 disables decimation
}

// DefaultChromagramConfig returns 256-sample mono frames at 44.1 kHz without decimation
func DefaultChromagramConfig() ChromagramConfig {
	return ChromagramConfig{
		FrameSize:          256,
		SampleRate:         44100,
		ChannelCount:       1,
		DownSamplingFactor: 1,
	}
}

// Validate reports the first invalid setting, including harmonic searches
// that would fall outside the magnitude spectrum.
func (c ChromagramConfig) Validate() error {
	switch {
	case c.FrameSize <= 0:
		return fmt.Errorf("%w: frame size must be positive, got %d", ErrInvalidConfig, c.FrameSize)
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	case c.ChannelCount <= 0:
		return fmt.Errorf("%w: channel count must be positive, got %d", ErrInvalidConfig, c.ChannelCount)
	case c.DownSamplingFactor <= 0:
		return fmt.Errorf("%w: down-sampling factor must be positive, got %d", ErrInvalidConfig, c.DownSamplingFactor)
	case c.FrameSize < c.DownSamplingFactor:
		return fmt.Errorf("%w: frame size (%d) smaller than down-sampling factor (%d)",
			ErrInvalidConfig, c.FrameSize, c.DownSamplingFactor)
	case c.FrameSize/c.DownSamplingFactor > ChromaBufferSize:
		return fmt.Errorf("%w: decimated frame (%d samples) larger than the %d-sample buffer",
			ErrInvalidConfig, c.FrameSize/c.DownSamplingFactor, ChromaBufferSize)
	}

	ranges := harmonicSearchRanges(c)
	spectrumLen := ChromaBufferSize/2 + 1
	for n := range ranges {
		for o := range ranges[n] {
			for h, r := range ranges[n][o] {
				if r.min < 0 || r.max > spectrumLen {
					return fmt.Errorf("%w: pitch class %d octave %d harmonic %d searches bins [%d,%d) outside [0,%d) at %d Hz / %d",
						ErrInvalidConfig, n, o+1, h+1, r.min, r.max, spectrumLen, c.SampleRate, c.DownSamplingFactor)
				}
			}
		}
	}

	return nil
}
