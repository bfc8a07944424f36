package chroma

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/algorithms/filters"
	"github.com/RyanBlaney/sonido-chords/algorithms/spectral"
	"github.com/RyanBlaney/sonido-chords/algorithms/windowing"
	"github.com/RyanBlaney/sonido-chords/logging"
)

const (
	// ChromaBufferSize is the analysis buffer and FFT length
	ChromaBufferSize = 4096
	// ChromaCalculationInterval is how many input samples pass between calculations
	ChromaCalculationInterval = 4096

	numHarmonics      = 2
	numOctaves        = 2
	numBinsToSearch   = 2
	chromaReferenceHz = 196.0 / 4.0 // G1
)

// ErrFrameSize is returned when a frame does not match the configured frame size
var ErrFrameSize = errors.New("frame length doesn't match configured frame size")

// chromaNoteFrequencies are the 12 equal-tempered pitch-class frequencies
// above chromaReferenceHz
var chromaNoteFrequencies = func() [12]float64 {
	var freqs [12]float64
	for i := range freqs {
		freqs[i] = chromaReferenceHz * math.Pow(2.0, float64(i)/12.0)
	}
	return freqs
}()

type binRange struct {
	min, max int // max is exclusive
}

// harmonicSearchRanges computes, for every pitch class, octave and harmonic,
// the bins searched for the spectral peak
func harmonicSearchRanges(c ChromagramConfig) [12][numOctaves][numHarmonics]binRange {
	var ranges [12][numOctaves][numHarmonics]binRange

	divisorRatio := float64(c.SampleRate) / float64(c.DownSamplingFactor) / ChromaBufferSize
	for n, freq := range chromaNoteFrequencies {
		for octave := 1; octave <= numOctaves; octave++ {
			for harmonic := 1; harmonic <= numHarmonics; harmonic++ {
				center := int(math.Round(freq * float64(octave*harmonic) / divisorRatio))
				ranges[n][octave-1][harmonic-1] = binRange{
					min: center - numBinsToSearch*harmonic,
					max: center + numBinsToSearch*harmonic,
				}
			}
		}
	}

	return ranges
}

// Chromagram computes a 12-bin pitch-class profile from a windowed FFT of
// the most recent ChromaBufferSize (decimated) samples. Incoming frames are
// low-pass filtered, optionally decimated and shifted into the buffer; a new
// profile is calculated every ChromaCalculationInterval input samples.
type Chromagram struct {
	config    ChromagramConfig
	buffer    *common.ShiftBuffer
	decimator *filters.Decimator
	window    *windowing.Hamming
	fft       *spectral.PlannedFFT
	ranges    [12][numOctaves][numHarmonics]binRange

	windowed          []float64
	re, im            []float64
	magnitudeSpectrum []float64
	chromagram        []float64
	mono              []float64 // Mixed-down scratch for ProcessPCMFrame

	samplesSinceLastCalculation int
	ready                       bool

	logger logging.Logger
}

// NewChromagram creates a chromagram analyzer
func NewChromagram(config ChromagramConfig) (*Chromagram, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	decimator, err := filters.NewDecimator(config.DownSamplingFactor, config.FrameSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	fft, err := spectral.NewPlannedFFT(ChromaBufferSize)
	if err != nil {
		return nil, err
	}

	spectrumLen := ChromaBufferSize/2 + 1
	c := &Chromagram{
		config:            config,
		buffer:            common.NewShiftBuffer(ChromaBufferSize),
		decimator:         decimator,
		window:            windowing.PeriodicHamming(ChromaBufferSize),
		fft:               fft,
		ranges:            harmonicSearchRanges(config),
		windowed:          make([]float64, ChromaBufferSize),
		re:                make([]float64, spectrumLen),
		im:                make([]float64, spectrumLen),
		magnitudeSpectrum: make([]float64, spectrumLen),
		chromagram:        make([]float64, 12),
		mono:              make([]float64, config.FrameSize),
		logger: logging.WithFields(logging.Fields{
			"component": "chromagram",
		}),
	}

	c.logger.Debug("Chromagram configured", logging.Fields{
		"frame_size":    config.FrameSize,
		"sample_rate":   config.SampleRate,
		"down_sampling": config.DownSamplingFactor,
		"resolution_hz": float64(config.SampleRate) / float64(config.DownSamplingFactor) / ChromaBufferSize,
	})

	return c, nil
}

// ProcessAudioFrame filters and decimates a mono frame of FrameSize samples,
// shifts it into the buffer and recalculates the chromagram once enough
// samples have accumulated.
func (c *Chromagram) ProcessAudioFrame(frame []float64) error {
	if len(frame) != c.config.FrameSize {
		return fmt.Errorf("%w: got %d, want %d", ErrFrameSize, len(frame), c.config.FrameSize)
	}

	decimated, err := c.decimator.Process(frame)
	if err != nil {
		return err
	}
	c.buffer.Push(decimated)

	c.samplesSinceLastCalculation += c.config.FrameSize
	if c.samplesSinceLastCalculation >= ChromaCalculationInterval {
		if err := c.calculateChromagram(); err != nil {
			return err
		}
		c.samplesSinceLastCalculation = 0
	}

	return nil
}

// ProcessPCMFrame mixes an interleaved frame of FrameSize*ChannelCount
// samples down to mono and processes it
func (c *Chromagram) ProcessPCMFrame(frame []int16) error {
	if want := c.config.FrameSize * c.config.ChannelCount; len(frame) != want {
		return fmt.Errorf("%w: got %d interleaved samples, want %d", ErrFrameSize, len(frame), want)
	}

	common.MixToMonoFloat(c.config.ChannelCount, frame, c.mono)
	return c.ProcessAudioFrame(c.mono)
}

// IsReady reports whether at least one chromagram has been calculated
func (c *Chromagram) IsReady() bool {
	return c.ready
}

// Features returns the 12 pitch-class energies, index 0 at G. The slice is
// owned by the analyzer and only changes when a new calculation runs.
func (c *Chromagram) Features() []float64 {
	return c.chromagram
}

// FeatureNames returns the pitch-class name of every feature entry
func (c *Chromagram) FeatureNames() []string {
	base := int(math.Round(FrequencyToNote(chromaReferenceHz)))
	names := make([]string, len(c.chromagram))
	for i := range names {
		names[i] = PitchClassNames[(base+i)%12]
	}
	return names
}

// MagnitudeSpectrum returns the compressed magnitude spectrum of the last
// calculation
func (c *Chromagram) MagnitudeSpectrum() []float64 {
	return c.magnitudeSpectrum
}

// Config returns the analyzer configuration
func (c *Chromagram) Config() ChromagramConfig {
	return c.config
}

func (c *Chromagram) calculateChromagram() error {
	if err := c.calculateMagnitudeSpectrum(); err != nil {
		return err
	}

	for n := range c.chromagram {
		chromaSum := 0.0
		for o := range numOctaves {
			noteSum := 0.0
			for h := range numHarmonics {
				r := c.ranges[n][o][h]

				maxVal := 0.0
				for k := r.min; k < r.max; k++ {
					if c.magnitudeSpectrum[k] > maxVal {
						maxVal = c.magnitudeSpectrum[k]
					}
				}

				noteSum += maxVal / float64(h+1)
			}
			chromaSum += noteSum
		}
		c.chromagram[n] = chromaSum
	}

	c.ready = true
	return nil
}

// calculateMagnitudeSpectrum windows the buffer, transforms it and keeps
// sqrt(|X_k|) for the non-negative frequency bins
func (c *Chromagram) calculateMagnitudeSpectrum() error {
	if err := c.window.ApplyTo(c.windowed, c.buffer.Samples()); err != nil {
		return err
	}

	spectrum, err := c.fft.Transform(c.windowed)
	if err != nil {
		return err
	}

	for k := range c.magnitudeSpectrum {
		c.re[k] = real(spectrum[k])
		c.im[k] = imag(spectrum[k])
	}
	vecmath.Magnitude(c.magnitudeSpectrum, c.re, c.im)

	for k, mag := range c.magnitudeSpectrum {
		c.magnitudeSpectrum[k] = math.Sqrt(mag)
	}

	return nil
}
