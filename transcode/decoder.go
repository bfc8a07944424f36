package transcode

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/algorithms/filters"
	"github.com/RyanBlaney/sonido-chords/logging"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrInvalidConfig     = errors.New("invalid decoder configuration")
)

// AudioData represents a decoded clip as interleaved 16-bit PCM
type AudioData struct {
	PCM        []int16       `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
	Metadata   *ClipMetadata `json:"metadata,omitempty"`
}

// ClipMetadata describes the source a clip was decoded from
type ClipMetadata struct {
	Path             string `json:"path,omitempty"`
	Format           string `json:"format"`
	BitDepth         int    `json:"bit_depth"`
	SourceSampleRate int    `json:"source_sample_rate"`
	SourceChannels   int    `json:"source_channels"`
	Resampled        bool   `json:"resampled"`
}

// Frames returns the number of sample frames (samples per channel)
func (a *AudioData) Frames() int {
	if a.Channels <= 0 {
		return 0
	}
	return len(a.PCM) / a.Channels
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	// TargetSampleRate resamples clips to this rate; 0 keeps the source rate
	TargetSampleRate int `json:"target_sample_rate" yaml:"target_sample_rate"`

	// TargetChannels mixes down to mono when 1; 0 keeps the source layout
	TargetChannels int `json:"target_channels" yaml:"target_channels"`

	MaxDuration time.Duration `json:"max_duration" yaml:"max_duration"` // 0 = no limit

	// RemoveDC runs every channel through a DC blocking filter
	RemoveDC bool `json:"remove_dc" yaml:"remove_dc"`

	// DCCutoff is the -3 dB point of the DC blocker in Hz; 0 uses a pole
	// at 0.995 (about 35 Hz at 44.1 kHz)
	DCCutoff float64 `json:"dc_cutoff" yaml:"dc_cutoff"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 44100,
		TargetChannels:   1, // The analyzers run on mono by default
		MaxDuration:      0,
	}
}

// Validate checks the decoder configuration
func (c *DecoderConfig) Validate() error {
	if c.TargetSampleRate < 0 {
		return fmt.Errorf("%w: target sample rate %d", ErrInvalidConfig, c.TargetSampleRate)
	}
	if c.TargetChannels != 0 && c.TargetChannels != 1 {
		return fmt.Errorf("%w: target channels must be 0 (keep) or 1 (mono), got %d", ErrInvalidConfig, c.TargetChannels)
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("%w: negative max duration", ErrInvalidConfig)
	}
	if c.DCCutoff < 0 {
		return fmt.Errorf("%w: negative DC cutoff %v", ErrInvalidConfig, c.DCCutoff)
	}
	return nil
}

// Decoder reads PCM WAV clips and converts them to the layout the
// analyzers expect
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// DecodeFile decodes a WAV file
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	logger.Debug("Starting audio file decode")

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer f.Close()

	data, err := d.DecodeReader(f)
	if err != nil {
		logger.Error(err, "Failed to decode audio file")
		return nil, err
	}
	data.Metadata.Path = filename

	return data, nil
}

// DecodeReader decodes a WAV stream
func (d *Decoder) DecodeReader(r io.ReadSeeker) (*AudioData, error) {
	if err := d.config.Validate(); err != nil {
		return nil, err
	}

	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeReader",
	})

	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: not a PCM WAV stream", ErrUnsupportedFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not read PCM buffer: %w", err)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, bitDepth)
	}

	data := &AudioData{
		PCM:        toInt16(buf.Data, bitDepth),
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		Metadata: &ClipMetadata{
			Format:           "wav",
			BitDepth:         bitDepth,
			SourceSampleRate: buf.Format.SampleRate,
			SourceChannels:   buf.Format.NumChannels,
		},
	}
	if data.Channels <= 0 || data.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, data.Channels, data.SampleRate)
	}

	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": data.SampleRate,
		"input_channels":    data.Channels,
		"input_bit_depth":   bitDepth,
		"input_frames":      data.Frames(),
	})

	if err := d.convert(data); err != nil {
		return nil, err
	}

	data.Duration = time.Duration(float64(data.Frames()) / float64(data.SampleRate) * float64(time.Second))
	return data, nil
}

// convert applies duration limit, DC removal, down-mix and resampling, in
// that order
func (d *Decoder) convert(data *AudioData) error {
	if d.config.MaxDuration > 0 {
		maxFrames := int(d.config.MaxDuration.Seconds() * float64(data.SampleRate))
		if data.Frames() > maxFrames {
			data.PCM = data.PCM[:maxFrames*data.Channels]
		}
	}

	if d.config.RemoveDC {
		for ch := range data.Channels {
			dc := d.dcBlocker(data.SampleRate)
			if ch == 0 {
				logging.Debug("Removing DC offset", logging.Fields{
					"cutoff_hz": dc.GetCutoffFrequency(data.SampleRate),
					"channels":  data.Channels,
				})
			}
			dc.ProcessPCM(data.PCM, ch, data.Channels)
		}
	}

	if d.config.TargetChannels == 1 && data.Channels > 1 {
		mono := make([]int16, common.MonoLength(data.Channels, len(data.PCM)))
		common.MixToMono(data.Channels, data.PCM, mono)
		data.PCM = mono
		data.Channels = 1
	}

	if d.config.TargetSampleRate > 0 && d.config.TargetSampleRate != data.SampleRate {
		resampled, err := resample(data.PCM, data.Channels, data.SampleRate, d.config.TargetSampleRate)
		if err != nil {
			return err
		}
		data.PCM = resampled
		data.SampleRate = d.config.TargetSampleRate
		data.Metadata.Resampled = true
	}

	return nil
}

// dcBlocker returns a fresh DC blocking filter for one channel
func (d *Decoder) dcBlocker(sampleRate int) *filters.DCRemoval {
	if d.config.DCCutoff > 0 {
		return filters.NewDCRemovalWithCutoff(sampleRate, d.config.DCCutoff)
	}
	return filters.NewDCRemoval()
}

// resample converts interleaved pcm from one rate to another. Every channel
// runs through its own resampler, including the flushed filter tail.
func resample(pcm []int16, channels, from, to int) ([]int16, error) {
	frames := len(pcm) / channels
	outputs := make([][]float64, channels)

	input := make([]float64, frames)
	for ch := range channels {
		resampler, err := resampling.New(&resampling.Config{
			InputRate:  float64(from),
			OutputRate: float64(to),
			Channels:   1,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create resampler: %w", err)
		}

		for i := range frames {
			input[i] = float64(pcm[i*channels+ch]) / 32768.0
		}

		output, err := resampler.Process(input)
		if err != nil {
			return nil, fmt.Errorf("resample error on channel %d: %w", ch, err)
		}
		tail, err := resampler.Flush()
		if err != nil {
			return nil, fmt.Errorf("resample flush error on channel %d: %w", ch, err)
		}
		outputs[ch] = append(output, tail...)
	}

	outFrames := len(outputs[0])
	for _, o := range outputs[1:] {
		outFrames = min(outFrames, len(o))
	}

	out := make([]int16, outFrames*channels)
	for i := range outFrames {
		for ch := range channels {
			out[i*channels+ch] = clampInt16(outputs[ch][i] * 32767.0)
		}
	}
	return out, nil
}

func clampInt16(v float64) int16 {
	switch {
	case v >= math.MaxInt16:
		return math.MaxInt16
	case v <= math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}

// toInt16 reduces samples of the given bit depth to 16 bits
func toInt16(samples []int, bitDepth int) []int16 {
	shift := bitDepth - 16
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = int16(s >> shift)
	}
	return out
}

// WriteWAV encodes data as a 16-bit PCM WAV stream
func WriteWAV(w io.WriteSeeker, data *AudioData) error {
	if data.Channels <= 0 || data.SampleRate <= 0 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, data.Channels, data.SampleRate)
	}

	samples := make([]int, len(data.PCM))
	for i, s := range data.PCM {
		samples[i] = int(s)
	}

	encoder := wav.NewEncoder(w, data.SampleRate, 16, data.Channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: data.Channels,
			SampleRate:  data.SampleRate,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}

	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("data writing error: %w", err)
	}
	return encoder.Close()
}

// EncodeFile writes data to filename as a 16-bit PCM WAV file
func EncodeFile(filename string, data *AudioData) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("output file creation error: %w", err)
	}

	if err := WriteWAV(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
