// Package config holds the application configuration of the sonido-chords
// command: analyzer settings, the detector label set and the training
// manifest.
package config

import (
	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
	"github.com/RyanBlaney/sonido-chords/algorithms/tonal"
	"github.com/RyanBlaney/sonido-chords/transcode"
)

// Config is the root of the YAML configuration file
type Config struct {
	LogLevel string `yaml:"log_level"`

	Gromagram  chroma.GromagramConfig  `yaml:"gromagram"`
	Chromagram chroma.ChromagramConfig `yaml:"chromagram"`
	Detector   tonal.DetectorConfig    `yaml:"detector"`
	Decoder    transcode.DecoderConfig `yaml:"decoder"`

	// Labels is the closed label set of the detector, in one-hot order
	Labels []string `yaml:"labels"`

	// Training lists the clips Train is fed with. Relative paths are
	// resolved against the directory of the configuration file by Load.
	Training []TrainingClip `yaml:"training"`
}

// TrainingClip is one labeled WAV clip of the training manifest
type TrainingClip struct {
	Label string `yaml:"label"`
	Path  string `yaml:"path"`
}

// Default returns the configuration used for every key the file omits
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		Gromagram:  chroma.DefaultGromagramConfig(),
		Chromagram: chroma.DefaultChromagramConfig(),
		Detector:   tonal.DefaultDetectorConfig(),
		Decoder:    *transcode.DefaultDecoderConfig(),
	}
}
