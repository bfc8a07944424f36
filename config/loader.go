package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Load reads the YAML configuration file at path and returns a validated
// [Config] with training paths resolved relative to the file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i, clip := range cfg.Training {
		if !filepath.IsAbs(clip.Path) {
			cfg.Training[i].Path = filepath.Join(dir, clip.Path)
		}
	}

	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and
// validates the result.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !slices.Contains(validLogLevels, cfg.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	if err := cfg.Gromagram.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("gromagram: %w", err))
	}
	if err := cfg.Chromagram.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("chromagram: %w", err))
	}
	if err := cfg.Detector.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("detector: %w", err))
	}
	if err := cfg.Decoder.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("decoder: %w", err))
	}

	// Decoded clips feed the gromagram directly
	if rate := cfg.Decoder.TargetSampleRate; rate != 0 && rate != cfg.Gromagram.SampleRate {
		errs = append(errs, fmt.Errorf("decoder.target_sample_rate %d differs from gromagram.sample_rate %d", rate, cfg.Gromagram.SampleRate))
	}
	if cfg.Decoder.TargetChannels == 1 && cfg.Gromagram.ChannelCount != 1 {
		errs = append(errs, fmt.Errorf("decoder mixes down to mono but gromagram.channel_count is %d", cfg.Gromagram.ChannelCount))
	}

	labelsSeen := make(map[string]int, len(cfg.Labels))
	for i, label := range cfg.Labels {
		if label == "" {
			errs = append(errs, fmt.Errorf("labels[%d] is empty", i))
			continue
		}
		if prev, ok := labelsSeen[label]; ok {
			errs = append(errs, fmt.Errorf("labels[%d] %q is a duplicate of labels[%d]", i, label, prev))
		}
		labelsSeen[label] = i
	}

	for i, clip := range cfg.Training {
		prefix := fmt.Sprintf("training[%d]", i)
		if clip.Path == "" {
			errs = append(errs, fmt.Errorf("%s.path is required", prefix))
		}
		if _, ok := labelsSeen[clip.Label]; !ok {
			errs = append(errs, fmt.Errorf("%s.label %q is not in labels", prefix, clip.Label))
		}
	}

	return errors.Join(errs...)
}
