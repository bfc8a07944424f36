package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-chords/config"
	"github.com/RyanBlaney/sonido-chords/logging"
	"github.com/RyanBlaney/sonido-chords/transcode"
)

var (
	// Global flags
	configPath string
	logLevel   string
	verbose    bool

	// Configuration of the running command, loaded before RunE
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sonido-chords",
	Short: "Note and chord recognition from PCM audio",
	Long: `sonido-chords - gromagram and chromagram analysis with a trainable
label detector.

The detector is trained from labeled WAV clips listed in a YAML config and
saved as a msgpack model. Analyzer settings come from the same config; every
key it omits keeps its default.

Examples:
  # Write two training tones
  sonido-chords tone --freq 220 --out low.wav
  sonido-chords tone --note E4 --out high.wav

  # Train and detect
  sonido-chords train --config chords.yaml --out model.msgpack
  sonido-chords detect --model model.msgpack recording.wav

  # Inspect features
  sonido-chords gromagram --config chords.yaml recording.wav
  sonido-chords chroma recording.wav`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initRun,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides the config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	rootCmd.AddCommand(trainCmd, detectCmd, gromagramCmd, chromaCmd, spectrumCmd, toneCmd)
}

func initRun(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	appConfig = cfg

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if verbose {
		level = "debug"
	}
	logging.SetLevel(logging.ParseLevel(level))

	return nil
}

// decodeClip decodes a WAV clip into the layout an analyzer expects. A zero
// sampleRate keeps the clip's own rate.
func decodeClip(path string, sampleRate, channels int) (*transcode.AudioData, error) {
	dc := appConfig.Decoder
	dc.TargetSampleRate = sampleRate
	dc.TargetChannels = 0
	if channels == 1 {
		dc.TargetChannels = 1
	}

	data, err := transcode.NewDecoder(&dc).DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if data.Channels != channels {
		return nil, fmt.Errorf("%s has %d channels, the analyzer expects %d", path, data.Channels, channels)
	}
	return data, nil
}

// seconds converts a sample frame position to seconds
func seconds(frame, sampleRate int) float64 {
	return float64(frame) / float64(sampleRate)
}
