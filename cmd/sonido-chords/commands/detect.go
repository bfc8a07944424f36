package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-chords/algorithms/tonal"
)

var (
	detectModel string
	detectHop   int
)

var detectCmd = &cobra.Command{
	Use:   "detect <clip.wav>",
	Short: "Detect labels over a clip with a trained model",
	Long: `Stream a WAV clip through a trained detector in hops and print the
detected label at every hop once a full window has been heard.

A "-" means no label cleared the confidence threshold. The analyzer
settings are taken from the model, not from the config.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().StringVarP(&detectModel, "model", "m", "model.msgpack", "trained model file")
	detectCmd.Flags().IntVar(&detectHop, "hop", 0, "sample frames per hop (default a quarter window)")
}

func runDetect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(detectModel)
	if err != nil {
		return fmt.Errorf("read model: %w", err)
	}
	detector, err := tonal.RestoreChordDetector[string](data)
	if err != nil {
		return err
	}

	g := detector.Analyzer().Config()
	clip, err := decodeClip(args[0], g.SampleRate, g.ChannelCount)
	if err != nil {
		return err
	}

	hop := detectHop
	if hop <= 0 {
		hop = max(g.WindowSize/4, 1)
	}
	span := hop * g.ChannelCount

	out := cmd.OutOrStdout()
	heard := 0
	for start := 0; start+span <= len(clip.PCM); start += span {
		detector.ProcessAudioFrame(clip.PCM[start : start+span])
		heard += hop
		if heard < g.WindowSize {
			continue
		}

		at := seconds(heard, g.SampleRate)
		label, err := detector.DetectCurrent()
		switch {
		case errors.Is(err, tonal.ErrNoConfidentPrediction):
			fmt.Fprintf(out, "%8.3fs  -\n", at)
		case err != nil:
			return err
		default:
			fmt.Fprintf(out, "%8.3fs  %s\n", at, label)
		}
	}

	if heard < g.WindowSize {
		return fmt.Errorf("%s is shorter than one analysis window (%d frames)", args[0], g.WindowSize)
	}
	return nil
}
