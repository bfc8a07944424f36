package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
	"github.com/RyanBlaney/sonido-chords/algorithms/tonal"
)

var trainOut string

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a chord detector from the configured clips",
	Long: `Train a detector on every clip of the config's training manifest and
write the fitted model.

Each clip is decoded to the gromagram sample rate and channel layout, cut
into overlapping windows and added to the training set under its label.
The labels list of the config is the detector's closed label set.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVarP(&trainOut, "out", "o", "model.msgpack", "output model file")
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	if len(cfg.Labels) == 0 {
		return errors.New("config has no labels")
	}
	if len(cfg.Training) == 0 {
		return errors.New("config has no training clips")
	}

	analyzer, err := chroma.NewGromagram(cfg.Gromagram)
	if err != nil {
		return err
	}
	detector, err := tonal.NewChordDetector(analyzer, cfg.Labels, cfg.Detector)
	if err != nil {
		return err
	}

	for _, clip := range cfg.Training {
		data, err := decodeClip(clip.Path, cfg.Gromagram.SampleRate, cfg.Gromagram.ChannelCount)
		if err != nil {
			return err
		}
		if err := detector.Train(data.PCM, clip.Label); err != nil {
			return fmt.Errorf("train %s: %w", clip.Path, err)
		}
	}

	if err := detector.FinishTraining(); err != nil {
		return err
	}

	model, err := detector.MarshalModel()
	if err != nil {
		return err
	}
	if err := os.WriteFile(trainOut, model, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Trained %d labels on %d examples from %d clips; model written to %s\n",
		len(detector.Labels()), detector.Examples(), len(cfg.Training), trainOut)
	return nil
}
