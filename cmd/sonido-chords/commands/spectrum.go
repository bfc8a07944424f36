package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-chords/algorithms/spectral"
	"github.com/RyanBlaney/sonido-chords/algorithms/windowing"
)

var (
	spectrumSize   int
	spectrumFreq   float64
	spectrumWindow string
)

var spectrumCmd = &cobra.Command{
	Use:   "spectrum <clip.wav>",
	Short: "Print the spectral peak of a clip chunk by chunk",
	Long: `Mix a WAV clip down to mono, cut it into chunks and print, for every
chunk, the frequency of the strongest power-spectrum bin and the magnitude of
a single target frequency.`,
	Args: cobra.ExactArgs(1),
	RunE: runSpectrum,
}

func init() {
	spectrumCmd.Flags().IntVar(&spectrumSize, "size", 4096, "samples per chunk")
	spectrumCmd.Flags().Float64Var(&spectrumFreq, "freq", 220, "target frequency in Hz")
	spectrumCmd.Flags().StringVar(&spectrumWindow, "window", "none", "chunk window: none, hann, hamming")
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	if spectrumSize <= 0 {
		return fmt.Errorf("--size must be positive, got %d", spectrumSize)
	}

	window, err := windowing.New(spectrumWindow, spectrumSize)
	if err != nil {
		return err
	}

	clip, err := decodeClip(args[0], 0, 1)
	if err != nil {
		return err
	}

	bin, err := spectral.NewGoertzel(spectrumFreq, clip.SampleRate, spectrumSize)
	if err != nil {
		return fmt.Errorf("--freq: %w", err)
	}

	ps := spectral.NewPowerSpectrum(window)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "time\tpeak_hz\tmag_%gHz\n", spectrumFreq)

	for start := 0; start+spectrumSize <= len(clip.PCM); start += spectrumSize {
		chunk := clip.PCM[start : start+spectrumSize]
		power, err := ps.ComputePCM(chunk)
		if err != nil {
			return err
		}
		peak := spectral.PeakBin(power)
		fmt.Fprintf(out, "%.3f\t%.1f\t%.1f\n",
			seconds(start, clip.SampleRate),
			spectral.BinFrequency(peak, spectrumSize, clip.SampleRate),
			bin.Reset().Add(chunk).FinishMag())
	}

	return nil
}
